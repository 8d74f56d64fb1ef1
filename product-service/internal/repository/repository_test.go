package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/database/dbtest"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
)

func newDB(t *testing.T) *gorm.DB {
	return dbtest.New(t, &models.Product{})
}

func seed(t *testing.T, repo *ProductRepository, n int) []*models.Product {
	t.Helper()
	out := make([]*models.Product, 0, n)
	for i := 1; i <= n; i++ {
		p := &models.Product{
			Name:          fmt.Sprintf("Item %02d", i),
			Description:   "plain goods",
			Price:         float64(i),
			ImageFilename: fmt.Sprintf("%d.png", i),
			ImageBlob:     []byte{byte(i)},
			IsActive:      1,
		}
		require.NoError(t, repo.Create(context.Background(), p))
		out = append(out, p)
	}
	return out
}

func TestProductRepository_ListPaginates(t *testing.T) {
	repo := NewProductRepository(newDB(t))
	seed(t, repo, 15)
	ctx := context.Background()

	first, total, err := repo.List(ctx, ListParams{Page: 1, PageSize: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	assert.Len(t, first, 10)

	second, total, err := repo.List(ctx, ListParams{Page: 2, PageSize: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(15), total)
	require.Len(t, second, 5)
	assert.Equal(t, "Item 11", second[0].Name)
}

func TestProductRepository_ListSortsDescending(t *testing.T) {
	repo := NewProductRepository(newDB(t))
	seed(t, repo, 3)

	got, _, err := repo.List(context.Background(), ListParams{Page: 1, PageSize: 10, SortBy: "price", Desc: true})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 3.0, got[0].Price)
	assert.Equal(t, 1.0, got[2].Price)
}

func TestProductRepository_UnknownSortFallsBackToID(t *testing.T) {
	repo := NewProductRepository(newDB(t))
	seed(t, repo, 3)

	got, _, err := repo.List(context.Background(), ListParams{Page: 1, PageSize: 10, SortBy: "price; DROP TABLE products"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Item 01", got[0].Name)
}

func TestProductRepository_SearchIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDB(t))
	seed(t, repo, 2)
	require.NoError(t, repo.Create(ctx, &models.Product{
		Name: "Garden Hose", Description: "Twenty metres", Price: 9,
		ImageFilename: "h.png", ImageBlob: []byte{1}, IsActive: 1,
	}))
	require.NoError(t, repo.Create(ctx, &models.Product{
		Name: "Sprinkler", Description: "Pairs with any HOSE", Price: 4,
		ImageFilename: "s.png", ImageBlob: []byte{1}, IsActive: 1,
	}))

	got, total, err := repo.List(ctx, ListParams{Search: "hOsE", Page: 1, PageSize: 10, SortBy: "id"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, got, 2)
	assert.Equal(t, "Garden Hose", got[0].Name)
	assert.Equal(t, "Sprinkler", got[1].Name)
}

func TestProductRepository_InactiveExcludedUnlessRequested(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDB(t))
	items := seed(t, repo, 3)

	require.NoError(t, repo.Update(ctx, items[1].ID, map[string]any{"is_active": 0}))

	_, total, err := repo.List(ctx, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, total, err = repo.List(ctx, ListParams{Page: 1, PageSize: 10, IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	got, err := repo.GetByID(ctx, items[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.IsActive)
}

func TestProductRepository_UpdateReplacesImage(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDB(t))
	p := seed(t, repo, 1)[0]

	require.NoError(t, repo.Update(ctx, p.ID, map[string]any{
		"image_filename": "1_1700000000.jpg",
		"image_blob":     []byte("new-image"),
	}))

	got, err := repo.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "1_1700000000.jpg", got.ImageFilename)
	assert.Equal(t, []byte("new-image"), got.ImageBlob)
	assert.Equal(t, "Item 01", got.Name)
}

func TestProductRepository_MissingIsNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDB(t))

	_, err := repo.GetByID(ctx, 42)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	err = repo.Update(ctx, 42, map[string]any{"name": "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

type countingLister struct {
	calls int
	inner ProductLister
}

func (c *countingLister) List(ctx context.Context, params ListParams) ([]models.Product, int64, error) {
	c.calls++
	return c.inner.List(ctx, params)
}

func TestProductReadRepository_CachesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	repo := NewProductRepository(newDB(t))
	seed(t, repo, 15)
	lister := &countingLister{inner: repo}
	read := NewProductReadRepository(lister, client, time.Minute, logging.Nop())

	params := ListParams{Page: 2, PageSize: 10, SortBy: "id"}
	page, err := read.ListPage(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 2, page.Pages)
	assert.Len(t, page.Items, 5)
	require.NotNil(t, page.Items[0].ImageBase64)

	_, err = read.ListPage(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 1, lister.calls)

	read.Invalidate(ctx)
	_, err = read.ListPage(ctx, params)
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestProductReadRepository_EmptyPage(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	read := NewProductReadRepository(NewProductRepository(newDB(t)), client, time.Minute, logging.Nop())
	page, err := read.ListPage(context.Background(), ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)
	assert.Equal(t, 0, page.Pages)
	assert.NotNil(t, page.Items)
}

func TestProductRepository_SearchTreatsWildcardsLiterally(t *testing.T) {
	ctx := context.Background()
	repo := NewProductRepository(newDB(t))
	for _, name := range []string{"axb", "a_b", "50% off", `back\slash`} {
		require.NoError(t, repo.Create(ctx, &models.Product{
			Name: name, Description: "-", Price: 1,
			ImageFilename: "x.png", ImageBlob: []byte{1}, IsActive: 1,
		}))
	}

	tests := []struct {
		search string
		want   []string
	}{
		{"a_b", []string{"a_b"}},
		{"%", []string{"50% off"}},
		{"_", []string{"a_b"}},
		{`\`, []string{`back\slash`}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, total, err := repo.List(ctx, ListParams{Search: tt.search, Page: 1, PageSize: 10, SortBy: "id"})
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.want)), total)
			names := make([]string, 0, len(got))
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}
