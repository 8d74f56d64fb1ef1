package repository

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
	sharedredis "github.com/storefront/services/shared/redis"
)

const (
	productListVersionKey = "product:list:version"
	productListKeyPrefix  = "product:list:"
)

// ProductLister is the write-side query the read repository pages over.
type ProductLister interface {
	List(ctx context.Context, params ListParams) ([]models.Product, int64, error)
}

// ProductReadRepository caches listing pages in Redis. Every write bumps a
// version counter and pages cached under an older version are never read
// again; they expire through the TTL.
type ProductReadRepository struct {
	products ProductLister
	cache    *sharedredis.ViewCache[models.ProductPage]
	version  *sharedredis.VersionCounter
	log      logging.Logger
}

func NewProductReadRepository(products ProductLister, redisClient *goredis.Client, ttl time.Duration, log logging.Logger) *ProductReadRepository {
	return &ProductReadRepository{
		products: products,
		cache:    sharedredis.NewViewCache[models.ProductPage](redisClient, ttl, log),
		version:  sharedredis.NewVersionCounter(redisClient, productListVersionKey),
		log:      log,
	}
}

// ListPage returns the page envelope for params, from Redis when possible.
func (r *ProductReadRepository) ListPage(ctx context.Context, params ListParams) (*models.ProductPage, error) {
	key, cacheable := r.pageKey(ctx, params)
	if cacheable {
		if page, ok := r.cache.Get(ctx, key); ok {
			return page, nil
		}
	}

	products, total, err := r.products.List(ctx, params)
	if err != nil {
		return nil, err
	}

	page := &models.ProductPage{
		Items:    make([]models.ProductView, 0, len(products)),
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Pages:    int((total + int64(params.PageSize) - 1) / int64(params.PageSize)),
	}
	for i := range products {
		page.Items = append(page.Items, products[i].View())
	}

	if cacheable {
		r.cache.Set(ctx, key, page)
	}
	return page, nil
}

// Invalidate makes every cached page stale.
func (r *ProductReadRepository) Invalidate(ctx context.Context) {
	if _, err := r.version.Bump(ctx); err != nil {
		r.log.Warn(ctx, "failed to bump product list version", "error", err)
	}
}

func (r *ProductReadRepository) pageKey(ctx context.Context, params ListParams) (string, bool) {
	ver, err := r.version.Current(ctx)
	if err != nil {
		// without a version a cached page could be stale
		r.log.Warn(ctx, "product list version unavailable", "error", err)
		return "", false
	}

	v := url.Values{}
	v.Set("search", params.Search)
	v.Set("sort_by", params.SortBy)
	v.Set("desc", strconv.FormatBool(params.Desc))
	v.Set("page", strconv.Itoa(params.Page))
	v.Set("page_size", strconv.Itoa(params.PageSize))
	v.Set("include_inactive", strconv.FormatBool(params.IncludeInactive))
	return fmt.Sprintf("%sv%d:%s", productListKeyPrefix, ver, v.Encode()), true
}
