package query

import (
	"context"
	"math"
	"strings"

	"github.com/storefront/services/product-service/internal/repository"
	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/models"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

type PageReader interface {
	ListPage(ctx context.Context, params repository.ListParams) (*models.ProductPage, error)
}

type ProductReader interface {
	GetByID(ctx context.Context, id uint) (*models.Product, error)
}

type ProductQueryService struct {
	pages    PageReader
	products ProductReader
}

func NewProductQueryService(pages PageReader, products ProductReader) *ProductQueryService {
	return &ProductQueryService{pages: pages, products: products}
}

// ListProducts returns one page of the catalog. Zero page and page size
// take their defaults; other out-of-range values are rejected.
func (s *ProductQueryService) ListProducts(ctx context.Context, q cqrs.ListProductsQuery) (*models.ProductPage, error) {
	params, err := listParams(q)
	if err != nil {
		return nil, err
	}
	return s.pages.ListPage(ctx, params)
}

// GetProduct returns the product even when it was soft deleted.
func (s *ProductQueryService) GetProduct(ctx context.Context, q cqrs.GetProductQuery) (*models.ProductView, error) {
	p, err := s.products.GetByID(ctx, q.ProductID)
	if err != nil {
		return nil, err
	}
	view := p.View()
	return &view, nil
}

func listParams(q cqrs.ListProductsQuery) (repository.ListParams, error) {
	page, size := q.Page, q.PageSize
	if page == 0 {
		page = defaultPage
	}
	if size == 0 {
		size = defaultPageSize
	}
	if page < 1 {
		return repository.ListParams{}, apperr.Validation("page must be at least 1")
	}
	if size < 1 || size > maxPageSize {
		return repository.ListParams{}, apperr.Validation("page_size must be between 1 and 100")
	}
	// the row offset (page-1)*size must fit in an int
	if page-1 > math.MaxInt/size {
		return repository.ListParams{}, apperr.Validation("page is too large")
	}

	sortBy := strings.ToLower(strings.TrimSpace(q.SortBy))
	if _, ok := repository.SortableColumns[sortBy]; !ok {
		sortBy = "id"
	}

	return repository.ListParams{
		Search:          strings.TrimSpace(q.Search),
		SortBy:          sortBy,
		Desc:            strings.EqualFold(q.SortOrder, "desc"),
		Page:            page,
		PageSize:        size,
		IncludeInactive: q.IncludeInactive,
	}, nil
}
