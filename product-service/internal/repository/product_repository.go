package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/models"
)

// SortableColumns are the columns a listing may be ordered by.
var SortableColumns = map[string]struct{}{
	"id":           {},
	"name":         {},
	"description":  {},
	"price":        {},
	"rating":       {},
	"created_date": {},
	"updated_date": {},
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListParams is an already validated page request.
type ListParams struct {
	Search          string
	SortBy          string
	Desc            bool
	Page            int
	PageSize        int
	IncludeInactive bool
}

// ProductRepository persists products. Products are never removed, only
// marked inactive.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID returns the product whether or not it is active.
func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if database.IsNotFound(err) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// Update writes all column assignments in a single statement.
func (r *ProductRepository) Update(ctx context.Context, id uint, cols map[string]any) error {
	result := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return fmt.Errorf("failed to update product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}

// List returns one page of products and the total number of matches.
func (r *ProductRepository) List(ctx context.Context, params ListParams) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if !params.IncludeInactive {
		q = q.Where("is_active = ?", 1)
	}
	if s := strings.TrimSpace(params.Search); s != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`, pattern, pattern)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sortBy := params.SortBy
	if _, ok := SortableColumns[sortBy]; !ok {
		sortBy = "id"
	}
	q = q.Session(&gorm.Session{}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: sortBy}, Desc: params.Desc})
	if sortBy != "id" {
		q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: params.Desc})
	}

	var products []models.Product
	err := q.Offset((params.Page - 1) * params.PageSize).Limit(params.PageSize).Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}
