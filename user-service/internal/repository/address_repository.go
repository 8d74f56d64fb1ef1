package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/models"
)

// AddressRepository persists addresses. Addresses are hard deleted.
type AddressRepository struct {
	db *gorm.DB
}

func NewAddressRepository(db *gorm.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func (r *AddressRepository) Create(ctx context.Context, addr *models.Address) error {
	if err := r.db.WithContext(ctx).Create(addr).Error; err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID uint) ([]models.Address, error) {
	var addrs []models.Address
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&addrs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addrs, nil
}

func (r *AddressRepository) GetByID(ctx context.Context, id uint) (*models.Address, error) {
	var addr models.Address
	err := r.db.WithContext(ctx).First(&addr, id).Error
	if database.IsNotFound(err) {
		return nil, apperr.NotFound("address not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	return &addr, nil
}

// Update applies the column assignments and returns the stored row.
func (r *AddressRepository) Update(ctx context.Context, id uint, cols map[string]any) (*models.Address, error) {
	result := r.db.WithContext(ctx).Model(&models.Address{}).Where("id = ?", id).Updates(cols)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.NotFound("address not found")
	}
	return r.GetByID(ctx, id)
}

func (r *AddressRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Address{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("address not found")
	}
	return nil
}
