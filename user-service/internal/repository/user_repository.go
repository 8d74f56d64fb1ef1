package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/models"
)

// UserWriteRepository handles all state-mutating operations for users and
// the lookups that need the full write model (password hash, stored OTPs).
type UserWriteRepository struct {
	db *gorm.DB
}

func NewUserWriteRepository(db *gorm.DB) *UserWriteRepository {
	return &UserWriteRepository{db: db}
}

// ExistsByIdentity reports whether any user already holds the email, the
// username or the phone number.
func (r *UserWriteRepository) ExistsByIdentity(ctx context.Context, email, username, phone string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? OR username = ? OR phone_number = ?", email, username, phone).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing user: %w", err)
	}
	return count > 0, nil
}

// CreateWithAddress inserts the user and, when addr is not nil, the address
// owned by it in a single transaction.
func (r *UserWriteRepository) CreateWithAddress(ctx context.Context, user *models.User, addr *models.Address) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if addr == nil {
			return nil
		}
		addr.UserID = user.ID
		return tx.Create(addr).Error
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			return apperr.Conflict("user exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByIdentifier matches the identifier against email, username and phone.
func (r *UserWriteRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? OR username = ? OR phone_number = ?", identifier, identifier, identifier).
		First(&user).Error
	if database.IsNotFound(err) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserWriteRepository) ExistsByID(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return count > 0, nil
}
