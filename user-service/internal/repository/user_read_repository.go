package repository

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/database"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
	sharedredis "github.com/storefront/services/shared/redis"
)

const userViewKeyPrefix = "user:view:"

// UserReadRepository serves user views from Redis, falling back to the
// database on a miss.
type UserReadRepository struct {
	db    *gorm.DB
	cache *sharedredis.ViewCache[models.UserView]
}

func NewUserReadRepository(db *gorm.DB, redisClient *goredis.Client, log logging.Logger) *UserReadRepository {
	return &UserReadRepository{
		db:    db,
		cache: sharedredis.NewViewCache[models.UserView](redisClient, 0, log),
	}
}

// GetByEmail returns a UserView from Redis first, then the database.
func (r *UserReadRepository) GetByEmail(ctx context.Context, email string) (*models.UserView, error) {
	if view, ok := r.cache.Get(ctx, userViewKeyPrefix+email); ok {
		return view, nil
	}

	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if database.IsNotFound(err) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	view := user.View()
	r.CacheUserView(ctx, view)
	return view, nil
}

// CacheUserView stores or refreshes the Redis read model for a user.
func (r *UserReadRepository) CacheUserView(ctx context.Context, view *models.UserView) {
	r.cache.Set(ctx, userViewKeyPrefix+view.Email, view)
}
