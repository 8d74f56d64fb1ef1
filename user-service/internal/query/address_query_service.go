package query

import (
	"context"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/models"
)

type UserLookup interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

type AddressReader interface {
	ListByUser(ctx context.Context, userID uint) ([]models.Address, error)
	GetByID(ctx context.Context, id uint) (*models.Address, error)
}

type AddressQueryService struct {
	users UserLookup
	addrs AddressReader
}

func NewAddressQueryService(users UserLookup, addrs AddressReader) *AddressQueryService {
	return &AddressQueryService{users: users, addrs: addrs}
}

// ListAddresses returns every address of the user, unpaginated.
func (s *AddressQueryService) ListAddresses(ctx context.Context, q cqrs.ListAddressesQuery) ([]*models.AddressView, error) {
	ok, err := s.users.ExistsByID(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}

	addrs, err := s.addrs.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	views := make([]*models.AddressView, 0, len(addrs))
	for i := range addrs {
		views = append(views, addrs[i].View())
	}
	return views, nil
}

func (s *AddressQueryService) GetAddress(ctx context.Context, q cqrs.GetAddressQuery) (*models.AddressView, error) {
	addr, err := s.addrs.GetByID(ctx, q.AddressID)
	if err != nil {
		return nil, err
	}
	return addr.View(), nil
}
