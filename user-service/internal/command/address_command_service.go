package command

import (
	"context"
	"time"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
)

type UserLookup interface {
	ExistsByID(ctx context.Context, id uint) (bool, error)
}

type AddressStore interface {
	Create(ctx context.Context, addr *models.Address) error
	Update(ctx context.Context, id uint, cols map[string]any) (*models.Address, error)
	Delete(ctx context.Context, id uint) error
}

// AddressCommandService adds, patches and hard-deletes user addresses.
type AddressCommandService struct {
	users UserLookup
	addrs AddressStore
	log   logging.Logger
	now   func() time.Time
}

func NewAddressCommandService(users UserLookup, addrs AddressStore, log logging.Logger) *AddressCommandService {
	return &AddressCommandService{users: users, addrs: addrs, log: log, now: time.Now}
}

func (s *AddressCommandService) AddAddress(ctx context.Context, cmd cqrs.AddAddressCommand) (*models.AddressView, error) {
	ok, err := s.users.ExistsByID(ctx, cmd.UserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("user not found")
	}

	addr := newAddress(cmd.UserID, cmd.Address)
	if err := s.addrs.Create(ctx, addr); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "address added", "user_id", cmd.UserID, "address_id", addr.ID)
	return addr.View(), nil
}

// UpdateAddress overwrites only the fields present in the patch.
func (s *AddressCommandService) UpdateAddress(ctx context.Context, cmd cqrs.UpdateAddressCommand) (*models.AddressView, error) {
	addr, err := s.addrs.Update(ctx, cmd.AddressID, cmd.Patch.Columns(s.now().UTC()))
	if err != nil {
		return nil, err
	}
	return addr.View(), nil
}

func (s *AddressCommandService) DeleteAddress(ctx context.Context, cmd cqrs.DeleteAddressCommand) error {
	if err := s.addrs.Delete(ctx, cmd.AddressID); err != nil {
		return err
	}
	s.log.Info(ctx, "address deleted", "address_id", cmd.AddressID)
	return nil
}
