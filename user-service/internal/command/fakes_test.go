package command

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/models"
)

type fakeUserStore struct {
	users   []*models.User
	addrs   []*models.Address
	nextID  uint
	failErr error
}

func (f *fakeUserStore) ExistsByIdentity(_ context.Context, email, username, phone string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email || u.Username == username || u.PhoneNumber == phone {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateWithAddress(_ context.Context, user *models.User, addr *models.Address) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.nextID++
	user.ID = f.nextID
	f.users = append(f.users, user)
	if addr != nil {
		addr.UserID = user.ID
		f.addrs = append(f.addrs, addr)
	}
	return nil
}

func (f *fakeUserStore) ExistsByID(_ context.Context, id uint) (bool, error) {
	for _, u := range f.users {
		if u.ID == id {
			return true, nil
		}
	}
	return false, nil
}

type fakeViewCache struct{ cached []*models.UserView }

func (f *fakeViewCache) CacheUserView(_ context.Context, v *models.UserView) {
	f.cached = append(f.cached, v)
}

type fakeCaptcha struct {
	ok  bool
	err error
}

func (f fakeCaptcha) VerifyCaptcha(context.Context, string) (bool, error) { return f.ok, f.err }

// fakeOTP accepts the code stored for channel:destination.
type fakeOTP struct {
	codes  map[string]string
	issued map[string]string
}

func newFakeOTP() *fakeOTP {
	return &fakeOTP{codes: map[string]string{}, issued: map[string]string{}}
}

func (f *fakeOTP) VerifyOTP(_ context.Context, channel, destination, code string) (bool, error) {
	return f.codes[channel+":"+destination] == code, nil
}

func (f *fakeOTP) Issue(_ context.Context, channel, destination string) (string, time.Time, error) {
	f.issued[channel+":"+destination] = "654321"
	return "654321", time.Now().Add(time.Minute), nil
}

type published struct {
	stream, eventType string
	data              any
}

type fakePublisher struct {
	events []published
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, stream, eventType string, data any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, published{stream, eventType, data})
	return nil
}

type fakeAddressStore struct {
	addrs  map[uint]*models.Address
	nextID uint
	cols   map[string]any
}

func newFakeAddressStore() *fakeAddressStore {
	return &fakeAddressStore{addrs: map[uint]*models.Address{}}
}

func (f *fakeAddressStore) Create(_ context.Context, a *models.Address) error {
	f.nextID++
	a.ID = f.nextID
	f.addrs[a.ID] = a
	return nil
}

func (f *fakeAddressStore) Update(_ context.Context, id uint, cols map[string]any) (*models.Address, error) {
	a, ok := f.addrs[id]
	if !ok {
		return nil, apperr.NotFound("address not found")
	}
	f.cols = cols
	if v, ok := cols["city"]; ok {
		a.City = v.(string)
	}
	return a, nil
}

func (f *fakeAddressStore) Delete(_ context.Context, id uint) error {
	if _, ok := f.addrs[id]; !ok {
		return apperr.NotFound("address not found")
	}
	delete(f.addrs, id)
	return nil
}

var errBoom = errors.New("boom")
