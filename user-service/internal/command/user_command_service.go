package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/events"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
	"github.com/storefront/services/shared/utils"
	"github.com/storefront/services/user-service/internal/verify"
)

type UserStore interface {
	ExistsByIdentity(ctx context.Context, email, username, phone string) (bool, error)
	CreateWithAddress(ctx context.Context, user *models.User, addr *models.Address) error
}

type UserViewCache interface {
	CacheUserView(ctx context.Context, view *models.UserView)
}

type OTPIssuer interface {
	Issue(ctx context.Context, channel, destination string) (string, time.Time, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// UserCommandService runs the registration and OTP workflows.
type UserCommandService struct {
	users     UserStore
	views     UserViewCache
	captcha   verify.CaptchaVerifier
	otp       verify.OTPVerifier
	issuer    OTPIssuer
	publisher EventPublisher
	roles     models.RoleSet
	log       logging.Logger
}

func NewUserCommandService(
	users UserStore,
	views UserViewCache,
	captcha verify.CaptchaVerifier,
	otp verify.OTPVerifier,
	issuer OTPIssuer,
	publisher EventPublisher,
	roles models.RoleSet,
	log logging.Logger,
) *UserCommandService {
	return &UserCommandService{
		users:     users,
		views:     views,
		captcha:   captcha,
		otp:       otp,
		issuer:    issuer,
		publisher: publisher,
		roles:     roles,
		log:       log,
	}
}

// Register validates and persists a new customer. Checks run in a fixed
// order and the first failure is returned: password confirmation,
// uniqueness, captcha, then both one-time codes.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.UserView, error) {
	if cmd.Password != cmd.ConfirmPassword {
		return nil, apperr.Validation("password mismatch")
	}

	exists, err := s.users.ExistsByIdentity(ctx, cmd.Email, cmd.Username, cmd.PhoneNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("user exists")
	}

	if !s.captchaAccepted(ctx, cmd.Captcha) {
		return nil, apperr.Validation("captcha failed")
	}
	if !s.otpAccepted(ctx, verify.ChannelEmail, cmd.Email, cmd.EmailOTP) ||
		!s.otpAccepted(ctx, verify.ChannelPhone, cmd.PhoneNumber, cmd.PhoneOTP) {
		return nil, apperr.Validation("otp failed")
	}

	if !s.roles.Contains(models.RoleCustomer) {
		return nil, apperr.Internal("registration unavailable",
			fmt.Errorf("role %q is not in the configured role set", models.RoleCustomer))
	}

	hash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:            cmd.Name,
		Username:        cmd.Username,
		Email:           cmd.Email,
		PhoneNumber:     cmd.PhoneNumber,
		Password:        hash,
		Role:            models.RoleCustomer,
		IsActive:        true,
		CaptchaToken:    cmd.Captcha,
		CaptchaVerified: true,
		EmailOTP:        cmd.EmailOTP,
		PhoneOTP:        cmd.PhoneOTP,
		OTPVerified:     true,
	}
	var addr *models.Address
	if cmd.Address != nil {
		addr = newAddress(0, *cmd.Address)
	}

	if err := s.users.CreateWithAddress(ctx, user, addr); err != nil {
		return nil, err
	}

	view := user.View()
	s.views.CacheUserView(ctx, view)
	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.UserRegistered, events.UserRegisteredEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     string(user.Role),
	}); err != nil {
		s.log.Warn(ctx, "failed to publish user.registered event", "user_id", user.ID, "error", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return view, nil
}

// IssueOTP stores a fresh code and hands it to the notifier through the
// user event stream. The code itself is never returned to the caller.
func (s *UserCommandService) IssueOTP(ctx context.Context, cmd cqrs.IssueOTPCommand) error {
	channel := strings.ToLower(cmd.Channel)
	if channel != verify.ChannelEmail && channel != verify.ChannelPhone {
		return apperr.Validation("channel must be email or phone")
	}
	if strings.TrimSpace(cmd.Destination) == "" {
		return apperr.Validation("destination is required")
	}

	code, expiresAt, err := s.issuer.Issue(ctx, channel, cmd.Destination)
	if err != nil {
		return apperr.Internal("failed to issue otp", err)
	}

	if err := s.publisher.Publish(ctx, events.UserEventsStream, events.OTPIssued, events.OTPIssuedEvent{
		Channel:     channel,
		Destination: cmd.Destination,
		Code:        code,
		ExpiresAt:   expiresAt,
	}); err != nil {
		// an undeliverable code is useless to the caller
		return apperr.Internal("failed to dispatch otp", err)
	}
	return nil
}

func (s *UserCommandService) captchaAccepted(ctx context.Context, token string) bool {
	if strings.TrimSpace(token) == "" {
		return false
	}
	ok, err := s.captcha.VerifyCaptcha(ctx, token)
	if err != nil {
		s.log.Warn(ctx, "captcha verification error", "error", err)
		return false
	}
	return ok
}

func (s *UserCommandService) otpAccepted(ctx context.Context, channel, destination, code string) bool {
	if code == "" {
		return false
	}
	ok, err := s.otp.VerifyOTP(ctx, channel, destination, code)
	if err != nil {
		s.log.Warn(ctx, "otp verification error", "channel", channel, "error", err)
		return false
	}
	return ok
}

func newAddress(userID uint, in cqrs.AddressInput) *models.Address {
	return &models.Address{
		UserID:      userID,
		AddressLine: in.AddressLine,
		City:        in.City,
		State:       in.State,
		Pincode:     in.Pincode,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		PlaceID:     in.PlaceID,
		IsActive:    true,
		Audit:       models.Audit{CreatedBy: in.CreatedBy},
	}
}
