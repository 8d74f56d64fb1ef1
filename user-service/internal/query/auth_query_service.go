package query

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
	"github.com/storefront/services/shared/utils"
	"github.com/storefront/services/user-service/internal/verify"
)

type CredentialLookup interface {
	FindByIdentifier(ctx context.Context, identifier string) (*models.User, error)
}

type UserViewReader interface {
	GetByEmail(ctx context.Context, email string) (*models.UserView, error)
}

type TokenIssuer interface {
	CreateAccessToken(email string, userID uint, role string) (string, error)
}

// AuthQueryService handles login and the current-user lookup. Login issues
// a token but does not mutate user state, so it lives on the query side.
type AuthQueryService struct {
	users   CredentialLookup
	views   UserViewReader
	captcha verify.CaptchaVerifier
	tokens  TokenIssuer
	log     logging.Logger
}

func NewAuthQueryService(
	users CredentialLookup,
	views UserViewReader,
	captcha verify.CaptchaVerifier,
	tokens TokenIssuer,
	log logging.Logger,
) *AuthQueryService {
	return &AuthQueryService{users: users, views: views, captcha: captcha, tokens: tokens, log: log}
}

// Login resolves the identifier as email, username or phone number, then
// checks password, captcha and, when supplied, the stored phone OTP.
func (s *AuthQueryService) Login(ctx context.Context, cmd cqrs.LoginCommand) (*models.LoginView, error) {
	user, err := s.users.FindByIdentifier(ctx, cmd.Identifier)
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(cmd.Password, user.Password) {
		return nil, apperr.Auth("invalid credentials")
	}

	if strings.TrimSpace(cmd.Captcha) == "" {
		return nil, apperr.Validation("captcha failed")
	}
	ok, err := s.captcha.VerifyCaptcha(ctx, cmd.Captcha)
	if err != nil {
		s.log.Warn(ctx, "captcha verification error", "error", err)
	}
	if !ok {
		return nil, apperr.Validation("captcha failed")
	}

	if cmd.OTP != "" {
		if user.PhoneOTP == "" || subtle.ConstantTimeCompare([]byte(cmd.OTP), []byte(user.PhoneOTP)) != 1 {
			return nil, apperr.Validation("otp failed")
		}
	}

	token, err := s.tokens.CreateAccessToken(user.Email, user.ID, string(user.Role))
	if err != nil {
		return nil, apperr.Internal("failed to issue token", err)
	}
	return &models.LoginView{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Role:        user.Role,
	}, nil
}

func (s *AuthQueryService) CurrentUser(ctx context.Context, q cqrs.GetCurrentUserQuery) (*models.UserView, error) {
	return s.views.GetByEmail(ctx, q.Email)
}
