package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/middleware"
	"github.com/storefront/services/shared/models"
)

// UserCommander defines the write-side operations used by UserHandler.
type UserCommander interface {
	Register(context.Context, cqrs.RegisterUserCommand) (*models.UserView, error)
	IssueOTP(context.Context, cqrs.IssueOTPCommand) error
}

// UserQuerier defines the read-side operations used by UserHandler.
type UserQuerier interface {
	Login(context.Context, cqrs.LoginCommand) (*models.LoginView, error)
	CurrentUser(context.Context, cqrs.GetCurrentUserQuery) (*models.UserView, error)
}

// UserHandler routes requests to the command or query service as appropriate.
type UserHandler struct {
	commands UserCommander
	queries  UserQuerier
}

type RegisterRequest struct {
	Name            string          `json:"name" validate:"required,max=255"`
	Username        string          `json:"username" validate:"required,min=3,max=50"`
	Email           string          `json:"email" validate:"required,email"`
	PhoneNumber     string          `json:"phone_number" validate:"required,max=32"`
	Password        string          `json:"password" validate:"required,min=6"`
	ConfirmPassword string          `json:"confirm_password" validate:"required"`
	Captcha         string          `json:"captcha"`
	EmailOTP        string          `json:"email_otp"`
	PhoneOTP        string          `json:"phone_otp"`
	Address         *AddressRequest `json:"address"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	Captcha    string `json:"captcha"`
	OTP        string `json:"otp"`
}

type OTPRequest struct {
	Channel     string `json:"channel" validate:"required,oneof=email phone"`
	Destination string `json:"destination" validate:"required"`
}

func NewUserHandler(commands UserCommander, queries UserQuerier) *UserHandler {
	return &UserHandler{commands: commands, queries: queries}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	cmd := cqrs.RegisterUserCommand{
		Name:            req.Name,
		Username:        req.Username,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Captcha:         req.Captcha,
		EmailOTP:        req.EmailOTP,
		PhoneOTP:        req.PhoneOTP,
	}
	if req.Address != nil {
		in := req.Address.toInput()
		cmd.Address = &in
	}

	user, err := h.commands.Register(c.Request.Context(), cmd)
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.queries.Login(c.Request.Context(), cqrs.LoginCommand{
		Identifier: req.Identifier,
		Password:   req.Password,
		Captcha:    req.Captcha,
		OTP:        req.OTP,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *UserHandler) IssueOTP(c *gin.Context) {
	var req OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	if err := h.commands.IssueOTP(c.Request.Context(), cqrs.IssueOTPCommand{
		Channel:     req.Channel,
		Destination: req.Destination,
	}); err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"detail": "OTP sent"})
}

// Me returns the user behind the bearer token.
func (h *UserHandler) Me(c *gin.Context) {
	email, ok := middleware.GetEmail(c)
	if !ok {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Authorization required")
		return
	}

	view, err := h.queries.CurrentUser(c.Request.Context(), cqrs.GetCurrentUserQuery{Email: email})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	// the email now belongs to a different account than the token was issued for
	if userID, ok := middleware.GetUserID(c); !ok || userID != view.ID {
		middleware.RespondWithError(c, http.StatusUnauthorized, "Invalid token")
		return
	}

	c.JSON(http.StatusOK, view)
}
