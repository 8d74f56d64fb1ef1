package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/middleware"
	"github.com/storefront/services/shared/models"
)

type AddressCommander interface {
	AddAddress(context.Context, cqrs.AddAddressCommand) (*models.AddressView, error)
	UpdateAddress(context.Context, cqrs.UpdateAddressCommand) (*models.AddressView, error)
	DeleteAddress(context.Context, cqrs.DeleteAddressCommand) error
}

type AddressQuerier interface {
	ListAddresses(context.Context, cqrs.ListAddressesQuery) ([]*models.AddressView, error)
	GetAddress(context.Context, cqrs.GetAddressQuery) (*models.AddressView, error)
}

type AddressHandler struct {
	commands AddressCommander
	queries  AddressQuerier
}

type AddressRequest struct {
	AddressLine string   `json:"address_line" validate:"required"`
	City        string   `json:"city" validate:"max=100"`
	State       string   `json:"state" validate:"max=100"`
	Pincode     string   `json:"pincode" validate:"max=16"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	PlaceID     string   `json:"place_id"`
	CreatedBy   *uint    `json:"created_by"`
}

func (r AddressRequest) toInput() cqrs.AddressInput {
	return cqrs.AddressInput{
		AddressLine: r.AddressLine,
		City:        r.City,
		State:       r.State,
		Pincode:     r.Pincode,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		PlaceID:     r.PlaceID,
		CreatedBy:   r.CreatedBy,
	}
}

// AddressPatchRequest lists every field a client may change. Keys outside
// this set are rejected.
type AddressPatchRequest struct {
	AddressLine *string  `json:"address_line" validate:"omitempty,min=1"`
	City        *string  `json:"city" validate:"omitempty,max=100"`
	State       *string  `json:"state" validate:"omitempty,max=100"`
	Pincode     *string  `json:"pincode" validate:"omitempty,max=16"`
	Latitude    *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude   *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	PlaceID     *string  `json:"place_id"`
	UpdatedBy   *uint    `json:"updated_by"`
}

func NewAddressHandler(commands AddressCommander, queries AddressQuerier) *AddressHandler {
	return &AddressHandler{commands: commands, queries: queries}
}

func (h *AddressHandler) AddAddress(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.AddAddress(c.Request.Context(), cqrs.AddAddressCommand{
		UserID:  userID,
		Address: req.toInput(),
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID, ok := parseID(c, "user_id")
	if !ok {
		return
	}

	views, err := h.queries.ListAddresses(c.Request.Context(), cqrs.ListAddressesQuery{UserID: userID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, views)
}

func (h *AddressHandler) GetAddress(c *gin.Context) {
	addressID, ok := parseID(c, "address_id")
	if !ok {
		return
	}

	view, err := h.queries.GetAddress(c.Request.Context(), cqrs.GetAddressQuery{AddressID: addressID})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	addressID, ok := parseID(c, "address_id")
	if !ok {
		return
	}

	var req AddressPatchRequest
	if err := decodeStrict(c.Request.Body, &req); err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	view, err := h.commands.UpdateAddress(c.Request.Context(), cqrs.UpdateAddressCommand{
		AddressID: addressID,
		Patch: cqrs.AddressPatch{
			AddressLine: req.AddressLine,
			City:        req.City,
			State:       req.State,
			Pincode:     req.Pincode,
			Latitude:    req.Latitude,
			Longitude:   req.Longitude,
			PlaceID:     req.PlaceID,
			UpdatedBy:   req.UpdatedBy,
		},
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	addressID, ok := parseID(c, "address_id")
	if !ok {
		return
	}

	if err := h.commands.DeleteAddress(c.Request.Context(), cqrs.DeleteAddressCommand{AddressID: addressID}); err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"detail": "Address deleted successfully"})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid "+strings.ReplaceAll(param, "_", " "))
		return 0, false
	}
	return uint(id), true
}

// decodeStrict decodes a JSON object, rejecting keys dst does not declare.
func decodeStrict(body io.Reader, dst any) error {
	if body == nil || body == http.NoBody {
		return apperr.Validation("Invalid request body")
	}
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("Invalid request body")
		}
		if field, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
			return apperr.Validation("unknown field " + field)
		}
		return apperr.Validation("Invalid request body")
	}
	return nil
}
