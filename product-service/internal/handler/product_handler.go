package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/middleware"
	"github.com/storefront/services/shared/models"
	"github.com/storefront/services/shared/utils"
)

type ProductCommander interface {
	Save(context.Context, cqrs.SaveProductCommand) (uint, error)
	Delete(context.Context, cqrs.DeleteProductCommand) error
}

type ProductQuerier interface {
	ListProducts(context.Context, cqrs.ListProductsQuery) (*models.ProductPage, error)
	GetProduct(context.Context, cqrs.GetProductQuery) (*models.ProductView, error)
}

type ProductHandler struct {
	commands      ProductCommander
	queries       ProductQuerier
	maxImageBytes int64
}

// SaveProductRequest is the multipart form of POST /product/save. A zero
// product_id creates a product.
type SaveProductRequest struct {
	ProductID     uint     `form:"product_id"`
	Name          *string  `form:"name" validate:"omitempty,max=255"`
	Description   *string  `form:"description"`
	Price         *float64 `form:"price" validate:"omitempty,gte=0"`
	Rating        *float64 `form:"rating" validate:"omitempty,gte=0,lte=5"`
	CurrentUserID *uint    `form:"current_user_id" validate:"required"`
}

type ListProductsRequest struct {
	Search          string `form:"search"`
	SortBy          string `form:"sort_by"`
	SortOrder       string `form:"sort_order"`
	Page            int    `form:"page"`
	PageSize        int    `form:"page_size"`
	IncludeInactive bool   `form:"include_inactive"`
}

type DeleteProductRequest struct {
	CurrentUserID *uint `form:"current_user_id" validate:"required"`
}

type ProductMessageResponse struct {
	Message   string `json:"message"`
	ProductID uint   `json:"product_id"`
}

func NewProductHandler(commands ProductCommander, queries ProductQuerier, maxImageBytes int64) *ProductHandler {
	return &ProductHandler{commands: commands, queries: queries, maxImageBytes: maxImageBytes}
}

func (h *ProductHandler) SaveProduct(c *gin.Context) {
	var req SaveProductRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid form data")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	image, ok := h.readImage(c)
	if !ok {
		return
	}

	id, err := h.commands.Save(c.Request.Context(), cqrs.SaveProductCommand{
		ProductID: req.ProductID,
		Patch: cqrs.ProductPatch{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
			Rating:      req.Rating,
		},
		CurrentUserID: *req.CurrentUserID,
		Image:         image,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	msg := "Product updated successfully"
	if req.ProductID == 0 {
		msg = "Product created successfully"
	}
	c.JSON(http.StatusOK, ProductMessageResponse{Message: msg, ProductID: id})
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	var req ListProductsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	page, err := h.queries.ListProducts(c.Request.Context(), cqrs.ListProductsQuery{
		Search:          req.Search,
		SortBy:          req.SortBy,
		SortOrder:       req.SortOrder,
		Page:            req.Page,
		PageSize:        req.PageSize,
		IncludeInactive: req.IncludeInactive,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	view, err := h.queries.GetProduct(c.Request.Context(), cqrs.GetProductQuery{ProductID: id})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseProductID(c)
	if !ok {
		return
	}

	var req DeleteProductRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	err := h.commands.Delete(c.Request.Context(), cqrs.DeleteProductCommand{
		ProductID:     id,
		CurrentUserID: *req.CurrentUserID,
	})
	if err != nil {
		middleware.RespondWithAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProductMessageResponse{Message: "Product deleted successfully", ProductID: id})
}

// readImage returns the optional "image" part, or nil when none was sent.
func (h *ProductHandler) readImage(c *gin.Context) (*cqrs.ImageUpload, bool) {
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid form data")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Unable to read image")
		return nil, false
	}
	defer f.Close()

	data, err := utils.ReadAllLimit(f, h.maxImageBytes)
	if errors.Is(err, utils.ErrTooLarge) {
		middleware.RespondWithError(c, http.StatusBadRequest, "Image exceeds "+strconv.FormatInt(h.maxImageBytes, 10)+" bytes")
		return nil, false
	}
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Unable to read image")
		return nil, false
	}
	return &cqrs.ImageUpload{Filename: header.Filename, Data: data}, true
}

func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || id == 0 {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid product id")
		return 0, false
	}
	return uint(id), true
}
