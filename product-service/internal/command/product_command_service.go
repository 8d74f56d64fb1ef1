package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/storefront/services/product-service/internal/storage"
	"github.com/storefront/services/shared/apperr"
	"github.com/storefront/services/shared/cqrs"
	"github.com/storefront/services/shared/events"
	"github.com/storefront/services/shared/logging"
	"github.com/storefront/services/shared/models"
	"github.com/storefront/services/shared/utils"
)

type ProductStore interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	Update(ctx context.Context, id uint, cols map[string]any) error
}

// ListInvalidator drops cached listing pages after a write.
type ListInvalidator interface {
	Invalidate(ctx context.Context)
}

type EventPublisher interface {
	Publish(ctx context.Context, stream, eventType string, data any) error
}

// ProductCommandService creates, updates and soft-deletes catalog entries.
type ProductCommandService struct {
	products  ProductStore
	images    storage.ImageStore
	lists     ListInvalidator
	publisher EventPublisher
	log       logging.Logger
	now       func() time.Time
}

func NewProductCommandService(
	products ProductStore,
	images storage.ImageStore,
	lists ListInvalidator,
	publisher EventPublisher,
	log logging.Logger,
) *ProductCommandService {
	return &ProductCommandService{
		products:  products,
		images:    images,
		lists:     lists,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

// Save creates a product when cmd.ProductID is 0 and patches the existing
// one otherwise. It returns the product id.
func (s *ProductCommandService) Save(ctx context.Context, cmd cqrs.SaveProductCommand) (uint, error) {
	if cmd.Patch.Price != nil && *cmd.Patch.Price < 0 {
		return 0, apperr.Validation("price must not be negative")
	}
	if cmd.ProductID == 0 {
		return s.create(ctx, cmd)
	}
	return s.update(ctx, cmd)
}

func (s *ProductCommandService) create(ctx context.Context, cmd cqrs.SaveProductCommand) (uint, error) {
	p := cmd.Patch
	switch {
	case p.Name == nil || strings.TrimSpace(*p.Name) == "":
		return 0, apperr.Validation("name is required")
	case p.Description == nil:
		return 0, apperr.Validation("description is required")
	case p.Price == nil:
		return 0, apperr.Validation("price is required")
	case cmd.Image == nil || len(cmd.Image.Data) == 0:
		return 0, apperr.Validation("image is required")
	}

	now := s.now()
	filename, err := s.storeImage(ctx, now.UnixNano(), now, cmd.Image)
	if err != nil {
		return 0, err
	}

	actor := cmd.CurrentUserID
	product := &models.Product{
		Name:          *p.Name,
		Description:   *p.Description,
		Price:         *p.Price,
		ImageFilename: filename,
		ImageBlob:     cmd.Image.Data,
		IsActive:      1,
		Audit:         models.Audit{CreatedBy: &actor, CreatedDate: now.UTC()},
	}
	if p.Rating != nil {
		product.Rating = *p.Rating
	}
	if err := s.products.Create(ctx, product); err != nil {
		return 0, err
	}

	s.afterWrite(ctx, events.ProductCreated, product.ID, actor)
	s.log.Info(ctx, "product created", "product_id", product.ID, "image", filename)
	return product.ID, nil
}

func (s *ProductCommandService) update(ctx context.Context, cmd cqrs.SaveProductCommand) (uint, error) {
	if _, err := s.products.GetByID(ctx, cmd.ProductID); err != nil {
		return 0, err
	}

	now := s.now()
	cols := patchColumns(cmd.Patch)
	cols["updated_by"] = cmd.CurrentUserID
	cols["updated_date"] = now.UTC()

	if cmd.Image != nil && len(cmd.Image.Data) > 0 {
		filename, err := s.storeImage(ctx, int64(cmd.ProductID), now, cmd.Image)
		if err != nil {
			return 0, err
		}
		cols["image_filename"] = filename
		cols["image_blob"] = cmd.Image.Data
	}

	if err := s.products.Update(ctx, cmd.ProductID, cols); err != nil {
		return 0, err
	}

	s.afterWrite(ctx, events.ProductUpdated, cmd.ProductID, cmd.CurrentUserID)
	s.log.Info(ctx, "product updated", "product_id", cmd.ProductID)
	return cmd.ProductID, nil
}

// Delete marks the product inactive. The row and its image stay.
func (s *ProductCommandService) Delete(ctx context.Context, cmd cqrs.DeleteProductCommand) error {
	if _, err := s.products.GetByID(ctx, cmd.ProductID); err != nil {
		return err
	}

	err := s.products.Update(ctx, cmd.ProductID, map[string]any{
		"is_active":    0,
		"updated_by":   cmd.CurrentUserID,
		"updated_date": s.now().UTC(),
	})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, events.ProductDeleted, cmd.ProductID, cmd.CurrentUserID)
	s.log.Info(ctx, "product deleted", "product_id", cmd.ProductID)
	return nil
}

// storeImage saves the upload as {identifier}_{unix seconds}.{ext}.
func (s *ProductCommandService) storeImage(ctx context.Context, identifier int64, now time.Time, img *cqrs.ImageUpload) (string, error) {
	name := fmt.Sprintf("%d_%d.%s", identifier, now.Unix(), utils.FileExtension(img.Filename, "bin"))
	if err := s.images.Save(ctx, name, img.Data); err != nil {
		return "", apperr.Internal("failed to store image", err)
	}
	return name, nil
}

func (s *ProductCommandService) afterWrite(ctx context.Context, eventType string, productID, actor uint) {
	s.lists.Invalidate(ctx)
	if err := s.publisher.Publish(ctx, events.ProductEventsStream, eventType, events.ProductEvent{
		ProductID: productID,
		ActorID:   &actor,
	}); err != nil {
		s.log.Warn(ctx, "failed to publish product event", "type", eventType, "product_id", productID, "error", err)
	}
}

func patchColumns(p cqrs.ProductPatch) map[string]any {
	cols := map[string]any{}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Rating != nil {
		cols["rating"] = *p.Rating
	}
	return cols
}
