package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
	"github.com/mapexe/storefront-backend/internal/utils"
)

type CatalogService struct {
	store  storage.Store
	policy *access.Policy
}

type CreateItemRequest struct {
	Name        string                 `json:"name" validate:"required,max=255"`
	Description string                 `json:"description" validate:"required"`
	Price       decimal.Decimal        `json:"price" validate:"required,gte=0.01,price"`
	Type        models.CatalogItemType `json:"type" validate:"required,item_type"`
	Features    []string               `json:"features" validate:"required,min=1,dive,required"`
	Images      []string               `json:"images" validate:"required,min=1,dive,url"`
}

// UpdateItemRequest is a partial update. Fields that are absent from the
// body stay untouched; id, createdAt and createdBy cannot be changed.
type UpdateItemRequest struct {
	Name        *string                 `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Description *string                 `json:"description,omitempty" validate:"omitnil,min=1"`
	Price       *decimal.Decimal        `json:"price,omitempty" validate:"omitnil,gte=0.01,price"`
	Type        *models.CatalogItemType `json:"type,omitempty" validate:"omitnil,item_type"`
	Features    []string                `json:"features,omitempty" validate:"omitnil,min=1,dive,required"`
	Images      []string                `json:"images,omitempty" validate:"omitnil,min=1,dive,url"`
}

func NewCatalogService(store storage.Store, policy *access.Policy) *CatalogService {
	return &CatalogService{
		store:  store,
		policy: policy,
	}
}

// ListItems returns all catalog items, optionally only those of itemType.
func (s *CatalogService) ListItems(ctx context.Context, itemType string) ([]models.CatalogItem, error) {
	var filter *models.CatalogItemType
	if itemType != "" {
		t := models.CatalogItemType(itemType)
		if !t.Valid() {
			return nil, apperr.Validation([]utils.ValidationError{
				utils.NewValidationError("type", "item_type", "Type must be one of: map, script"),
			})
		}
		filter = &t
	}

	items, err := s.store.ListCatalogItems(ctx, filter)
	if err != nil {
		return nil, storeError("list catalog items", err)
	}
	return items, nil
}

func (s *CatalogService) GetItem(ctx context.Context, id uint) (*models.CatalogItem, error) {
	item, err := s.store.GetCatalogItem(ctx, id)
	if err != nil {
		return nil, storeError("get catalog item", err)
	}
	if item == nil {
		return nil, apperr.NotFound("item")
	}
	return item, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, principal *access.Principal, req *CreateItemRequest) (*models.CatalogItem, error) {
	if err := s.policy.Require(principal, access.ResourceItems, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	item, err := s.store.CreateCatalogItem(ctx, models.CatalogItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Type:        req.Type,
		Features:    req.Features,
		Images:      req.Images,
		CreatedBy:   principal.AccountID,
	})
	if err != nil {
		return nil, storeError("create catalog item", err)
	}
	return item, nil
}

// UpdateItem applies a partial update. Only the item's creator or an admin
// may change it.
func (s *CatalogService) UpdateItem(ctx context.Context, principal *access.Principal, id uint, req *UpdateItemRequest) (*models.CatalogItem, error) {
	if !principal.Authenticated() {
		return nil, apperr.Unauthenticated()
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.RequireOwnerOrAdmin(principal, item.CreatedBy, access.ResourceItems, access.ActionUpdate, access.ActionUpdateOwn); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateCatalogItem(ctx, id, models.CatalogItemPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Type:        req.Type,
		Features:    req.Features,
		Images:      req.Images,
	})
	if err != nil {
		return nil, storeError("update catalog item", err)
	}
	if updated == nil {
		// Deleted between the ownership check and the update.
		return nil, apperr.NotFound("item")
	}
	return updated, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, principal *access.Principal, id uint) error {
	if !principal.Authenticated() {
		return apperr.Unauthenticated()
	}

	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if err := s.policy.RequireOwnerOrAdmin(principal, item.CreatedBy, access.ResourceItems, access.ActionDelete, access.ActionDeleteOwn); err != nil {
		return err
	}

	removed, err := s.store.DeleteCatalogItem(ctx, id)
	if err != nil {
		return storeError("delete catalog item", err)
	}
	if !removed {
		return apperr.NotFound("item")
	}
	return nil
}
