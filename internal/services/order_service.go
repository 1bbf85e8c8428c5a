package services

import (
	"context"
	"errors"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
)

type OrderService struct {
	store  storage.Store
	policy *access.Policy
}

// CreateOrderRequest is the checkout form. Any price sent by the client is
// ignored; the order copies the item's current price.
type CreateOrderRequest struct {
	DiscordUsername string `json:"discordUsername" validate:"required,min=2,max=37"`
	DiscordID       string `json:"discordId" validate:"required,discord_id"`
	ProductID       uint   `json:"productId" validate:"required,gt=0"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,order_status"`
}

func NewOrderService(store storage.Store, policy *access.Policy) *OrderService {
	return &OrderService{
		store:  store,
		policy: policy,
	}
}

func (s *OrderService) CreateOrder(ctx context.Context, principal *access.Principal, req *CreateOrderRequest) (*models.Order, error) {
	if err := s.policy.Require(principal, access.ResourceOrders, access.ActionCreate); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	item, err := s.store.GetCatalogItem(ctx, req.ProductID)
	if err != nil {
		return nil, storeError("get catalog item", err)
	}
	if item == nil {
		return nil, apperr.NotFound("item")
	}

	order, err := s.store.CreateOrder(ctx, models.OrderInput{
		DiscordUsername: req.DiscordUsername,
		DiscordID:       req.DiscordID,
		ProductID:       item.ID,
		Price:           item.Price,
		Status:          models.OrderStatusPending,
	})
	if err != nil {
		return nil, storeError("create order", err)
	}
	return order, nil
}

// ListOrders returns every order, newest first.
func (s *OrderService) ListOrders(ctx context.Context, principal *access.Principal) ([]models.Order, error) {
	if err := s.policy.Require(principal, access.ResourceOrders, access.ActionRead); err != nil {
		return nil, err
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, principal *access.Principal, id uint) (*models.Order, error) {
	if err := s.policy.Require(principal, access.ResourceOrders, access.ActionRead); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeError("get order", err)
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}
	return order, nil
}

// UpdateStatus moves an order along pending -> completed|cancelled.
// Completed and cancelled orders are final.
func (s *OrderService) UpdateStatus(ctx context.Context, principal *access.Principal, id uint, req *UpdateOrderStatusRequest) (*models.Order, error) {
	if err := s.policy.Require(principal, access.ResourceOrders, access.ActionUpdate); err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeError("get order", err)
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}

	if !order.Status.CanTransitionTo(req.Status) {
		return nil, apperr.InvalidTransition(string(order.Status), string(req.Status))
	}
	if order.Status == req.Status {
		return order, nil
	}

	status, from := req.Status, order.Status
	updated, err := s.store.UpdateOrder(ctx, id, models.OrderPatch{Status: &status, From: &from})
	if errors.Is(err, storage.ErrStaleStatus) {
		return s.settledStatus(ctx, id, req.Status)
	}
	if err != nil {
		return nil, storeError("update order", err)
	}
	if updated == nil {
		return nil, apperr.NotFound("order")
	}
	return updated, nil
}

// settledStatus reports the outcome for a request whose transition lost a
// race: another request moved the order out of its read status first, so
// the order is now terminal.
func (s *OrderService) settledStatus(ctx context.Context, id uint, want models.OrderStatus) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, storeError("get order", err)
	}
	if order == nil {
		return nil, apperr.NotFound("order")
	}
	if order.Status == want {
		return order, nil
	}
	return nil, apperr.InvalidTransition(string(order.Status), string(want))
}
