package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
)

type DashboardService struct {
	store  storage.Store
	policy *access.Policy
}

type DashboardStats struct {
	Items        ItemStats        `json:"items"`
	Orders       OrderStats       `json:"orders"`
	Accounts     AccountStats     `json:"accounts"`
	Testimonials TestimonialStats `json:"testimonials"`
}

type ItemStats struct {
	Total   int `json:"total"`
	Maps    int `json:"maps"`
	Scripts int `json:"scripts"`
}

type OrderStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	// Revenue is the sum of completed order prices.
	Revenue decimal.Decimal `json:"revenue"`
}

type AccountStats struct {
	Total  int `json:"total"`
	Admins int `json:"admins"`
}

type TestimonialStats struct {
	Total    int `json:"total"`
	Verified int `json:"verified"`
}

func NewDashboardService(store storage.Store, policy *access.Policy) *DashboardService {
	return &DashboardService{
		store:  store,
		policy: policy,
	}
}

func (s *DashboardService) GetStats(ctx context.Context, principal *access.Principal) (*DashboardStats, error) {
	if err := s.policy.Require(principal, access.ResourceStats, access.ActionRead); err != nil {
		return nil, err
	}

	stats := &DashboardStats{}
	stats.Orders.Revenue = decimal.Zero

	items, err := s.store.ListCatalogItems(ctx, nil)
	if err != nil {
		return nil, storeError("list catalog items", err)
	}
	stats.Items.Total = len(items)
	for _, item := range items {
		switch item.Type {
		case models.CatalogItemTypeMap:
			stats.Items.Maps++
		case models.CatalogItemTypeScript:
			stats.Items.Scripts++
		}
	}

	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, storeError("list orders", err)
	}
	stats.Orders.Total = len(orders)
	for _, order := range orders {
		switch order.Status {
		case models.OrderStatusPending:
			stats.Orders.Pending++
		case models.OrderStatusCompleted:
			stats.Orders.Completed++
			stats.Orders.Revenue = stats.Orders.Revenue.Add(order.Price)
		case models.OrderStatusCancelled:
			stats.Orders.Cancelled++
		}
	}

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	stats.Accounts.Total = len(accounts)
	for _, account := range accounts {
		if account.IsAdmin {
			stats.Accounts.Admins++
		}
	}

	testimonials, err := s.store.ListTestimonials(ctx, nil)
	if err != nil {
		return nil, storeError("list testimonials", err)
	}
	stats.Testimonials.Total = len(testimonials)
	for _, testimonial := range testimonials {
		if testimonial.Verified {
			stats.Testimonials.Verified++
		}
	}

	return stats, nil
}
