// Package storage holds the persistence contract for accounts, catalog items,
// orders and testimonials, with a volatile in-memory implementation and a
// durable gorm-backed one.
//
// Lookups of a missing id are not errors: Get and Update return (nil, nil) and
// Delete returns false. Errors are reserved for uniqueness conflicts and for
// failures of the backing store, which are returned as they happen and never
// retried.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mapexe/storefront-backend/internal/models"
)

const DefaultEmailDomain = "mapexe.com"

var (
	// ErrConflict is returned when a create or update would break a
	// uniqueness rule (username or email).
	ErrConflict = errors.New("storage: unique constraint violated")

	// ErrStaleStatus is returned when an order patch carries a From status
	// and the stored order has already left it. Nothing is written.
	ErrStaleStatus = errors.New("storage: order status changed concurrently")

	// ErrBackingStore matches every *BackingStoreError via errors.Is.
	ErrBackingStore = errors.New("storage: backing store failure")
)

// BackingStoreError wraps a connectivity or transaction failure of the
// durable store.
type BackingStoreError struct {
	Op  string
	Err error
}

func (e *BackingStoreError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *BackingStoreError) Unwrap() error { return e.Err }

func (e *BackingStoreError) Is(target error) bool { return target == ErrBackingStore }

type Store interface {
	GetAccount(ctx context.Context, id uint) (*models.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error)
	UpdateAccount(ctx context.Context, id uint, patch models.AccountPatch) (*models.Account, error)
	DeleteAccount(ctx context.Context, id uint) (bool, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)

	GetCatalogItem(ctx context.Context, id uint) (*models.CatalogItem, error)
	CreateCatalogItem(ctx context.Context, in models.CatalogItemInput) (*models.CatalogItem, error)
	UpdateCatalogItem(ctx context.Context, id uint, patch models.CatalogItemPatch) (*models.CatalogItem, error)
	DeleteCatalogItem(ctx context.Context, id uint) (bool, error)
	ListCatalogItems(ctx context.Context, itemType *models.CatalogItemType) ([]models.CatalogItem, error)

	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	UpdateOrder(ctx context.Context, id uint, patch models.OrderPatch) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) (bool, error)
	// ListOrders returns orders newest first; equal timestamps fall back to
	// descending id.
	ListOrders(ctx context.Context) ([]models.Order, error)

	GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error)
	CreateTestimonial(ctx context.Context, in models.TestimonialInput) (*models.Testimonial, error)
	UpdateTestimonial(ctx context.Context, id uint, patch models.TestimonialPatch) (*models.Testimonial, error)
	DeleteTestimonial(ctx context.Context, id uint) (bool, error)
	ListTestimonials(ctx context.Context, verified *bool) ([]models.Testimonial, error)

	// Ping reports whether the backing store is reachable.
	Ping(ctx context.Context) error
}

type options struct {
	now         func() time.Time
	emailDomain string
}

type Option func(*options)

// WithClock overrides the source of createdAt timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithEmailDomain sets the domain used to derive a missing account email.
func WithEmailDomain(domain string) Option {
	return func(o *options) {
		if domain != "" {
			o.emailDomain = domain
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:         time.Now,
		emailDomain: DefaultEmailDomain,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) defaultEmail(username string) string {
	return username + "@" + o.emailDomain
}
