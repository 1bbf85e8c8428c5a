package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mapexe/storefront-backend/internal/models"
)

// MemoryStore keeps every entity in process memory. State is lost on restart
// and is not shared between processes, so it only suits tests, local
// development and single-instance deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	opts options

	accounts     map[uint]*models.Account
	items        map[uint]*models.CatalogItem
	orders       map[uint]*models.Order
	testimonials map[uint]*models.Testimonial

	accountSeq     atomic.Uint64
	itemSeq        atomic.Uint64
	orderSeq       atomic.Uint64
	testimonialSeq atomic.Uint64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:         newOptions(opts),
		accounts:     make(map[uint]*models.Account),
		items:        make(map[uint]*models.CatalogItem),
		orders:       make(map[uint]*models.Order),
		testimonials: make(map[uint]*models.Testimonial),
	}
}

func (s *MemoryStore) now() time.Time {
	return s.opts.now().UTC().Truncate(time.Microsecond)
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Accounts

func (s *MemoryStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.findUsername(username, 0); a != nil {
		out := *a
		return &out, nil
	}
	return nil, nil
}

// findUsername returns the account holding username, ignoring case and the
// account with id skip. Callers hold s.mu.
func (s *MemoryStore) findUsername(username string, skip uint) *models.Account {
	for id, a := range s.accounts {
		if id != skip && strings.EqualFold(a.Username, username) {
			return a
		}
	}
	return nil
}

func (s *MemoryStore) emailTaken(email string, skip uint) bool {
	for id, a := range s.accounts {
		if id != skip && a.Email == email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := in.Email
	if email == "" {
		email = s.opts.defaultEmail(in.Username)
	}
	if s.findUsername(in.Username, 0) != nil || s.emailTaken(email, 0) {
		return nil, ErrConflict
	}

	a := &models.Account{
		ID:        uint(s.accountSeq.Add(1)),
		Username:  in.Username,
		Email:     email,
		Password:  in.Password,
		IsAdmin:   in.IsAdmin,
		CreatedAt: s.now(),
	}
	s.accounts[a.ID] = a

	out := *a
	return &out, nil
}

func (s *MemoryStore) UpdateAccount(ctx context.Context, id uint, patch models.AccountPatch) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}

	next := *current
	if patch.Username != nil {
		if s.findUsername(*patch.Username, id) != nil {
			return nil, ErrConflict
		}
		next.Username = *patch.Username
	}
	if patch.Email != nil {
		if s.emailTaken(*patch.Email, id) {
			return nil, ErrConflict
		}
		next.Email = *patch.Email
	}
	if patch.Password != nil {
		next.Password = *patch.Password
	}
	if patch.IsAdmin != nil {
		next.IsAdmin = *patch.IsAdmin
	}
	s.accounts[id] = &next

	out := next
	return &out, nil
}

func (s *MemoryStore) DeleteAccount(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return false, nil
	}
	delete(s.accounts, id)
	return true, nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Catalog items

func (s *MemoryStore) GetCatalogItem(ctx context.Context, id uint) (*models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	out := item.Clone()
	return &out, nil
}

func (s *MemoryStore) CreateCatalogItem(ctx context.Context, in models.CatalogItemInput) (*models.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &models.CatalogItem{
		ID:          uint(s.itemSeq.Add(1)),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Type:        in.Type,
		Features:    models.StringList(in.Features).Clone(),
		Images:      models.StringList(in.Images).Clone(),
		CreatedAt:   s.now(),
		CreatedBy:   in.CreatedBy,
	}
	s.items[item.ID] = item

	out := item.Clone()
	return &out, nil
}

func (s *MemoryStore) UpdateCatalogItem(ctx context.Context, id uint, patch models.CatalogItemPatch) (*models.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[id]
	if !ok {
		return nil, nil
	}

	next := current.Clone()
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Price != nil {
		next.Price = *patch.Price
	}
	if patch.Type != nil {
		next.Type = *patch.Type
	}
	if patch.Features != nil {
		next.Features = models.StringList(patch.Features).Clone()
	}
	if patch.Images != nil {
		next.Images = models.StringList(patch.Images).Clone()
	}
	s.items[id] = &next

	out := next.Clone()
	return &out, nil
}

func (s *MemoryStore) DeleteCatalogItem(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func (s *MemoryStore) ListCatalogItems(ctx context.Context, itemType *models.CatalogItemType) ([]models.CatalogItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.CatalogItem, 0, len(s.items))
	for _, item := range s.items {
		if itemType != nil && item.Type != *itemType {
			continue
		}
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Orders

func (s *MemoryStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	out := *o
	return &out, nil
}

func (s *MemoryStore) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := in.Status
	if status == "" {
		status = models.OrderStatusPending
	}

	o := &models.Order{
		ID:              uint(s.orderSeq.Add(1)),
		DiscordUsername: in.DiscordUsername,
		DiscordID:       in.DiscordID,
		ProductID:       in.ProductID,
		Price:           in.Price,
		Status:          status,
		CreatedAt:       s.now(),
	}
	s.orders[o.ID] = o

	out := *o
	return &out, nil
}

func (s *MemoryStore) UpdateOrder(ctx context.Context, id uint, patch models.OrderPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	if patch.From != nil && current.Status != *patch.From {
		return nil, ErrStaleStatus
	}

	next := *current
	if patch.Status != nil {
		next.Status = *patch.Status
	}
	s.orders[id] = &next

	out := next
	return &out, nil
}

func (s *MemoryStore) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[id]; !ok {
		return false, nil
	}
	delete(s.orders, id)
	return true, nil
}

func (s *MemoryStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Testimonials

func (s *MemoryStore) GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.testimonials[id]
	if !ok {
		return nil, nil
	}
	out := *t
	return &out, nil
}

func (s *MemoryStore) CreateTestimonial(ctx context.Context, in models.TestimonialInput) (*models.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &models.Testimonial{
		ID:       uint(s.testimonialSeq.Add(1)),
		Name:     in.Name,
		Role:     in.Role,
		Rating:   in.Rating,
		Content:  in.Content,
		Verified: false,
	}
	s.testimonials[t.ID] = t

	out := *t
	return &out, nil
}

func (s *MemoryStore) UpdateTestimonial(ctx context.Context, id uint, patch models.TestimonialPatch) (*models.Testimonial, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.testimonials[id]
	if !ok {
		return nil, nil
	}

	next := *current
	if patch.Name != nil {
		next.Name = *patch.Name
	}
	if patch.Role != nil {
		next.Role = *patch.Role
	}
	if patch.Rating != nil {
		next.Rating = *patch.Rating
	}
	if patch.Content != nil {
		next.Content = *patch.Content
	}
	if patch.Verified != nil {
		next.Verified = *patch.Verified
	}
	s.testimonials[id] = &next

	out := next
	return &out, nil
}

func (s *MemoryStore) DeleteTestimonial(ctx context.Context, id uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.testimonials[id]; !ok {
		return false, nil
	}
	delete(s.testimonials, id)
	return true, nil
}

func (s *MemoryStore) ListTestimonials(ctx context.Context, verified *bool) ([]models.Testimonial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Testimonial, 0, len(s.testimonials))
	for _, t := range s.testimonials {
		if verified != nil && t.Verified != *verified {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
