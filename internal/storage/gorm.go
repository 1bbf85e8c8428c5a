package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mapexe/storefront-backend/internal/models"
)

// GormStore persists entities through gorm. Identities come from the
// database's auto-increment columns.
type GormStore struct {
	db   *gorm.DB
	opts options
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	return &GormStore{db: db, opts: newOptions(opts)}
}

// AutoMigrate creates or updates the four entity tables and their indexes.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Account{},
		&models.CatalogItem{},
		&models.Order{},
		&models.Testimonial{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	indexes := []string{
		// Usernames are unique regardless of case.
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_username_lower ON accounts (lower(username))",
		"CREATE INDEX IF NOT EXISTS idx_catalog_items_type ON catalog_items (type)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders (created_at DESC, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_testimonials_verified ON testimonials (verified)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

func (s *GormStore) now() time.Time {
	return s.opts.now().UTC().Truncate(time.Microsecond)
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return backingErr("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return backingErr("ping", err)
	}
	return nil
}

func backingErr(op string, err error) error {
	return &BackingStoreError{Op: op, Err: err}
}

// classify maps a write error to ErrConflict, ErrStaleStatus or a
// BackingStoreError.
func classify(op string, err error) error {
	if errors.Is(err, ErrStaleStatus) {
		return ErrStaleStatus
	}
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return backingErr(op, err)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// take loads one row into dest. A missing row reports found=false.
func take(tx *gorm.DB, dest interface{}, query string, args ...interface{}) (bool, error) {
	err := tx.Where(query, args...).Take(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// updateByID runs load, merge and reload in one transaction. A missing row
// reports found=false and changes nothing. Guards are added to the UPDATE's
// WHERE clause; if any of them no longer holds the transaction is rolled
// back with ErrStaleStatus.
func (s *GormStore) updateByID(ctx context.Context, op string, id uint, dest interface{}, updates map[string]interface{}, guards ...clause.Expression) (bool, error) {
	found := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := take(tx, dest, "id = ?", id)
		if err != nil || !ok {
			return err
		}
		found = true

		if len(updates) > 0 {
			query := tx.Model(dest).Where("id = ?", id)
			for _, g := range guards {
				query = query.Where(g)
			}
			res := query.Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if len(guards) > 0 && res.RowsAffected == 0 {
				return ErrStaleStatus
			}
		}
		_, err = take(tx, dest, "id = ?", id)
		return err
	})
	if err != nil {
		return false, classify(op, err)
	}
	return found, nil
}

func (s *GormStore) deleteByID(ctx context.Context, op string, model interface{}, id uint) (bool, error) {
	res := s.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return false, backingErr(op, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Accounts

func (s *GormStore) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var a models.Account
	ok, err := take(s.db.WithContext(ctx), &a, "id = ?", id)
	if err != nil {
		return nil, backingErr("get account", err)
	}
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *GormStore) GetAccountByUsername(ctx context.Context, username string) (*models.Account, error) {
	var a models.Account
	ok, err := take(s.db.WithContext(ctx), &a, "lower(username) = lower(?)", username)
	if err != nil {
		return nil, backingErr("get account by username", err)
	}
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *GormStore) CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error) {
	a := &models.Account{
		Username:  in.Username,
		Email:     in.Email,
		Password:  in.Password,
		IsAdmin:   in.IsAdmin,
		CreatedAt: s.now(),
	}
	if a.Email == "" {
		a.Email = s.opts.defaultEmail(in.Username)
	}

	if err := s.db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, classify("create account", err)
	}
	return a, nil
}

func (s *GormStore) UpdateAccount(ctx context.Context, id uint, patch models.AccountPatch) (*models.Account, error) {
	updates := map[string]interface{}{}
	if patch.Username != nil {
		updates["username"] = *patch.Username
	}
	if patch.Email != nil {
		updates["email"] = *patch.Email
	}
	if patch.Password != nil {
		updates["password"] = *patch.Password
	}
	if patch.IsAdmin != nil {
		updates["is_admin"] = *patch.IsAdmin
	}

	var a models.Account
	found, err := s.updateByID(ctx, "update account", id, &a, updates)
	if err != nil || !found {
		return nil, err
	}
	return &a, nil
}

func (s *GormStore) DeleteAccount(ctx context.Context, id uint) (bool, error) {
	return s.deleteByID(ctx, "delete account", &models.Account{}, id)
}

func (s *GormStore) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&accounts).Error; err != nil {
		return nil, backingErr("list accounts", err)
	}
	return accounts, nil
}

// Catalog items

func (s *GormStore) GetCatalogItem(ctx context.Context, id uint) (*models.CatalogItem, error) {
	var item models.CatalogItem
	ok, err := take(s.db.WithContext(ctx), &item, "id = ?", id)
	if err != nil {
		return nil, backingErr("get catalog item", err)
	}
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (s *GormStore) CreateCatalogItem(ctx context.Context, in models.CatalogItemInput) (*models.CatalogItem, error) {
	item := &models.CatalogItem{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Type:        in.Type,
		Features:    models.StringList(in.Features).Clone(),
		Images:      models.StringList(in.Images).Clone(),
		CreatedAt:   s.now(),
		CreatedBy:   in.CreatedBy,
	}
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, classify("create catalog item", err)
	}
	return item, nil
}

func (s *GormStore) UpdateCatalogItem(ctx context.Context, id uint, patch models.CatalogItemPatch) (*models.CatalogItem, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Type != nil {
		updates["type"] = *patch.Type
	}
	if patch.Features != nil {
		updates["features"] = models.StringList(patch.Features)
	}
	if patch.Images != nil {
		updates["images"] = models.StringList(patch.Images)
	}

	var item models.CatalogItem
	found, err := s.updateByID(ctx, "update catalog item", id, &item, updates)
	if err != nil || !found {
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) DeleteCatalogItem(ctx context.Context, id uint) (bool, error) {
	return s.deleteByID(ctx, "delete catalog item", &models.CatalogItem{}, id)
}

func (s *GormStore) ListCatalogItems(ctx context.Context, itemType *models.CatalogItemType) ([]models.CatalogItem, error) {
	query := s.db.WithContext(ctx).Order("id ASC")
	if itemType != nil {
		query = query.Where("type = ?", *itemType)
	}

	var items []models.CatalogItem
	if err := query.Find(&items).Error; err != nil {
		return nil, backingErr("list catalog items", err)
	}
	return items, nil
}

// Orders

func (s *GormStore) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	ok, err := take(s.db.WithContext(ctx), &o, "id = ?", id)
	if err != nil {
		return nil, backingErr("get order", err)
	}
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (s *GormStore) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	o := &models.Order{
		DiscordUsername: in.DiscordUsername,
		DiscordID:       in.DiscordID,
		ProductID:       in.ProductID,
		Price:           in.Price,
		Status:          in.Status,
		CreatedAt:       s.now(),
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, classify("create order", err)
	}
	return o, nil
}

func (s *GormStore) UpdateOrder(ctx context.Context, id uint, patch models.OrderPatch) (*models.Order, error) {
	updates := map[string]interface{}{}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}

	var guards []clause.Expression
	if patch.From != nil {
		guards = append(guards, clause.Eq{Column: clause.Column{Name: "status"}, Value: *patch.From})
	}

	var o models.Order
	found, err := s.updateByID(ctx, "update order", id, &o, updates, guards...)
	if err != nil || !found {
		return nil, err
	}
	return &o, nil
}

func (s *GormStore) DeleteOrder(ctx context.Context, id uint) (bool, error) {
	return s.deleteByID(ctx, "delete order", &models.Order{}, id)
}

func (s *GormStore) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, backingErr("list orders", err)
	}
	return orders, nil
}

// Testimonials

func (s *GormStore) GetTestimonial(ctx context.Context, id uint) (*models.Testimonial, error) {
	var t models.Testimonial
	ok, err := take(s.db.WithContext(ctx), &t, "id = ?", id)
	if err != nil {
		return nil, backingErr("get testimonial", err)
	}
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *GormStore) CreateTestimonial(ctx context.Context, in models.TestimonialInput) (*models.Testimonial, error) {
	t := &models.Testimonial{
		Name:     in.Name,
		Role:     in.Role,
		Rating:   in.Rating,
		Content:  in.Content,
		Verified: false,
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, classify("create testimonial", err)
	}
	return t, nil
}

func (s *GormStore) UpdateTestimonial(ctx context.Context, id uint, patch models.TestimonialPatch) (*models.Testimonial, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}
	if patch.Rating != nil {
		updates["rating"] = *patch.Rating
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Verified != nil {
		updates["verified"] = *patch.Verified
	}

	var t models.Testimonial
	found, err := s.updateByID(ctx, "update testimonial", id, &t, updates)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func (s *GormStore) DeleteTestimonial(ctx context.Context, id uint) (bool, error) {
	return s.deleteByID(ctx, "delete testimonial", &models.Testimonial{}, id)
}

func (s *GormStore) ListTestimonials(ctx context.Context, verified *bool) ([]models.Testimonial, error) {
	query := s.db.WithContext(ctx).Order("id ASC")
	if verified != nil {
		query = query.Where("verified = ?", *verified)
	}

	var testimonials []models.Testimonial
	if err := query.Find(&testimonials).Error; err != nil {
		return nil, backingErr("list testimonials", err)
	}
	return testimonials, nil
}
