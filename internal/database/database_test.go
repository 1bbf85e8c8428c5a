package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
)

func TestSeedInitialDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	first, err := SeedInitialData(ctx, store, SeedOptions{})
	require.NoError(t, err)
	assert.True(t, first.AdminCreated)
	assert.Len(t, first.GeneratedPassword, generatedPasswordLength)
	assert.Equal(t, 3, first.ItemsCreated)
	assert.Equal(t, 3, first.TestimonialsAdded)

	admin, err := store.GetAccountByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin)
	assert.NoError(t, admin.CheckPassword(first.GeneratedPassword))

	second, err := SeedInitialData(ctx, store, SeedOptions{})
	require.NoError(t, err)
	assert.False(t, second.AdminCreated)
	assert.Empty(t, second.GeneratedPassword)
	assert.Zero(t, second.ItemsCreated)
	assert.Zero(t, second.TestimonialsAdded)

	items, err := store.ListCatalogItems(ctx, nil)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Battle Arena", items[0].Name)
	assert.Equal(t, "25.99", items[0].Price.StringFixed(2))
	assert.Equal(t, admin.ID, items[0].CreatedBy)

	scripts := models.CatalogItemTypeScript
	onlyScripts, err := store.ListCatalogItems(ctx, &scripts)
	require.NoError(t, err)
	assert.Len(t, onlyScripts, 1)

	verified := true
	testimonials, err := store.ListTestimonials(ctx, &verified)
	require.NoError(t, err)
	assert.Len(t, testimonials, 3)
}

func TestSeedUsesConfiguredPassword(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()

	result, err := SeedInitialData(ctx, store, SeedOptions{
		AdminUsername: "owner",
		AdminEmail:    "owner@example.com",
		AdminPassword: "correct-horse",
	})
	require.NoError(t, err)
	assert.Empty(t, result.GeneratedPassword)

	owner, err := store.GetAccountByUsername(ctx, "owner")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.Equal(t, "owner@example.com", owner.Email)
	assert.NoError(t, owner.CheckPassword("correct-horse"))
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			SQLitePath:  filepath.Join(t.TempDir(), "mapexe.db"),
			MaxLifetime: 300,
			LogLevel:    "silent",
		},
		Store: config.StoreConfig{EmailDomain: "example.com"},
	}

	store, closeStore, err := OpenStore(cfg)
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	require.NoError(t, store.Ping(ctx))

	_, err = SeedInitialData(ctx, store, SeedOptions{AdminPassword: "secret1"})
	require.NoError(t, err)

	admin, err := store.GetAccountByUsername(ctx, "ADMIN")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, "admin@example.com", admin.Email)
}

func TestOpenStoreSQLiteReportsDuplicatesAsConflict(t *testing.T) {
	store, closeStore, err := OpenStore(&config.Config{
		Database: config.DatabaseConfig{
			Driver:     "sqlite",
			SQLitePath: filepath.Join(t.TempDir(), "mapexe.db"),
			LogLevel:   "silent",
		},
	})
	require.NoError(t, err)
	defer closeStore()

	ctx := context.Background()
	_, err = store.CreateAccount(ctx, models.AccountInput{Username: "mapmaker", Password: "hash"})
	require.NoError(t, err)

	_, err = store.CreateAccount(ctx, models.AccountInput{Username: "MapMaker", Email: "other@example.com", Password: "hash"})
	assert.ErrorIs(t, err, storage.ErrConflict)
	assert.NotErrorIs(t, err, storage.ErrBackingStore)
}

func TestOpenStoreMemory(t *testing.T) {
	store, closeStore, err := OpenStore(&config.Config{Database: config.DatabaseConfig{Driver: "memory"}})
	require.NoError(t, err)
	defer closeStore()

	_, ok := store.(*storage.MemoryStore)
	assert.True(t, ok)
}

func TestInitializeRejectsMemoryDriver(t *testing.T) {
	_, err := Initialize(config.DatabaseConfig{Driver: "memory"})
	assert.Error(t, err)
}
