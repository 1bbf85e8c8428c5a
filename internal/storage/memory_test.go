package storage

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapexe/storefront-backend/internal/models"
)

func TestMemoryStoreInstancesAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := NewMemoryStore()
	b := NewMemoryStore()

	_, err := a.CreateAccount(ctx, models.AccountInput{Username: "solo", Password: "x"})
	require.NoError(t, err)

	accounts, err := b.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestMemoryStoreOrdersWithEqualTimestampsFallBackToID(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore(WithClock(func() time.Time { return fixed }))

	for i := 0; i < 3; i++ {
		_, err := store.CreateOrder(ctx, models.OrderInput{
			DiscordUsername: "buyer#0001",
			DiscordID:       "123456789012345678",
			ProductID:       1,
			Price:           decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, []uint{3, 2, 1}, []uint{orders[0].ID, orders[1].ID, orders[2].ID})
}

func TestMemoryStoreEmailDomainOption(t *testing.T) {
	store := NewMemoryStore(WithEmailDomain("example.org"))

	account, err := store.CreateAccount(context.Background(), models.AccountInput{Username: "ops", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, "ops@example.org", account.Email)
}

func TestMemoryStoreConflictDoesNotConsumeID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first, err := store.CreateAccount(ctx, models.AccountInput{Username: "dup", Password: "x"})
	require.NoError(t, err)

	_, err = store.CreateAccount(ctx, models.AccountInput{Username: "DUP", Password: "x"})
	require.ErrorIs(t, err, ErrConflict)

	next, err := store.CreateAccount(ctx, models.AccountInput{Username: "other", Password: "x"})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, next.ID)
}
