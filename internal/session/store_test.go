// internal/session/store_test.go
package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/session"
	"github.com/ammerola/kirana-be/test/helpers"
)

func TestStore_CreateAndGet(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	cart, err := store.Create(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cart.SessionID)
	assert.True(t, cart.IsEmpty())

	got, err := store.Get(ctx, cart.SessionID)
	require.NoError(t, err)
	assert.Equal(t, cart.SessionID, got.SessionID)

	_, err = store.Get(ctx, "no-such-session")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Save(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	cart, err := store.Create(ctx)
	require.NoError(t, err)

	cart.AddLine(domain.CartLine{
		ProductID: uuid.New(),
		Name:      "Basmati Rice 1kg",
		Qty:       decimal.NewFromInt(2),
		UnitPrice: decimal.NewFromInt(68),
	})
	require.NoError(t, store.Save(ctx, cart))

	got, err := store.Get(ctx, cart.SessionID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "Basmati Rice 1kg", got.Lines[0].Name)

	err = store.Save(ctx, &domain.Cart{SessionID: "expired"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	cart, err := store.Create(ctx)
	require.NoError(t, err)

	cart.AddLine(domain.CartLine{
		ProductID: uuid.New(),
		Qty:       decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(50),
	})
	require.NoError(t, store.Save(ctx, cart))

	// Mutating a returned cart must not leak into the store.
	first, err := store.Get(ctx, cart.SessionID)
	require.NoError(t, err)
	first.Lines[0].Qty = decimal.NewFromInt(99)
	first.AddLine(domain.CartLine{ProductID: uuid.New(), Qty: decimal.NewFromInt(1)})

	second, err := store.Get(ctx, cart.SessionID)
	require.NoError(t, err)
	require.Len(t, second.Lines, 1)
	assert.True(t, second.Lines[0].Qty.Equal(decimal.NewFromInt(1)))
}

func TestStore_Delete(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	cart, err := store.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, cart.SessionID))

	_, err = store.Get(ctx, cart.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	err = store.Delete(ctx, cart.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestStore_Sweep(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	stale, err := store.Create(ctx)
	require.NoError(t, err)

	fresh, err := store.Create(ctx)
	require.NoError(t, err)

	// Backdate the stale cart past the idle cutoff.
	stale.UpdatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, store.Save(ctx, stale))

	removed, err := store.Sweep(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, stale.SessionID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.Get(ctx, fresh.SessionID)
	assert.NoError(t, err)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := session.NewStore(helpers.TestLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := store.Create(ctx)
			assert.NoError(t, err)

			cart.AddLine(domain.CartLine{
				ProductID: uuid.New(),
				Qty:       decimal.NewFromInt(1),
				UnitPrice: decimal.NewFromInt(10),
			})
			assert.NoError(t, store.Save(ctx, cart))

			_, err = store.Get(ctx, cart.SessionID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.Len())
}
