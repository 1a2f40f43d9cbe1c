// internal/core/domain/cart_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

func line(id uuid.UUID, qty, price int64) domain.CartLine {
	return domain.CartLine{
		ProductID: id,
		Qty:       decimal.NewFromInt(qty),
		UnitPrice: decimal.NewFromInt(price),
	}
}

func TestCart_Lines(t *testing.T) {
	cart := &domain.Cart{SessionID: "s1"}
	assert.True(t, cart.IsEmpty())

	rice := uuid.New()
	cart.AddLine(line(rice, 2, 68))
	cart.AddLine(line(rice, 1, 68))
	assert.False(t, cart.IsEmpty())
	assert.Len(t, cart.Lines, 2)
	assert.False(t, cart.UpdatedAt.IsZero())

	cart.RemoveLine(0)
	require.Len(t, cart.Lines, 1)
	assert.True(t, cart.Lines[0].Qty.Equal(decimal.NewFromInt(1)))

	// Out-of-range indexes are ignored.
	cart.RemoveLine(-1)
	cart.RemoveLine(5)
	assert.Len(t, cart.Lines, 1)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
}

func TestCart_UpdateLineQty(t *testing.T) {
	cart := &domain.Cart{SessionID: "s1"}
	cart.AddLine(line(uuid.New(), 2, 68))

	cart.UpdateLineQty(0, decimal.NewFromFloat(3.5))
	assert.True(t, cart.Lines[0].Qty.Equal(decimal.NewFromFloat(3.5)))

	// Out-of-range indexes and non-positive quantities are ignored.
	cart.UpdateLineQty(1, decimal.NewFromInt(1))
	cart.UpdateLineQty(0, decimal.Zero)
	cart.UpdateLineQty(0, decimal.NewFromInt(-1))
	assert.True(t, cart.Lines[0].Qty.Equal(decimal.NewFromFloat(3.5)))
}

func TestCart_Subtotal(t *testing.T) {
	cart := &domain.Cart{}
	assert.True(t, cart.Subtotal().IsZero())

	cart.AddLine(line(uuid.New(), 2, 68))
	cart.AddLine(line(uuid.New(), 3, 27))
	cart.AddLine(domain.CartLine{
		ProductID: uuid.New(),
		Qty:       decimal.NewFromFloat(1.5),
		UnitPrice: decimal.NewFromInt(90),
	})

	// 136 + 81 + 135
	assert.True(t, cart.Subtotal().Equal(decimal.NewFromInt(352)))
}

func TestCart_RequestedQuantities(t *testing.T) {
	rice := uuid.New()
	oil := uuid.New()

	cart := &domain.Cart{}
	cart.AddLine(line(rice, 2, 68))
	cart.AddLine(line(oil, 1, 152))
	cart.AddLine(line(rice, 3, 68))

	req := cart.RequestedQuantities()
	require.Len(t, req, 2)

	// Two rice lines fold into one requested quantity.
	assert.True(t, req[rice].Equal(decimal.NewFromInt(5)))
	assert.True(t, req[oil].Equal(decimal.NewFromInt(1)))
}

func TestCartLine_Amount(t *testing.T) {
	l := domain.CartLine{
		Qty:       decimal.NewFromFloat(0.75),
		UnitPrice: decimal.NewFromInt(120),
	}
	assert.True(t, l.Amount().Equal(decimal.NewFromInt(90)))
}
