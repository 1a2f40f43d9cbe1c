// internal/core/domain/cart.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one entry in a terminal cart. The unit price is captured
// from the catalog when the line is added and stays fixed even if the
// product is reprized before checkout.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Amount returns qty times unit price for the line.
func (l CartLine) Amount() decimal.Decimal {
	return l.Qty.Mul(l.UnitPrice)
}

// Cart holds the lines a terminal has rung up but not yet paid for.
// Lines accumulate in ring order; the same product may appear on more
// than one line.
type Cart struct {
	SessionID string     `json:"session_id"`
	Lines     []CartLine `json:"lines"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// AddLine appends a line to the cart.
func (c *Cart) AddLine(line CartLine) {
	c.Lines = append(c.Lines, line)
	c.UpdatedAt = time.Now()
}

// UpdateLineQty replaces the quantity on the line at index i.
// Out-of-range indexes and non-positive quantities are a no-op.
func (c *Cart) UpdateLineQty(i int, qty decimal.Decimal) {
	if i < 0 || i >= len(c.Lines) || !qty.IsPositive() {
		return
	}
	c.Lines[i].Qty = qty
	c.UpdatedAt = time.Now()
}

// RemoveLine deletes the line at index i. Out-of-range indexes are a
// no-op.
func (c *Cart) RemoveLine(i int) {
	if i < 0 || i >= len(c.Lines) {
		return
	}
	c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
	c.UpdatedAt = time.Now()
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.Lines = nil
	c.UpdatedAt = time.Now()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// Subtotal sums qty*price across all lines.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Amount())
	}
	return total
}

// RequestedQuantities sums the quantity rung up per product across all
// lines, so availability checks see the cart as a whole rather than
// line by line.
func (c *Cart) RequestedQuantities() map[uuid.UUID]decimal.Decimal {
	req := make(map[uuid.UUID]decimal.Decimal, len(c.Lines))
	for _, l := range c.Lines {
		req[l.ProductID] = req[l.ProductID].Add(l.Qty)
	}
	return req
}
