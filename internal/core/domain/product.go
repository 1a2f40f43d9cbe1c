// internal/core/domain/product.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when a product arrives without one.
const DefaultCategory = "General"

// Product is a catalog entry. Stock is decimal because loose goods
// (grains, oil) are sold by weight or volume.
type Product struct {
	ID        uuid.UUID       `json:"id"`
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     decimal.Decimal `json:"stock"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the product
func (p *Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.CostPrice.IsNegative() {
		return fmt.Errorf("cost_price cannot be negative")
	}
	if p.SalePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	if p.Stock.IsNegative() {
		return fmt.Errorf("stock cannot be negative")
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	return nil
}

// Margin returns sale price minus cost price for one unit.
func (p *Product) Margin() decimal.Decimal {
	return p.SalePrice.Sub(p.CostPrice)
}

// StockValue returns the value of stock on hand at cost price.
func (p *Product) StockValue() decimal.Decimal {
	return p.Stock.Mul(p.CostPrice)
}

// HasStock reports whether at least qty units are on hand.
func (p *Product) HasStock(qty decimal.Decimal) bool {
	return p.Stock.GreaterThanOrEqual(qty)
}

// PrepareForStorage prepares the product for database storage
func (p *Product) PrepareForStorage() {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}
