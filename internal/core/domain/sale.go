// internal/core/domain/sale.go
package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how a sale was paid
type PaymentMethod string

// Payment method constants
const (
	PaymentCash   PaymentMethod = "Cash"
	PaymentCard   PaymentMethod = "Card"
	PaymentMobile PaymentMethod = "Mobile"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

// SaleItem is one line of a sale, frozen at checkout time. It carries
// the product name and unit price as they were when the sale closed,
// so later catalog edits never change the ledger.
type SaleItem struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Qty       decimal.Decimal `json:"qty"`
	UnitPrice decimal.Decimal `json:"price"`
}

// Amount returns qty times unit price for the line.
func (si SaleItem) Amount() decimal.Decimal {
	return si.Qty.Mul(si.UnitPrice)
}

// Sale is a closed transaction in the ledger. Items is an immutable
// snapshot; deleting or editing catalog products leaves it untouched.
type Sale struct {
	ID              uuid.UUID       `json:"id"`
	SaleNumber      int64           `json:"sale_number"`
	SoldAt          time.Time       `json:"sold_at"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Total           decimal.Decimal `json:"total"`
	Items           []SaleItem      `json:"items"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	Customer        string          `json:"customer,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate performs domain validation on the sale
func (s *Sale) Validate() error {
	if len(s.Items) == 0 {
		return fmt.Errorf("sale must contain at least one item")
	}
	if !ValidPaymentMethod(s.PaymentMethod) {
		return fmt.Errorf("unknown payment method %q", s.PaymentMethod)
	}
	if s.Total.IsNegative() {
		return fmt.Errorf("total cannot be negative")
	}
	return nil
}

// TotalQuantity sums the quantities across all snapshot lines.
func (s *Sale) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.Items {
		total = total.Add(it.Qty)
	}
	return total
}

// EncodeItems serializes the item snapshot for storage.
func EncodeItems(items []SaleItem) ([]byte, error) {
	return json.Marshal(items)
}

// DecodeItems parses a stored item snapshot. Rows written by the old
// desktop app used Python repr with single quotes instead of JSON, so
// a failed parse is retried with quotes swapped.
func DecodeItems(raw []byte) ([]SaleItem, error) {
	var items []SaleItem
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}
	legacy := strings.ReplaceAll(string(raw), "'", `"`)
	if err := json.Unmarshal([]byte(legacy), &items); err != nil {
		return nil, fmt.Errorf("decode sale items: %w", err)
	}
	return items, nil
}
