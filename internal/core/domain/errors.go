// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Checkout and store error kinds. Callers branch with errors.Is.
var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDiscount   = errors.New("invalid discount")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrRenderFailure     = errors.New("invoice render failure")
	ErrSaleNotFound      = errors.New("sale not found")
	ErrSessionNotFound   = errors.New("session not found")
)

// ProductNotFoundError identifies which cart line referenced a missing
// product.
func ProductNotFoundError(id uuid.UUID) error {
	return fmt.Errorf("%w: %s", ErrProductNotFound, id)
}

// InsufficientStockError reports how far a cart overdraws a product,
// counting every line that references it.
func InsufficientStockError(name string, available, requested decimal.Decimal) error {
	return fmt.Errorf("%w: %s has %s, cart needs %s",
		ErrInsufficientStock, name, available.String(), requested.String())
}

// InvalidQuantityError flags a non-positive line quantity.
func InvalidQuantityError(name string, qty decimal.Decimal) error {
	return fmt.Errorf("%w: %s qty %s", ErrInvalidQuantity, name, qty.String())
}

// InvalidDiscountError flags a discount outside [0, 100].
func InvalidDiscountError(pct decimal.Decimal) error {
	return fmt.Errorf("%w: %s%% is outside 0-100", ErrInvalidDiscount, pct.String())
}

// StoreError wraps a storage failure during the commit phase.
func StoreError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
