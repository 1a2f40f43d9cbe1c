// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// buildLargeCart builds a cart with the given number of lines. Every
// tenth line repeats an earlier product so quantity summation has
// duplicates to fold.
func buildLargeCart(lines int) *domain.Cart {
	cart := &domain.Cart{
		SessionID: uuid.New().String(),
		UpdatedAt: time.Now(),
	}

	productIDs := make([]uuid.UUID, 0, lines)
	for i := 0; i < lines; i++ {
		productID := uuid.New()
		if i > 0 && i%10 == 0 {
			productID = productIDs[i/10]
		}
		productIDs = append(productIDs, productID)

		cart.AddLine(domain.CartLine{
			ProductID: productID,
			Name:      fmt.Sprintf("Product %d", i),
			Qty:       decimal.NewFromInt(int64(1 + i%5)),
			UnitPrice: decimal.NewFromFloat(float64(10 + i%90)),
		})
	}

	return cart
}

// buildLargeSale builds a committed sale with the given number of
// items for renderer benchmarks.
func buildLargeSale(items int) *domain.Sale {
	saleItems := make([]domain.SaleItem, 0, items)
	subtotal := decimal.Zero

	for i := 0; i < items; i++ {
		item := domain.SaleItem{
			ProductID: uuid.New(),
			Name:      fmt.Sprintf("Product %d", i),
			Qty:       decimal.NewFromInt(int64(1 + i%4)),
			UnitPrice: decimal.NewFromFloat(float64(15 + i%85)),
		}
		saleItems = append(saleItems, item)
		subtotal = subtotal.Add(item.Amount())
	}

	discount := subtotal.Mul(decimal.NewFromFloat(0.05)).Round(2)

	return &domain.Sale{
		ID:              uuid.New(),
		SaleNumber:      4211,
		SoldAt:          time.Now(),
		Subtotal:        subtotal,
		DiscountPercent: decimal.NewFromInt(5),
		DiscountAmount:  discount,
		Total:           subtotal.Sub(discount),
		Items:           saleItems,
		PaymentMethod:   domain.PaymentCash,
		CreatedAt:       time.Now(),
	}
}
