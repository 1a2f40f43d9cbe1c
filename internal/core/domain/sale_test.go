// internal/core/domain/sale_test.go
package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

func TestSale_Validate(t *testing.T) {
	valid := func() *domain.Sale {
		return &domain.Sale{
			ID: uuid.New(),
			Items: []domain.SaleItem{
				{ProductID: uuid.New(), Name: "Basmati Rice 1kg", Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(68)},
			},
			Total:         decimal.NewFromInt(136),
			PaymentMethod: domain.PaymentCash,
		}
	}

	tests := []struct {
		name          string
		mutate        func(*domain.Sale)
		errorContains string
	}{
		{
			name:   "valid_sale",
			mutate: func(s *domain.Sale) {},
		},
		{
			name:          "rejects_empty_items",
			mutate:        func(s *domain.Sale) { s.Items = nil },
			errorContains: "at least one item",
		},
		{
			name:          "rejects_unknown_payment_method",
			mutate:        func(s *domain.Sale) { s.PaymentMethod = "Barter" },
			errorContains: "unknown payment method",
		},
		{
			name:          "rejects_negative_total",
			mutate:        func(s *domain.Sale) { s.Total = decimal.NewFromInt(-1) },
			errorContains: "total cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sale := valid()
			tt.mutate(sale)

			err := sale.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, domain.ValidPaymentMethod(domain.PaymentCash))
	assert.True(t, domain.ValidPaymentMethod(domain.PaymentCard))
	assert.True(t, domain.ValidPaymentMethod(domain.PaymentMobile))
	assert.False(t, domain.ValidPaymentMethod("Cheque"))
	assert.False(t, domain.ValidPaymentMethod(""))
}

func TestSale_TotalQuantity(t *testing.T) {
	sale := &domain.Sale{
		Items: []domain.SaleItem{
			{Qty: decimal.NewFromInt(2)},
			{Qty: decimal.NewFromFloat(1.5)},
			{Qty: decimal.NewFromInt(3)},
		},
	}
	assert.True(t, sale.TotalQuantity().Equal(decimal.NewFromFloat(6.5)))
}

func TestSaleItem_Amount(t *testing.T) {
	item := domain.SaleItem{
		Qty:       decimal.NewFromFloat(2.5),
		UnitPrice: decimal.NewFromInt(68),
	}
	assert.True(t, item.Amount().Equal(decimal.NewFromInt(170)))
}

func TestDecodeItems(t *testing.T) {
	productID := uuid.New()

	t.Run("round_trips_encoded_items", func(t *testing.T) {
		items := []domain.SaleItem{
			{ProductID: productID, Name: "Sunflower Oil 1L", Qty: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(152)},
		}

		raw, err := domain.EncodeItems(items)
		require.NoError(t, err)

		decoded, err := domain.DecodeItems(raw)
		require.NoError(t, err)
		require.Len(t, decoded, 1)
		assert.Equal(t, "Sunflower Oil 1L", decoded[0].Name)
		assert.True(t, decoded[0].Qty.Equal(decimal.NewFromInt(2)))
	})

	t.Run("tolerates_legacy_single_quote_rows", func(t *testing.T) {
		// Python repr written by the old desktop app.
		raw := []byte(`[{'product_id': '` + productID.String() + `', 'name': 'Jaggery 500g', 'qty': 1, 'price': 55}]`)

		decoded, err := domain.DecodeItems(raw)
		require.NoError(t, err)
		require.Len(t, decoded, 1)
		assert.Equal(t, "Jaggery 500g", decoded[0].Name)
		assert.Equal(t, productID, decoded[0].ProductID)
		assert.True(t, decoded[0].UnitPrice.Equal(decimal.NewFromInt(55)))
	})

	t.Run("rejects_garbage", func(t *testing.T) {
		_, err := domain.DecodeItems([]byte("not a snapshot"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode sale items")
	})
}
