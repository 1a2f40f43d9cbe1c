// internal/workers/pricelist_processor_test.go
package workers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/test/helpers"
	"github.com/ammerola/kirana-be/test/mocks"
)

func TestParsePriceLines(t *testing.T) {
	processor := NewPriceListProcessor(nil, nil, helpers.TestLogger())

	tests := []struct {
		name     string
		lines    []string
		expected []rawPriceLine
	}{
		{
			name: "parses_simple_price_rows",
			lines: []string{
				"ITEM                         PRICE",
				"Sunflower Oil 1L            130.00",
				"Wheat Flour 5kg             210.00",
			},
			expected: []rawPriceLine{
				{description: "Sunflower Oil 1L", price: decimal.NewFromFloat(130.00)},
				{description: "Wheat Flour 5kg", price: decimal.NewFromFloat(210.00)},
			},
		},
		{
			name: "strips_currency_symbols_and_thousands",
			lines: []string{
				"PRODUCT              COST",
				"Basmati Rice 25kg  ₹1,250.00",
			},
			expected: []rawPriceLine{
				{description: "Basmati Rice 25kg", price: decimal.NewFromFloat(1250.00)},
			},
		},
		{
			name: "joins_wrapped_descriptions",
			lines: []string{
				"DESCRIPTION          RATE",
				"Organic Cold-Pressed",
				"Groundnut Oil 1L   310.00",
			},
			expected: []rawPriceLine{
				{description: "Organic Cold-Pressed Groundnut Oil 1L", price: decimal.NewFromFloat(310.00)},
			},
		},
		{
			name: "stops_at_footer",
			lines: []string{
				"ITEM        PRICE",
				"Salt 1kg    18.00",
				"SUBTOTAL   18.00",
				"Sugar 1kg   42.00",
			},
			expected: []rawPriceLine{
				{description: "Salt 1kg", price: decimal.NewFromFloat(18.00)},
			},
		},
		{
			name: "drops_row_numbers_and_sku_tokens",
			lines: []string{
				"ITEM        PRICE",
				"12 Jaggery 500g GRN-10443   55.00",
			},
			expected: []rawPriceLine{
				{description: "Jaggery 500g", price: decimal.NewFromFloat(55.00)},
			},
		},
		{
			name: "ignores_lines_without_prices",
			lines: []string{
				"Supplier: Mahalaxmi Traders",
				"Valid through September",
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed := processor.parsePriceLines(tt.lines)
			require.Len(t, parsed, len(tt.expected))
			for i, want := range tt.expected {
				assert.Equal(t, want.description, parsed[i].description)
				assert.True(t, parsed[i].price.Equal(want.price),
					"expected price %s, got %s", want.price, parsed[i].price)
			}
		})
	}
}

func TestParseCurrency(t *testing.T) {
	assert.True(t, parseCurrency("130.00").Equal(decimal.NewFromFloat(130.00)))
	assert.True(t, parseCurrency("₹1,250.00").Equal(decimal.NewFromFloat(1250.00)))
	assert.True(t, parseCurrency("$ 99.50").Equal(decimal.NewFromFloat(99.50)))
	assert.True(t, parseCurrency("garbage").IsZero())
}

func TestCleanPriceLineDescription(t *testing.T) {
	assert.Equal(t, "Jaggery 500g", cleanPriceLineDescription("12 Jaggery 500g GRN-10443"))
	assert.Equal(t, "Salt 1kg", cleanPriceLineDescription("Salt 1kg ......"))
	assert.Equal(t, "Toned Milk", cleanPriceLineDescription("  Toned   Milk  "))
}

func TestPriceListProcessor_ApplyPrice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	catalog := mocks.NewMockCatalogService(ctrl)
	processor := NewPriceListProcessor(catalog, nil, helpers.TestLogger())

	productID := uuid.New()
	newPrice := decimal.NewFromFloat(140.00)

	t.Run("updates_exact_name_match", func(t *testing.T) {
		catalog.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(&ports.ProductListResult{
				Products: []*domain.Product{
					{ID: productID, Name: "Sunflower Oil 1L", CostPrice: decimal.NewFromInt(130)},
				},
			}, nil)
		catalog.EXPECT().
			UpdateProduct(gomock.Any(), productID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, p *domain.Product) error {
				assert.True(t, p.CostPrice.Equal(newPrice))
				return nil
			})

		updated, err := processor.applyPrice(context.Background(), rawPriceLine{
			description: "sunflower oil 1l",
			price:       newPrice,
		})
		require.NoError(t, err)
		assert.True(t, updated)
	})

	t.Run("partial_match_is_skipped", func(t *testing.T) {
		catalog.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(&ports.ProductListResult{
				Products: []*domain.Product{
					{ID: uuid.New(), Name: "Sunflower Oil 5L"},
				},
			}, nil)

		updated, err := processor.applyPrice(context.Background(), rawPriceLine{
			description: "Sunflower Oil 1L",
			price:       newPrice,
		})
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("no_candidates_is_unmatched", func(t *testing.T) {
		catalog.EXPECT().
			List(gomock.Any(), gomock.Any()).
			Return(&ports.ProductListResult{Products: []*domain.Product{}}, nil)

		updated, err := processor.applyPrice(context.Background(), rawPriceLine{
			description: "Unknown Item",
			price:       newPrice,
		})
		require.NoError(t, err)
		assert.False(t, updated)
	})
}
