// internal/invoice/renderer_test.go
package invoice_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/invoice"
	"github.com/ammerola/kirana-be/test/helpers"
)

func TestArtifactKey(t *testing.T) {
	saleID := uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479")

	assert.Equal(t,
		"invoices/f47ac10b-58cc-4372-a567-0e02b2c3d479/invoice.pdf",
		invoice.ArtifactKey(saleID, invoice.FormatPDF))
	assert.Equal(t,
		"invoices/f47ac10b-58cc-4372-a567-0e02b2c3d479/invoice.csv",
		invoice.ArtifactKey(saleID, invoice.FormatCSV))
}

func TestRenderer_RenderPDF(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{
		Name:    "Sharma Kirana",
		Address: "12 Gandhi Road",
		Phone:   "98765 43210",
	})
	sale := helpers.CreateTestSale()

	data, err := renderer.RenderPDF(sale)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderer_RenderHTML(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{Name: "Sharma Kirana"})
	sale := helpers.CreateTestSale()

	data, err := renderer.RenderHTML(sale)
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "Sharma Kirana")
	assert.Contains(t, html, "Basmati Rice 1kg")
	assert.Contains(t, html, "Invoice No. 1001")
	assert.Contains(t, html, string(sale.PaymentMethod))
}

func TestRenderer_RenderHTML_EscapesItemNames(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{})
	sale := helpers.CreateTestSale(func(s *domain.Sale) {
		s.Items[0].Name = `<script>alert("x")</script>`
	})

	data, err := renderer.RenderHTML(sale)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "<script>alert")
}

func TestRenderer_RenderCSV(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{})
	sale := helpers.CreateTestSale()

	data, err := renderer.RenderCSV(sale)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)

	// Header plus one row per item.
	require.Len(t, records, len(sale.Items)+1)
	assert.Equal(t, []string{"item", "qty", "unit_price", "amount"}, records[0])
	assert.Equal(t, "Basmati Rice 1kg", records[1][0])
	assert.Equal(t, "2", records[1][1])
	assert.Equal(t, "68.00", records[1][2])
	assert.Equal(t, "136.00", records[1][3])
}

func TestRenderer_DefaultLetterhead(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{})
	sale := helpers.CreateTestSale()

	data, err := renderer.RenderHTML(sale)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Kirana Store")
	assert.Contains(t, string(data), "Thank you for shopping with us!")
}

func TestRenderer_DiscountLine(t *testing.T) {
	renderer := invoice.NewRenderer(invoice.ShopInfo{})

	t.Run("shown_when_discount_applied", func(t *testing.T) {
		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.DiscountPercent = decimal.NewFromInt(10)
			s.DiscountAmount = decimal.NewFromFloat(21.70)
			s.Total = decimal.NewFromFloat(195.30)
		})

		data, err := renderer.RenderHTML(sale)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Discount (10%)")
	})

	t.Run("omitted_without_discount", func(t *testing.T) {
		sale := helpers.CreateTestSale(func(s *domain.Sale) {
			s.DiscountPercent = decimal.Zero
			s.DiscountAmount = decimal.Zero
		})

		data, err := renderer.RenderHTML(sale)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "Discount")
	})
}
