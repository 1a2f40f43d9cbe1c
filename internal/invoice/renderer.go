// internal/invoice/renderer.go

// Package invoice renders committed sales into the documents a
// customer can take away: a PDF invoice, an HTML alternate, and a CSV
// of the line items. Rendering is pure; the artifact store decides
// where the bytes live.
package invoice

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"html/template"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// Artifact formats
const (
	FormatPDF  = "pdf"
	FormatHTML = "html"
	FormatCSV  = "csv"
)

// ArtifactKey returns the storage key for a sale's invoice document.
func ArtifactKey(saleID uuid.UUID, format string) string {
	return fmt.Sprintf("invoices/%s/invoice.%s", saleID, format)
}

// ShopInfo is the letterhead printed on every invoice.
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
	Footer  string
}

// Renderer implements ports.InvoiceRenderer.
type Renderer struct {
	shop ShopInfo
}

var _ ports.InvoiceRenderer = (*Renderer)(nil)

// NewRenderer creates an invoice renderer with the given letterhead.
func NewRenderer(shop ShopInfo) *Renderer {
	if shop.Name == "" {
		shop.Name = "Kirana Store"
	}
	if shop.Footer == "" {
		shop.Footer = "Thank you for shopping with us!"
	}
	return &Renderer{shop: shop}
}

// RenderPDF builds the printable invoice.
func (r *Renderer) RenderPDF(sale *domain.Sale) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.shop.Name, "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	if r.shop.Address != "" {
		pdf.CellFormat(0, 5, r.shop.Address, "", 1, "C", false, 0, "")
	}
	if r.shop.Phone != "" {
		pdf.CellFormat(0, 5, "Phone: "+r.shop.Phone, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, "INVOICE", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Invoice No: %d", sale.SaleNumber), "", 0, "L", false, 0, "")
	pdf.CellFormat(95, 6, "Date: "+sale.SoldAt.Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	if sale.Customer != "" {
		pdf.CellFormat(0, 6, "Customer: "+sale.Customer, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(90, 7, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(35, 7, "Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, it := range sale.Items {
		pdf.CellFormat(90, 7, it.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, it.Qty.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 7, it.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, it.Amount().StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(3)

	pdf.CellFormat(150, 6, "Subtotal", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 6, sale.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")

	if sale.DiscountAmount.IsPositive() {
		label := fmt.Sprintf("Discount (%s%%)", sale.DiscountPercent.String())
		pdf.CellFormat(150, 6, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, "-"+sale.DiscountAmount.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(150, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, sale.Total.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Payment: "+string(sale.PaymentMethod), "", 1, "L", false, 0, "")

	if sale.Notes != "" {
		pdf.Ln(2)
		pdf.MultiCell(0, 5, "Notes: "+sale.Notes, "", "L", false)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 6, r.shop.Footer, "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}

var htmlTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Sale.SaleNumber}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
h1 { text-align: center; margin-bottom: 0; }
.meta, .shop { text-align: center; color: #555; }
table { width: 100%; border-collapse: collapse; margin-top: 1.5em; }
th, td { border: 1px solid #999; padding: 6px 10px; }
th { background: #eee; text-align: left; }
td.num, th.num { text-align: right; }
.totals { margin-top: 1em; text-align: right; }
.totals .grand { font-size: 1.2em; font-weight: bold; }
.footer { margin-top: 3em; text-align: center; font-style: italic; color: #777; }
</style>
</head>
<body>
<h1>{{.Shop.Name}}</h1>
<p class="shop">{{.Shop.Address}}{{if .Shop.Phone}} &middot; {{.Shop.Phone}}{{end}}</p>
<p class="meta">Invoice No. {{.Sale.SaleNumber}} &middot; {{.Sale.SoldAt.Format "02 Jan 2006 15:04"}}{{if .Sale.Customer}} &middot; {{.Sale.Customer}}{{end}}</p>
<table>
<tr><th>Item</th><th class="num">Qty</th><th class="num">Price</th><th class="num">Amount</th></tr>
{{range .Sale.Items}}<tr><td>{{.Name}}</td><td class="num">{{.Qty}}</td><td class="num">{{.UnitPrice.StringFixed 2}}</td><td class="num">{{.Amount.StringFixed 2}}</td></tr>
{{end}}</table>
<div class="totals">
<div>Subtotal: {{.Sale.Subtotal.StringFixed 2}}</div>
{{if .Sale.DiscountAmount.IsPositive}}<div>Discount ({{.Sale.DiscountPercent}}%): -{{.Sale.DiscountAmount.StringFixed 2}}</div>{{end}}
<div class="grand">Total: {{.Sale.Total.StringFixed 2}}</div>
<div>Payment: {{.Sale.PaymentMethod}}</div>
</div>
{{if .Sale.Notes}}<p>Notes: {{.Sale.Notes}}</p>{{end}}
<p class="footer">{{.Shop.Footer}}</p>
</body>
</html>
`))

// RenderHTML builds the browser-friendly alternate of the invoice.
func (r *Renderer) RenderHTML(sale *domain.Sale) ([]byte, error) {
	var buf bytes.Buffer
	err := htmlTemplate.Execute(&buf, struct {
		Shop ShopInfo
		Sale *domain.Sale
	}{r.shop, sale})
	if err != nil {
		return nil, fmt.Errorf("html template: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCSV builds the line-item export of the invoice.
func (r *Renderer) RenderCSV(sale *domain.Sale) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"item", "qty", "unit_price", "amount"}); err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	for _, it := range sale.Items {
		record := []string{
			it.Name,
			it.Qty.String(),
			it.UnitPrice.StringFixed(2),
			it.Amount().StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("csv write: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush: %w", err)
	}
	return buf.Bytes(), nil
}
