// internal/handlers/export.go
package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// ExportMetadata contains metadata about an export
type ExportMetadata struct {
	ExportDate time.Time  `json:"export_date"`
	TotalRows  int        `json:"total_rows"`
	DateFrom   *time.Time `json:"date_from,omitempty"`
	DateTo     *time.Time `json:"date_to,omitempty"`
}

// JSONExportResponse represents the JSON export response structure
type JSONExportResponse struct {
	Sales    []*domain.Sale `json:"sales"`
	Metadata ExportMetadata `json:"metadata"`
}

// ExportHandler handles export operations
type ExportHandler struct {
	sales   ports.SalesService
	catalog ports.CatalogService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(sales ports.SalesService, catalog ports.CatalogService, cache ports.CacheRepository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		sales:   sales,
		catalog: catalog,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "export")),
	}
}

// ExportSalesCSV handles GET /api/v1/export/sales.csv
func (h *ExportHandler) ExportSalesCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)
	sales, err := h.collectSales(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect sales for export",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	cw.Write([]string{
		"sale_number", "sold_at", "subtotal", "discount_percent",
		"discount_amount", "total", "payment_method", "customer", "items",
	})

	for _, sale := range sales {
		cw.Write([]string{
			strconv.FormatInt(sale.SaleNumber, 10),
			sale.SoldAt.Format("2006-01-02 15:04:05"),
			sale.Subtotal.StringFixed(2),
			sale.DiscountPercent.StringFixed(2),
			sale.DiscountAmount.StringFixed(2),
			sale.Total.StringFixed(2),
			string(sale.PaymentMethod),
			sale.Customer,
			strconv.Itoa(len(sale.Items)),
		})
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		h.logger.ErrorContext(ctx, "failed to write CSV",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate CSV")
		return
	}

	filename := fmt.Sprintf("sales_export_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write CSV response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "CSV export completed",
		slog.Int("total_rows", len(sales)),
		slog.String("filename", filename))
}

// ExportSalesExcel handles GET /api/v1/export/sales.xlsx
func (h *ExportHandler) ExportSalesExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)
	sales, err := h.collectSales(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect sales for export",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateExcelFile(sales)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("sales_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "Excel export completed",
		slog.Int("total_rows", len(sales)),
		slog.String("filename", filename))
}

// ExportSalesJSON handles GET /api/v1/export/sales.json
func (h *ExportHandler) ExportSalesJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseExportParams(r)

	cacheKey := redis_a.BuildKey(redis_a.PrefixExport, "json", h.cacheKeyFromParams(params))
	var cachedData []byte
	if err := h.cache.Get(ctx, cacheKey, &cachedData); err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Content-Length", strconv.Itoa(len(cachedData)))

		if _, err := w.Write(cachedData); err != nil {
			h.logger.ErrorContext(ctx, "failed to write cached JSON response",
				slog.String("error", err.Error()))
		}
		return
	}

	sales, err := h.collectSales(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to collect sales for export",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	response := JSONExportResponse{
		Sales: sales,
		Metadata: ExportMetadata{
			ExportDate: time.Now(),
			TotalRows:  len(sales),
		},
	}
	if !params.From.IsZero() {
		response.Metadata.DateFrom = &params.From
	}
	if !params.To.IsZero() {
		response.Metadata.DateTo = &params.To
	}

	responseData, err := json.Marshal(response)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to marshal JSON response",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate JSON")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", "MISS")
	w.Header().Set("Content-Length", strconv.Itoa(len(responseData)))

	if _, err := w.Write(responseData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write JSON response",
			slog.String("error", err.Error()))
		return
	}

	// Cache the result for later identical requests (async)
	go func() {
		cacheCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := h.cache.SetWithTTL(cacheCtx, cacheKey, responseData, 5*time.Minute); err != nil {
			h.logger.WarnContext(cacheCtx, "failed to cache JSON export",
				slog.String("error", err.Error()))
		}
	}()

	h.logger.InfoContext(ctx, "JSON export completed",
		slog.Int("total_rows", len(sales)))
}

// ExportProductsCSV handles GET /api/v1/export/products.csv
func (h *ExportHandler) ExportProductsCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	cw.Write([]string{"barcode", "name", "category", "cost_price", "sale_price", "stock"})

	products, err := h.collectProducts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to page catalog for export",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	for _, p := range products {
		cw.Write([]string{
			p.Barcode,
			p.Name,
			p.Category,
			p.CostPrice.StringFixed(2),
			p.SalePrice.StringFixed(2),
			p.Stock.String(),
		})
	}
	cw.Flush()

	filename := fmt.Sprintf("products_export_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))

	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.ErrorContext(ctx, "failed to write CSV response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "product export completed",
		slog.Int("total_rows", len(products)))
}

// ExportProductsExcel handles GET /api/v1/export/products.xlsx
func (h *ExportHandler) ExportProductsExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products, err := h.collectProducts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to page catalog for export",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve data")
		return
	}

	excelData, err := h.generateProductsExcelFile(products)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate Excel file",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to generate Excel file")
		return
	}

	filename := fmt.Sprintf("products_export_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(excelData)))
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

	if _, err := w.Write(excelData); err != nil {
		h.logger.ErrorContext(ctx, "failed to write Excel response",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "product Excel export completed",
		slog.Int("total_rows", len(products)),
		slog.String("filename", filename))
}

// Helper methods

// parseExportParams parses filter parameters for sales exports
func (h *ExportHandler) parseExportParams(r *http.Request) ports.SaleListParams {
	params := ports.SaleListParams{}

	if from := r.URL.Query().Get("date_from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.From = t
		}
	}

	if to := r.URL.Query().Get("date_to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			params.To = t.AddDate(0, 0, 1)
		}
	}

	params.PaymentMethod = r.URL.Query().Get("payment_method")

	return params
}

// collectSales pages through the ledger applying the export filters
func (h *ExportHandler) collectSales(ctx context.Context, params ports.SaleListParams) ([]*domain.Sale, error) {
	var all []*domain.Sale

	params.Page = 1
	params.PageSize = 500

	for {
		result, err := h.sales.List(ctx, params)
		if err != nil {
			return nil, err
		}

		all = append(all, result.Sales...)

		if len(result.Sales) < params.PageSize {
			break
		}
		params.Page++
	}

	return all, nil
}

// collectProducts pages through the whole catalog in name order
func (h *ExportHandler) collectProducts(ctx context.Context) ([]*domain.Product, error) {
	var all []*domain.Product

	page := 1
	for {
		result, err := h.catalog.List(ctx, ports.ProductListParams{
			Page:     page,
			PageSize: 500,
			SortBy:   "name",
		})
		if err != nil {
			return nil, err
		}

		all = append(all, result.Products...)

		if len(result.Products) < 500 {
			break
		}
		page++
	}

	return all, nil
}

// generateExcelFile creates an Excel workbook in memory from the sales
func (h *ExportHandler) generateExcelFile(sales []*domain.Sale) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Sales")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{
		"Sale No", "Sold At", "Subtotal", "Discount %", "Discount",
		"Total", "Payment", "Customer", "Items", "Notes",
	}

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, sale := range sales {
		row := sheet.AddRow()
		values := []string{
			strconv.FormatInt(sale.SaleNumber, 10),
			sale.SoldAt.Format("2006-01-02 15:04:05"),
			sale.Subtotal.StringFixed(2),
			sale.DiscountPercent.StringFixed(2),
			sale.DiscountAmount.StringFixed(2),
			sale.Total.StringFixed(2),
			string(sale.PaymentMethod),
			sale.Customer,
			strconv.Itoa(len(sale.Items)),
			sale.Notes,
		}
		for _, value := range values {
			row.AddCell().Value = value
		}
	}

	for i := range headers {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

// generateProductsExcelFile creates an Excel workbook from the catalog
func (h *ExportHandler) generateProductsExcelFile(products []*domain.Product) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{"Barcode", "Name", "Category", "Cost Price", "Sale Price", "Stock"}

	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, p := range products {
		row := sheet.AddRow()
		values := []string{
			p.Barcode,
			p.Name,
			p.Category,
			p.CostPrice.StringFixed(2),
			p.SalePrice.StringFixed(2),
			p.Stock.String(),
		}
		for _, value := range values {
			row.AddCell().Value = value
		}
	}

	for i := range headers {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}

func (h *ExportHandler) cacheKeyFromParams(params ports.SaleListParams) string {
	key := "all"
	if !params.From.IsZero() {
		key += "_from_" + params.From.Format("20060102")
	}
	if !params.To.IsZero() {
		key += "_to_" + params.To.Format("20060102")
	}
	if params.PaymentMethod != "" {
		key += "_pm_" + params.PaymentMethod
	}
	return key
}

func (h *ExportHandler) respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
