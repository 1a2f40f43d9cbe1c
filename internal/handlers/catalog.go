// internal/handlers/catalog.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// CatalogHandler handles product catalog HTTP requests
type CatalogHandler struct {
	service ports.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service ports.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "catalog")),
	}
}

// GetProduct handles GET /api/v1/products/{id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.service.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// GetProductByBarcode handles GET /api/v1/products/barcode/{barcode}
func (h *CatalogHandler) GetProductByBarcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	barcode := r.PathValue("barcode")

	if barcode == "" {
		h.respondError(w, http.StatusBadRequest, "Barcode is required")
		return
	}

	product, err := h.service.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "No product with this barcode")
			return
		}
		h.logger.ErrorContext(ctx, "barcode lookup failed",
			slog.String("barcode", barcode),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to look up barcode")
		return
	}

	h.respondJSON(w, http.StatusOK, product)
}

// ListProducts handles GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// LowStock handles GET /api/v1/products/low-stock
func (h *CatalogHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	threshold := decimal.Decimal{}
	if t := r.URL.Query().Get("threshold"); t != "" {
		parsed, err := decimal.NewFromString(t)
		if err != nil || parsed.IsNegative() {
			h.respondError(w, http.StatusBadRequest, "Invalid threshold")
			return
		}
		threshold = parsed
	}

	products, err := h.service.LowStock(ctx, threshold)
	if err != nil {
		h.logger.ErrorContext(ctx, "low stock query failed",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list low stock products")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"products": products,
		"count":    len(products),
	})
}

// CreateProduct handles POST /api/v1/products
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.ToDomain()

	if err := h.service.SaveProduct(ctx, product); err != nil {
		h.logger.ErrorContext(ctx, "failed to create product",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID.String()),
		slog.String("name", product.Name))

	h.respondJSON(w, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/{id}
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product := req.ToDomain()
	product.ID = productID

	if err := h.service.UpdateProduct(ctx, productID, product); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to update product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to update product")
		return
	}

	h.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", idStr))

	h.respondJSON(w, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/{id}
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	if err := h.service.DeleteProduct(ctx, productID); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete product",
			slog.String("product_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to delete product")
		return
	}

	h.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", idStr))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Product deleted successfully",
		"product_id": idStr,
	})
}

// AdjustStock handles POST /api/v1/products/{id}/stock
func (h *CatalogHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	productID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var req AdjustStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Delta.IsZero() {
		h.respondError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	product, err := h.service.AdjustStock(ctx, productID, req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			h.respondError(w, http.StatusNotFound, "Product not found")
		case errors.Is(err, domain.ErrInsufficientStock):
			h.respondError(w, http.StatusConflict, "Adjustment would make stock negative")
		default:
			h.logger.ErrorContext(ctx, "stock adjustment failed",
				slog.String("product_id", idStr),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to adjust stock")
		}
		return
	}

	h.logger.InfoContext(ctx, "stock adjusted",
		slog.String("product_id", idStr),
		slog.String("delta", req.Delta.String()),
		slog.String("stock", product.Stock.String()))

	h.respondJSON(w, http.StatusOK, product)
}

// ImportCSV handles POST /api/v1/products/import
func (h *CatalogHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(10 << 20); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	imported, err := h.service.ImportCSV(ctx, file)
	if err != nil {
		h.logger.ErrorContext(ctx, "CSV import failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("Import failed: %v", err))
		return
	}

	h.logger.InfoContext(ctx, "CSV import completed",
		slog.String("filename", header.Filename),
		slog.Int("imported", imported))

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"imported": imported,
		"filename": header.Filename,
	})
}

// parseListParams parses query parameters for listing products
func (h *CatalogHandler) parseListParams(r *http.Request) ports.ProductListParams {
	params := ports.ProductListParams{
		Page:      1,
		PageSize:  50,
		SortBy:    "name",
		SortOrder: "asc",
	}

	if page := r.URL.Query().Get("page"); page != "" {
		if p, err := strconv.Atoi(page); err == nil && p > 0 {
			params.Page = p
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if l, err := strconv.Atoi(limit); err == nil && l > 0 {
			if l > 200 {
				params.PageSize = 200
			} else {
				params.PageSize = l
			}
		}
	}

	params.Search = r.URL.Query().Get("search")
	params.Category = r.URL.Query().Get("category")

	if sortBy := r.URL.Query().Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}

	if order := r.URL.Query().Get("order"); order == "asc" || order == "desc" {
		params.SortOrder = order
	}

	return params
}

// Helper methods

func (h *CatalogHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CatalogHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// SaveProductRequest represents the request body for creating or updating a product
type SaveProductRequest struct {
	Barcode   string          `json:"barcode,omitempty"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Stock     decimal.Decimal `json:"stock"`
}

// Validate validates the save product request
func (r *SaveProductRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.CostPrice.IsNegative() {
		return fmt.Errorf("cost_price cannot be negative")
	}
	if r.SalePrice.IsNegative() {
		return fmt.Errorf("sale_price cannot be negative")
	}
	if r.Stock.IsNegative() {
		return fmt.Errorf("stock cannot be negative")
	}
	return nil
}

// ToDomain converts the request to a domain model
func (r *SaveProductRequest) ToDomain() *domain.Product {
	product := &domain.Product{
		ID:        uuid.New(),
		Barcode:   r.Barcode,
		Name:      r.Name,
		Category:  r.Category,
		CostPrice: r.CostPrice,
		SalePrice: r.SalePrice,
		Stock:     r.Stock,
	}

	if product.Category == "" {
		product.Category = domain.DefaultCategory
	}

	return product
}

// AdjustStockRequest represents the request body for stock adjustments
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
}
