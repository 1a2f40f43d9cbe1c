// internal/handlers/sales.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// SalesHandler handles sales ledger HTTP requests
type SalesHandler struct {
	service ports.SalesService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(service ports.SalesService, cache ports.CacheRepository, logger *slog.Logger) *SalesHandler {
	return &SalesHandler{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "sales")),
	}
}

// GetSale handles GET /api/v1/sales/{id}
func (h *SalesHandler) GetSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	sale, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			h.respondError(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get sale",
			slog.String("sale_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve sale")
		return
	}

	h.respondJSON(w, http.StatusOK, sale)
}

// ListSales handles GET /api/v1/sales
func (h *SalesHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := h.parseListParams(r)

	result, err := h.service.List(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list sales",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list sales")
		return
	}

	h.respondJSON(w, http.StatusOK, result)
}

// RecentSales handles GET /api/v1/sales/recent
func (h *SalesHandler) RecentSales(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	sales, err := h.service.Recent(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list recent sales",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to list recent sales")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"sales": sales,
		"count": len(sales),
	})
}

// DeleteSale handles DELETE /api/v1/sales/{id}
//
// Deleting a sale removes the ledger row only. Stock deducted by the
// sale is not restored.
func (h *SalesHandler) DeleteSale(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	if err := h.service.Delete(ctx, saleID); err != nil {
		if errors.Is(err, domain.ErrSaleNotFound) {
			h.respondError(w, http.StatusNotFound, "Sale not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to delete sale",
			slog.String("sale_id", idStr),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to delete sale")
		return
	}

	redis_a.InvalidateSalesCaches(ctx, h.cache, h.logger)

	h.logger.InfoContext(ctx, "sale deleted",
		slog.String("sale_id", idStr))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message": "Sale deleted, stock was not restored",
		"sale_id": idStr,
	})
}

// parseListParams parses query parameters for listing sales
func (h *SalesHandler) parseListParams(r *http.Request) ports.SaleListParams {
	params := ports.SaleListParams{
		Page:     1,
		PageSize: 50,
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

	if from := r.URL.Query().Get("from"); from != "" {
		if t, err := time.Parse("2006-01-02", from); err == nil {
			params.From = t
		}
	}

	if to := r.URL.Query().Get("to"); to != "" {
		if t, err := time.Parse("2006-01-02", to); err == nil {
			// Inclusive end date
			params.To = t.AddDate(0, 0, 1)
		}
	}

	params.PaymentMethod = r.URL.Query().Get("payment_method")
	params.Customer = r.URL.Query().Get("customer")

	return params
}

// Helper methods

func (h *SalesHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *SalesHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
