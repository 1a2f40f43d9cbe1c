// internal/handlers/checkout.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// CheckoutHandler handles cart checkout HTTP requests
type CheckoutHandler struct {
	service ports.CheckoutService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(service ports.CheckoutService, cache ports.CacheRepository, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "checkout")),
	}
}

// Checkout handles POST /api/v1/carts/{id}/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Checkout(ctx, ports.CheckoutParams{
		SessionID:       sessionID,
		DiscountPercent: req.DiscountPercent,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		Customer:        req.Customer,
		Notes:           req.Notes,
	})
	if err != nil {
		h.respondCheckoutError(w, r, sessionID, err)
		return
	}

	// A committed sale changes every sales-derived view.
	redis_a.InvalidateSalesCaches(ctx, h.cache, h.logger)

	response := CheckoutResponse{
		Sale: result.Sale,
	}
	if result.RenderErr != nil {
		response.Warning = "Invoice rendering failed and was queued for retry"
	}

	h.logger.InfoContext(ctx, "checkout completed",
		slog.String("session_id", sessionID),
		slog.String("sale_id", result.Sale.ID.String()),
		slog.Int64("sale_number", result.Sale.SaleNumber),
		slog.String("total", result.Sale.Total.String()))

	h.respondJSON(w, http.StatusCreated, response)
}

func (h *CheckoutHandler) respondCheckoutError(w http.ResponseWriter, r *http.Request, sessionID string, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		h.respondError(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, domain.ErrEmptyCart):
		h.respondError(w, http.StatusUnprocessableEntity, "Cart is empty")
	case errors.Is(err, domain.ErrInvalidDiscount):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		h.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrProductNotFound):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.ErrorContext(ctx, "checkout failed, store unavailable",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusServiceUnavailable, "Sale could not be recorded, nothing was charged")
	default:
		h.logger.ErrorContext(ctx, "checkout failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Checkout failed")
	}
}

// Helper methods

func (h *CheckoutHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CheckoutHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// CheckoutRequest represents the request body for cart checkout
type CheckoutRequest struct {
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	PaymentMethod   string          `json:"payment_method"`
	Customer        string          `json:"customer,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// Validate validates the checkout request
func (r *CheckoutRequest) Validate() error {
	if r.PaymentMethod == "" {
		return fmt.Errorf("payment_method is required")
	}
	if !domain.ValidPaymentMethod(domain.PaymentMethod(r.PaymentMethod)) {
		return fmt.Errorf("payment_method must be one of Cash, Card, Mobile")
	}
	if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("discount_percent must be between 0 and 100")
	}
	return nil
}

// CheckoutResponse wraps the committed sale
type CheckoutResponse struct {
	Sale    *domain.Sale `json:"sale"`
	Warning string       `json:"warning,omitempty"`
}
