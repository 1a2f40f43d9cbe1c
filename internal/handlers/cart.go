// internal/handlers/cart.go
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

// CartHandler handles cart session HTTP requests
type CartHandler struct {
	sessions ports.SessionStore
	catalog  ports.CatalogService
	logger   *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions ports.SessionStore, catalog ports.CatalogService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger.With(slog.String("handler", "cart")),
	}
}

// CreateCart handles POST /api/v1/carts
func (h *CartHandler) CreateCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cart, err := h.sessions.Create(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create cart session",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create cart")
		return
	}

	h.logger.InfoContext(ctx, "cart session created",
		slog.String("session_id", cart.SessionID))

	h.respondJSON(w, http.StatusCreated, h.cartResponse(cart))
}

// GetCart handles GET /api/v1/carts/{id}
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	cart, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.logger.ErrorContext(ctx, "failed to load cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	h.respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// AddLine handles POST /api/v1/carts/{id}/lines
func (h *CartHandler) AddLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	var req AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cart, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	product, err := h.resolveProduct(r, &req)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			h.respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.ErrorContext(ctx, "product lookup failed",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to look up product")
		return
	}

	// Unit price is captured now and stays fixed for this line.
	cart.AddLine(domain.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		Qty:       req.Qty,
		UnitPrice: product.SalePrice,
	})

	if err := h.sessions.Save(ctx, cart); err != nil {
		h.logger.ErrorContext(ctx, "failed to save cart",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.logger.InfoContext(ctx, "cart line added",
		slog.String("session_id", sessionID),
		slog.String("product_id", product.ID.String()),
		slog.String("qty", req.Qty.String()))

	h.respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// UpdateLine handles PUT /api/v1/carts/{id}/lines/{index}
func (h *CartHandler) UpdateLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid line index")
		return
	}

	var req UpdateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !req.Qty.IsPositive() {
		h.respondError(w, http.StatusBadRequest, "qty must be positive")
		return
	}

	cart, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	if index >= len(cart.Lines) {
		h.respondError(w, http.StatusNotFound, "Line not found")
		return
	}

	cart.UpdateLineQty(index, req.Qty)

	if err := h.sessions.Save(ctx, cart); err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// RemoveLine handles DELETE /api/v1/carts/{id}/lines/{index}
func (h *CartHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil || index < 0 {
		h.respondError(w, http.StatusBadRequest, "Invalid line index")
		return
	}

	cart, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	if index >= len(cart.Lines) {
		h.respondError(w, http.StatusNotFound, "Line not found")
		return
	}

	cart.RemoveLine(index)

	if err := h.sessions.Save(ctx, cart); err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// ClearCart handles POST /api/v1/carts/{id}/clear
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	cart, err := h.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to load cart")
		return
	}

	cart.Clear()

	if err := h.sessions.Save(ctx, cart); err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to save cart")
		return
	}

	h.respondJSON(w, http.StatusOK, h.cartResponse(cart))
}

// DeleteCart handles DELETE /api/v1/carts/{id}
func (h *CartHandler) DeleteCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := r.PathValue("id")

	if err := h.sessions.Delete(ctx, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			h.respondError(w, http.StatusNotFound, "Cart not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to delete cart")
		return
	}

	h.logger.InfoContext(ctx, "cart session deleted",
		slog.String("session_id", sessionID))

	h.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "Cart deleted",
		"session_id": sessionID,
	})
}

// resolveProduct finds the product for a new line, by ID or by barcode.
func (h *CartHandler) resolveProduct(r *http.Request, req *AddLineRequest) (*domain.Product, error) {
	ctx := r.Context()

	if req.ProductID != "" {
		productID, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, domain.ErrProductNotFound
		}
		return h.catalog.GetByID(ctx, productID)
	}

	return h.catalog.FindByBarcode(ctx, req.Barcode)
}

func (h *CartHandler) cartResponse(cart *domain.Cart) map[string]interface{} {
	return map[string]interface{}{
		"session_id": cart.SessionID,
		"lines":      cart.Lines,
		"subtotal":   cart.Subtotal(),
		"updated_at": cart.UpdatedAt,
	}
}

// Helper methods

func (h *CartHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *CartHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request DTOs

// AddLineRequest represents the request body for adding a cart line.
// Either product_id or barcode identifies the product.
type AddLineRequest struct {
	ProductID string          `json:"product_id,omitempty"`
	Barcode   string          `json:"barcode,omitempty"`
	Qty       decimal.Decimal `json:"qty"`
}

// UpdateLineRequest represents the request body for changing a line's
// quantity.
type UpdateLineRequest struct {
	Qty decimal.Decimal `json:"qty"`
}

// Validate validates the add line request
func (r *AddLineRequest) Validate() error {
	if r.ProductID == "" && r.Barcode == "" {
		return fmt.Errorf("product_id or barcode is required")
	}
	if !r.Qty.IsPositive() {
		return fmt.Errorf("qty must be positive")
	}
	return nil
}
