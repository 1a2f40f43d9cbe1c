// internal/handlers/invoice.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/invoice"
)

// InvoiceHandler serves the rendered invoice documents of a sale
type InvoiceHandler struct {
	sales     ports.SalesService
	renderer  ports.InvoiceRenderer
	artifacts ports.ArtifactStore
	logger    *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(
	sales ports.SalesService,
	renderer ports.InvoiceRenderer,
	artifacts ports.ArtifactStore,
	logger *slog.Logger,
) *InvoiceHandler {
	return &InvoiceHandler{
		sales:     sales,
		renderer:  renderer,
		artifacts: artifacts,
		logger:    logger.With(slog.String("handler", "invoice")),
	}
}

// GetInvoice handles GET /api/v1/sales/{id}/invoice?format=pdf
//
// The stored artifact is served when present; a missing artifact is
// rendered on the fly and stored for the next request.
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = invoice.FormatPDF
	}
	contentType, ok := invoiceContentTypes[format]
	if !ok {
		h.respondError(w, http.StatusBadRequest, "format must be pdf, html or csv")
		return
	}

	key := invoice.ArtifactKey(saleID, format)

	exists, err := h.artifacts.Exists(ctx, key)
	if err != nil {
		h.logger.WarnContext(ctx, "artifact existence check failed",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	var body []byte
	if exists {
		rc, err := h.artifacts.Download(ctx, key)
		if err == nil {
			defer rc.Close()
			body, err = io.ReadAll(rc)
			if err != nil {
				body = nil
			}
		}
	}

	if body == nil {
		body, err = h.renderFresh(r, saleID, format, key)
		if err != nil {
			if errors.Is(err, domain.ErrSaleNotFound) {
				h.respondError(w, http.StatusNotFound, "Sale not found")
				return
			}
			h.logger.ErrorContext(ctx, "invoice render failed",
				slog.String("sale_id", idStr),
				slog.String("format", format),
				slog.String("error", err.Error()))
			h.respondError(w, http.StatusInternalServerError, "Failed to render invoice")
			return
		}
	}

	filename := fmt.Sprintf("invoice_%s.%s", idStr, format)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	if _, err := w.Write(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to write invoice response",
			slog.String("error", err.Error()))
	}
}

// GetInvoiceURL handles GET /api/v1/sales/{id}/invoice/url?format=pdf
func (h *InvoiceHandler) GetInvoiceURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	saleID, err := uuid.Parse(idStr)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid sale ID format")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = invoice.FormatPDF
	}
	if _, ok := invoiceContentTypes[format]; !ok {
		h.respondError(w, http.StatusBadRequest, "format must be pdf, html or csv")
		return
	}

	key := invoice.ArtifactKey(saleID, format)

	url, err := h.artifacts.PresignedURL(ctx, key, 15*time.Minute)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to presign invoice URL",
			slog.String("key", key),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to create download URL")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"url":        url,
		"expires_in": "15m",
	})
}

// renderFresh renders one format and stores it for later requests.
func (h *InvoiceHandler) renderFresh(r *http.Request, saleID uuid.UUID, format, key string) ([]byte, error) {
	ctx := r.Context()

	sale, err := h.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch format {
	case invoice.FormatPDF:
		body, err = h.renderer.RenderPDF(sale)
	case invoice.FormatHTML:
		body, err = h.renderer.RenderHTML(sale)
	case invoice.FormatCSV:
		body, err = h.renderer.RenderCSV(sale)
	}
	if err != nil {
		return nil, err
	}

	if err := h.artifacts.Upload(ctx, key, bytes.NewReader(body), invoiceContentTypes[format]); err != nil {
		h.logger.WarnContext(ctx, "failed to store freshly rendered invoice",
			slog.String("key", key),
			slog.String("error", err.Error()))
	}

	return body, nil
}

var invoiceContentTypes = map[string]string{
	invoice.FormatPDF:  "application/pdf",
	invoice.FormatHTML: "text/html",
	invoice.FormatCSV:  "text/csv",
}

// Helper methods

func (h *InvoiceHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *InvoiceHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
