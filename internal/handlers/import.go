// internal/handlers/import.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/ports"
)

// PriceListHandler accepts supplier price list PDFs and queues them
// for background processing. The worker extracts product prices and
// updates catalog cost prices.
type PriceListHandler struct {
	artifacts   ports.ArtifactStore
	tasks       ports.TaskEnqueuer
	logger      *slog.Logger
	maxFileSize int64
}

// NewPriceListHandler creates a new price list import handler
func NewPriceListHandler(artifacts ports.ArtifactStore, tasks ports.TaskEnqueuer, logger *slog.Logger, maxFileSize int64) *PriceListHandler {
	if maxFileSize <= 0 {
		maxFileSize = 50 << 20
	}
	return &PriceListHandler{
		artifacts:   artifacts,
		tasks:       tasks,
		logger:      logger.With(slog.String("handler", "pricelist")),
		maxFileSize: maxFileSize,
	}
}

// ImportPriceList handles POST /api/v1/catalog/pricelist
func (h *PriceListHandler) ImportPriceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		h.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File is required")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != "application/pdf" {
		h.respondError(w, http.StatusBadRequest, "Only PDF files are allowed")
		return
	}

	storageKey := fmt.Sprintf("pricelists/%s/%s_%s",
		time.Now().Format("2006-01-02"), uuid.NewString(), header.Filename)

	if err := h.artifacts.Upload(ctx, storageKey, file, "application/pdf"); err != nil {
		h.logger.ErrorContext(ctx, "failed to store price list upload",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to save upload")
		return
	}

	if err := h.tasks.EnqueuePriceListImport(ctx, storageKey); err != nil {
		h.logger.ErrorContext(ctx, "failed to enqueue price list import",
			slog.String("storage_key", storageKey),
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to queue import job")
		return
	}

	h.logger.InfoContext(ctx, "price list import queued",
		slog.String("storage_key", storageKey),
		slog.String("filename", header.Filename))

	h.respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"storage_key": storageKey,
		"status":      "queued",
		"message":     "Price list has been queued for processing",
	})
}

// Helper methods

func (h *PriceListHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *PriceListHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
