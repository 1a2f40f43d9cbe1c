// internal/handlers/reports.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

var (
	errInvalidDate   = errors.New("dates must use the YYYY-MM-DD format")
	errInvertedRange = errors.New("to must not be before from")
)

// ReportHandler handles reporting HTTP requests
type ReportHandler struct {
	reports ports.ReportService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports ports.ReportService, cache ports.CacheRepository, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		cache:   cache,
		logger:  logger.With(slog.String("handler", "reports")),
	}
}

// SalesReport handles GET /api/v1/reports/sales
func (h *ReportHandler) SalesReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixReport, "sales", h.rangeKey(from, to))
	var report ports.SalesReport

	cacheErr := h.cache.GetOrSet(ctx, cacheKey, &report, func() (interface{}, error) {
		return h.reports.SalesReport(ctx, from, to)
	}, 10*time.Minute)

	if cacheErr != nil {
		h.logger.ErrorContext(ctx, "sales report failed",
			slog.String("error", cacheErr.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to build sales report")
		return
	}

	h.respondJSON(w, http.StatusOK, report)
}

// TimeSeries handles GET /api/v1/reports/timeseries
func (h *ReportHandler) TimeSeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	series, err := h.reports.TimeSeries(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "time series failed",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to build time series")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":   from,
		"to":     to,
		"series": series,
	})
}

// TopProducts handles GET /api/v1/reports/top-products
func (h *ReportHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	products, err := h.reports.TopProducts(ctx, from, to, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "top products failed",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to rank products")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":     from,
		"to":       to,
		"products": products,
	})
}

// CategoryRevenue handles GET /api/v1/reports/categories
func (h *ReportHandler) CategoryRevenue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, to, err := h.parseRange(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.reports.CategoryRevenue(ctx, from, to)
	if err != nil {
		h.logger.ErrorContext(ctx, "category revenue failed",
			slog.String("error", err.Error()))
		h.respondError(w, http.StatusInternalServerError, "Failed to aggregate categories")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"from":       from,
		"to":         to,
		"categories": categories,
	})
}

// parseRange reads from/to query dates. Defaults to the last 30 days,
// the to date is inclusive.
func (h *ReportHandler) parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	to := now

	if f := r.URL.Query().Get("from"); f != "" {
		t, err := time.Parse("2006-01-02", f)
		if err != nil {
			return from, to, errInvalidDate
		}
		from = t
	}

	if t := r.URL.Query().Get("to"); t != "" {
		parsed, err := time.Parse("2006-01-02", t)
		if err != nil {
			return from, to, errInvalidDate
		}
		to = parsed.AddDate(0, 0, 1)
	}

	if to.Before(from) {
		return from, to, errInvertedRange
	}

	return from, to, nil
}

func (h *ReportHandler) rangeKey(from, to time.Time) string {
	return from.Format("20060102") + "_" + to.Format("20060102")
}

// Helper methods

func (h *ReportHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *ReportHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
