// internal/handlers/health.go
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/ammerola/kirana-be/internal/adapters/db"
	"github.com/ammerola/kirana-be/internal/pkg/config"
)

// HealthHandler reports liveness and readiness of the API and its
// backing stores.
type HealthHandler struct {
	db        *db.Database
	redis     *redis.Client
	asynq     *asynq.Inspector
	config    *config.Config
	logger    *slog.Logger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(
	database *db.Database,
	redisClient *redis.Client,
	asynqInspector *asynq.Inspector,
	cfg *config.Config,
	logger *slog.Logger,
) *HealthHandler {
	return &HealthHandler{
		db:        database,
		redis:     redisClient,
		asynq:     asynqInspector,
		config:    cfg,
		logger:    logger.With(slog.String("handler", "health")),
		startTime: time.Now(),
	}
}

// checkResult is the outcome of probing one dependency. Checks are
// reported as an ordered list so the dashboard renders them stably.
type checkResult struct {
	Name    string                 `json:"name"`
	Status  string                 `json:"status"` // up, down
	Latency string                 `json:"latency,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Detail  map[string]interface{} `json:"detail,omitempty"`
}

type healthReport struct {
	Status        string        `json:"status"` // ok, degraded
	Version       string        `json:"version"`
	Environment   string        `json:"environment"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	Timestamp     time.Time     `json:"timestamp"`
	Checks        []checkResult `json:"checks"`
	Runtime       runtimeInfo   `json:"runtime"`
}

type runtimeInfo struct {
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
	HeapMB     uint64 `json:"heap_mb"`
}

// Health handles the /health endpoint
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := []checkResult{
		h.checkDatabase(ctx),
		h.checkRedis(ctx),
	}
	if h.asynq != nil {
		checks = append(checks, h.checkQueues())
	}

	report := healthReport{
		Status:        "ok",
		Version:       h.config.App.Version,
		Environment:   h.config.App.Environment,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Timestamp:     time.Now(),
		Checks:        checks,
		Runtime:       collectRuntimeInfo(),
	}

	statusCode := http.StatusOK
	for _, c := range checks {
		if c.Status != "up" {
			report.Status = "degraded"
			statusCode = http.StatusServiceUnavailable
			break
		}
	}

	h.respond(ctx, w, statusCode, report)
}

// Readiness handles the /ready endpoint. It only answers whether the
// process can serve checkouts, so queue state is not consulted.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	blockers := []string{}
	if err := h.db.Ping(ctx); err != nil {
		blockers = append(blockers, "database")
	}
	if err := h.redis.Ping(ctx).Err(); err != nil {
		blockers = append(blockers, "redis")
	}

	statusCode := http.StatusOK
	if len(blockers) > 0 {
		statusCode = http.StatusServiceUnavailable
	}

	h.respond(ctx, w, statusCode, map[string]interface{}{
		"ready":    len(blockers) == 0,
		"blockers": blockers,
	})
}

func (h *HealthHandler) checkDatabase(ctx context.Context) checkResult {
	start := time.Now()
	result := checkResult{Name: "database", Status: "up"}

	if err := h.db.Ping(ctx); err != nil {
		result.Status = "down"
		result.Error = err.Error()
		h.logger.ErrorContext(ctx, "database health check failed",
			slog.String("error", err.Error()))
		return result
	}

	result.Latency = time.Since(start).String()
	result.Detail = h.db.Health(ctx)
	return result
}

func (h *HealthHandler) checkRedis(ctx context.Context) checkResult {
	start := time.Now()
	result := checkResult{Name: "redis", Status: "up"}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		result.Status = "down"
		result.Error = err.Error()
		h.logger.ErrorContext(ctx, "redis health check failed",
			slog.String("error", err.Error()))
		return result
	}

	pool := h.redis.PoolStats()
	result.Latency = time.Since(start).String()
	result.Detail = map[string]interface{}{
		"total_conns": pool.TotalConns,
		"idle_conns":  pool.IdleConns,
	}
	return result
}

// checkQueues summarizes the task backlog per queue. Depth is the
// signal the shop cares about: a growing backlog means invoices are
// not being re-rendered.
func (h *HealthHandler) checkQueues() checkResult {
	start := time.Now()
	result := checkResult{Name: "queues", Status: "up"}

	queues, err := h.asynq.Queues()
	if err != nil {
		result.Status = "down"
		result.Error = err.Error()
		return result
	}

	depth := map[string]interface{}{}
	for _, queue := range queues {
		info, err := h.asynq.GetQueueInfo(queue)
		if err != nil {
			continue
		}
		depth[queue] = map[string]interface{}{
			"pending": info.Pending,
			"active":  info.Active,
			"retry":   info.Retry,
		}
	}

	result.Latency = time.Since(start).String()
	result.Detail = depth
	return result
}

func collectRuntimeInfo() runtimeInfo {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return runtimeInfo{
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
		HeapMB:     mem.HeapAlloc / 1024 / 1024,
	}
}

func (h *HealthHandler) respond(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(ctx, "failed to encode health response",
			slog.String("error", err.Error()))
	}
}
