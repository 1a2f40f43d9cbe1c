// internal/workers/analytics_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// AnalyticsProcessor recomputes the dashboard summary off the request
// path so the first page load after a quiet period stays fast.
type AnalyticsProcessor struct {
	reports ports.ReportService
	cache   ports.CacheRepository
	logger  *slog.Logger
}

// NewAnalyticsProcessor creates an analytics processor
func NewAnalyticsProcessor(reports ports.ReportService, cache ports.CacheRepository, logger *slog.Logger) *AnalyticsProcessor {
	return &AnalyticsProcessor{
		reports: reports,
		cache:   cache,
		logger:  logger.With(slog.String("processor", "analytics")),
	}
}

// ProcessTask handles an analytics:refresh task.
func (p *AnalyticsProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "refreshing dashboard analytics")

	dashboard, err := p.reports.Dashboard(ctx)
	if err != nil {
		return fmt.Errorf("compute dashboard: %w", err)
	}

	cacheKey := redis_a.BuildKey(redis_a.PrefixDashboard, "main")
	if err := p.cache.SetWithTTL(ctx, cacheKey, dashboard, 5*time.Minute); err != nil {
		p.logger.WarnContext(ctx, "failed to warm dashboard cache",
			slog.String("error", err.Error()))
	}

	p.logger.InfoContext(ctx, "dashboard analytics refreshed",
		slog.Int64("today_sale_count", dashboard.TodaySaleCount),
		slog.String("today_revenue", dashboard.TodayRevenue.String()))

	return nil
}
