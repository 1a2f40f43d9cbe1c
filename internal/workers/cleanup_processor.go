// internal/workers/cleanup_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	redis_a "github.com/ammerola/kirana-be/internal/adapters/redis_adapter"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// CleanupProcessor clears stale export caches. Cart sessions live in
// API process memory and are swept there, not here.
type CleanupProcessor struct {
	cache  ports.CacheRepository
	logger *slog.Logger
}

// NewCleanupProcessor creates a cleanup processor
func NewCleanupProcessor(cache ports.CacheRepository, logger *slog.Logger) *CleanupProcessor {
	return &CleanupProcessor{
		cache:  cache,
		logger: logger.With(slog.String("processor", "cleanup")),
	}
}

// ProcessTask handles a cleanup:stale task.
func (p *CleanupProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "clearing stale export caches")

	pattern := fmt.Sprintf("%s:*", redis_a.PrefixExport)
	if err := p.cache.DeletePattern(ctx, pattern); err != nil {
		return fmt.Errorf("clear export caches: %w", err)
	}

	p.logger.InfoContext(ctx, "cleanup completed")
	return nil
}
