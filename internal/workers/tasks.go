// internal/workers/tasks.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/ammerola/kirana-be/internal/core/ports"
)

// Task types processed by the worker binary.
const (
	TypeInvoiceRender    = "invoice:render"
	TypePriceListImport  = "pricelist:import"
	TypeAnalyticsRefresh = "analytics:refresh"
	TypeCleanupStale     = "cleanup:stale"
)

// InvoiceRenderPayload asks the worker to re-render the invoice
// documents for a committed sale.
type InvoiceRenderPayload struct {
	SaleID uuid.UUID `json:"sale_id"`
}

// PriceListImportPayload points the worker at an uploaded supplier
// price list in object storage.
type PriceListImportPayload struct {
	StorageKey string `json:"storage_key"`
}

// Enqueuer wraps the asynq client behind ports.TaskEnqueuer.
type Enqueuer struct {
	client *asynq.Client
	logger *slog.Logger
}

var _ ports.TaskEnqueuer = (*Enqueuer)(nil)

// NewEnqueuer creates a task enqueuer
func NewEnqueuer(client *asynq.Client, logger *slog.Logger) *Enqueuer {
	return &Enqueuer{
		client: client,
		logger: logger.With(slog.String("component", "enqueuer")),
	}
}

// EnqueueInvoiceRender queues a sale for invoice re-rendering.
func (e *Enqueuer) EnqueueInvoiceRender(ctx context.Context, saleID uuid.UUID) error {
	b, err := json.Marshal(InvoiceRenderPayload{SaleID: saleID})
	if err != nil {
		return fmt.Errorf("marshal invoice render payload: %w", err)
	}

	task := asynq.NewTask(TypeInvoiceRender, b)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue("default"),
		asynq.MaxRetry(5),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return fmt.Errorf("enqueue invoice render: %w", err)
	}

	e.logger.InfoContext(ctx, "invoice render queued",
		slog.String("sale_id", saleID.String()),
		slog.String("task_id", info.ID))

	return nil
}

// EnqueuePriceListImport queues a price list PDF for processing.
func (e *Enqueuer) EnqueuePriceListImport(ctx context.Context, storageKey string) error {
	b, err := json.Marshal(PriceListImportPayload{StorageKey: storageKey})
	if err != nil {
		return fmt.Errorf("marshal price list payload: %w", err)
	}

	task := asynq.NewTask(TypePriceListImport, b)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue("low"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour))
	if err != nil {
		return fmt.Errorf("enqueue price list import: %w", err)
	}

	e.logger.InfoContext(ctx, "price list import queued",
		slog.String("storage_key", storageKey),
		slog.String("task_id", info.ID))

	return nil
}
