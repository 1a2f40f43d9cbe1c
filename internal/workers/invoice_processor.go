// internal/workers/invoice_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/ammerola/kirana-be/internal/core/ports"
	"github.com/ammerola/kirana-be/internal/core/services"
)

// InvoiceProcessor re-renders invoice artifacts for sales whose
// documents failed to generate during checkout. The sale itself is
// already committed when this runs.
type InvoiceProcessor struct {
	sales     ports.SalesService
	renderer  ports.InvoiceRenderer
	artifacts ports.ArtifactStore
	logger    *slog.Logger
}

// NewInvoiceProcessor creates an invoice render processor
func NewInvoiceProcessor(
	sales ports.SalesService,
	renderer ports.InvoiceRenderer,
	artifacts ports.ArtifactStore,
	logger *slog.Logger,
) *InvoiceProcessor {
	return &InvoiceProcessor{
		sales:     sales,
		renderer:  renderer,
		artifacts: artifacts,
		logger:    logger.With(slog.String("processor", "invoice_render")),
	}
}

// ProcessTask handles an invoice:render task.
func (p *InvoiceProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload InvoiceRenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal invoice render payload: %w: %w", err, asynq.SkipRetry)
	}

	log := p.logger.With(slog.String("sale_id", payload.SaleID.String()))
	log.InfoContext(ctx, "re-rendering invoice")

	sale, err := p.sales.GetByID(ctx, payload.SaleID)
	if err != nil {
		// The sale may have been deleted between checkout and retry.
		log.WarnContext(ctx, "sale no longer exists, dropping render task",
			slog.String("error", err.Error()))
		return fmt.Errorf("load sale: %w: %w", err, asynq.SkipRetry)
	}

	if err := services.RenderAndStoreInvoice(ctx, p.renderer, p.artifacts, sale); err != nil {
		log.ErrorContext(ctx, "invoice render failed, will retry",
			slog.String("error", err.Error()))
		return fmt.Errorf("render invoice for sale %s: %w", payload.SaleID, err)
	}

	log.InfoContext(ctx, "invoice artifacts stored",
		slog.Int64("sale_number", sale.SaleNumber))

	return nil
}
