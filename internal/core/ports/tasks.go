// internal/core/ports/tasks.go
package ports

import (
	"context"

	"github.com/google/uuid"
)

// TaskEnqueuer hands work to the background worker fleet.
type TaskEnqueuer interface {
	// EnqueueInvoiceRender schedules a retry of invoice artifact
	// generation for a committed sale.
	EnqueueInvoiceRender(ctx context.Context, saleID uuid.UUID) error
	// EnqueuePriceListImport schedules parsing of an uploaded supplier
	// price-list PDF already placed in the artifact store.
	EnqueuePriceListImport(ctx context.Context, storageKey string) error
}
