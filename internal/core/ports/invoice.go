// internal/core/ports/invoice.go
package ports

import (
	"context"
	"io"
	"time"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// InvoiceRenderer turns a committed sale into downloadable documents.
// Rendering is pure; persistence belongs to the ArtifactStore.
type InvoiceRenderer interface {
	RenderPDF(sale *domain.Sale) ([]byte, error)
	RenderHTML(sale *domain.Sale) ([]byte, error)
	RenderCSV(sale *domain.Sale) ([]byte, error)
}

// ArtifactStore persists rendered invoice documents.
type ArtifactStore interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
