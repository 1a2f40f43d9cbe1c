// internal/core/ports/session.go
package ports

import (
	"context"
	"time"

	"github.com/ammerola/kirana-be/internal/core/domain"
)

// SessionStore keeps one open cart per terminal session.
type SessionStore interface {
	Create(ctx context.Context) (*domain.Cart, error)
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
	// Sweep drops carts idle longer than maxIdle and returns how many
	// were removed.
	Sweep(ctx context.Context, maxIdle time.Duration) (int, error)
}
