// internal/session/store.go

// Package session keeps the open cart for each terminal session in
// memory. Carts are ephemeral per-terminal state; everything durable
// lives in the ledger.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ammerola/kirana-be/internal/core/domain"
	"github.com/ammerola/kirana-be/internal/core/ports"
)

// Store implements ports.SessionStore with an in-memory map.
type Store struct {
	mu     sync.RWMutex
	carts  map[string]*domain.Cart
	logger *slog.Logger
}

var _ ports.SessionStore = (*Store)(nil)

// NewStore creates an empty session store
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		carts:  make(map[string]*domain.Cart),
		logger: logger.With(slog.String("component", "session_store")),
	}
}

// Create opens a new session with an empty cart
func (s *Store) Create(ctx context.Context) (*domain.Cart, error) {
	cart := &domain.Cart{
		SessionID: uuid.NewString(),
		UpdatedAt: time.Now(),
	}

	s.mu.Lock()
	s.carts[cart.SessionID] = cart
	s.mu.Unlock()

	return s.snapshot(cart), nil
}

// Get returns a copy of the session's cart
func (s *Store) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.RLock()
	cart, ok := s.carts[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	return s.snapshot(cart), nil
}

// Save replaces the session's cart
func (s *Store) Save(ctx context.Context, cart *domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[cart.SessionID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, cart.SessionID)
	}
	s.carts[cart.SessionID] = s.snapshot(cart)
	return nil
}

// Delete drops a session and its cart
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.carts[sessionID]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, sessionID)
	}
	delete(s.carts, sessionID)
	return nil
}

// Sweep drops carts idle longer than maxIdle
func (s *Store) Sweep(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, cart := range s.carts {
		if cart.UpdatedAt.Before(cutoff) {
			delete(s.carts, id)
			removed++
		}
	}

	if removed > 0 {
		s.logger.InfoContext(ctx, "stale sessions removed",
			slog.Int("count", removed))
	}
	return removed, nil
}

// Len returns the number of open sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}

// snapshot copies a cart so callers never share line slices with the
// store.
func (s *Store) snapshot(cart *domain.Cart) *domain.Cart {
	copied := &domain.Cart{
		SessionID: cart.SessionID,
		UpdatedAt: cart.UpdatedAt,
	}
	if len(cart.Lines) > 0 {
		copied.Lines = make([]domain.CartLine, len(cart.Lines))
		copy(copied.Lines, cart.Lines)
	}
	return copied
}
