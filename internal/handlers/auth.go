// internal/handlers/auth.go
package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultTokenTTL is how long an unlock token stays valid without the
// shop locking again.
const DefaultTokenTTL = 12 * time.Hour

// AuthHandler gates the POS behind a single shop password. A correct
// unlock issues a token the terminal presents on every request.
type AuthHandler struct {
	password string
	tokenTTL time.Duration
	logger   *slog.Logger

	mu     sync.RWMutex
	tokens map[string]time.Time // token -> expiry
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(password string, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthHandler{
		password: password,
		tokenTTL: tokenTTL,
		logger:   logger.With(slog.String("handler", "auth")),
		tokens:   make(map[string]time.Time),
	}
}

// Unlock handles POST /api/v1/unlock
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req UnlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) != 1 {
		h.logger.WarnContext(ctx, "unlock rejected")
		h.respondError(w, http.StatusUnauthorized, "Wrong password")
		return
	}

	token := uuid.NewString()
	expiresAt := time.Now().Add(h.tokenTTL)

	h.mu.Lock()
	h.tokens[token] = expiresAt
	h.mu.Unlock()

	h.logger.InfoContext(ctx, "shop unlocked")

	h.respondJSON(w, http.StatusOK, UnlockResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	})
}

// Lock handles POST /api/v1/lock and revokes the presented token.
func (h *AuthHandler) Lock(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Shop-Token")
	if token == "" {
		h.respondError(w, http.StatusBadRequest, "X-Shop-Token header is required")
		return
	}

	h.mu.Lock()
	delete(h.tokens, token)
	h.mu.Unlock()

	h.logger.InfoContext(r.Context(), "shop locked")

	h.respondJSON(w, http.StatusOK, map[string]string{"message": "Locked"})
}

// Validate reports whether the token is known and unexpired. Expired
// tokens are removed as they are seen.
func (h *AuthHandler) Validate(token string) bool {
	h.mu.RLock()
	expiresAt, ok := h.tokens[token]
	h.mu.RUnlock()

	if !ok {
		return false
	}

	if time.Now().After(expiresAt) {
		h.mu.Lock()
		delete(h.tokens, token)
		h.mu.Unlock()
		return false
	}

	return true
}

// Helper methods

func (h *AuthHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

func (h *AuthHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// Request/Response DTOs

// UnlockRequest represents the request body for unlocking the shop
type UnlockRequest struct {
	Password string `json:"password"`
}

// UnlockResponse carries the issued shop token
type UnlockResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
