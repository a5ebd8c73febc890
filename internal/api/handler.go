// Package api provides HTTP handlers for the manual chat API.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/printerdocs/manualchat/internal/chat"
	"github.com/printerdocs/manualchat/internal/config"
	"github.com/printerdocs/manualchat/internal/ledger"
	"github.com/printerdocs/manualchat/internal/session"
)

// maxRequestBodySize is the maximum allowed request body size (1MB).
const maxRequestBodySize = 1 << 20

// Asker runs one question through the chat pipeline.
type Asker interface {
	Ask(ctx context.Context, userID, question string) (*chat.Answer, error)
}

// Ledger covers the ledger operations the HTTP layer needs directly:
// credential checks for /login and history pass-through for /history.
type Ledger interface {
	Login(ctx context.Context, userID, password string) (*ledger.LoginResult, error)
	Messages(ctx context.Context, userID string) (json.RawMessage, error)
}

// Handler serves the chat API endpoints.
type Handler struct {
	chat     Asker
	ledger   Ledger
	sessions *session.Manager
	cfg      *config.Config
}

// NewHandler creates a new Handler with its dependencies.
func NewHandler(chatSvc Asker, ledgerClient Ledger, sessions *session.Manager, cfg *config.Config) *Handler {
	return &Handler{
		chat:     chatSvc,
		ledger:   ledgerClient,
		sessions: sessions,
		cfg:      cfg,
	}
}

// RegisterRoutes registers API routes. The session middleware guards
// everything except /login.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.HandleLogin)
	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.sessions))
		r.Post("/chat", h.HandleChat)
		r.Get("/history", h.HandleHistory)
	})
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}
