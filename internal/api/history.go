package api

import (
	"log/slog"
	"net/http"

	"github.com/printerdocs/manualchat/internal/session"
)

// HandleHistory handles GET /history requests. The ledger's response is
// passed through opaquely; this backend never rewrites history payloads.
func (h *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "not logged in")
		return
	}

	messages, err := h.ledger.Messages(r.Context(), userID)
	if err != nil {
		slog.Error("History fetch failed", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	JSON(w, http.StatusOK, messages)
}
