package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/printerdocs/manualchat/internal/chat"
	"github.com/printerdocs/manualchat/internal/domain"
	"github.com/printerdocs/manualchat/internal/session"
)

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer  string            `json:"answer"`
	Sources []domain.Citation `json:"sources"`
}

// HandleChat handles POST /chat requests.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID := session.UserIDFromContext(r.Context())
	if userID == "" {
		Error(w, http.StatusUnauthorized, "not logged in")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" {
		Error(w, http.StatusBadRequest, "question is required")
		return
	}

	slog.Info("Chat request",
		"user_id", userID,
		"question_length", len(req.Question))

	answer, err := h.chat.Ask(r.Context(), userID, req.Question)
	if err != nil {
		if errors.Is(err, chat.ErrQuotaExceeded) {
			Error(w, http.StatusTooManyRequests, "daily quota exceeded")
			return
		}
		slog.Error("Chat pipeline failed", "user_id", userID, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	JSON(w, http.StatusOK, chatResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	})
}
