package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/printerdocs/manualchat/internal/ledger"
	"github.com/printerdocs/manualchat/internal/session"
)

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK         bool   `json:"ok"`
	Role       string `json:"role"`
	DailyLimit int    `json:"dailyLimit"`
	UsedToday  int    `json:"usedToday"`
}

// HandleLogin handles POST /login requests. Credentials are verified by
// the external ledger; on success the response carries both session
// cookies so subsequent requests authenticate statelessly.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.Password == "" {
		Error(w, http.StatusBadRequest, "missing credentials")
		return
	}

	result, err := h.ledger.Login(r.Context(), req.UserID, req.Password)
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidCredentials) {
			Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		slog.Error("Login failed against ledger", "user_id", req.UserID, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	token, err := h.sessions.Issue(req.UserID)
	if err != nil {
		slog.Error("Failed to issue session token", "user_id", req.UserID, "error", err)
		Error(w, http.StatusInternalServerError, "internal server error")
		return
	}

	session.SetCookies(w, req.UserID, token, h.cfg.Session.TTL, h.cfg.IsDevelopment())
	JSON(w, http.StatusOK, loginResponse{
		OK:         true,
		Role:       result.Role,
		DailyLimit: result.DailyLimit,
		UsedToday:  result.UsedToday,
	})
}
