package session

import (
	"context"
	"net/http"
	"time"
)

// Cookie names for the two session credentials.
const (
	UserCookieName  = "mc_user_id"
	TokenCookieName = "mc_session"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the authenticated user ID from the request
// context. Empty when the request did not pass the session middleware.
func UserIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userIDKey).(string); ok {
		return v
	}
	return ""
}

// SetCookies attaches both session credentials to a login response.
// HttpOnly keeps them out of script reach; Secure is relaxed only in
// development where the frontend runs on plain HTTP.
func SetCookies(w http.ResponseWriter, userID, token string, ttl time.Duration, isDev bool) {
	expires := time.Now().Add(ttl)
	http.SetCookie(w, &http.Cookie{
		Name:     UserCookieName,
		Value:    userID,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   !isDev,
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"not logged in"}`))
}

// Middleware rejects requests lacking a valid session credential pair and
// injects the user ID into the request context otherwise. Absence of
// either cookie is an authentication failure, never a server error.
func Middleware(m *Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCookie, err := r.Cookie(UserCookieName)
			if err != nil || userCookie.Value == "" {
				unauthorized(w)
				return
			}
			tokenCookie, err := r.Cookie(TokenCookieName)
			if err != nil || !m.Verify(userCookie.Value, tokenCookie.Value) {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userCookie.Value)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
