// Package session provides stateless signed session credentials.
//
// A session is two scoped HttpOnly cookies: the plaintext user ID and a
// token signed with a server-held secret. Verification recomputes nothing
// server-side beyond the signature check; there is no session table. The
// token carries an explicit expiry so a leaked credential is not valid
// forever.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken indicates a token that failed signature, expiry, or
// subject validation.
var ErrInvalidToken = errors.New("invalid session token")

// Manager issues and verifies session tokens bound to a user ID.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a token manager. The secret must be non-empty.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be > 0")
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the given user ID. The token is a deterministic
// function of (userID, secret, issue time): two calls under a fixed clock
// produce identical tokens.
func (m *Manager) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("user id cannot be empty")
	}
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	})
	return token.SignedString(m.secret)
}

// Verify reports whether tokenString is a currently valid token issued for
// userID. Any malformed input, signature mismatch, expired token, or
// subject mismatch yields false; verification never errors outward.
func (m *Manager) Verify(userID, tokenString string) bool {
	if userID == "" || tokenString == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return false
	}
	return claims.Subject == userID
}
