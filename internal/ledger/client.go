// Package ledger provides the HTTP client for the external identity,
// quota, and conversation ledger service.
//
// The ledger speaks a single-endpoint action protocol: every call is a
// POST of {action, secret, ...} to the base URL. The shared secret
// authenticates this backend to the ledger; it never reaches clients.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/printerdocs/manualchat/internal/domain"
)

// ErrInvalidCredentials indicates a login rejected by the ledger.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Client calls the external ledger service.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

// New creates a ledger client with a bounded per-call timeout.
func New(baseURL, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		http:    &http.Client{Timeout: timeout},
	}
}

// LoginResult is the ledger's response to a successful login.
type LoginResult struct {
	Role       string `json:"role"`
	DailyLimit int    `json:"dailyLimit"`
	UsedToday  int    `json:"usedToday"`
}

// Login verifies credentials against the ledger's identity store.
// The password is forwarded verbatim; credential storage and hashing are
// the ledger's concern.
func (c *Client) Login(ctx context.Context, userID, password string) (*LoginResult, error) {
	var out struct {
		OK         bool   `json:"ok"`
		Role       string `json:"role"`
		DailyLimit int    `json:"dailyLimit"`
		UsedToday  int    `json:"usedToday"`
	}
	err := c.call(ctx, map[string]any{
		"action":   "login",
		"userId":   userID,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if !out.OK {
		return nil, ErrInvalidCredentials
	}
	return &LoginResult{
		Role:       out.Role,
		DailyLimit: out.DailyLimit,
		UsedToday:  out.UsedToday,
	}, nil
}

// ConsumeQuota atomically checks and consumes one unit of the user's daily
// allowance. The gate fails closed: on any transport or protocol failure
// the decision denies, so a flaky ledger can never grant free questions.
func (c *Client) ConsumeQuota(ctx context.Context, userID string) (domain.QuotaDecision, error) {
	var out struct {
		OK         bool `json:"ok"`
		DailyLimit int  `json:"dailyLimit"`
		UsedToday  int  `json:"usedToday"`
	}
	err := c.call(ctx, map[string]any{
		"action": "consumeQuota",
		"userId": userID,
	}, &out)
	if err != nil {
		return domain.QuotaDecision{Allowed: false}, err
	}
	return domain.QuotaDecision{
		Allowed:    out.OK,
		DailyLimit: out.DailyLimit,
		UsedToday:  out.UsedToday,
	}, nil
}

// AddMessage appends one conversation turn to the user's ledger history.
func (c *Client) AddMessage(ctx context.Context, turn domain.ConversationTurn) error {
	payload := map[string]any{
		"action": "addMessage",
		"userId": turn.UserID,
		"role":   turn.Role,
		"text":   turn.Text,
	}
	if len(turn.Citations) > 0 {
		payload["sources"] = turn.Citations
	}
	return c.call(ctx, payload, nil)
}

// Messages fetches the user's conversation history. The payload is passed
// through opaquely; this backend neither parses nor rewrites it.
func (c *Client) Messages(ctx context.Context, userID string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.call(ctx, map[string]any{
		"action": "getMessages",
		"userId": userID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, payload map[string]any, out any) error {
	payload["secret"] = c.secret

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal ledger request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build ledger request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("ledger request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger returned status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode ledger response: %w", err)
	}
	return nil
}
