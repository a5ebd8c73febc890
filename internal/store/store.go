// Package store provides the local dead-letter journal for conversation
// turns that could not be written to the external ledger.
package store

import (
	"context"
	"time"

	"github.com/printerdocs/manualchat/internal/domain"
)

// SpilledTurn is a conversation turn awaiting replay against the ledger.
type SpilledTurn struct {
	ID        string
	Turn      domain.ConversationTurn
	SpilledAt time.Time
	Attempts  int
}

// Journal defines the interface for persisting failed ledger writes.
type Journal interface {
	// SpillTurn stores a turn whose ledger write failed.
	SpillTurn(ctx context.Context, turn domain.ConversationTurn) error

	// PendingTurns retrieves up to limit spilled turns, oldest first.
	PendingTurns(ctx context.Context, limit int) ([]SpilledTurn, error)

	// MarkReplayed removes a turn after a successful ledger write.
	MarkReplayed(ctx context.Context, id string) error

	// MarkAttempt bumps the attempt counter after a failed replay.
	MarkAttempt(ctx context.Context, id string) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
