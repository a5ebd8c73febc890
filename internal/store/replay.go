package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/printerdocs/manualchat/internal/domain"
)

const replayBatchSize = 50

// Recorder writes one conversation turn to the ledger.
type Recorder interface {
	AddMessage(ctx context.Context, turn domain.ConversationTurn) error
}

// StartReplayWorker runs a background goroutine that periodically retries
// spilled conversation turns against the ledger. Replay runs entirely off
// the request path; failures here only delay the next attempt.
func StartReplayWorker(ctx context.Context, journal Journal, recorder Recorder, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Replay worker started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				replayPending(ctx, journal, recorder)
			case <-ctx.Done():
				slog.Info("Replay worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func replayPending(ctx context.Context, journal Journal, recorder Recorder) {
	turns, err := journal.PendingTurns(ctx, replayBatchSize)
	if err != nil {
		slog.Error("Replay worker failed to list pending turns", "error", err)
		return
	}
	if len(turns) == 0 {
		return
	}

	slog.Info("Replay worker found pending turns", "count", len(turns))

	for _, st := range turns {
		if ctx.Err() != nil {
			return
		}
		if err := recorder.AddMessage(ctx, st.Turn); err != nil {
			slog.Warn("Replay worker failed to deliver turn",
				"turn_id", st.ID,
				"user_id", st.Turn.UserID,
				"attempts", st.Attempts+1,
				"error", err)
			if err := journal.MarkAttempt(ctx, st.ID); err != nil {
				slog.Error("Replay worker failed to record attempt", "turn_id", st.ID, "error", err)
			}
			continue
		}
		if err := journal.MarkReplayed(ctx, st.ID); err != nil {
			slog.Error("Replay worker failed to remove replayed turn", "turn_id", st.ID, "error", err)
		}
	}
}
