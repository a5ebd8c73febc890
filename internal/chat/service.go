// Package chat implements the retrieval-augmented chat pipeline: quota
// gating, passage retrieval, grounded answer generation, and best-effort
// conversation logging.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/printerdocs/manualchat/internal/domain"
	"github.com/printerdocs/manualchat/internal/index"
	"github.com/printerdocs/manualchat/internal/store"
)

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Generator produces a completion from a system directive and a user turn.
type Generator interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// QuotaGate atomically checks and consumes one unit of daily allowance.
type QuotaGate interface {
	ConsumeQuota(ctx context.Context, userID string) (domain.QuotaDecision, error)
}

// Recorder writes one conversation turn to the ledger.
type Recorder interface {
	AddMessage(ctx context.Context, turn domain.ConversationTurn) error
}

// Answer is the result of a successful pipeline run.
type Answer struct {
	Text    string
	Sources []domain.Citation
}

// Service sequences the chat pipeline. It holds no mutable cross-request
// state; the index is immutable after load and everything else is a
// stateless client.
type Service struct {
	index         *index.Index
	embedder      Embedder
	generator     Generator
	gate          QuotaGate
	recorder      Recorder
	journal       store.Journal
	topK          int
	recordTimeout time.Duration
}

// New creates the chat service. journal may be nil to disable the local
// spill of failed log writes.
func New(ix *index.Index, embedder Embedder, generator Generator, gate QuotaGate,
	recorder Recorder, journal store.Journal, topK int, recordTimeout time.Duration) *Service {
	if topK <= 0 {
		topK = 5
	}
	if recordTimeout <= 0 {
		recordTimeout = 10 * time.Second
	}
	return &Service{
		index:         ix,
		embedder:      embedder,
		generator:     generator,
		gate:          gate,
		recorder:      recorder,
		journal:       journal,
		topK:          topK,
		recordTimeout: recordTimeout,
	}
}

// Ask runs one question through the pipeline. Stages are strictly
// sequential and none is retried: quota is consumed first so a denied
// user never costs a provider call, and quota is not refunded if a later
// stage fails. Logging failures never affect the returned answer.
func (s *Service) Ask(ctx context.Context, userID, question string) (*Answer, error) {
	decision, err := s.gate.ConsumeQuota(ctx, userID)
	if err != nil {
		// Fail closed: an unreachable ledger denies rather than grants.
		return nil, fmt.Errorf("consume quota: %w", err)
	}
	if !decision.Allowed {
		return nil, fmt.Errorf("%w: %d of %d used", ErrQuotaExceeded,
			decision.UsedToday, decision.DailyLimit)
	}

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	ranked, err := s.index.Rank(queryVector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("rank passages: %w", err)
	}

	excerpts, citations := buildContext(ranked)

	text, err := s.generator.Complete(ctx, groundingDirective, buildUserPrompt(excerpts, question))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	// Best-effort bookkeeping: the answer is already computed and is more
	// valuable delivered than withheld over a ledger write failure.
	s.record(ctx, domain.ConversationTurn{
		UserID: userID,
		Role:   domain.RoleUser,
		Text:   question,
	})
	s.record(ctx, domain.ConversationTurn{
		UserID:    userID,
		Role:      domain.RoleAssistant,
		Text:      text,
		Citations: citations,
	})

	return &Answer{Text: text, Sources: citations}, nil
}

// record makes one bounded attempt to write a turn to the ledger. The
// context is detached so a client disconnect after generation cannot
// cancel bookkeeping. Failed writes spill to the local journal for the
// replay worker.
func (s *Service) record(parent context.Context, turn domain.ConversationTurn) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.recordTimeout)
	err := s.recorder.AddMessage(ctx, turn)
	cancel()
	if err == nil {
		return
	}

	slog.Error("Conversation log write failed",
		"user_id", turn.UserID,
		"role", turn.Role,
		"error", err)
	if s.journal == nil {
		return
	}

	// The ledger attempt may have failed by exhausting its deadline, so
	// the spill gets its own bounded context rather than the spent one.
	spillCtx, cancelSpill := context.WithTimeout(context.WithoutCancel(parent), s.recordTimeout)
	defer cancelSpill()
	if err := s.journal.SpillTurn(spillCtx, turn); err != nil {
		slog.Error("Failed to spill conversation turn to journal",
			"user_id", turn.UserID,
			"role", turn.Role,
			"error", err)
	}
}
