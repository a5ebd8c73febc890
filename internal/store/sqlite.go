package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/printerdocs/manualchat/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteJournal implements Journal using SQLite.
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed journal.
func NewSQLite(dbPath string) (Journal, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	j := &SQLiteJournal{db: db}
	if err := j.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS spilled_turns (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		citations_json TEXT,
		spilled_at INTEGER NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_spilled_at ON spilled_turns(spilled_at);
	`
	if _, err := j.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SpillTurn stores a turn whose ledger write failed.
func (j *SQLiteJournal) SpillTurn(ctx context.Context, turn domain.ConversationTurn) error {
	var citations sql.NullString
	if len(turn.Citations) > 0 {
		raw, err := json.Marshal(turn.Citations)
		if err != nil {
			return fmt.Errorf("marshal citations: %w", err)
		}
		citations = sql.NullString{String: string(raw), Valid: true}
	}

	query := `
		INSERT INTO spilled_turns (id, user_id, role, text, citations_json, spilled_at, attempts)
		VALUES (?, ?, ?, ?, ?, ?, 0)`

	_, err := j.db.ExecContext(ctx, query,
		uuid.NewString(), turn.UserID, turn.Role, turn.Text, citations, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert spilled turn: %w", err)
	}
	return nil
}

// PendingTurns retrieves up to limit spilled turns, oldest first.
func (j *SQLiteJournal) PendingTurns(ctx context.Context, limit int) ([]SpilledTurn, error) {
	query := `
		SELECT id, user_id, role, text, citations_json, spilled_at, attempts
		FROM spilled_turns ORDER BY spilled_at ASC LIMIT ?`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query spilled turns: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var turns []SpilledTurn
	for rows.Next() {
		var st SpilledTurn
		var citations sql.NullString
		var spilledAt int64

		if err := rows.Scan(&st.ID, &st.Turn.UserID, &st.Turn.Role, &st.Turn.Text,
			&citations, &spilledAt, &st.Attempts); err != nil {
			return nil, fmt.Errorf("scan spilled turn: %w", err)
		}
		if citations.Valid {
			if err := json.Unmarshal([]byte(citations.String), &st.Turn.Citations); err != nil {
				return nil, fmt.Errorf("unmarshal citations for turn %s: %w", st.ID, err)
			}
		}
		st.SpilledAt = time.Unix(spilledAt, 0)
		turns = append(turns, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate spilled turns: %w", err)
	}
	return turns, nil
}

// MarkReplayed removes a turn after a successful ledger write.
func (j *SQLiteJournal) MarkReplayed(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM spilled_turns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete spilled turn: %w", err)
	}
	return nil
}

// MarkAttempt bumps the attempt counter after a failed replay.
func (j *SQLiteJournal) MarkAttempt(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx,
		`UPDATE spilled_turns SET attempts = attempts + 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("update spilled turn attempts: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (j *SQLiteJournal) Ping(ctx context.Context) error {
	return j.db.PingContext(ctx)
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
