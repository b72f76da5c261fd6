package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists checkpoints in a single-file SQLite database.
//
// Zero-setup durability: suited to development, single-process deployments,
// and local workflows that must survive restarts. WAL mode keeps reads
// concurrent with the single writer; every Put runs in a transaction that
// checks the step counter before writing, so the per-session ordering
// contract holds even with multiple Runner instances sharing the file.
//
//	st, err := store.NewSQLiteStore("./sessions.db")
//	if err != nil { ... }
//	defer st.Close()
//
// Use ":memory:" as the path for a throwaway database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and runs
// the schema migration.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id TEXT PRIMARY KEY,
		step       INTEGER NOT NULL,
		node_id    TEXT NOT NULL,
		state      TEXT NOT NULL,
		status     TEXT NOT NULL,
		saved_at   TEXT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT step, node_id, state, status, saved_at FROM sessions WHERE session_id = ?`, sessionID)
	return scanCheckpoint(row, sessionID)
}

// Put implements Store. The step check and the upsert share one transaction,
// making the write atomic and the counter gap-free.
func (s *SQLiteStore) Put(ctx context.Context, cp Checkpoint) error {
	if err := cp.validate(); err != nil {
		return err
	}
	state, err := json.Marshal(cp.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var prev int
	err = tx.QueryRowContext(ctx,
		`SELECT step FROM sessions WHERE session_id = ?`, cp.SessionID).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// First checkpoint for the session.
	case err != nil:
		return fmt.Errorf("query stored step: %w", err)
	case cp.Step != prev+1:
		return fmt.Errorf("session %q: have step %d, got step %d: %w", cp.SessionID, prev, cp.Step, ErrStaleStep)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (session_id, step, node_id, state, status, saved_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			step = excluded.step,
			node_id = excluded.node_id,
			state = excluded.state,
			status = excluded.status,
			saved_at = excluded.saved_at`,
		cp.SessionID, cp.Step, cp.NodeID, string(state), cp.Status, cp.SavedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// scanCheckpoint maps one sessions row onto a Checkpoint.
func scanCheckpoint(row *sql.Row, sessionID string) (Checkpoint, error) {
	var (
		cp      Checkpoint
		state   string
		savedAt string
	)
	err := row.Scan(&cp.Step, &cp.NodeID, &state, &cp.Status, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("scan checkpoint: %w", err)
	}
	cp.SessionID = sessionID
	if err := json.Unmarshal([]byte(state), &cp.State); err != nil {
		return Checkpoint{}, fmt.Errorf("unmarshal state: %w", err)
	}
	if cp.State == nil {
		cp.State = map[string]any{}
	}
	if cp.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
		return Checkpoint{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return cp, nil
}
