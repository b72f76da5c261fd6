package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLStore persists checkpoints in MySQL, for deployments where many
// processes share one session store.
//
// Put locks the session row (SELECT ... FOR UPDATE) before checking the step
// counter and upserting, so concurrent writers for the same session serialize
// and the per-session ordering contract holds across machines.
//
// DSN format (parseTime is required so saved_at scans into time.Time):
//
//	user:password@tcp(127.0.0.1:3306)/graphflow?parseTime=true
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore connects to MySQL and runs the schema migration.
func NewMySQLStore(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS sessions (
		session_id VARCHAR(255) PRIMARY KEY,
		step       INT NOT NULL,
		node_id    VARCHAR(255) NOT NULL,
		state      JSON NOT NULL,
		status     VARCHAR(32) NOT NULL,
		saved_at   DATETIME(6) NOT NULL
	) ENGINE=InnoDB`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions table: %w", err)
	}

	return &MySQLStore{db: db}, nil
}

// Get implements Store.
func (s *MySQLStore) Get(ctx context.Context, sessionID string) (Checkpoint, error) {
	var (
		cp    Checkpoint
		state []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT step, node_id, state, status, saved_at FROM sessions WHERE session_id = ?`, sessionID).
		Scan(&cp.Step, &cp.NodeID, &state, &cp.Status, &cp.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Checkpoint{}, ErrNotFound
	}
	if err != nil {
		return Checkpoint{}, fmt.Errorf("scan checkpoint: %w", err)
	}
	cp.SessionID = sessionID
	if err := json.Unmarshal(state, &cp.State); err != nil {
		return Checkpoint{}, fmt.Errorf("unmarshal state: %w", err)
	}
	if cp.State == nil {
		cp.State = map[string]any{}
	}
	return cp, nil
}

// Put implements Store.
func (s *MySQLStore) Put(ctx context.Context, cp Checkpoint) error {
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
		`SELECT step FROM sessions WHERE session_id = ? FOR UPDATE`, cp.SessionID).Scan(&prev)
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
		ON DUPLICATE KEY UPDATE
			step = VALUES(step),
			node_id = VALUES(node_id),
			state = VALUES(state),
			status = VALUES(status),
			saved_at = VALUES(saved_at)`,
		cp.SessionID, cp.Step, cp.NodeID, state, cp.Status, cp.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert checkpoint: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit checkpoint: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *MySQLStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}
