// Package store provides pluggable checkpoint persistence for graphflow
// sessions. One checkpoint per session is retained: the latest committed
// step, which is always the resume point.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned by Get when no checkpoint exists for a session.
var ErrNotFound = errors.New("session not found")

// ErrStaleStep is returned by Put when a checkpoint's step counter does not
// advance the stored one by exactly one. Step counters are strictly
// increasing and gap-free per session; a stale write means a second writer or
// a logic error, never something to retry.
var ErrStaleStep = errors.New("checkpoint step does not advance the stored step")

// Checkpoint is the durable snapshot of one session after a committed step:
// the merged state, the node where execution resumes, and the step counter.
type Checkpoint struct {
	// SessionID scopes the checkpoint to one independent run.
	SessionID string `json:"session_id"`

	// Step is the monotonically increasing, gap-free step counter. The
	// first committed step of a session is 1.
	Step int `json:"step"`

	// NodeID is where execution resumes: the node resolved as next after
	// the checkpointed step, or the terminal marker for completed runs.
	NodeID string `json:"node_id"`

	// State is the merged state after the checkpointed step. Values must
	// be JSON-serializable.
	State map[string]any `json:"state"`

	// Status is the run status at checkpoint time (running, suspended,
	// completed).
	Status string `json:"status"`

	// SavedAt records when the checkpoint was written.
	SavedAt time.Time `json:"saved_at"`
}

// validate checks the invariants every implementation enforces on Put.
func (c Checkpoint) validate() error {
	if c.SessionID == "" {
		return fmt.Errorf("checkpoint has no session id")
	}
	if c.Step < 1 {
		return fmt.Errorf("checkpoint step must be >= 1, got %d", c.Step)
	}
	return nil
}

// Store persists the latest checkpoint per session.
//
// Contract, shared by all implementations:
//
//   - Put is atomic per session: a concurrent Get never observes a partially
//     written checkpoint, and writes for one session never interleave.
//   - Put enforces monotonic, gap-free steps: it accepts a checkpoint only
//     when its Step is exactly one greater than the stored Step (or when no
//     checkpoint exists yet), otherwise ErrStaleStep.
//   - Get returns a copy; mutating it never affects stored data.
//   - Operations on different sessions are independent and need no caller
//     coordination.
//
// The in-memory implementation carries no durability across restarts;
// production deployments use SQLiteStore, MySQLStore, RedisStore, or their
// own implementation of this interface.
type Store interface {
	// Get returns the latest checkpoint for a session, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (Checkpoint, error)

	// Put atomically replaces the session's checkpoint.
	Put(ctx context.Context, cp Checkpoint) error

	// Delete removes a session's checkpoint. Deleting an absent session is
	// not an error.
	Delete(ctx context.Context, sessionID string) error
}
