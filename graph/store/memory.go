package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemStore is the in-memory Store: the reference implementation used by
// default, for tests, and for short-lived workflows where durability across
// restarts does not matter.
//
// Checkpoints survive only as long as the process. State is copied through a
// JSON round trip on both Put and Get, so callers can never alias stored
// data — and so state comes back in the same shape a durable store would
// return it (numbers as float64, nested values as map[string]any / []any).
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]Checkpoint
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]Checkpoint)}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, sessionID string) (Checkpoint, error) {
	m.mu.RLock()
	cp, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return Checkpoint{}, ErrNotFound
	}
	state, err := copyState(cp.State)
	if err != nil {
		return Checkpoint{}, err
	}
	cp.State = state
	return cp, nil
}

// Put implements Store. The write happens under one lock, so a concurrent
// Get sees either the previous checkpoint or the new one, never a mix.
func (m *MemStore) Put(_ context.Context, cp Checkpoint) error {
	if err := cp.validate(); err != nil {
		return err
	}
	state, err := copyState(cp.State)
	if err != nil {
		return err
	}
	cp.State = state

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev, ok := m.sessions[cp.SessionID]; ok && cp.Step != prev.Step+1 {
		return fmt.Errorf("session %q: have step %d, got step %d: %w", cp.SessionID, prev.Step, cp.Step, ErrStaleStep)
	}
	m.sessions[cp.SessionID] = cp
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.sessions, sessionID)
	m.mu.Unlock()
	return nil
}

// copyState deep-copies a state map via JSON, matching the shape durable
// stores return.
func copyState(state map[string]any) (map[string]any, error) {
	if state == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("marshal state: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal state: %w", err)
	}
	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
