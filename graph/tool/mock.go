package tool

import (
	"context"
	"sync"
)

// Mock is a scriptable Tool for tests: it returns a fixed result (or error)
// and records every call.
type Mock struct {
	mu    sync.Mutex
	calls []map[string]any

	// ToolName is returned by Name; defaults to "mock".
	ToolName string

	// Result is returned by every Call.
	Result map[string]any

	// Err, when set, is returned instead of Result.
	Err error
}

// Name implements Tool.
func (m *Mock) Name() string {
	if m.ToolName == "" {
		return "mock"
	}
	return m.ToolName
}

// Call implements Tool.
func (m *Mock) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}

// Calls returns a copy of the recorded call arguments, in order.
func (m *Mock) Calls() []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]any, len(m.calls))
	copy(out, m.calls)
	return out
}
