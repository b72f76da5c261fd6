package model

import (
	"context"
	"fmt"
	"sync"
)

// Mock is a scriptable ChatModel for tests and examples: it replays queued
// responses in order and records every request it receives.
//
//	m := model.NewMock(
//	    model.Response{Text: "no clarification needed"},
//	    model.Response{Text: "research brief: ..."},
//	)
type Mock struct {
	mu        sync.Mutex
	responses []Response
	requests  []Request

	// Err, when set, is returned by every Chat call instead of a response.
	Err error
}

// NewMock creates a Mock that replays the given responses in order. Calls
// past the end of the script return an error.
func NewMock(responses ...Response) *Mock {
	return &Mock{responses: responses}
}

// Name implements ChatModel.
func (*Mock) Name() string { return "mock" }

// Chat implements ChatModel.
func (m *Mock) Chat(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if m.Err != nil {
		return Response{}, m.Err
	}
	if len(m.requests) > len(m.responses) {
		return Response{}, fmt.Errorf("mock model: no scripted response for call %d", len(m.requests))
	}
	return m.responses[len(m.requests)-1], nil
}

// Requests returns a copy of every request received so far, in order.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}
