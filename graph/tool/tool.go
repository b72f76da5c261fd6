// Package tool provides executable tools for node handlers: structured
// call-outs (HTTP APIs, lookups) with map-shaped inputs and outputs that
// merge cleanly into workflow state.
package tool

import (
	"context"
	"fmt"
)

// Tool is an action a node handler can invoke with structured arguments.
//
// Implementations validate their inputs, respect context cancellation, and
// return results as map[string]any so callers can put them straight into a
// state delta.
type Tool interface {
	// Name is the tool's unique identifier, e.g. "http_request".
	Name() string

	// Call executes the tool.
	Call(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Func adapts a function to the Tool interface.
type Func struct {
	// ToolName is returned by Name.
	ToolName string

	// Fn executes the call.
	Fn func(ctx context.Context, args map[string]any) (map[string]any, error)
}

// Name implements Tool.
func (f Func) Name() string { return f.ToolName }

// Call implements Tool.
func (f Func) Call(ctx context.Context, args map[string]any) (map[string]any, error) {
	return f.Fn(ctx, args)
}

// Registry resolves tools by name, for handlers that pick a tool from model
// output. Not safe for concurrent mutation; register everything during
// setup.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a Registry holding the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds or replaces a tool.
func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

// Call dispatches to the named tool.
func (r *Registry) Call(ctx context.Context, name string, args map[string]any) (map[string]any, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t.Call(ctx, args)
}
