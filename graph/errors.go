package graph

import (
	"errors"
	"fmt"
)

// ErrGraphFrozen is returned by Builder mutation methods after Compile has
// succeeded. A compiled graph is immutable; build a new Builder to change the
// topology.
var ErrGraphFrozen = errors.New("graph is frozen: builder cannot be modified after compile")

// ErrUnroutable is returned (wrapped in a *RouteError) when a node finished
// without an explicit routing decision, has no fixed edge, and no conditional
// edge matched the current state. This is a graph-logic error, not a
// transient condition; the run ends in StatusFailed.
var ErrUnroutable = errors.New("no route from node for current state")

// ErrSessionCompleted is returned by Invoke when the session's checkpoint
// records a completed run. Completed sessions cannot be resumed; start a new
// session to run the graph again.
var ErrSessionCompleted = errors.New("session already completed")

// ErrMaxStepsExceeded is returned when a run executes more steps than the
// configured MaxSteps limit allows. It usually indicates a routing cycle that
// never reaches the terminal marker.
var ErrMaxStepsExceeded = errors.New("run exceeded maximum step limit")

// ValidationError reports a structural problem found while compiling a graph:
// a duplicate node id, an edge endpoint that names no declared node, or a
// missing entry point. Validation errors are fatal and never retried.
type ValidationError struct {
	// Code is a machine-readable classification, e.g. "DUPLICATE_NODE",
	// "UNKNOWN_ENDPOINT", "NO_ENTRY_POINT".
	Code string

	// Message names the first violation found.
	Message string
}

func (e *ValidationError) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}

// MergeError reports a state delta whose field value is incompatible with the
// field's registered reducer. The step that produced the delta is aborted and
// no checkpoint is written for it.
type MergeError struct {
	// Field is the state field whose merge failed.
	Field string

	// Cause is the reducer's error.
	Cause error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merge field %q: %v", e.Field, e.Cause)
}

// Unwrap returns the reducer's error.
func (e *MergeError) Unwrap() error { return e.Cause }

// RouteError reports a routing resolution failure: either no edge applied
// (ErrUnroutable) or a route named an undeclared destination.
type RouteError struct {
	// NodeID is the node whose outgoing routing failed.
	NodeID string

	// Target is the invalid destination, when one was named.
	Target string

	// Cause classifies the failure; ErrUnroutable when nothing matched.
	Cause error
}

func (e *RouteError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("route from %q to unknown node %q", e.NodeID, e.Target)
	}
	return fmt.Sprintf("route from %q: %v", e.NodeID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *RouteError) Unwrap() error { return e.Cause }

// NodeError wraps a failure raised by a node handler. The engine propagates
// handler errors unchanged inside a NodeError and performs no implicit
// retries; callers may retry an Invoke themselves, or attach an opt-in
// RetryPolicy to the node.
type NodeError struct {
	// NodeID identifies the failing node.
	NodeID string

	// Step is the step counter at the time of the failure.
	Step int

	// Cause is the handler's error, unchanged.
	Cause error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q step %d: %v", e.NodeID, e.Step, e.Cause)
}

// Unwrap returns the handler's error.
func (e *NodeError) Unwrap() error { return e.Cause }

// StoreError wraps a checkpoint store failure. The failing step is not
// committed; the run remains resumable from the last successfully persisted
// checkpoint.
type StoreError struct {
	// Op is the store operation that failed: "get", "put" or "delete".
	Op string

	// SessionID scopes the failure to one session.
	SessionID string

	// Cause is the store's error.
	Cause error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("checkpoint %s for session %q: %v", e.Op, e.SessionID, e.Cause)
}

// Unwrap returns the store's error.
func (e *StoreError) Unwrap() error { return e.Cause }
