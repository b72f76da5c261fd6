// Package emit provides pluggable observability for workflow execution:
// every step of every session produces events that implementations can log,
// buffer, or export as OpenTelemetry spans.
package emit

// Event names emitted by the runner. Msg always carries one of these.
const (
	EventRunStarted      = "run_started"
	EventRunResumed      = "run_resumed"
	EventRunCompleted    = "run_completed"
	EventRunSuspended    = "run_suspended"
	EventRunFailed       = "run_failed"
	EventRunCancelled    = "run_cancelled"
	EventNodeStarted     = "node_started"
	EventNodeFinished    = "node_finished"
	EventCheckpointSaved = "checkpoint_saved"
)

// Event is one observability record from a session's step loop.
type Event struct {
	// SessionID identifies the run that emitted the event.
	SessionID string

	// Step is the step counter at emission time; zero for session-level
	// events that precede the first step.
	Step int

	// NodeID is the node involved, when the event concerns one.
	NodeID string

	// Msg names the event; one of the Event* constants.
	Msg string

	// Meta carries event-specific structured data. Common keys:
	// "duration_ms", "error", "status".
	Meta map[string]any
}
