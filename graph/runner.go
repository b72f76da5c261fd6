package graph

import (
	"context"
	"errors"
	"time"

	"github.com/dshills/graphflow/graph/emit"
	"github.com/dshills/graphflow/graph/store"
)

// Status describes where a session is in its lifecycle.
type Status string

const (
	// StatusPending means the session is registered but no step has run.
	StatusPending Status = "pending"

	// StatusRunning means the step loop is actively executing.
	StatusRunning Status = "running"

	// StatusSuspended means the run is parked awaiting external input; the
	// last checkpoint is the resume point. Not an error.
	StatusSuspended Status = "suspended"

	// StatusCompleted means the run reached the terminal marker.
	StatusCompleted Status = "completed"

	// StatusFailed means a step aborted with an unrecovered error.
	StatusFailed Status = "failed"

	// StatusCancelled means the run was cancelled or a node timed out.
	StatusCancelled Status = "cancelled"
)

// Result is the successful outcome of an Invoke call: either a completed run
// with its final state, or a suspended run waiting for external input.
type Result struct {
	// SessionID identifies the run.
	SessionID string

	// Status is StatusCompleted or StatusSuspended.
	Status Status

	// Step is the last committed step counter.
	Step int

	// Node is the resume point for a suspended run, End for a completed one.
	Node string

	// State is the state after the last committed step.
	State State
}

// Runner drives step-by-step execution of one compiled Graph: invoke node,
// merge delta, checkpoint, route, repeat until the terminal marker, a
// suspension, or an error.
//
// A Runner is safe for concurrent use; each session runs its own sequential
// step loop and sessions share nothing but the checkpoint store, which orders
// writes per session.
//
//	g, _ := builder.Compile()
//	runner, _ := graph.NewRunner(g,
//	    graph.WithStore(store.NewSQLiteStore("sessions.db")),
//	    graph.WithMaxSteps(100),
//	)
//	res, err := runner.Invoke(ctx, graph.NewSessionID(), graph.State{"topic": "solar"})
type Runner struct {
	graph *Graph
	cfg   runnerConfig
}

// NewRunner binds a compiled graph to execution options. The defaults are an
// in-memory checkpoint store, no event emitter, no metrics, no step limit and
// no node timeout.
func NewRunner(g *Graph, opts ...Option) (*Runner, error) {
	if g == nil {
		return nil, &ValidationError{Code: "NIL_GRAPH", Message: "runner requires a compiled graph"}
	}
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Runner{graph: g, cfg: cfg}, nil
}

// Invoke runs the graph for one session until it completes, suspends, or
// fails.
//
// A fresh session (no checkpoint) starts at the entry node with input as the
// initial state. A session with a checkpoint resumes: input is merged into
// the checkpointed state through the Schema and execution continues at the
// checkpointed node — earlier steps are never replayed. Re-invoking a
// completed session fails with ErrSessionCompleted.
//
// On success the Result's Status is StatusCompleted (terminal marker reached,
// State is final) or StatusSuspended (a node parked the run; re-invoke with
// supplementary state to continue). Suspension is a normal outcome, not an
// error.
//
// Errors are returned typed: *ValidationError, *NodeError, *MergeError,
// *RouteError, *StoreError, ErrMaxStepsExceeded, or the context's error on
// cancellation and node timeout. The core never retries implicitly; the last
// successfully written checkpoint stays resumable after *NodeError,
// *StoreError and cancellation.
func (r *Runner) Invoke(ctx context.Context, sessionID string, input State) (*Result, error) {
	if sessionID == "" {
		return nil, &ValidationError{Code: "INVALID_SESSION", Message: "session id cannot be empty"}
	}

	current, nodeID, step, resumed, err := r.restore(ctx, sessionID, input)
	if err != nil {
		return nil, err
	}

	if r.cfg.metrics != nil {
		r.cfg.metrics.sessionStarted()
		defer r.cfg.metrics.sessionFinished()
	}
	if resumed {
		r.emit(emit.Event{SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventRunResumed})
	} else {
		r.emit(emit.Event{SessionID: sessionID, NodeID: nodeID, Msg: emit.EventRunStarted})
	}

	for {
		step++

		if r.cfg.maxSteps > 0 && step > r.cfg.maxSteps {
			return nil, r.fail(sessionID, step, nodeID, ErrMaxStepsExceeded)
		}
		if err := ctx.Err(); err != nil {
			return nil, r.cancel(sessionID, step, nodeID, err)
		}

		node, ok := r.graph.node(nodeID)
		if !ok {
			return nil, r.fail(sessionID, step, nodeID, &RouteError{NodeID: nodeID, Target: nodeID})
		}

		snapshot, err := deepCopy(current)
		if err != nil {
			return nil, r.fail(sessionID, step, nodeID, err)
		}

		r.emit(emit.Event{SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventNodeStarted})
		started := time.Now()
		res, execErr := r.executeNode(ctx, nodeID, node, snapshot)
		elapsed := time.Since(started)

		if execErr != nil {
			// Timeout and cancellation are treated identically.
			r.observeStep(nodeID, string(StatusCancelled), elapsed)
			return nil, r.cancel(sessionID, step, nodeID, execErr)
		}
		if res.Err != nil {
			r.observeStep(nodeID, string(StatusFailed), elapsed)
			return nil, r.fail(sessionID, step, nodeID, &NodeError{NodeID: nodeID, Step: step, Cause: res.Err})
		}
		r.observeStep(nodeID, "success", elapsed)
		r.emit(emit.Event{
			SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventNodeFinished,
			Meta: map[string]any{"duration_ms": elapsed.Milliseconds()},
		})

		merged, err := r.graph.schema.Merge(current, res.Delta)
		if err != nil {
			return nil, r.fail(sessionID, step, nodeID, err)
		}

		next, err := r.resolveNext(nodeID, res.Route, merged)
		if err != nil {
			return nil, r.fail(sessionID, step, nodeID, err)
		}

		status := StatusRunning
		switch {
		case next == End:
			status = StatusCompleted
		case res.Route.Interrupt:
			status = StatusSuspended
		}

		if err := r.save(ctx, store.Checkpoint{
			SessionID: sessionID,
			Step:      step,
			NodeID:    next,
			State:     merged,
			Status:    string(status),
			SavedAt:   time.Now().UTC(),
		}); err != nil {
			return nil, r.fail(sessionID, step, nodeID, err)
		}

		switch status {
		case StatusCompleted:
			r.emit(emit.Event{SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventRunCompleted})
			return &Result{SessionID: sessionID, Status: StatusCompleted, Step: step, Node: End, State: merged}, nil
		case StatusSuspended:
			if r.cfg.metrics != nil {
				r.cfg.metrics.suspended()
			}
			r.emit(emit.Event{SessionID: sessionID, Step: step, NodeID: next, Msg: emit.EventRunSuspended})
			return &Result{SessionID: sessionID, Status: StatusSuspended, Step: step, Node: next, State: merged}, nil
		}

		current = merged
		nodeID = next
	}
}

// restore loads the session's checkpoint, if any, and prepares the starting
// state, node and step counter.
func (r *Runner) restore(ctx context.Context, sessionID string, input State) (State, string, int, bool, error) {
	cp, err := r.cfg.store.Get(ctx, sessionID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		initial, cpErr := deepCopy(input)
		if cpErr != nil {
			return nil, "", 0, false, cpErr
		}
		return initial, r.graph.entry, 0, false, nil
	case err != nil:
		return nil, "", 0, false, &StoreError{Op: "get", SessionID: sessionID, Cause: err}
	}

	if Status(cp.Status) == StatusCompleted {
		return nil, "", 0, false, ErrSessionCompleted
	}
	merged, err := r.graph.schema.Merge(cp.State, input)
	if err != nil {
		return nil, "", 0, false, err
	}
	return merged, cp.NodeID, cp.Step, true, nil
}

// resolveNext applies routing precedence: explicit decision first, then the
// graph's edges.
func (r *Runner) resolveNext(nodeID string, route Next, state State) (string, error) {
	if route.decided() {
		if route.Terminal {
			return End, nil
		}
		if err := r.graph.validateTarget(nodeID, route.To); err != nil {
			return "", err
		}
		return route.To, nil
	}
	return r.graph.nextNode(nodeID, state)
}

// save persists a checkpoint, wrapping store failures. The step is not
// committed until the store accepts the write.
func (r *Runner) save(ctx context.Context, cp store.Checkpoint) error {
	started := time.Now()
	if err := r.cfg.store.Put(ctx, cp); err != nil {
		return &StoreError{Op: "put", SessionID: cp.SessionID, Cause: err}
	}
	if r.cfg.metrics != nil {
		r.cfg.metrics.checkpointSaved(time.Since(started))
	}
	r.emit(emit.Event{
		SessionID: cp.SessionID, Step: cp.Step, NodeID: cp.NodeID, Msg: emit.EventCheckpointSaved,
		Meta: map[string]any{"status": cp.Status},
	})
	return nil
}

func (r *Runner) fail(sessionID string, step int, nodeID string, err error) error {
	if r.cfg.metrics != nil {
		r.cfg.metrics.failed()
	}
	r.emit(emit.Event{
		SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventRunFailed,
		Meta: map[string]any{"error": err.Error()},
	})
	return err
}

func (r *Runner) cancel(sessionID string, step int, nodeID string, err error) error {
	r.emit(emit.Event{
		SessionID: sessionID, Step: step, NodeID: nodeID, Msg: emit.EventRunCancelled,
		Meta: map[string]any{"error": err.Error()},
	})
	return err
}

func (r *Runner) emit(ev emit.Event) {
	if r.cfg.emitter != nil {
		r.cfg.emitter.Emit(ev)
	}
}

func (r *Runner) observeStep(nodeID, status string, d time.Duration) {
	if r.cfg.metrics != nil {
		r.cfg.metrics.stepObserved(nodeID, status, d)
	}
}
