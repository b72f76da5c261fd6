package graph

import "context"

// Node is a unit of work in the workflow graph. It receives a read-only state
// snapshot, performs its computation (LLM calls, tools, plain logic), and
// returns a NodeResult carrying a partial-state delta and, optionally, an
// explicit routing decision.
//
// Nodes carry no mutable state between invocations: the snapshot they receive
// is a deep copy, and only the returned delta reaches the shared state, via
// the Schema's reducers.
type Node interface {
	// Run executes the node's logic against a snapshot of the current state.
	Run(ctx context.Context, state State) NodeResult
}

// NodeFunc adapts a plain function to the Node interface.
//
// Example:
//
//	clarify := graph.NodeFunc(func(ctx context.Context, s graph.State) graph.NodeResult {
//	    if s["needs_clarification"] == true {
//	        return graph.NodeResult{
//	            Delta: graph.State{"status": "needs_input"},
//	            Route: graph.Stop(),
//	        }
//	    }
//	    return graph.NodeResult{Delta: graph.State{"status": "clear"}}
//	})
type NodeFunc func(ctx context.Context, state State) NodeResult

// Run implements Node.
func (f NodeFunc) Run(ctx context.Context, state State) NodeResult {
	return f(ctx, state)
}

// NodeResult is the output of one node execution.
//
// Delta and Route together form a routing command: when Route names a
// destination, the delta and the routing decision are applied atomically in
// the same step, and the decision bypasses edge-based routing entirely.
type NodeResult struct {
	// Delta is the partial state update to merge into the shared state.
	// A nil Delta means "no change".
	Delta State

	// Route is the node's routing decision. The zero value defers to the
	// graph's edges; see Stop, Goto, Suspend and SuspendAt.
	Route Next

	// Err aborts the run with StatusFailed. The engine wraps it in a
	// *NodeError and propagates it unchanged to the Invoke caller.
	Err error
}

// Next is a node's routing decision for the step that just finished.
//
// The zero value makes no decision: the engine consults the graph's fixed and
// conditional edges. Construct non-zero values with Stop, Goto, Suspend or
// SuspendAt.
type Next struct {
	// To is the explicit destination node id. Overrides edge routing.
	To string

	// Terminal ends the run successfully (the terminal marker).
	Terminal bool

	// Interrupt parks the run in StatusSuspended after this step's
	// checkpoint is written. The checkpointed node is the resume point.
	Interrupt bool
}

// decided reports whether the node made an explicit routing decision.
func (n Next) decided() bool {
	return n.Terminal || n.To != ""
}

// Stop returns a decision that ends the run at the terminal marker.
func Stop() Next {
	return Next{Terminal: true}
}

// Goto returns a decision that routes directly to nodeID, bypassing the
// graph's edges for this step. nodeID may be End.
func Goto(nodeID string) Next {
	if nodeID == End {
		return Stop()
	}
	return Next{To: nodeID}
}

// Suspend returns a decision that parks the run awaiting external input. The
// resume point is resolved through the graph's edges, exactly as if the node
// had made no decision; re-invoking the session with supplementary state
// continues from there.
func Suspend() Next {
	return Next{Interrupt: true}
}

// SuspendAt is Suspend with an explicit resume node, bypassing edge routing.
func SuspendAt(nodeID string) Next {
	return Next{To: nodeID, Interrupt: true}
}
