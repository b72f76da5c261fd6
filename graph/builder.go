package graph

import "fmt"

// Start is a virtual node id accepted by AddEdge as an edge source; an edge
// from Start designates the graph's entry point, equivalent to SetEntryPoint.
const Start = "__start__"

// End is the terminal marker. Routing to End (via a fixed edge, a conditional
// route, or an explicit Stop/Goto decision) completes the run.
const End = "__end__"

// RouteFunc evaluates a state snapshot and names the destination node for a
// conditional edge group. Returning "" means "no match here"; the engine then
// tries the next conditional group declared for the node. Returning End
// routes to the terminal marker.
//
// Route functions must be pure: the router re-evaluates them freely and
// identical state must always yield identical routing.
type RouteFunc func(state State) string

// fixedEdge is an unconditional transition; condEdge is a declaration-ordered
// conditional group.
type condEdge struct {
	from  string
	route RouteFunc
}

// Builder accumulates nodes and edges and produces an immutable, validated
// Graph. The build sequence mirrors how a workflow is described: declare
// nodes, wire edges, compile once.
//
//	b := graph.NewBuilder(schema)
//	b.AddNode("clarify", clarifyNode)
//	b.AddNode("brief", briefNode)
//	b.AddEdge(graph.Start, "clarify")
//	b.AddConditionalEdges("clarify", func(s graph.State) string {
//	    if s["needs_clarification"] == true {
//	        return graph.End
//	    }
//	    return "brief"
//	})
//	b.AddEdge("brief", graph.End)
//	g, err := b.Compile()
//
// After the first successful Compile the builder is frozen: every mutation
// method fails with ErrGraphFrozen. Compile itself stays callable and keeps
// returning structurally equivalent graphs.
type Builder struct {
	schema *Schema
	nodes  map[string]Node
	order  []string // node declaration order, for deterministic validation
	fixed  map[string]string
	conds  []condEdge
	entry  string
	frozen bool
}

// NewBuilder creates a Builder for graphs whose state merges through schema.
// A nil schema gets the all-Overwrite default.
func NewBuilder(schema *Schema) *Builder {
	if schema == nil {
		schema = NewSchema()
	}
	return &Builder{
		schema: schema,
		nodes:  make(map[string]Node),
		fixed:  make(map[string]string),
	}
}

// AddNode registers a node under a unique id.
func (b *Builder) AddNode(id string, n Node) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if id == "" || id == Start || id == End {
		return &ValidationError{Code: "INVALID_NODE_ID", Message: fmt.Sprintf("node id %q is reserved or empty", id)}
	}
	if n == nil {
		return &ValidationError{Code: "NIL_NODE", Message: "node " + id + " is nil"}
	}
	if _, exists := b.nodes[id]; exists {
		return &ValidationError{Code: "DUPLICATE_NODE", Message: "duplicate node id: " + id}
	}
	b.nodes[id] = n
	b.order = append(b.order, id)
	return nil
}

// AddEdge wires the fixed (unconditional) edge from one node to another. A
// node has at most one fixed edge; a second AddEdge from the same node fails.
// AddEdge(Start, id) designates the entry point.
func (b *Builder) AddEdge(from, to string) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if from == Start {
		return b.SetEntryPoint(to)
	}
	if from == "" || to == "" {
		return &ValidationError{Code: "INVALID_EDGE", Message: "edge endpoints cannot be empty"}
	}
	if from == End {
		return &ValidationError{Code: "INVALID_EDGE", Message: "the terminal marker has no outgoing edges"}
	}
	if _, exists := b.fixed[from]; exists {
		return &ValidationError{Code: "DUPLICATE_EDGE", Message: "node " + from + " already has a fixed edge"}
	}
	b.fixed[from] = to
	return nil
}

// AddConditionalEdges attaches a conditional routing function to a node.
// Groups are evaluated in declaration order at runtime; the first RouteFunc
// returning a non-empty destination wins. The fixed edge, when present, takes
// precedence over all conditional groups.
func (b *Builder) AddConditionalEdges(from string, route RouteFunc) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if from == "" || from == Start || from == End {
		return &ValidationError{Code: "INVALID_EDGE", Message: fmt.Sprintf("conditional edges cannot start at %q", from)}
	}
	if route == nil {
		return &ValidationError{Code: "INVALID_EDGE", Message: "route function cannot be nil"}
	}
	b.conds = append(b.conds, condEdge{from: from, route: route})
	return nil
}

// SetEntryPoint designates the node where fresh runs begin.
func (b *Builder) SetEntryPoint(id string) error {
	if b.frozen {
		return ErrGraphFrozen
	}
	if id == "" || id == Start || id == End {
		return &ValidationError{Code: "INVALID_NODE_ID", Message: fmt.Sprintf("entry point %q is reserved or empty", id)}
	}
	b.entry = id
	return nil
}

// Compile validates the accumulated structure and returns the immutable
// Graph. It fails with a *ValidationError naming the first violation found:
// a missing entry point, an edge endpoint that names no declared node, or an
// entry point that was never declared. Node-id uniqueness is enforced by
// AddNode and re-checked here only through the declared set.
//
// Dead ends are not a compile error: any node can emit an explicit routing
// decision at runtime, so a node without outgoing edges is only wrong if it
// actually finishes without deciding — the router reports that as
// ErrUnroutable.
//
// Compile is idempotent. The first success freezes the builder; later calls
// return a structurally equivalent graph.
func (b *Builder) Compile() (*Graph, error) {
	if b.entry == "" {
		return nil, &ValidationError{Code: "NO_ENTRY_POINT", Message: "no entry point set (AddEdge(Start, ...) or SetEntryPoint)"}
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, &ValidationError{Code: "UNKNOWN_ENDPOINT", Message: "entry point references undeclared node: " + b.entry}
	}
	for _, id := range b.order {
		if to, ok := b.fixed[id]; ok {
			if to != End {
				if _, declared := b.nodes[to]; !declared {
					return nil, &ValidationError{Code: "UNKNOWN_ENDPOINT", Message: fmt.Sprintf("edge %s -> %s references undeclared node", id, to)}
				}
			}
		}
	}
	for _, ce := range b.conds {
		if _, declared := b.nodes[ce.from]; !declared {
			return nil, &ValidationError{Code: "UNKNOWN_ENDPOINT", Message: "conditional edges reference undeclared node: " + ce.from}
		}
	}
	// Fixed edges from undeclared sources are unreachable but still structural
	// mistakes; surface them.
	for from := range b.fixed {
		if _, declared := b.nodes[from]; !declared {
			return nil, &ValidationError{Code: "UNKNOWN_ENDPOINT", Message: "edge starts at undeclared node: " + from}
		}
	}

	g := &Graph{
		schema: b.schema,
		nodes:  make(map[string]Node, len(b.nodes)),
		fixed:  make(map[string]string, len(b.fixed)),
		conds:  make([]condEdge, len(b.conds)),
		entry:  b.entry,
	}
	for id, n := range b.nodes {
		g.nodes[id] = n
	}
	for from, to := range b.fixed {
		g.fixed[from] = to
	}
	copy(g.conds, b.conds)

	b.frozen = true
	return g, nil
}

// Graph is a compiled, immutable workflow definition. It holds no run state
// and may be shared by any number of concurrent sessions without locking.
type Graph struct {
	schema *Schema
	nodes  map[string]Node
	fixed  map[string]string
	conds  []condEdge
	entry  string
}

// Entry returns the designated start node id.
func (g *Graph) Entry() string { return g.entry }

// Schema returns the state schema the graph was built with.
func (g *Graph) Schema() *Schema { return g.schema }

// node looks up a declared node by id.
func (g *Graph) node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}
