package graph

// Edge-based routing resolution.
//
// Precedence per step: an explicit routing decision from the node bypasses
// everything here; otherwise the node's fixed edge wins; otherwise its
// conditional groups are evaluated in declaration order and the first
// non-empty destination is taken.

// nextNode resolves where execution goes after from, given the merged state.
// It returns End when the route reaches the terminal marker.
//
// Resolution is deterministic: route functions are pure and evaluated in
// declaration order, so identical state always yields identical routing.
func (g *Graph) nextNode(from string, state State) (string, error) {
	if to, ok := g.fixed[from]; ok {
		return to, nil
	}
	for _, ce := range g.conds {
		if ce.from != from {
			continue
		}
		to := ce.route(state)
		if to == "" {
			continue
		}
		if to == End {
			return End, nil
		}
		if _, declared := g.nodes[to]; !declared {
			return "", &RouteError{NodeID: from, Target: to}
		}
		return to, nil
	}
	return "", &RouteError{NodeID: from, Cause: ErrUnroutable}
}

// validateTarget checks an explicit routing decision's destination against
// the declared node set.
func (g *Graph) validateTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, declared := g.nodes[to]; !declared {
		return &RouteError{NodeID: from, Target: to}
	}
	return nil
}
