package flow

import "github.com/roach88/gremlin/internal/spec"

// Graph indexes a spec's transitions by source state.
// Outgoing transitions keep their order of declaration in the spec, which
// makes every traversal below deterministic.
type Graph struct {
	spec     *spec.Spec
	outgoing map[string][]spec.Transition
}

// NewGraph builds the transition index for s.
func NewGraph(s *spec.Spec) *Graph {
	g := &Graph{
		spec:     s,
		outgoing: make(map[string][]spec.Transition, len(s.States)),
	}
	for _, t := range s.Transitions {
		g.outgoing[t.From] = append(g.outgoing[t.From], t)
	}
	return g
}

// Spec returns the indexed spec.
func (g *Graph) Spec() *spec.Spec {
	return g.spec
}

// Outgoing returns the transitions leaving state.
func (g *Graph) Outgoing(state string) []spec.Transition {
	return g.outgoing[state]
}

// IsTerminal reports whether state has no outgoing transitions.
func (g *Graph) IsTerminal(state string) bool {
	return len(g.outgoing[state]) == 0
}

// Terminals returns terminal state ids in declaration order.
func (g *Graph) Terminals() []string {
	var out []string
	for _, st := range g.spec.States {
		if g.IsTerminal(st.ID) {
			out = append(out, st.ID)
		}
	}
	return out
}

// ShortestPath returns the fewest transitions leading from one state to
// another, found breadth first. An empty path with ok true means from == to.
func (g *Graph) ShortestPath(from, to string) (path []spec.Transition, ok bool) {
	if from == to {
		return []spec.Transition{}, true
	}

	type hop struct {
		prev string
		via  spec.Transition
	}
	seen := map[string]bool{from: true}
	parent := make(map[string]hop)
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, t := range g.outgoing[cur] {
			if seen[t.To] {
				continue
			}
			seen[t.To] = true
			parent[t.To] = hop{prev: cur, via: t}
			if t.To == to {
				for at := to; at != from; at = parent[at].prev {
					path = append(path, parent[at].via)
				}
				reverse(path)
				return path, true
			}
			queue = append(queue, t.To)
		}
	}
	return nil, false
}

// Reachable returns every state reachable from start, start included,
// in breadth-first order.
func (g *Graph) Reachable(start string) []string {
	seen := map[string]bool{start: true}
	order := []string{start}
	for i := 0; i < len(order); i++ {
		for _, t := range g.outgoing[order[i]] {
			if !seen[t.To] {
				seen[t.To] = true
				order = append(order, t.To)
			}
		}
	}
	return order
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
