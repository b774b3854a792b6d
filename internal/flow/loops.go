package flow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gremlin/internal/spec"
)

// Loop is a group of states that can be revisited, either a strongly
// connected component of two or more states or a single state with a
// self transition.
//
// Loops are not errors: carts, pagination and retries are all loops. They
// matter because flow extraction only enumerates them up to the depth bound.
type Loop struct {
	States  []string `json:"states"`  // declaration order
	Path    []string `json:"path"`    // one traversal: ["a", "b", "a"]
	Message string   `json:"message"` // human-readable description
}

// Loops finds the loops of s's state graph with Tarjan's algorithm.
// Results follow declaration order of their first state.
func Loops(s *spec.Spec) []Loop {
	g := NewGraph(s)
	order := make(map[string]int, len(s.States))
	for i, st := range s.States {
		order[st.ID] = i
	}

	var loops []Loop
	for _, scc := range tarjanSCC(s, g) {
		if len(scc) == 1 && !hasSelfLoop(g, scc[0]) {
			continue
		}
		slices.SortFunc(scc, func(a, b string) int { return order[a] - order[b] })
		path := cyclePath(g, scc)
		loops = append(loops, Loop{
			States:  scc,
			Path:    path,
			Message: fmt.Sprintf("loop: %s", strings.Join(path, " -> ")),
		})
	}
	slices.SortFunc(loops, func(a, b Loop) int { return order[a.States[0]] - order[b.States[0]] })
	return loops
}

func hasSelfLoop(g *Graph, state string) bool {
	for _, t := range g.Outgoing(state) {
		if t.To == state {
			return true
		}
	}
	return false
}

// tarjanSCC returns the strongly connected components of the state graph.
// Roots are visited in declaration order.
func tarjanSCC(s *spec.Spec, g *Graph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, t := range g.Outgoing(v) {
			w := t.To
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, st := range s.States {
		if _, visited := indices[st.ID]; !visited {
			strongConnect(st.ID)
		}
	}
	return sccs
}

// cyclePath walks from the first state of scc through other members until
// it returns to the start.
func cyclePath(g *Graph, scc []string) []string {
	start := scc[0]
	if len(scc) == 1 {
		return []string{start, start}
	}

	members := make(map[string]bool, len(scc))
	for _, st := range scc {
		members[st] = true
	}

	path := []string{start}
	visited := map[string]bool{start: true}
	cur := start
	for {
		next := ""
		for _, t := range g.Outgoing(cur) {
			if t.To == start && len(path) > 1 {
				return append(path, start)
			}
			if members[t.To] && !visited[t.To] && next == "" {
				next = t.To
			}
		}
		if next == "" {
			// Every member is visited; close the loop.
			return append(path, start)
		}
		visited[next] = true
		path = append(path, next)
		cur = next
	}
}
