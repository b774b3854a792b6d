// Package flow enumerates user flows through a spec's state graph.
//
// A flow is a path of transitions from the initial state to a terminal
// state (one with no outgoing transitions). Extract bounds the search depth,
// forbids reusing a transition within one path, deduplicates by transition
// ids and ranks by summed frequency. The package also provides the graph
// queries generators share (outgoing edges, breadth-first shortest paths),
// loop analysis, DOT rendering and property verification along flows.
package flow
