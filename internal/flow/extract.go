package flow

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/gremlin/internal/spec"
)

// Extraction bounds.
const (
	DefaultMaxDepth = 10
	DefaultLimit    = 10
)

// Flow is a named path from the initial state to a terminal state.
type Flow struct {
	Name        string            `json:"name"`
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Transitions []spec.Transition `json:"transitions"`
	Frequency   int               `json:"frequency"` // sum of member frequencies
}

// IDs returns the ordered transition ids of f.
func (f Flow) IDs() []string {
	ids := make([]string, len(f.Transitions))
	for i, t := range f.Transitions {
		ids[i] = t.ID
	}
	return ids
}

// States returns the visited state ids, start included.
func (f Flow) States() []string {
	out := []string{f.Start}
	for _, t := range f.Transitions {
		out = append(out, t.To)
	}
	return out
}

// Option configures Extract.
type Option func(*options)

type options struct {
	maxDepth int
	limit    int
	keep     func(name string) bool
}

// WithMaxDepth bounds the number of transitions in a flow.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// WithLimit bounds the number of flows returned. Zero or less means no bound.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithNameFilter keeps only flows whose final name satisfies keep. The
// filter runs after naming and before ranking and truncation.
func WithNameFilter(keep func(name string) bool) Option {
	return func(o *options) {
		o.keep = keep
	}
}

// Extract enumerates flows from the initial state to terminal states.
//
// The search is depth first and follows outgoing transitions in declaration
// order. A transition may appear at most once per path; states may repeat.
// Paths with identical transition id sequences are kept once. Flows are
// named "<start> to <end>", with " (n)" appended to repeats in discovery
// order, then ranked by descending frequency and truncated.
//
// A spec that fails validation is rejected.
func Extract(s *spec.Spec, opts ...Option) ([]Flow, error) {
	if err := spec.Check(s); err != nil {
		return nil, err
	}

	o := options{maxDepth: DefaultMaxDepth, limit: DefaultLimit}
	for _, opt := range opts {
		opt(&o)
	}

	x := extractor{
		graph:    NewGraph(s),
		maxDepth: o.maxDepth,
		used:     make(map[string]bool),
		seen:     make(map[string]bool),
	}
	x.walk(s.InitialState, nil)

	names := make(map[string]int)
	for i := range x.flows {
		f := &x.flows[i]
		base := fmt.Sprintf("%s to %s", s.StateName(f.Start), s.StateName(f.End))
		names[base]++
		f.Name = base
		if n := names[base]; n > 1 {
			f.Name = fmt.Sprintf("%s (%d)", base, n)
		}
	}

	if o.keep != nil {
		x.flows = slices.DeleteFunc(x.flows, func(f Flow) bool { return !o.keep(f.Name) })
	}

	slices.SortStableFunc(x.flows, func(a, b Flow) int {
		return b.Frequency - a.Frequency
	})
	if o.limit > 0 && len(x.flows) > o.limit {
		x.flows = x.flows[:o.limit]
	}
	return x.flows, nil
}

type extractor struct {
	graph    *Graph
	maxDepth int
	used     map[string]bool // transition ids on the current branch
	seen     map[string]bool // dedup keys of accepted paths
	flows    []Flow
}

func (x *extractor) walk(state string, path []spec.Transition) {
	if len(path) > 0 && x.graph.IsTerminal(state) {
		x.accept(path)
		return
	}
	if len(path) >= x.maxDepth {
		return
	}

	for _, t := range x.graph.Outgoing(state) {
		if x.used[t.ID] {
			continue
		}
		x.used[t.ID] = true
		x.walk(t.To, append(path, t))
		x.used[t.ID] = false
	}
}

func (x *extractor) accept(path []spec.Transition) {
	ids := make([]string, len(path))
	freq := 0
	for i, t := range path {
		ids[i] = t.ID
		freq += t.Frequency
	}
	key := strings.Join(ids, "\x00")
	if x.seen[key] {
		return
	}
	x.seen[key] = true

	x.flows = append(x.flows, Flow{
		Start:       path[0].From,
		End:         path[len(path)-1].To,
		Transitions: slices.Clone(path),
		Frequency:   freq,
	})
}
