package fuzz

import (
	"fmt"
	"slices"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/spec"
)

// GenerateFuzzTests runs opts.Count strategy invocations round-robin over
// the selected strategies with one RNG seeded from opts.Seed. Strategies
// that find nothing to do are skipped, so fewer than Count tests may come
// back. Identical inputs give identical tests.
func GenerateFuzzTests(s *spec.Spec, opts Options) ([]FuzzTest, error) {
	if err := spec.Check(s); err != nil {
		return nil, err
	}

	count := opts.Count
	if count <= 0 {
		count = DefaultCount
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}
	strategies := opts.Strategies
	if len(strategies) == 0 {
		strategies = AllStrategies
	}
	for _, st := range strategies {
		if !slices.Contains(AllStrategies, st) {
			return nil, fmt.Errorf("unknown strategy %q", st)
		}
	}

	g := &generator{
		spec:     s,
		graph:    flow.NewGraph(s),
		rng:      NewRNG(opts.Seed),
		maxSteps: maxSteps,
	}

	var tests []FuzzTest
	for i := range count {
		st := strategies[i%len(strategies)]
		t, ok := g.run(st)
		if !ok {
			continue
		}
		t.Strategy = st
		t.Name = fmt.Sprintf("%s #%d", t.Name, i+1)
		tests = append(tests, t)
	}
	return tests, nil
}

type generator struct {
	spec     *spec.Spec
	graph    *flow.Graph
	rng      *RNG
	maxSteps int
}

func (g *generator) run(st Strategy) (FuzzTest, bool) {
	switch st {
	case RandomWalk:
		return g.randomWalk()
	case BoundaryAbuse:
		return g.boundaryAbuse()
	case SequenceMutation:
		return g.sequenceMutation()
	case BackButtonChaos:
		return g.backButtonChaos()
	case RapidFire:
		return g.rapidFire()
	case InvalidStateAccess:
		return g.invalidStateAccess()
	}
	return FuzzTest{}, false
}

func transitionStep(t spec.Transition) Step {
	return Step{Kind: StepTransition, TransitionID: t.ID}
}

// walk takes up to n uniformly random transitions from state and returns
// the steps and the visited states, start included.
func (g *generator) walk(state string, n int) ([]Step, []string) {
	var steps []Step
	visited := []string{state}
	for len(steps) < n {
		out := g.graph.Outgoing(state)
		if len(out) == 0 {
			break
		}
		t := Pick(g.rng, out)
		steps = append(steps, transitionStep(t))
		state = t.To
		visited = append(visited, state)
	}
	return steps, visited
}

// prelude replays the shortest path from the initial state to state.
func (g *generator) prelude(state string) ([]Step, bool) {
	path, ok := g.graph.ShortestPath(g.spec.InitialState, state)
	if !ok {
		return nil, false
	}
	steps := make([]Step, 0, len(path))
	for _, t := range path {
		steps = append(steps, transitionStep(t))
	}
	return steps, true
}

func (g *generator) randomWalk() (FuzzTest, bool) {
	steps, visited := g.walk(g.spec.InitialState, g.maxSteps)
	if len(steps) == 0 {
		return FuzzTest{}, false
	}
	return FuzzTest{
		Name:        "Random walk",
		Description: fmt.Sprintf("Take %d random transitions from %s, ending in %s.", len(steps), g.spec.DisplayName(visited[0]), g.spec.DisplayName(visited[len(visited)-1])),
		Steps:       steps,
		Expected:    ExpectUnknown,
		Categories:  []string{"crash", "unexpected state", "unhandled navigation"},
	}, true
}

// boundaryAbuse only considers input transitions whose source is reachable
// from the initial state.
func (g *generator) boundaryAbuse() (FuzzTest, bool) {
	reachable := make(map[string]bool)
	for _, id := range g.graph.Reachable(g.spec.InitialState) {
		reachable[id] = true
	}
	var inputs []spec.Transition
	for _, t := range g.spec.Transitions {
		if _, ok := t.Event.(spec.Input); ok && reachable[t.From] {
			inputs = append(inputs, t)
		}
	}
	if len(inputs) == 0 {
		return FuzzTest{}, false
	}

	t := Pick(g.rng, inputs)
	steps, ok := g.prelude(t.From)
	if !ok {
		return FuzzTest{}, false
	}

	el := t.Event.(spec.Input).Element
	n := g.rng.Between(1, 5)
	for range n {
		steps = append(steps,
			Step{Kind: StepFuzzInput, TransitionID: t.ID, Element: &el, Value: Pick(g.rng, EvilStrings)},
			Step{Kind: StepSubmit, Element: &el},
		)
	}
	return FuzzTest{
		Name:        "Boundary abuse",
		Description: fmt.Sprintf("Feed %d hostile values into %q on %s and submit each.", n, el.Label(), g.spec.DisplayName(t.From)),
		Steps:       steps,
		Expected:    ExpectUnknown,
		Categories:  []string{"input validation", "xss", "sql injection", "crash"},
	}, true
}

const commonFlowLength = 10

// commonFlow follows the most frequent unused transition from the initial
// state, first declared on ties.
func (g *generator) commonFlow() []spec.Transition {
	var out []spec.Transition
	used := make(map[string]bool)
	state := g.spec.InitialState
	for len(out) < commonFlowLength {
		var best *spec.Transition
		for _, t := range g.graph.Outgoing(state) {
			if used[t.ID] {
				continue
			}
			if best == nil || t.Frequency > best.Frequency {
				best = &t
			}
		}
		if best == nil {
			break
		}
		used[best.ID] = true
		out = append(out, *best)
		state = best.To
	}
	return out
}

func (g *generator) sequenceMutation() (FuzzTest, bool) {
	common := g.commonFlow()
	if len(common) == 0 {
		return FuzzTest{}, false
	}
	steps := make([]Step, len(common))
	for i, t := range common {
		steps[i] = transitionStep(t)
	}

	var desc string
	switch g.rng.Intn(3) {
	case 0:
		Shuffle(g.rng, steps)
		desc = "Replay the most common flow in shuffled order."
	case 1:
		idx := g.rng.Intn(len(steps))
		copies := g.rng.Between(2, 4)
		at := g.rng.Intn(len(steps) + 1)
		dup := slices.Repeat([]Step{steps[idx]}, copies)
		steps = slices.Insert(steps, at, dup...)
		desc = fmt.Sprintf("Replay the most common flow with %d extra copies of %s.", copies, steps[at].TransitionID)
	default:
		kept := steps[:0:0]
		for _, st := range steps {
			if g.rng.Float64() >= 0.3 {
				kept = append(kept, st)
			}
		}
		if len(kept) == 0 {
			kept = append(kept, steps[0])
		}
		desc = fmt.Sprintf("Replay the most common flow with %d of %d steps dropped.", len(steps)-len(kept), len(steps))
		steps = kept
	}

	return FuzzTest{
		Name:        "Sequence mutation",
		Description: desc,
		Steps:       steps,
		Expected:    ExpectUnknown,
		Categories:  []string{"state management", "order dependence"},
	}, true
}

func (g *generator) backButtonChaos() (FuzzTest, bool) {
	forward := max(1, int(float64(g.maxSteps)*0.6))
	steps, visited := g.walk(g.spec.InitialState, forward)
	if len(steps) == 0 {
		return FuzzTest{}, false
	}

	backs := g.rng.Between(1, len(steps))
	for range backs {
		steps = append(steps, Step{Kind: StepBack})
	}
	state := visited[len(visited)-1-backs]

	if out := g.graph.Outgoing(state); len(out) > 0 {
		steps = append(steps, transitionStep(Pick(g.rng, out)))
	}
	return FuzzTest{
		Name:        "Back button chaos",
		Description: fmt.Sprintf("Walk forward, press back %d times to %s, then continue.", backs, g.spec.DisplayName(state)),
		Steps:       steps,
		Expected:    ExpectUnknown,
		Categories:  []string{"navigation stack", "stale state", "back button"},
	}, true
}

func (g *generator) rapidFire() (FuzzTest, bool) {
	if len(g.spec.Transitions) == 0 {
		return FuzzTest{}, false
	}
	top := g.spec.Transitions[0]
	for _, t := range g.spec.Transitions[1:] {
		if t.Frequency > top.Frequency {
			top = t
		}
	}

	steps, ok := g.prelude(top.From)
	if !ok {
		return FuzzTest{}, false
	}
	n := g.rng.Between(10, 29)
	for range n {
		steps = append(steps, Step{Kind: StepRapid, TransitionID: top.ID})
	}
	return FuzzTest{
		Name:        "Rapid fire",
		Description: fmt.Sprintf("Repeat %s (%s) %d times without waiting.", top.ID, flow.Describe(top.Event), n),
		Steps:       steps,
		Expected:    ExpectUnknown,
		Categories:  []string{"double submission", "race condition", "debounce"},
	}, true
}

func (g *generator) invalidStateAccess() (FuzzTest, bool) {
	var candidates []spec.State
	for _, st := range g.spec.States {
		if st.ID != g.spec.InitialState {
			candidates = append(candidates, st)
		}
	}
	if len(candidates) == 0 {
		return FuzzTest{}, false
	}

	st := Pick(g.rng, candidates)
	steps := []Step{{Kind: StepNavigateDirect, State: st.ID, URL: st.Metadata.URL}}
	if out := g.graph.Outgoing(st.ID); len(out) > 0 {
		steps = append(steps, transitionStep(Pick(g.rng, out)))
	}
	return FuzzTest{
		Name:        "Invalid state access",
		Description: fmt.Sprintf("Jump straight to %s without the transitions that lead there.", g.spec.DisplayName(st.ID)),
		Steps:       steps,
		Expected:    ExpectFail,
		Categories:  []string{"authorization", "deep link", "state validation"},
	}, true
}
