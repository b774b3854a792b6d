package flow

import (
	"errors"
	"fmt"

	"github.com/roach88/gremlin/internal/spec"
)

// Verdict is the outcome of checking one property against a set of flows.
type Verdict struct {
	PropertyID     string              `json:"propertyId"`
	Name           string              `json:"name"`
	Kind           spec.PropertyKind   `json:"kind"`
	Status         spec.PropertyStatus `json:"status"`
	Counterexample *Flow               `json:"counterexample,omitempty"`
	Step           int                 `json:"step"` // position in the counterexample, 0 = start state
}

// Verify checks every property of s along flows by simulation.
//
// Each flow starts from the variables' initial values in its start state.
// After each transition its action is applied and the predicate evaluated.
// Guards are not evaluated: the flow is taken as observed. Element
// predicates see no elements.
//
//   - always holds when the predicate is true at every position of every flow
//   - never holds when it is false at every position of every flow
//   - eventually holds when every flow reaches a position where it is true
//
// The first violating flow, in the given order, is the counterexample.
// Actions of unknown kinds are skipped.
func Verify(s *spec.Spec, flows []Flow) ([]Verdict, error) {
	verdicts := make([]Verdict, 0, len(s.Properties))
	for _, p := range s.Properties {
		v := Verdict{
			PropertyID: p.ID,
			Name:       p.Name,
			Kind:       p.Kind,
			Status:     spec.StatusVerified,
		}

		for i := range flows {
			holds, step, err := checkFlow(s, p, flows[i])
			if err != nil {
				return nil, fmt.Errorf("property %q on flow %q: %w", p.ID, flows[i].Name, err)
			}
			if !holds {
				v.Status = spec.StatusViolated
				v.Counterexample = &flows[i]
				v.Step = step
				break
			}
		}
		verdicts = append(verdicts, v)
	}
	return verdicts, nil
}

// Annotate returns a copy of s whose properties carry the verdicts' status
// and counterexample transition ids.
func Annotate(s *spec.Spec, verdicts []Verdict) *spec.Spec {
	out := *s
	out.Properties = make([]spec.Property, len(s.Properties))
	copy(out.Properties, s.Properties)

	byID := make(map[string]Verdict, len(verdicts))
	for _, v := range verdicts {
		byID[v.PropertyID] = v
	}
	for i, p := range out.Properties {
		v, ok := byID[p.ID]
		if !ok {
			continue
		}
		out.Properties[i].Status = v.Status
		out.Properties[i].Counterexample = nil
		if v.Counterexample != nil {
			out.Properties[i].Counterexample = v.Counterexample.IDs()
		}
	}
	return &out
}

// checkFlow reports whether p holds along f and, if not, the position of
// the violation. For eventually, the violation position is the end.
func checkFlow(s *spec.Spec, p spec.Property, f Flow) (bool, int, error) {
	vars := s.InitialVars()
	state := f.Start

	eval := func() (bool, error) {
		return spec.Eval(p.Predicate, spec.Env{Vars: vars, State: state})
	}

	for step := 0; step <= len(f.Transitions); step++ {
		if step > 0 {
			t := f.Transitions[step-1]
			if t.Action != nil {
				next, err := spec.Apply(t.Action, vars)
				switch {
				case errors.Is(err, spec.ErrUnsupportedKind):
				case err != nil:
					return false, step, err
				default:
					vars = next
				}
			}
			state = t.To
		}

		ok, err := eval()
		if err != nil {
			return false, step, err
		}
		switch p.Kind {
		case spec.Always:
			if !ok {
				return false, step, nil
			}
		case spec.Never:
			if ok {
				return false, step, nil
			}
		case spec.Eventually:
			if ok {
				return true, step, nil
			}
		default:
			return false, step, fmt.Errorf("unknown property kind %q", p.Kind)
		}
	}

	if p.Kind == spec.Eventually {
		return false, len(f.Transitions), nil
	}
	return true, 0, nil
}
