package spec

import "time"

// Option configures CreateSpec.
type Option func(*options)

type options struct {
	now         func() time.Time
	description string
	metadata    Metadata
}

// WithClock sets the time source used for creation and update stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithDescription sets the spec description.
func WithDescription(d string) Option {
	return func(o *options) {
		o.description = d
	}
}

// WithMetadata seeds provenance fields. CreatedAt and UpdatedAt are always
// stamped from the clock.
func WithMetadata(m Metadata) Option {
	return func(o *options) {
		o.metadata = m
	}
}

// CreateSpec returns an empty spec with initialized collections and
// creation stamps. The caller adds states and sets InitialState.
func CreateSpec(name string, opts ...Option) *Spec {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	now := o.now().UnixMilli()
	meta := o.metadata
	meta.CreatedAt = now
	meta.UpdatedAt = now

	return &Spec{
		Name:        name,
		Version:     SchemaVersion,
		Description: o.description,
		Variables:   []Variable{},
		States:      []State{},
		Transitions: []Transition{},
		Properties:  []Property{},
		Metadata:    meta,
	}
}

// CreateState returns a state with empty invariants and zero observations.
func CreateState(id, name string) State {
	return State{
		ID:         id,
		Name:       name,
		Invariants: []Predicate{},
	}
}

// CreateTransition returns a transition observed once.
func CreateTransition(id, from, to string, ev Event) Transition {
	return Transition{
		ID:        id,
		From:      from,
		To:        to,
		Event:     ev,
		Frequency: 1,
	}
}

// AddState appends st and stamps UpdatedAt. The first state added becomes
// the initial state when none is set.
func (s *Spec) AddState(st State, now time.Time) {
	s.States = append(s.States, st)
	if s.InitialState == "" {
		s.InitialState = st.ID
	}
	s.Metadata.UpdatedAt = now.UnixMilli()
}

// AddTransition appends t and stamps UpdatedAt.
func (s *Spec) AddTransition(t Transition, now time.Time) {
	s.Transitions = append(s.Transitions, t)
	s.Metadata.UpdatedAt = now.UnixMilli()
}

// State returns the state with the given id.
func (s *Spec) State(id string) (State, bool) {
	for _, st := range s.States {
		if st.ID == id {
			return st, true
		}
	}
	return State{}, false
}

// Transition returns the transition with the given id.
func (s *Spec) Transition(id string) (Transition, bool) {
	for _, t := range s.Transitions {
		if t.ID == id {
			return t, true
		}
	}
	return Transition{}, false
}

// StateName returns the display name of a state, falling back to its id.
func (s *Spec) StateName(id string) string {
	if st, ok := s.State(id); ok && st.Name != "" {
		return st.Name
	}
	return id
}

// InitialVars returns a fresh map of every variable's initial value.
func (s *Spec) InitialVars() map[string]any {
	vars := make(map[string]any, len(s.Variables))
	for _, v := range s.Variables {
		vars[v.Name] = cloneValue(v.Initial)
	}
	return vars
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = cloneValue(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
