package spec

import (
	"errors"
	"fmt"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrSpecNameEmpty       = "E201" // name is required
	ErrNoStates            = "E202" // at least one state required
	ErrDuplicateStateID    = "E203" // state ids are unique
	ErrDuplicateTransition = "E204" // transition ids are unique
	ErrInitialState        = "E205" // initialState must name a state
	ErrUnknownFromState    = "E206" // transition.from must name a state
	ErrUnknownToState      = "E207" // transition.to must name a state
	ErrMissingEvent        = "E208" // transition.event is required
	ErrNegativeFrequency   = "E209" // frequency must be >= 0
	ErrInvalidPredicate    = "E210" // malformed predicate
	ErrInvalidAction       = "E211" // malformed action or variable
	ErrInvalidProperty     = "E212" // malformed property
)

// ValidationError represents a spec schema violation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks the structural invariants of s.
// Returns all errors found (does not fail-fast).
func Validate(s *Spec) []ValidationError {
	v := validator{
		spec:   s,
		states: make(map[string]bool, len(s.States)),
		vars:   make(map[string]bool, len(s.Variables)),
	}
	v.run()
	return v.errs
}

// Check validates s and folds every violation into one error.
// Returns nil when s is valid.
func Check(s *Spec) error {
	verrs := Validate(s)
	if len(verrs) == 0 {
		return nil
	}
	errs := make([]error, len(verrs))
	for i, v := range verrs {
		errs[i] = v
	}
	return fmt.Errorf("invalid spec %q: %w", s.Name, errors.Join(errs...))
}

type validator struct {
	spec   *Spec
	states map[string]bool
	vars   map[string]bool
	errs   []ValidationError
}

func (v *validator) add(field, code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
		Code:    code,
	})
}

func (v *validator) run() {
	s := v.spec

	// E201: name is required
	if strings.TrimSpace(s.Name) == "" {
		v.add("name", ErrSpecNameEmpty, "name is required and must be non-empty")
	}

	// E202: at least one state
	if len(s.States) == 0 {
		v.add("states", ErrNoStates, "at least one state is required")
	}

	for i, variable := range s.Variables {
		field := fmt.Sprintf("variables[%d]", i)
		if variable.Name == "" {
			v.add(field+".name", ErrInvalidAction, "variable name is required")
			continue
		}
		if v.vars[variable.Name] {
			v.add(field+".name", ErrInvalidAction, "duplicate variable name: %q", variable.Name)
		}
		v.vars[variable.Name] = true
	}

	for i, st := range s.States {
		field := fmt.Sprintf("states[%d]", i)
		if st.ID == "" {
			v.add(field+".id", ErrDuplicateStateID, "state id is required")
			continue
		}
		// E203: duplicate state id
		if v.states[st.ID] {
			v.add(field+".id", ErrDuplicateStateID, "duplicate state id: %q", st.ID)
		}
		v.states[st.ID] = true
	}

	// E205: initial state must exist
	if len(s.States) > 0 && !v.states[s.InitialState] {
		v.add("initialState", ErrInitialState, "initial state %q is not a declared state", s.InitialState)
	}

	for i, st := range s.States {
		for j, inv := range st.Invariants {
			v.predicate(fmt.Sprintf("states[%d].invariants[%d]", i, j), inv)
		}
	}

	transitionIDs := make(map[string]bool, len(s.Transitions))
	for i, t := range s.Transitions {
		field := fmt.Sprintf("transitions[%d]", i)

		// E204: duplicate transition id
		if t.ID == "" {
			v.add(field+".id", ErrDuplicateTransition, "transition id is required")
		} else if transitionIDs[t.ID] {
			v.add(field+".id", ErrDuplicateTransition, "duplicate transition id: %q", t.ID)
		}
		transitionIDs[t.ID] = true

		// E206/E207: endpoints must exist
		if !v.states[t.From] {
			v.add(field+".from", ErrUnknownFromState, "transition %q references unknown state %q", t.ID, t.From)
		}
		if !v.states[t.To] {
			v.add(field+".to", ErrUnknownToState, "transition %q references unknown state %q", t.ID, t.To)
		}

		// E208: event is required
		if t.Event == nil {
			v.add(field+".event", ErrMissingEvent, "transition %q has no event", t.ID)
		}

		// E209: frequency is a count
		if t.Frequency < 0 {
			v.add(field+".frequency", ErrNegativeFrequency, "frequency must be >= 0, got %d", t.Frequency)
		}

		if t.Guard != nil {
			v.predicate(field+".guard", t.Guard)
		}
		if t.Action != nil {
			v.action(field+".action", t.Action)
		}
	}

	propertyIDs := make(map[string]bool, len(s.Properties))
	for i, p := range s.Properties {
		field := fmt.Sprintf("properties[%d]", i)
		if p.ID == "" {
			v.add(field+".id", ErrInvalidProperty, "property id is required")
		} else if propertyIDs[p.ID] {
			v.add(field+".id", ErrInvalidProperty, "duplicate property id: %q", p.ID)
		}
		propertyIDs[p.ID] = true

		switch p.Kind {
		case Always, Eventually, Never:
		default:
			v.add(field+".kind", ErrInvalidProperty, "unknown property kind %q", p.Kind)
		}
		if p.Predicate == nil {
			v.add(field+".predicate", ErrInvalidProperty, "property %q has no predicate", p.ID)
		} else {
			v.predicate(field+".predicate", p.Predicate)
		}
	}
}

// predicate checks a predicate tree. The switch is exhaustive over Predicate.
func (v *validator) predicate(field string, p Predicate) {
	switch p := p.(type) {
	case Literal:
	case Var:
		if !v.vars[p.Name] {
			v.add(field, ErrInvalidPredicate, "undeclared variable %q", p.Name)
		}
	case Compare:
		switch p.Op {
		case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		default:
			v.add(field+".op", ErrInvalidPredicate, "unknown comparison operator %q", p.Op)
		}
		v.operand(field+".left", p.Left)
		v.operand(field+".right", p.Right)
	case And:
		for i, op := range p.Operands {
			v.predicate(fmt.Sprintf("%s.operands[%d]", field, i), op)
		}
	case Or:
		for i, op := range p.Operands {
			v.predicate(fmt.Sprintf("%s.operands[%d]", field, i), op)
		}
	case Not:
		if p.Operand == nil {
			v.add(field+".operand", ErrInvalidPredicate, "not requires an operand")
			return
		}
		v.predicate(field+".operand", p.Operand)
	case InState:
		if !v.states[p.State] {
			v.add(field+".state", ErrInvalidPredicate, "unknown state %q", p.State)
		}
	case ElementVisible:
		if p.Element.IsZero() {
			v.add(field+".element", ErrInvalidPredicate, "element reference is empty")
		}
	case ElementExists:
		if p.Element.IsZero() {
			v.add(field+".element", ErrInvalidPredicate, "element reference is empty")
		}
	case nil:
		v.add(field, ErrInvalidPredicate, "predicate is missing")
	}
}

func (v *validator) operand(field string, p Predicate) {
	switch p.(type) {
	case Literal, Var:
		v.predicate(field, p)
	default:
		v.add(field, ErrInvalidPredicate, "comparison operand must be a literal or a variable")
	}
}

// action checks an action tree. UnknownAction is accepted; emitters render it
// as a placeholder.
func (v *validator) action(field string, a Action) {
	check := func(name string) {
		if !v.vars[name] {
			v.add(field+".variable", ErrInvalidAction, "undeclared variable %q", name)
		}
	}
	switch a := a.(type) {
	case Assign:
		check(a.Variable)
	case Increment:
		check(a.Variable)
	case Decrement:
		check(a.Variable)
	case Push:
		check(a.Variable)
	case Pop:
		check(a.Variable)
	case Clear:
		check(a.Variable)
	case Sequence:
		for i, sub := range a.Actions {
			v.action(fmt.Sprintf("%s.actions[%d]", field, i), sub)
		}
	case UnknownAction:
	}
}
