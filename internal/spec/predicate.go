package spec

import (
	"encoding/json"
	"fmt"
)

// Predicate is a sealed interface over boolean conditions on the model.
// Only Literal, Var, Compare, And, Or, Not, InState, ElementVisible and
// ElementExists implement it. Predicates are immutable values.
type Predicate interface {
	predicate()
	// Kind returns the JSON type tag.
	Kind() string
}

// Comparison operators accepted by Compare.
const (
	OpEq = "eq"
	OpNe = "ne"
	OpLt = "lt"
	OpLe = "le"
	OpGt = "gt"
	OpGe = "ge"
)

// Literal is a constant. As a condition it is truthy when Value is true.
type Literal struct {
	Value any
}

// Var reads a spec variable.
type Var struct {
	Name string
}

// Compare compares two operands. Operands are Literal or Var.
type Compare struct {
	Op    string
	Left  Predicate
	Right Predicate
}

// And holds when every operand holds. An empty And holds.
type And struct {
	Operands []Predicate
}

// Or holds when any operand holds. An empty Or does not hold.
type Or struct {
	Operands []Predicate
}

// Not negates its operand.
type Not struct {
	Operand Predicate
}

// InState holds while the model is in the named state.
type InState struct {
	State string
}

// ElementVisible holds when the element is rendered and visible.
type ElementVisible struct {
	Element ElementRef
}

// ElementExists holds when the element is attached, visible or not.
type ElementExists struct {
	Element ElementRef
}

func (Literal) predicate()        {}
func (Var) predicate()            {}
func (Compare) predicate()        {}
func (And) predicate()            {}
func (Or) predicate()             {}
func (Not) predicate()            {}
func (InState) predicate()        {}
func (ElementVisible) predicate() {}
func (ElementExists) predicate()  {}

func (Literal) Kind() string        { return "literal" }
func (Var) Kind() string            { return "var" }
func (Compare) Kind() string        { return "compare" }
func (And) Kind() string            { return "and" }
func (Or) Kind() string             { return "or" }
func (Not) Kind() string            { return "not" }
func (InState) Kind() string        { return "in_state" }
func (ElementVisible) Kind() string { return "element_visible" }
func (ElementExists) Kind() string  { return "element_exists" }

func (p Literal) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		Value any    `json:"value"`
	}{p.Kind(), p.Value})
}

func (p Var) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Name string `json:"name"`
	}{p.Kind(), p.Name})
}

func (p Compare) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string    `json:"type"`
		Op    string    `json:"op"`
		Left  Predicate `json:"left"`
		Right Predicate `json:"right"`
	}{p.Kind(), p.Op, p.Left, p.Right})
}

func (p And) MarshalJSON() ([]byte, error) {
	return marshalOperands(p.Kind(), p.Operands)
}

func (p Or) MarshalJSON() ([]byte, error) {
	return marshalOperands(p.Kind(), p.Operands)
}

func marshalOperands(kind string, ops []Predicate) ([]byte, error) {
	if ops == nil {
		ops = []Predicate{}
	}
	return json.Marshal(struct {
		Type     string      `json:"type"`
		Operands []Predicate `json:"operands"`
	}{kind, ops})
}

func (p Not) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string    `json:"type"`
		Operand Predicate `json:"operand"`
	}{p.Kind(), p.Operand})
}

func (p InState) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string `json:"type"`
		State string `json:"state"`
	}{p.Kind(), p.State})
}

func (p ElementVisible) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string     `json:"type"`
		Element ElementRef `json:"element"`
	}{p.Kind(), p.Element})
}

func (p ElementExists) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string     `json:"type"`
		Element ElementRef `json:"element"`
	}{p.Kind(), p.Element})
}

type predicateWire struct {
	Type     string            `json:"type"`
	Value    any               `json:"value"`
	Name     string            `json:"name"`
	Op       string            `json:"op"`
	Left     json.RawMessage   `json:"left"`
	Right    json.RawMessage   `json:"right"`
	Operands []json.RawMessage `json:"operands"`
	Operand  json.RawMessage   `json:"operand"`
	State    string            `json:"state"`
	Element  ElementRef        `json:"element"`
}

// UnmarshalPredicate decodes a JSON predicate object by its type tag.
// Unknown tags are malformed input.
func UnmarshalPredicate(data []byte) (Predicate, error) {
	var w predicateWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("predicate: %w", err)
	}

	switch w.Type {
	case "literal":
		return Literal{Value: w.Value}, nil
	case "var":
		return Var{Name: w.Name}, nil
	case "compare":
		left, err := UnmarshalPredicate(w.Left)
		if err != nil {
			return nil, fmt.Errorf("compare left: %w", err)
		}
		right, err := UnmarshalPredicate(w.Right)
		if err != nil {
			return nil, fmt.Errorf("compare right: %w", err)
		}
		return Compare{Op: w.Op, Left: left, Right: right}, nil
	case "and", "or":
		ops := make([]Predicate, len(w.Operands))
		for i, raw := range w.Operands {
			p, err := UnmarshalPredicate(raw)
			if err != nil {
				return nil, fmt.Errorf("%s operands[%d]: %w", w.Type, i, err)
			}
			ops[i] = p
		}
		if w.Type == "and" {
			return And{Operands: ops}, nil
		}
		return Or{Operands: ops}, nil
	case "not":
		p, err := UnmarshalPredicate(w.Operand)
		if err != nil {
			return nil, fmt.Errorf("not operand: %w", err)
		}
		return Not{Operand: p}, nil
	case "in_state":
		return InState{State: w.State}, nil
	case "element_visible":
		return ElementVisible{Element: w.Element}, nil
	case "element_exists":
		return ElementExists{Element: w.Element}, nil
	case "":
		return nil, fmt.Errorf("predicate: missing type")
	default:
		return nil, fmt.Errorf("predicate: unknown type %q", w.Type)
	}
}

func decodePredicates(raws []json.RawMessage) ([]Predicate, error) {
	if raws == nil {
		return nil, nil
	}
	out := make([]Predicate, len(raws))
	for i, raw := range raws {
		p, err := UnmarshalPredicate(raw)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out[i] = p
	}
	return out, nil
}

// optionalPredicate decodes raw unless it is absent or null.
func optionalPredicate(raw json.RawMessage) (Predicate, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return UnmarshalPredicate(raw)
}
