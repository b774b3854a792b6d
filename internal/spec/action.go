package spec

import (
	"encoding/json"
	"fmt"
)

// Action is a sealed interface over variable updates performed when a
// transition fires. UnknownAction carries kinds this version does not model.
type Action interface {
	action()
	// Kind returns the JSON type tag.
	Kind() string
}

// Assign sets Variable to Value.
type Assign struct {
	Variable string
	Value    any
}

// Increment adds By to a numeric variable. By defaults to 1.
type Increment struct {
	Variable string
	By       float64
}

// Decrement subtracts By from a numeric variable. By defaults to 1.
type Decrement struct {
	Variable string
	By       float64
}

// Push appends Value to an array variable.
type Push struct {
	Variable string
	Value    any
}

// Pop removes the last element of an array variable.
type Pop struct {
	Variable string
}

// Clear resets a variable to the zero value of its type.
type Clear struct {
	Variable string
}

// Sequence runs actions in order.
type Sequence struct {
	Actions []Action
}

// UnknownAction preserves an action kind that is not modeled.
type UnknownAction struct {
	Type string
	Raw  json.RawMessage
}

func (Assign) action()        {}
func (Increment) action()     {}
func (Decrement) action()     {}
func (Push) action()          {}
func (Pop) action()           {}
func (Clear) action()         {}
func (Sequence) action()      {}
func (UnknownAction) action() {}

func (Assign) Kind() string          { return "assign" }
func (Increment) Kind() string       { return "increment" }
func (Decrement) Kind() string       { return "decrement" }
func (Push) Kind() string            { return "push" }
func (Pop) Kind() string             { return "pop" }
func (Clear) Kind() string           { return "clear" }
func (Sequence) Kind() string        { return "sequence" }
func (a UnknownAction) Kind() string { return a.Type }

type actionWire struct {
	Type     string            `json:"type"`
	Variable string            `json:"variable,omitempty"`
	Value    any               `json:"value,omitempty"`
	By       float64           `json:"by,omitempty"`
	Actions  []json.RawMessage `json:"actions,omitempty"`
}

func (a Assign) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Variable string `json:"variable"`
		Value    any    `json:"value"`
	}{a.Kind(), a.Variable, a.Value})
}

func (a Increment) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionWire{Type: a.Kind(), Variable: a.Variable, By: a.By})
}

func (a Decrement) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionWire{Type: a.Kind(), Variable: a.Variable, By: a.By})
}

func (a Push) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type     string `json:"type"`
		Variable string `json:"variable"`
		Value    any    `json:"value"`
	}{a.Kind(), a.Variable, a.Value})
}

func (a Pop) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionWire{Type: a.Kind(), Variable: a.Variable})
}

func (a Clear) MarshalJSON() ([]byte, error) {
	return json.Marshal(actionWire{Type: a.Kind(), Variable: a.Variable})
}

func (a Sequence) MarshalJSON() ([]byte, error) {
	actions := a.Actions
	if actions == nil {
		actions = []Action{}
	}
	return json.Marshal(struct {
		Type    string   `json:"type"`
		Actions []Action `json:"actions"`
	}{a.Kind(), actions})
}

func (a UnknownAction) MarshalJSON() ([]byte, error) {
	if len(a.Raw) > 0 {
		return a.Raw, nil
	}
	return json.Marshal(actionWire{Type: a.Type})
}

// UnmarshalAction decodes a JSON action object by its type tag.
// Unrecognized tags decode to UnknownAction.
func UnmarshalAction(data []byte) (Action, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("action: %w", err)
	}
	switch probe.Type {
	case "":
		return nil, fmt.Errorf("action: missing type")
	case "assign", "increment", "decrement", "push", "pop", "clear", "sequence":
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return UnknownAction{Type: probe.Type, Raw: raw}, nil
	}

	var w actionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("action %s: %w", probe.Type, err)
	}

	switch w.Type {
	case "assign":
		return Assign{Variable: w.Variable, Value: w.Value}, nil
	case "increment":
		return Increment{Variable: w.Variable, By: w.By}, nil
	case "decrement":
		return Decrement{Variable: w.Variable, By: w.By}, nil
	case "push":
		return Push{Variable: w.Variable, Value: w.Value}, nil
	case "pop":
		return Pop{Variable: w.Variable}, nil
	case "clear":
		return Clear{Variable: w.Variable}, nil
	case "sequence":
		actions := make([]Action, len(w.Actions))
		for i, raw := range w.Actions {
			a, err := UnmarshalAction(raw)
			if err != nil {
				return nil, fmt.Errorf("sequence actions[%d]: %w", i, err)
			}
			actions[i] = a
		}
		return Sequence{Actions: actions}, nil
	}
	return nil, fmt.Errorf("action: unhandled type %q", w.Type)
}

func optionalAction(raw json.RawMessage) (Action, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	return UnmarshalAction(raw)
}
