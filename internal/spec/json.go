package spec

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON implements json.Unmarshaler for State.
func (s *State) UnmarshalJSON(data []byte) error {
	type alias State
	var raw struct {
		alias
		Invariants []json.RawMessage `json:"invariants"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	invariants, err := decodePredicates(raw.Invariants)
	if err != nil {
		return fmt.Errorf("state %q invariants%w", raw.ID, err)
	}

	*s = State(raw.alias)
	s.Invariants = invariants
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Transition.
func (t *Transition) UnmarshalJSON(data []byte) error {
	type alias Transition
	var raw struct {
		alias
		Event  json.RawMessage `json:"event"`
		Guard  json.RawMessage `json:"guard"`
		Action json.RawMessage `json:"action"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*t = Transition(raw.alias)

	if len(raw.Event) > 0 && string(raw.Event) != "null" {
		ev, err := UnmarshalEvent(raw.Event)
		if err != nil {
			return fmt.Errorf("transition %q: %w", raw.ID, err)
		}
		t.Event = ev
	}

	guard, err := optionalPredicate(raw.Guard)
	if err != nil {
		return fmt.Errorf("transition %q guard: %w", raw.ID, err)
	}
	t.Guard = guard

	act, err := optionalAction(raw.Action)
	if err != nil {
		return fmt.Errorf("transition %q: %w", raw.ID, err)
	}
	t.Action = act
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Property.
func (p *Property) UnmarshalJSON(data []byte) error {
	type alias Property
	var raw struct {
		alias
		Predicate json.RawMessage `json:"predicate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	pred, err := optionalPredicate(raw.Predicate)
	if err != nil {
		return fmt.Errorf("property %q: %w", raw.ID, err)
	}

	*p = Property(raw.alias)
	p.Predicate = pred
	return nil
}
