package session

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventType is the integer discriminant of an event on the wire.
type EventType int

const (
	EventTap       EventType = 0
	EventDoubleTap EventType = 1
	EventLongPress EventType = 2
	EventSwipe     EventType = 3
	EventScroll    EventType = 4
	EventInput     EventType = 5
	EventNavigate  EventType = 6
	EventAppState  EventType = 7
	// 8 is reserved.
	EventError EventType = 9
)

var eventKinds = map[EventType]string{
	EventTap:       "tap",
	EventDoubleTap: "double_tap",
	EventLongPress: "long_press",
	EventSwipe:     "swipe",
	EventScroll:    "scroll",
	EventInput:     "input",
	EventNavigate:  "navigation",
	EventAppState:  "app_state",
	EventError:     "error",
}

// Kind returns the string tag for t, or "" for reserved discriminants.
func (t EventType) Kind() string {
	return eventKinds[t]
}

// Known reports whether t is one of the defined discriminants.
func (t EventType) Known() bool {
	_, ok := eventKinds[t]
	return ok
}

// String implements fmt.Stringer.
func (t EventType) String() string {
	if k, ok := eventKinds[t]; ok {
		return k
	}
	return fmt.Sprintf("reserved(%d)", int(t))
}

// EventData is a sealed interface over event payloads.
// Only the payload types in this file implement it.
type EventData interface {
	eventData()
	// Type returns the discriminant this payload belongs to.
	Type() EventType
}

// TapData is the payload of a tap or double tap.
type TapData struct {
	ElementIndex *int    `json:"elementIndex,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Double       bool    `json:"-"`
}

func (TapData) eventData() {}

// Type implements EventData.
func (d TapData) Type() EventType {
	if d.Double {
		return EventDoubleTap
	}
	return EventTap
}

// LongPressData is the payload of a long press.
type LongPressData struct {
	ElementIndex *int    `json:"elementIndex,omitempty"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Duration     float64 `json:"duration"` // milliseconds
}

func (LongPressData) eventData() {}

// Type implements EventData.
func (LongPressData) Type() EventType { return EventLongPress }

// SwipeData is the payload of a swipe gesture.
type SwipeData struct {
	StartX    float64 `json:"startX"`
	StartY    float64 `json:"startY"`
	EndX      float64 `json:"endX"`
	EndY      float64 `json:"endY"`
	Direction string  `json:"direction,omitempty"` // "up", "down", "left", "right"
	Duration  float64 `json:"duration,omitempty"`
}

func (SwipeData) eventData() {}

// Type implements EventData.
func (SwipeData) Type() EventType { return EventSwipe }

// ScrollData is the payload of a scroll.
type ScrollData struct {
	ElementIndex *int    `json:"elementIndex,omitempty"`
	DeltaX       float64 `json:"deltaX"`
	DeltaY       float64 `json:"deltaY"`
}

func (ScrollData) eventData() {}

// Type implements EventData.
func (ScrollData) Type() EventType { return EventScroll }

// InputData is the payload of a text entry.
type InputData struct {
	ElementIndex *int   `json:"elementIndex,omitempty"`
	Value        string `json:"value"`
	Masked       bool   `json:"masked,omitempty"`
	InputType    string `json:"inputType,omitempty"` // "text", "email", "password", ...
}

func (InputData) eventData() {}

// Type implements EventData.
func (InputData) Type() EventType { return EventInput }

// NavigationData is the payload of a screen or route change.
type NavigationData struct {
	From   string `json:"from,omitempty"`
	To     string `json:"to"`
	URL    string `json:"url,omitempty"`
	Method string `json:"method,omitempty"` // "push", "pop", "replace", "load"
}

func (NavigationData) eventData() {}

// Type implements EventData.
func (NavigationData) Type() EventType { return EventNavigate }

// AppStateData is the payload of an application lifecycle change.
type AppStateData struct {
	State string `json:"state"` // "active", "background", "inactive"
}

func (AppStateData) eventData() {}

// Type implements EventData.
func (AppStateData) Type() EventType { return EventAppState }

// ErrorData is the payload of a captured application error.
type ErrorData struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	Fatal   bool   `json:"fatal,omitempty"`
}

func (ErrorData) eventData() {}

// Type implements EventData.
func (ErrorData) Type() EventType { return EventError }

// Event is one entry of the event stream.
type Event struct {
	DT   float64     `json:"dt"` // milliseconds since the previous event
	Data EventData   `json:"data"`
	Perf *PerfSample `json:"perf,omitempty"`
}

// Type returns the discriminant of the event payload.
func (e Event) Type() EventType {
	if e.Data == nil {
		return -1
	}
	return e.Data.Type()
}

// Kind returns the string tag of the event payload.
func (e Event) Kind() string {
	return e.Type().Kind()
}

// ElementIndex returns the element dictionary index the payload refers to.
func (e Event) ElementIndex() (int, bool) {
	var idx *int
	switch d := e.Data.(type) {
	case TapData:
		idx = d.ElementIndex
	case LongPressData:
		idx = d.ElementIndex
	case ScrollData:
		idx = d.ElementIndex
	case InputData:
		idx = d.ElementIndex
	}
	if idx == nil {
		return 0, false
	}
	return *idx, true
}

type eventWire struct {
	DT   float64         `json:"dt"`
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
	Perf *PerfSample     `json:"perf,omitempty"`
}

type kindProbe struct {
	Kind string `json:"kind"`
}

// MarshalJSON implements json.Marshaler.
// The payload object is written with its "kind" tag first.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Data == nil {
		return nil, fmt.Errorf("event has no payload")
	}
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	kind, err := json.Marshal(e.Kind())
	if err != nil {
		return nil, err
	}

	var data bytes.Buffer
	data.WriteString(`{"kind":`)
	data.Write(kind)
	if len(payload) > 2 {
		data.WriteByte(',')
		data.Write(payload[1:])
	} else {
		data.WriteByte('}')
	}

	return json.Marshal(eventWire{
		DT:   e.DT,
		Type: e.Type(),
		Data: data.Bytes(),
		Perf: e.Perf,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
// Reserved discriminants and kind tags that disagree with the discriminant
// are rejected.
func (e *Event) UnmarshalJSON(b []byte) error {
	var w eventWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if !w.Type.Known() {
		return fmt.Errorf("unsupported event type %d", int(w.Type))
	}

	var probe kindProbe
	if len(w.Data) > 0 {
		if err := json.Unmarshal(w.Data, &probe); err != nil {
			return fmt.Errorf("event data: %w", err)
		}
	}
	if probe.Kind != "" && probe.Kind != w.Type.Kind() {
		return fmt.Errorf("event data kind %q does not match type %d (%s)", probe.Kind, int(w.Type), w.Type.Kind())
	}

	data, err := decodeEventData(w.Type, w.Data)
	if err != nil {
		return fmt.Errorf("event %s data: %w", w.Type.Kind(), err)
	}

	*e = Event{DT: w.DT, Data: data, Perf: w.Perf}
	return nil
}

func decodeEventData(t EventType, raw json.RawMessage) (EventData, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	switch t {
	case EventTap, EventDoubleTap:
		var d TapData
		if err := json.Unmarshal(raw, &d); err != nil {
			return nil, err
		}
		d.Double = t == EventDoubleTap
		return d, nil
	case EventLongPress:
		var d LongPressData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventSwipe:
		var d SwipeData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventScroll:
		var d ScrollData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventInput:
		var d InputData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventNavigate:
		var d NavigationData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventAppState:
		var d AppStateData
		err := json.Unmarshal(raw, &d)
		return d, err
	case EventError:
		var d ErrorData
		err := json.Unmarshal(raw, &d)
		return d, err
	default:
		return nil, fmt.Errorf("unsupported event type %d", int(t))
	}
}

// Index returns a pointer to i, for populating optional element indices.
func Index(i int) *int {
	return &i
}

// Float returns a pointer to f, for populating optional perf readings.
func Float(f float64) *float64 {
	return &f
}
