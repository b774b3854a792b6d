package spec

import (
	"encoding/json"
	"fmt"
)

// Event is a sealed interface over the user actions that trigger a
// transition. Only the types in this file implement it.
//
// UnknownEvent carries kinds this version does not model; emitters render
// it as a marked placeholder.
type Event interface {
	event()
	// Kind returns the JSON type tag.
	Kind() string
}

// Event kind tags.
const (
	KindTap       = "tap"
	KindDoubleTap = "double_tap"
	KindLongPress = "long_press"
	KindInput     = "input"
	KindSubmit    = "submit"
	KindScroll    = "scroll"
	KindSwipe     = "swipe"
	KindBack      = "back"
	KindNavigate  = "navigate"
)

// Tap is a single tap or click on an element.
type Tap struct {
	Element ElementRef
}

// DoubleTap is a double tap or double click on an element.
type DoubleTap struct {
	Element ElementRef
}

// LongPress is a press held on an element.
type LongPress struct {
	Element  ElementRef
	Duration int // milliseconds, 0 means platform default
}

// Input enters text into an element. Masked values were redacted at capture.
type Input struct {
	Element ElementRef
	Value   string
	Masked  bool
}

// Submit submits the current form, optionally through an element.
type Submit struct {
	Element *ElementRef
}

// Scroll scrolls the page or an element.
type Scroll struct {
	Element   *ElementRef
	Direction string // "up", "down", "left", "right"
	Distance  int    // pixels, 0 means one page
}

// Swipe is a directional swipe gesture.
type Swipe struct {
	Element   *ElementRef
	Direction string
}

// Back is the platform back action.
type Back struct{}

// Navigate is a route change. URL is empty when the change was not
// user-addressable (for example an in-app redirect).
type Navigate struct {
	URL    string
	Screen string
}

// UnknownEvent preserves an event kind that is not modeled.
type UnknownEvent struct {
	Type string
	Raw  json.RawMessage
}

func (Tap) event()          {}
func (DoubleTap) event()    {}
func (LongPress) event()    {}
func (Input) event()        {}
func (Submit) event()       {}
func (Scroll) event()       {}
func (Swipe) event()        {}
func (Back) event()         {}
func (Navigate) event()     {}
func (UnknownEvent) event() {}

func (Tap) Kind() string            { return KindTap }
func (DoubleTap) Kind() string      { return KindDoubleTap }
func (LongPress) Kind() string      { return KindLongPress }
func (Input) Kind() string          { return KindInput }
func (Submit) Kind() string         { return KindSubmit }
func (Scroll) Kind() string         { return KindScroll }
func (Swipe) Kind() string          { return KindSwipe }
func (Back) Kind() string           { return KindBack }
func (Navigate) Kind() string       { return KindNavigate }
func (e UnknownEvent) Kind() string { return e.Type }

// TargetOf returns the element an event acts on, if any.
func TargetOf(e Event) (ElementRef, bool) {
	switch ev := e.(type) {
	case Tap:
		return ev.Element, true
	case DoubleTap:
		return ev.Element, true
	case LongPress:
		return ev.Element, true
	case Input:
		return ev.Element, true
	case Submit:
		if ev.Element != nil {
			return *ev.Element, true
		}
	case Scroll:
		if ev.Element != nil {
			return *ev.Element, true
		}
	case Swipe:
		if ev.Element != nil {
			return *ev.Element, true
		}
	}
	return ElementRef{}, false
}

// eventWire is the flat JSON layout shared by every event kind.
type eventWire struct {
	Type      string      `json:"type"`
	Element   *ElementRef `json:"element,omitempty"`
	Value     string      `json:"value,omitempty"`
	Masked    bool        `json:"masked,omitempty"`
	Duration  int         `json:"duration,omitempty"`
	Direction string      `json:"direction,omitempty"`
	Distance  int         `json:"distance,omitempty"`
	URL       string      `json:"url,omitempty"`
	Screen    string      `json:"screen,omitempty"`
}

func ref(r ElementRef) *ElementRef { return &r }

func (e Tap) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindTap, Element: ref(e.Element)})
}

func (e DoubleTap) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindDoubleTap, Element: ref(e.Element)})
}

func (e LongPress) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindLongPress, Element: ref(e.Element), Duration: e.Duration})
}

func (e Input) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindInput, Element: ref(e.Element), Value: e.Value, Masked: e.Masked})
}

func (e Submit) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindSubmit, Element: e.Element})
}

func (e Scroll) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindScroll, Element: e.Element, Direction: e.Direction, Distance: e.Distance})
}

func (e Swipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindSwipe, Element: e.Element, Direction: e.Direction})
}

func (Back) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindBack})
}

func (e Navigate) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Type: KindNavigate, URL: e.URL, Screen: e.Screen})
}

func (e UnknownEvent) MarshalJSON() ([]byte, error) {
	if len(e.Raw) > 0 {
		return e.Raw, nil
	}
	return json.Marshal(eventWire{Type: e.Type})
}

// UnmarshalEvent decodes a JSON event object by its type tag.
// Unrecognized tags decode to UnknownEvent rather than failing.
func UnmarshalEvent(data []byte) (Event, error) {
	var probe typeProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}
	switch probe.Type {
	case "":
		return nil, fmt.Errorf("event: missing type")
	case KindTap, KindDoubleTap, KindLongPress, KindInput, KindSubmit,
		KindScroll, KindSwipe, KindBack, KindNavigate:
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return UnknownEvent{Type: probe.Type, Raw: raw}, nil
	}

	var w eventWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("event %s: %w", probe.Type, err)
	}

	var el ElementRef
	if w.Element != nil {
		el = *w.Element
	}

	switch w.Type {
	case KindTap:
		return Tap{Element: el}, nil
	case KindDoubleTap:
		return DoubleTap{Element: el}, nil
	case KindLongPress:
		return LongPress{Element: el, Duration: w.Duration}, nil
	case KindInput:
		return Input{Element: el, Value: w.Value, Masked: w.Masked}, nil
	case KindSubmit:
		return Submit{Element: w.Element}, nil
	case KindScroll:
		return Scroll{Element: w.Element, Direction: w.Direction, Distance: w.Distance}, nil
	case KindSwipe:
		return Swipe{Element: w.Element, Direction: w.Direction}, nil
	case KindBack:
		return Back{}, nil
	case KindNavigate:
		return Navigate{URL: w.URL, Screen: w.Screen}, nil
	}
	return nil, fmt.Errorf("event: unhandled type %q", w.Type)
}

type typeProbe struct {
	Type string `json:"type"`
}
