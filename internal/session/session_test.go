package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	end := int64(1_700_000_010_000)
	return &Session{
		Header: Header{
			SessionID:     "sess-1",
			StartTime:     1_700_000_000_000,
			EndTime:       &end,
			Device:        Device{Platform: "web", ScreenWidth: 1280, ScreenHeight: 800},
			App:           App{Identifier: "https://shop.example.com", Name: "Shop"},
			SchemaVersion: SchemaVersion,
		},
		Elements: []ElementInfo{
			{TestID: "login-button", Text: "Log in", Type: "button"},
			{AccessibilityLabel: "Email", Type: "input"},
		},
		Events: []Event{
			{DT: 0, Data: NavigationData{To: "/login", URL: "https://shop.example.com/login", Method: "load"}},
			{DT: 812.4, Data: InputData{ElementIndex: Index(1), Value: "a@b.c", InputType: "email"}},
			{DT: 403, Data: TapData{ElementIndex: Index(0), X: 196.5, Y: 300.75}, Perf: &PerfSample{FPS: Float(59.7)}},
			{DT: 90, Data: TapData{X: 10, Y: 20, Double: true}},
			{DT: 1200, Data: AppStateData{State: "background"}},
		},
		Screenshots: []Screenshot{{ID: "shot-1", EventIndex: 2, URI: "s3://bucket/shot-1.png"}},
	}
}

// =============================================================================
// Event JSON
// =============================================================================

func TestEventMarshalWritesTypeAndKind(t *testing.T) {
	ev := Event{DT: 12, Data: TapData{ElementIndex: Index(3), X: 1, Y: 2}}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":12,"type":0,"data":{"kind":"tap","elementIndex":3,"x":1,"y":2}}`, string(b))
}

func TestEventMarshalEmptyPayload(t *testing.T) {
	ev := Event{DT: 5, Data: AppStateData{}}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":5,"type":7,"data":{"kind":"app_state","state":""}}`, string(b))
}

func TestEventMarshalDoubleTap(t *testing.T) {
	ev := Event{Data: TapData{X: 4, Y: 5, Double: true}}

	b, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dt":0,"type":1,"data":{"kind":"double_tap","x":4,"y":5}}`, string(b))
}

func TestEventMarshalRejectsNilPayload(t *testing.T) {
	_, err := json.Marshal(Event{DT: 1})
	require.Error(t, err)
}

func TestEventUnmarshalAllKinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		want EventData
	}{
		{"tap", `{"dt":1,"type":0,"data":{"kind":"tap","x":1,"y":2}}`, TapData{X: 1, Y: 2}},
		{"double_tap", `{"dt":1,"type":1,"data":{"kind":"double_tap","x":1,"y":2}}`, TapData{X: 1, Y: 2, Double: true}},
		{"long_press", `{"dt":1,"type":2,"data":{"kind":"long_press","x":1,"y":2,"duration":800}}`, LongPressData{X: 1, Y: 2, Duration: 800}},
		{"swipe", `{"dt":1,"type":3,"data":{"kind":"swipe","startX":1,"startY":2,"endX":3,"endY":4,"direction":"left"}}`, SwipeData{StartX: 1, StartY: 2, EndX: 3, EndY: 4, Direction: "left"}},
		{"scroll", `{"dt":1,"type":4,"data":{"kind":"scroll","deltaX":0,"deltaY":120}}`, ScrollData{DeltaY: 120}},
		{"input", `{"dt":1,"type":5,"data":{"kind":"input","value":"x","masked":true}}`, InputData{Value: "x", Masked: true}},
		{"navigation", `{"dt":1,"type":6,"data":{"kind":"navigation","to":"/cart"}}`, NavigationData{To: "/cart"}},
		{"app_state", `{"dt":1,"type":7,"data":{"kind":"app_state","state":"active"}}`, AppStateData{State: "active"}},
		{"error", `{"dt":1,"type":9,"data":{"kind":"error","message":"boom","fatal":true}}`, ErrorData{Message: "boom", Fatal: true}},
		{"kind optional", `{"dt":1,"type":4,"data":{"deltaX":3,"deltaY":0}}`, ScrollData{DeltaX: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(tt.json), &ev))
			assert.Equal(t, tt.want, ev.Data)
			assert.Equal(t, float64(1), ev.DT)
		})
	}
}

func TestEventUnmarshalRejectsReservedType(t *testing.T) {
	var ev Event
	err := json.Unmarshal([]byte(`{"dt":1,"type":8,"data":{}}`), &ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported event type 8")
}

func TestEventUnmarshalRejectsKindMismatch(t *testing.T) {
	var ev Event
	err := json.Unmarshal([]byte(`{"dt":1,"type":0,"data":{"kind":"swipe"}}`), &ev)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestSessionJSONRoundTrip(t *testing.T) {
	s := sampleSession()

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var got Session
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, *s, got)
}

func TestEventElementIndex(t *testing.T) {
	idx, ok := Event{Data: InputData{ElementIndex: Index(4)}}.ElementIndex()
	assert.True(t, ok)
	assert.Equal(t, 4, idx)

	_, ok = Event{Data: SwipeData{}}.ElementIndex()
	assert.False(t, ok)
}

func TestSessionDuration(t *testing.T) {
	assert.InDelta(t, 2505.4, sampleSession().Duration(), 1e-9)
}

// =============================================================================
// Dictionary
// =============================================================================

func TestDictionaryInternDeduplicates(t *testing.T) {
	d := NewDictionary()
	a := d.Intern(ElementInfo{TestID: "a", Type: "button"})
	b := d.Intern(ElementInfo{Text: "B", Type: "link"})
	again := d.Intern(ElementInfo{TestID: "a", Type: "button"})

	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, a, again)
	assert.Equal(t, 2, d.Len())
}

func TestDictionaryKeyIsStructural(t *testing.T) {
	// Concatenating these fields with "|" would collide.
	d := NewDictionary()
	first := d.Intern(ElementInfo{Text: "a|b", Type: "text"})
	second := d.Intern(ElementInfo{AccessibilityLabel: "a", Text: "b", Type: "text"})

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, d.Len())
}

func TestDictionarySeedAndLookup(t *testing.T) {
	seed := []ElementInfo{{TestID: "x", Type: "view"}, {TestID: "x", Type: "view"}, {TestID: "y", Type: "view"}}
	d := NewDictionary(seed...)

	require.Equal(t, 2, d.Len())
	i, ok := d.Lookup(ElementInfo{TestID: "y", Type: "view"})
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = d.Lookup(ElementInfo{TestID: "z", Type: "view"})
	assert.False(t, ok)

	els := d.Elements()
	els[0].TestID = "mutated"
	assert.Equal(t, "x", d.Elements()[0].TestID)
}

// =============================================================================
// Validation
// =============================================================================

func TestValidateValidSession(t *testing.T) {
	assert.Empty(t, Validate(sampleSession()))
	assert.NoError(t, Check(sampleSession()))
}

func TestValidateEmptySession(t *testing.T) {
	s := &Session{Header: Header{SessionID: "e", Device: Device{Platform: "ios"}, App: App{Identifier: "com.example"}}}
	assert.Empty(t, Validate(s))
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Session)
		code   string
	}{
		{"missing id", func(s *Session) { s.Header.SessionID = " " }, ErrMissingSessionID},
		{"missing platform", func(s *Session) { s.Header.Device.Platform = "" }, ErrMissingPlatform},
		{"missing app", func(s *Session) { s.Header.App.Identifier = "" }, ErrMissingApp},
		{"negative dt", func(s *Session) { s.Events[1].DT = -1 }, ErrNegativeDelta},
		{"overrun", func(s *Session) { s.Events[4].DT = 99_999 }, ErrDurationOverrun},
		{"element index", func(s *Session) { s.Events[2].Data = TapData{ElementIndex: Index(7)} }, ErrElementIndexRange},
		{"nil payload", func(s *Session) { s.Events[0].Data = nil }, ErrUnsupportedEvent},
		{"screenshot ref", func(s *Session) { s.Screenshots[0].EventIndex = 5 }, ErrScreenshotEventRef},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleSession()
			tt.mutate(s)

			errs := Validate(s)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)

			err := Check(s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.code)
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	s := sampleSession()
	s.Header.SessionID = ""
	s.Events[1].DT = -3
	s.Screenshots[0].EventIndex = -1

	errs := Validate(s)
	assert.Len(t, errs, 3)
}
