package codec

import (
	"fmt"
	"math"

	"github.com/roach88/gremlin/internal/session"
)

// Scale factors for performance samples.
const (
	fpsScale    = 10
	memoryScale = 1000
)

// Optimize converts s into its precision-reduced form.
//
// Coordinates, deltas, durations and dt are rounded to integers. FPS keeps one
// decimal digit, memory keeps three, JS thread lag is rounded to whole
// milliseconds. Element types become TypeCodes; an unknown type tag, a
// reserved event type or an element index outside the dictionary is an error.
func Optimize(s *session.Session) (*OptimizedSession, error) {
	out := &OptimizedSession{
		H: optimizeHeader(s.Header),
		E: make([]OptElement, len(s.Elements)),
		V: make([]OptEvent, len(s.Events)),
		S: make([]OptScreenshot, len(s.Screenshots)),
	}

	for i, el := range s.Elements {
		code, err := EncodeType(el.Type)
		if err != nil {
			return nil, fmt.Errorf("elements[%d]: %w", i, err)
		}
		out.E[i] = OptElement{
			TestID:   el.TestID,
			Label:    el.AccessibilityLabel,
			Text:     el.Text,
			Type:     code,
			Selector: el.Selector,
		}
	}

	for i, ev := range s.Events {
		if idx, ok := ev.ElementIndex(); ok && (idx < 0 || idx >= len(s.Elements)) {
			return nil, fmt.Errorf("events[%d]: element index %d outside dictionary of %d", i, idx, len(s.Elements))
		}
		data, err := optimizeData(ev.Data)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		out.V[i] = OptEvent{
			D: round(ev.DT),
			T: int(ev.Type()),
			P: data,
			F: optimizePerf(ev.Perf),
		}
	}

	for i, shot := range s.Screenshots {
		out.S[i] = OptScreenshot{
			ID:     shot.ID,
			Event:  shot.EventIndex,
			URI:    shot.URI,
			Width:  shot.Width,
			Height: shot.Height,
		}
	}

	return out, nil
}

// Deoptimize reconstructs a session from its optimized form.
// It is the exact inverse of Optimize up to the precision Optimize keeps.
func Deoptimize(o *OptimizedSession) (*session.Session, error) {
	out := &session.Session{
		Header:      deoptimizeHeader(o.H),
		Elements:    make([]session.ElementInfo, len(o.E)),
		Events:      make([]session.Event, len(o.V)),
		Screenshots: make([]session.Screenshot, len(o.S)),
	}

	for i, el := range o.E {
		tag, err := DecodeType(el.Type)
		if err != nil {
			return nil, fmt.Errorf("elements[%d]: %w", i, err)
		}
		out.Elements[i] = session.ElementInfo{
			TestID:             el.TestID,
			AccessibilityLabel: el.Label,
			Text:               el.Text,
			Type:               tag,
			Selector:           el.Selector,
		}
	}

	for i, ev := range o.V {
		data, err := deoptimizeData(session.EventType(ev.T), ev.P)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		out.Events[i] = session.Event{
			DT:   float64(ev.D),
			Data: data,
			Perf: deoptimizePerf(ev.F),
		}
	}

	for i, shot := range o.S {
		out.Screenshots[i] = session.Screenshot{
			ID:         shot.ID,
			EventIndex: shot.Event,
			URI:        shot.URI,
			Width:      shot.Width,
			Height:     shot.Height,
		}
	}

	return out, nil
}

func optimizeHeader(h session.Header) OptHeader {
	return OptHeader{
		ID:    h.SessionID,
		Start: h.StartTime,
		End:   h.EndTime,
		Device: OptDevice{
			Platform:   h.Device.Platform,
			OSVersion:  h.Device.OSVersion,
			Model:      h.Device.Model,
			Width:      h.Device.ScreenWidth,
			Height:     h.Device.ScreenHeight,
			PixelRatio: h.Device.PixelRatio,
			Locale:     h.Device.Locale,
		},
		App: OptApp{
			ID:      h.App.Identifier,
			Name:    h.App.Name,
			Version: h.App.Version,
			Build:   h.App.Build,
		},
		Version: h.SchemaVersion,
	}
}

func deoptimizeHeader(h OptHeader) session.Header {
	return session.Header{
		SessionID: h.ID,
		StartTime: h.Start,
		EndTime:   h.End,
		Device: session.Device{
			Platform:     h.Device.Platform,
			OSVersion:    h.Device.OSVersion,
			Model:        h.Device.Model,
			ScreenWidth:  h.Device.Width,
			ScreenHeight: h.Device.Height,
			PixelRatio:   h.Device.PixelRatio,
			Locale:       h.Device.Locale,
		},
		App: session.App{
			Identifier: h.App.ID,
			Name:       h.App.Name,
			Version:    h.App.Version,
			Build:      h.App.Build,
		},
		SchemaVersion: h.Version,
	}
}

// optimizeData flattens a payload. The switch is exhaustive over
// session.EventData; a nil payload is the only failure.
func optimizeData(d session.EventData) (OptData, error) {
	switch d := d.(type) {
	case session.TapData:
		return OptData{Kind: d.Type().Kind(), Element: d.ElementIndex, X: round(d.X), Y: round(d.Y)}, nil
	case session.LongPressData:
		return OptData{Kind: d.Type().Kind(), Element: d.ElementIndex, X: round(d.X), Y: round(d.Y), Ms: round(d.Duration)}, nil
	case session.SwipeData:
		return OptData{
			Kind:      d.Type().Kind(),
			X:         round(d.StartX),
			Y:         round(d.StartY),
			X2:        round(d.EndX),
			Y2:        round(d.EndY),
			Ms:        round(d.Duration),
			Direction: d.Direction,
		}, nil
	case session.ScrollData:
		return OptData{Kind: d.Type().Kind(), Element: d.ElementIndex, X: round(d.DeltaX), Y: round(d.DeltaY)}, nil
	case session.InputData:
		return OptData{Kind: d.Type().Kind(), Element: d.ElementIndex, Value: d.Value, Masked: d.Masked, InputType: d.InputType}, nil
	case session.NavigationData:
		return OptData{Kind: d.Type().Kind(), From: d.From, To: d.To, URL: d.URL, Method: d.Method}, nil
	case session.AppStateData:
		return OptData{Kind: d.Type().Kind(), State: d.State}, nil
	case session.ErrorData:
		return OptData{Kind: d.Type().Kind(), Message: d.Message, Stack: d.Stack, Fatal: d.Fatal}, nil
	case nil:
		return OptData{}, fmt.Errorf("event has no payload")
	default:
		return OptData{}, fmt.Errorf("unsupported payload %T", d)
	}
}

func deoptimizeData(t session.EventType, p OptData) (session.EventData, error) {
	if !t.Known() {
		return nil, fmt.Errorf("unsupported event type %d", int(t))
	}
	if p.Kind != t.Kind() {
		return nil, fmt.Errorf("payload kind %q does not match type %d (%s)", p.Kind, int(t), t.Kind())
	}

	switch t {
	case session.EventTap, session.EventDoubleTap:
		return session.TapData{ElementIndex: p.Element, X: float64(p.X), Y: float64(p.Y), Double: t == session.EventDoubleTap}, nil
	case session.EventLongPress:
		return session.LongPressData{ElementIndex: p.Element, X: float64(p.X), Y: float64(p.Y), Duration: float64(p.Ms)}, nil
	case session.EventSwipe:
		return session.SwipeData{
			StartX:    float64(p.X),
			StartY:    float64(p.Y),
			EndX:      float64(p.X2),
			EndY:      float64(p.Y2),
			Direction: p.Direction,
			Duration:  float64(p.Ms),
		}, nil
	case session.EventScroll:
		return session.ScrollData{ElementIndex: p.Element, DeltaX: float64(p.X), DeltaY: float64(p.Y)}, nil
	case session.EventInput:
		return session.InputData{ElementIndex: p.Element, Value: p.Value, Masked: p.Masked, InputType: p.InputType}, nil
	case session.EventNavigate:
		return session.NavigationData{From: p.From, To: p.To, URL: p.URL, Method: p.Method}, nil
	case session.EventAppState:
		return session.AppStateData{State: p.State}, nil
	case session.EventError:
		return session.ErrorData{Message: p.Message, Stack: p.Stack, Fatal: p.Fatal}, nil
	default:
		return nil, fmt.Errorf("unsupported event type %d", int(t))
	}
}

func optimizePerf(p *session.PerfSample) *OptPerf {
	if p == nil {
		return nil
	}
	return &OptPerf{
		FPS:    scaled(p.FPS, fpsScale),
		Memory: scaled(p.MemoryMB, memoryScale),
		Lag:    scaled(p.JSThreadLag, 1),
	}
}

func deoptimizePerf(p *OptPerf) *session.PerfSample {
	if p == nil {
		return nil
	}
	return &session.PerfSample{
		FPS:         unscaled(p.FPS, fpsScale),
		MemoryMB:    unscaled(p.Memory, memoryScale),
		JSThreadLag: unscaled(p.Lag, 1),
	}
}

func scaled(v *float64, factor float64) *int64 {
	if v == nil {
		return nil
	}
	n := round(*v * factor)
	return &n
}

func unscaled(v *int64, factor float64) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v) / factor
	return &f
}

// round rounds half away from zero.
func round(f float64) int64 {
	return int64(math.Round(f))
}
