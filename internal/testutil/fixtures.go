package testutil

import (
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/session"
	"github.com/roach88/gremlin/internal/spec"
)

//go:embed testdata/shop.json
var shopJSON []byte

// ShopJSON returns the raw storefront spec document.
func ShopJSON() []byte {
	out := make([]byte, len(shopJSON))
	copy(out, shopJSON)
	return out
}

// ShopSpec returns a fresh copy of the storefront spec: eight states from
// home to order confirmation and account, ten transitions t1..t10 with a
// product swipe and a search scroll as self loops, and properties p1..p3.
func ShopSpec(t testing.TB) *spec.Spec {
	t.Helper()
	var s spec.Spec
	require.NoError(t, json.Unmarshal(shopJSON, &s))
	require.NoError(t, spec.Check(&s))
	return &s
}

// LinearSpec returns a spec a -> b -> ... with one tap per step on a button
// labelled "next <n>". It needs at least one state.
func LinearSpec(ids ...string) *spec.Spec {
	s := spec.CreateSpec("Linear", spec.WithClock(NewFixedClock(0).Now))
	for _, id := range ids {
		s.AddState(spec.CreateState(id, id), Epoch)
	}
	for i := 1; i < len(ids); i++ {
		ev := spec.Tap{Element: spec.ElementRef{TestID: "next-" + ids[i], Type: "button"}}
		tr := spec.CreateTransition("t"+ids[i], ids[i-1], ids[i], ev)
		s.AddTransition(tr, Epoch)
	}
	return s
}

// SampleSession returns a small web session touching every payload kind:
// a tap, an input, a scroll, a swipe, a long press, a double tap, a
// navigation, an app state change and an error. Element 0 is reused.
func SampleSession() *session.Session {
	end := int64(1760000010000)
	return &session.Session{
		Header: session.Header{
			SessionID: "sess-0001",
			StartTime: 1760000000000,
			EndTime:   &end,
			Device: session.Device{
				Platform:     "web",
				Model:        "Chrome 129",
				ScreenWidth:  1280,
				ScreenHeight: 800,
				PixelRatio:   2,
				Locale:       "en-US",
			},
			App:           session.App{Identifier: "https://shop.example.com", Name: "Shop", Version: "3.2.0"},
			SchemaVersion: session.SchemaVersion,
		},
		Elements: []session.ElementInfo{
			{TestID: "search-input", Type: "input"},
			{Text: "Trail Runner 2", Type: "link", Selector: "a.product"},
			{TestID: "add-to-cart", Text: "Add to cart", Type: "button"},
			{AccessibilityLabel: "Product gallery", Type: "image"},
		},
		Events: []session.Event{
			{DT: 0, Data: session.NavigationData{To: "home", URL: "https://shop.example.com/", Method: "load"}},
			{DT: 812.4, Data: session.TapData{ElementIndex: session.Index(0), X: 640.25, Y: 48.5}},
			{DT: 1503.7, Data: session.InputData{ElementIndex: session.Index(0), Value: "running shoes", InputType: "text"}},
			{DT: 950.1, Data: session.ScrollData{DeltaX: 0, DeltaY: 420.6}, Perf: &session.PerfSample{FPS: session.Float(58.64), MemoryMB: session.Float(142.1234)}},
			{DT: 700, Data: session.TapData{ElementIndex: session.Index(1), X: 300, Y: 512.2}},
			{DT: 1200.9, Data: session.SwipeData{StartX: 900, StartY: 300, EndX: 200, EndY: 310, Direction: "left", Duration: 180}},
			{DT: 640, Data: session.LongPressData{ElementIndex: session.Index(3), X: 640, Y: 300, Duration: 812.5}},
			{DT: 410.3, Data: session.TapData{ElementIndex: session.Index(2), X: 1010, Y: 620, Double: true}},
			{DT: 1880, Data: session.AppStateData{State: "background"}},
			{DT: 1402.6, Data: session.ErrorData{Message: "TypeError: cart is undefined", Stack: "at addToCart (cart.js:42)"}, Perf: &session.PerfSample{JSThreadLag: session.Float(31.7)}},
		},
		Screenshots: []session.Screenshot{
			{ID: "shot-1", EventIndex: 4, URI: "file://screens/shot-1.png", Width: 1280, Height: 800},
		},
	}
}
