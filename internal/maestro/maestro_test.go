package maestro

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/spec"
	"github.com/roach88/gremlin/internal/testutil"
)

// decodeAll reads every document of a YAML stream.
func decodeAll(t *testing.T, src string) []any {
	t.Helper()
	dec := yaml.NewDecoder(strings.NewReader(src))
	var docs []any
	for {
		var d any
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return docs
		}
		require.NoError(t, err)
		docs = append(docs, d)
	}
}

func commandsOf(t *testing.T, content string) []any {
	t.Helper()
	docs := decodeAll(t, content)
	require.Len(t, docs, 2)
	cmds, ok := docs[1].([]any)
	require.True(t, ok, "second document must be a command list")
	return cmds
}

func TestGenerate_ShopIndexAndFlows(t *testing.T) {
	files, err := Generate(testutil.ShopSpec(t), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, files, 10)

	index := files[0]
	assert.Equal(t, IndexFile, index.Path)
	docs := decodeAll(t, index.Content)
	require.Len(t, docs, 2)

	cfg := docs[0].(map[string]any)
	assert.Equal(t, "shop", cfg["appId"])
	assert.Equal(t, "Shop", cfg["name"])

	runs := docs[1].([]any)
	require.Len(t, runs, 9)
	assert.Equal(t, map[string]any{"runFlow": "flows/home-to-order-confirmation-4.yaml"}, runs[0])
	assert.Equal(t, "flows/home-to-order-confirmation-4.yaml", files[1].Path)
}

func TestGenerate_RankingMatchesExtract(t *testing.T) {
	s := testutil.ShopSpec(t)
	flows, err := flow.Extract(s)
	require.NoError(t, err)

	files, err := Generate(s, DefaultOptions())
	require.NoError(t, err)

	want := make([]string, len(flows))
	for i, f := range flows {
		want[i] = f.Name
	}
	assert.Equal(t, want, Names(files))
}

func TestGenerate_FlowCommands(t *testing.T) {
	files, err := Generate(testutil.ShopSpec(t), DefaultOptions())
	require.NoError(t, err)

	// Rank 1: t1 t10 t2 t9 t3 t4 t5
	cmds := commandsOf(t, files[1].Content)
	assert.Equal(t, "launchApp", cmds[0])
	assert.Equal(t, map[string]any{"openLink": "https://shop.example.com"}, cmds[1])
	assert.Contains(t, cmds, map[string]any{"tapOn": map[string]any{"id": "search-input"}})
	assert.Contains(t, cmds, map[string]any{"inputText": "running shoes"})
	assert.Contains(t, cmds, "scroll")
	assert.Contains(t, cmds, map[string]any{"tapOn": map[string]any{"text": "Trail Runner 2"}})
	assert.Contains(t, cmds, map[string]any{"swipe": map[string]any{"direction": "LEFT"}})
	assert.Contains(t, cmds, map[string]any{"assertVisible": map[string]any{"id": "add-to-cart"}})
	assert.Contains(t, cmds, map[string]any{"tapOn": map[string]any{"id": "add-to-cart"}})
	assert.Contains(t, cmds, map[string]any{"tapOn": map[string]any{"text": "Proceed to checkout"}})
	assert.Contains(t, cmds, map[string]any{"pressKey": "Enter"})
	assert.Contains(t, cmds, "waitForAnimationToEnd")

	assert.Contains(t, files[1].Content, "# expect URL matching /checkout")
	assert.Contains(t, files[1].Content, "# guard: cartCount > 0")
	assert.NotContains(t, files[1].Content, "Add to cart\n", "the test id must win over visible text")
}

func TestGenerate_MaskedInputUsesEnv(t *testing.T) {
	files, err := Generate(testutil.ShopSpec(t), DefaultOptions())
	require.NoError(t, err)

	// Rank 3 ends with login -> account through the masked password input.
	cmds := commandsOf(t, files[3].Content)
	assert.Contains(t, cmds, map[string]any{"inputText": "${GREMLIN_PASSWORD}"})
	assert.Contains(t, cmds, "back")
}

func TestGenerate_Screenshots(t *testing.T) {
	opts := DefaultOptions()
	opts.Screenshots = true
	files, err := Generate(testutil.ShopSpec(t), opts)
	require.NoError(t, err)

	cmds := commandsOf(t, files[len(files)-1].Content)
	assert.Contains(t, cmds, map[string]any{"takeScreenshot": "home-to-account-5-step-1-login"})
	assert.Contains(t, cmds, map[string]any{"takeScreenshot": "home-to-account-5-step-2-account"})
}

func TestGenerate_WithoutComments(t *testing.T) {
	opts := DefaultOptions()
	opts.Comments = false
	files, err := Generate(testutil.ShopSpec(t), opts)
	require.NoError(t, err)

	for _, f := range files {
		assert.NotContains(t, f.Content, "#", f.Path)
	}
}

func TestGenerate_ByTransition(t *testing.T) {
	opts := DefaultOptions()
	opts.GroupBy = GroupByTransition
	files, err := Generate(testutil.ShopSpec(t), opts)
	require.NoError(t, err)
	require.Len(t, files, 11)

	var t4 File
	for _, f := range files {
		if f.Path == "flows/t4.yaml" {
			t4 = f
		}
	}
	require.NotEmpty(t, t4.Content)

	docs := decodeAll(t, t4.Content)
	cfg := docs[0].(map[string]any)
	assert.Equal(t, "t4: Cart -> Checkout", cfg["name"])
	assert.Equal(t, []any{"gremlin", "transition", "frequency-20"}, cfg["tags"])
	assert.Contains(t, t4.Content, "# reach Cart")

	cmds := docs[1].([]any)
	assert.Contains(t, cmds, map[string]any{"inputText": "running shoes"}, "prelude replays t1")
}

func TestGenerateSingle(t *testing.T) {
	out, err := GenerateSingle(testutil.ShopSpec(t), DefaultOptions())
	require.NoError(t, err)

	docs := decodeAll(t, out)
	require.Len(t, docs, 18)
	for i := 0; i < len(docs); i += 2 {
		cfg := docs[i].(map[string]any)
		assert.Equal(t, "shop", cfg["appId"])
	}
	assert.Equal(t, "Home to Order Confirmation (4)", docs[0].(map[string]any)["name"])
}

func TestGenerate_RequiresAppID(t *testing.T) {
	s := testutil.ShopSpec(t)
	s.Metadata.AppID = ""

	_, err := Generate(s, DefaultOptions())
	assert.ErrorIs(t, err, ErrNoAppID)

	opts := DefaultOptions()
	opts.AppID = "com.example.shop"
	files, err := Generate(s, opts)
	require.NoError(t, err)
	assert.Contains(t, files[0].Content, "appId: com.example.shop")
}

func TestGenerate_UnsupportedEventIsComment(t *testing.T) {
	s := testutil.LinearSpec("a", "b")
	s.Metadata.AppID = "com.example"
	s.Transitions[0].Event = spec.UnknownEvent{Type: "pinch"}

	files, err := Generate(s, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[1].Content, `# gremlin: unsupported event "pinch" was not lowered`)
}

func TestGenerate_NoFlows(t *testing.T) {
	s := testutil.LinearSpec("only")
	s.Metadata.AppID = "com.example"

	files, err := Generate(s, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, files, 1)

	single, err := GenerateSingle(s, DefaultOptions())
	require.NoError(t, err)
	assert.Empty(t, single)
}

func TestSelector(t *testing.T) {
	x, y := 120.4, 48.6
	tests := []struct {
		name string
		el   spec.ElementRef
		want map[string]any
	}{
		{"test id", spec.ElementRef{TestID: "buy", Text: "Buy"}, map[string]any{"id": "buy"}},
		{"label", spec.ElementRef{AccessibilityLabel: "Close"}, map[string]any{"text": "Close"}},
		{"text is escaped", spec.ElementRef{Text: "Cart (2)", Type: "button"}, map[string]any{"text": `Cart \(2\)`}},
		{"selector as id", spec.ElementRef{Selector: "checkout_btn"}, map[string]any{"id": "checkout_btn"}},
		{"point", spec.ElementRef{X: &x, Y: &y}, map[string]any{"point": "120,49"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, ok := Selector(tt.el)
			require.True(t, ok)
			var got map[string]any
			require.NoError(t, n.Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := Selector(spec.ElementRef{})
	assert.False(t, ok)
}

func TestLowerEvent(t *testing.T) {
	tests := []struct {
		name  string
		event spec.Event
		want  []any
	}{
		{"double tap", spec.DoubleTap{Element: spec.ElementRef{TestID: "photo"}}, []any{map[string]any{"doubleTapOn": map[string]any{"id": "photo"}}}},
		{"long press", spec.LongPress{Element: spec.ElementRef{TestID: "msg"}}, []any{map[string]any{"longPressOn": map[string]any{"id": "msg"}}}},
		{"scroll up", spec.Scroll{Direction: "up"}, []any{map[string]any{"swipe": map[string]any{"direction": "DOWN"}}}},
		{"navigate", spec.Navigate{URL: "shop://cart"}, []any{map[string]any{"openLink": "shop://cart"}}},
		{"back", spec.Back{}, []any{"back"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &commandList{}
			lowerEvent(c, tt.event)
			var got []any
			require.NoError(t, c.node().Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSharedSlugs(t *testing.T) {
	assert.Equal(t, "home-to-account-5", playwright.Slug("Home to Account (5)"))
}

func TestGenerate_SlugCollisionsGetSuffixes(t *testing.T) {
	s := testutil.LinearSpec("a", "b", "c")
	s.Metadata.AppID = "com.example"
	s.Transitions[0].ID = "go.next"
	s.Transitions[1].ID = "go-next"

	opts := DefaultOptions()
	opts.GroupBy = GroupByTransition
	files, err := Generate(s, opts)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "flows/go-next.yaml", files[1].Path)
	assert.Equal(t, "flows/go-next-2.yaml", files[2].Path)
	runs := decodeAll(t, files[0].Content)[1].([]any)
	assert.Equal(t, []any{
		map[string]any{"runFlow": "flows/go-next.yaml"},
		map[string]any{"runFlow": "flows/go-next-2.yaml"},
	}, runs)
}

func TestGenerate_FlowNamesDifferingByCase(t *testing.T) {
	s := spec.CreateSpec("Cases", spec.WithClock(testutil.NewFixedClock(0).Now))
	s.Metadata.AppID = "com.example"
	s.AddState(spec.CreateState("start", "Cart"), testutil.Epoch)
	s.AddState(spec.CreateState("upper", "Done"), testutil.Epoch)
	s.AddState(spec.CreateState("lower", "done"), testutil.Epoch)
	s.AddTransition(spec.CreateTransition("t1", "start", "upper", spec.Back{}), testutil.Epoch)
	s.AddTransition(spec.CreateTransition("t2", "start", "lower", spec.Back{}), testutil.Epoch)

	opts := DefaultOptions()
	opts.Screenshots = true
	files, err := Generate(s, opts)
	require.NoError(t, err)
	require.Len(t, files, 3)

	seen := map[string]bool{}
	for _, f := range files {
		assert.False(t, seen[f.Path], "duplicate path %s", f.Path)
		seen[f.Path] = true
	}
	assert.True(t, seen["flows/cart-to-done.yaml"])
	assert.True(t, seen["flows/cart-to-done-2.yaml"])
}

func TestGenerate_UnreachableTransitionIsReported(t *testing.T) {
	s := testutil.LinearSpec("a", "b")
	s.Metadata.AppID = "com.example"
	s.AddState(spec.CreateState("orphan", "Orphan"), testutil.Epoch)
	s.AddState(spec.CreateState("elsewhere", "Elsewhere"), testutil.Epoch)
	orphan := spec.CreateTransition("t-orphan", "orphan", "elsewhere", spec.Back{})
	s.Transitions = append([]spec.Transition{orphan}, s.Transitions...)

	opts := DefaultOptions()
	opts.GroupBy = GroupByTransition
	files, err := Generate(s, opts)
	require.NoError(t, err)
	require.Len(t, files, 2, "index plus the reachable transition")

	assert.Contains(t, files[0].Content, "# skipped t-orphan: Orphan is unreachable from a")
	assert.Equal(t, "flows/tb.yaml", files[1].Path)

	single, err := GenerateSingle(s, opts)
	require.NoError(t, err)
	assert.Len(t, decodeAll(t, single), 2)
}

func TestGenerate_PostConditionMentionsURL(t *testing.T) {
	s := testutil.LinearSpec("a", "b")
	s.Metadata.AppID = "com.example"
	s.States[1].Metadata.URL = "/b"

	files, err := Generate(s, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Contains(t, files[1].Content, "# expect URL /b")
}
