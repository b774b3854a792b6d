package flow

import (
	"fmt"
	"strings"

	"github.com/awalterschulze/gographviz"

	"github.com/roach88/gremlin/internal/spec"
)

// DOT renders the state graph of s in Graphviz DOT.
// Terminal states are drawn as double circles and the initial state in
// bold. Edge labels carry the event and its observed frequency.
// Transitions that belong to highlight are drawn in red.
func DOT(s *spec.Spec, highlight ...Flow) (string, error) {
	g := gographviz.NewGraph()
	name := quote(s.Name)
	if err := g.SetName(name); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if err := g.AddAttr(name, "rankdir", "LR"); err != nil {
		return "", fmt.Errorf("graph attr: %w", err)
	}

	graph := NewGraph(s)
	for _, st := range s.States {
		attrs := map[string]string{
			"label": quote(s.StateName(st.ID)),
			"shape": "circle",
		}
		if graph.IsTerminal(st.ID) {
			attrs["shape"] = "doublecircle"
		}
		if st.ID == s.InitialState {
			attrs["style"] = "bold"
		}
		if st.Metadata.URLPattern != "" {
			attrs["tooltip"] = quote(st.Metadata.URLPattern)
		}
		if err := g.AddNode(name, quote(st.ID), attrs); err != nil {
			return "", fmt.Errorf("state %q: %w", st.ID, err)
		}
	}

	marked := make(map[string]bool)
	for _, f := range highlight {
		for _, id := range f.IDs() {
			marked[id] = true
		}
	}

	for _, t := range s.Transitions {
		attrs := map[string]string{
			"label": quote(fmt.Sprintf("%s (%d)", Describe(t.Event), t.Frequency)),
		}
		if marked[t.ID] {
			attrs["color"] = "red"
			attrs["penwidth"] = "2"
		}
		if err := g.AddEdge(quote(t.From), quote(t.To), true, attrs); err != nil {
			return "", fmt.Errorf("transition %q: %w", t.ID, err)
		}
	}

	return g.String(), nil
}

// ParseDOT reads back a DOT document and returns its node and edge counts.
func ParseDOT(src string) (nodes, edges int, err error) {
	ast, err := gographviz.ParseString(src)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse DOT: %w", err)
	}
	g := gographviz.NewGraph()
	if err := gographviz.Analyse(ast, g); err != nil {
		return 0, 0, fmt.Errorf("failed to analyze DOT: %w", err)
	}
	return len(g.Nodes.Nodes), len(g.Edges.Edges), nil
}

// Describe returns a short human label for an event, such as
// `tap "Add to cart"`.
func Describe(e spec.Event) string {
	switch ev := e.(type) {
	case spec.Navigate:
		if ev.URL != "" {
			return "navigate " + ev.URL
		}
		if ev.Screen != "" {
			return "navigate " + ev.Screen
		}
		return "navigate"
	case spec.Scroll:
		return strings.TrimSpace("scroll " + ev.Direction)
	case spec.Swipe:
		return strings.TrimSpace("swipe " + ev.Direction)
	case spec.Back:
		return "back"
	case nil:
		return "?"
	}
	if el, ok := spec.TargetOf(e); ok {
		return fmt.Sprintf("%s %q", e.Kind(), el.Label())
	}
	return e.Kind()
}

// quote makes s a DOT double-quoted ID.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
