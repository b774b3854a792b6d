package playwright

import (
	"fmt"
	"strings"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/spec"
)

// BaseURL resolves the URL opened before each test: the override, the
// spec's base URL, the initial state's URL, then "/".
func BaseURL(s *spec.Spec, override string) string {
	if override != "" {
		return override
	}
	if s.Metadata.BaseURL != "" {
		return s.Metadata.BaseURL
	}
	if st, ok := s.State(s.InitialState); ok && st.Metadata.URL != "" {
		return st.Metadata.URL
	}
	return "/"
}

// FileName is the conventional output name for s, e.g. "shop.spec.ts".
func FileName(s *spec.Spec) string {
	return Slug(s.Name) + ".spec.ts"
}

// Generate renders s as a Playwright test file.
func Generate(s *spec.Spec, opts Options) (string, error) {
	if err := spec.Check(s); err != nil {
		return "", err
	}

	e := &emitter{spec: s, opts: opts, graph: flow.NewGraph(s)}
	e.header()

	switch opts.GroupBy {
	case GroupByFlow, "":
		flows, err := flow.Extract(s, opts.Extract...)
		if err != nil {
			return "", err
		}
		if len(flows) == 0 {
			e.line(2, "// no flow from the initial state reaches a terminal state")
		}
		for _, f := range flows {
			e.flowTest(f)
		}
	case GroupByTransition:
		for _, t := range s.Transitions {
			e.transitionTest(t)
		}
	default:
		return "", fmt.Errorf("unknown grouping %q", opts.GroupBy)
	}

	e.line(0, "});")
	return e.b.String(), nil
}

// File renders one describe block around tests rendered by body. The fuzz
// suite uses it to share the file layout.
func File(s *spec.Spec, opts Options, body func(w *Writer)) string {
	e := &emitter{spec: s, opts: opts, graph: flow.NewGraph(s)}
	e.header()
	body(&Writer{e: e})
	e.line(0, "});")
	return e.b.String()
}

// Writer appends indented lines to a file being generated.
type Writer struct {
	e *emitter
}

// Line writes one line at the given indent depth (two spaces per level).
func (w *Writer) Line(depth int, text string) {
	w.e.line(depth, text)
}

// Blank writes an empty line.
func (w *Writer) Blank() {
	w.e.b.WriteByte('\n')
}

type emitter struct {
	spec  *spec.Spec
	opts  Options
	graph *flow.Graph
	b     strings.Builder
}

func (e *emitter) line(depth int, text string) {
	e.b.WriteString(strings.Repeat("  ", depth))
	e.b.WriteString(text)
	e.b.WriteByte('\n')
}

func (e *emitter) comment(depth int, format string, args ...any) {
	if e.opts.Comments {
		e.line(depth, "// "+fmt.Sprintf(format, args...))
	}
}

func (e *emitter) header() {
	s := e.spec
	if e.opts.Comments {
		e.line(0, fmt.Sprintf("// Generated by gremlin from %q (version %s).", s.Name, s.Version))
		if s.Description != "" {
			e.line(0, "// "+s.Description)
		}
		e.b.WriteByte('\n')
	}
	e.line(0, "import { test, expect } from '@playwright/test';")
	e.b.WriteByte('\n')
	e.line(0, "test.describe("+Quote(s.Name)+", () => {")
	e.line(1, "test.beforeEach(async ({ page }) => {")
	e.line(2, "await page.goto("+Quote(BaseURL(s, e.opts.BaseURL))+");")
	e.line(1, "});")
}

func (e *emitter) flowTest(f flow.Flow) {
	e.b.WriteByte('\n')
	e.line(1, "test("+Quote(f.Name)+", async ({ page }) => {")
	e.comment(2, "steps: %d, observed frequency: %d", len(f.Transitions), f.Frequency)
	slug := Slug(f.Name)
	for i, t := range f.Transitions {
		e.step(t, i+1, slug)
	}
	e.line(1, "});")
}

func (e *emitter) transitionTest(t spec.Transition) {
	s := e.spec
	title := fmt.Sprintf("%s: %s -> %s", t.ID, s.DisplayName(t.From), s.DisplayName(t.To))
	details := fmt.Sprintf("{ annotation: { type: 'frequency', description: '%d' } }", t.Frequency)

	e.b.WriteByte('\n')
	prelude, ok := e.graph.ShortestPath(s.InitialState, t.From)
	if !ok {
		e.comment(1, "%s is unreachable from %s", s.DisplayName(t.From), s.DisplayName(s.InitialState))
		e.line(1, "test.skip("+Quote(title)+", "+details+", async () => {});")
		return
	}

	e.line(1, "test("+Quote(title)+", "+details+", async ({ page }) => {")
	if len(prelude) > 0 {
		e.comment(2, "reach %s", s.DisplayName(t.From))
		for _, p := range prelude {
			e.line(2, LowerEvent(p.Event))
			e.line(2, PostCondition(s, p.To))
		}
	}
	e.step(t, 1, Slug(t.ID))
	e.line(1, "});")
}

// step writes the guard assertions, the event, the post-condition and an
// optional screenshot for one transition.
func (e *emitter) step(t spec.Transition, n int, shotPrefix string) {
	s := e.spec
	e.comment(2, "%s: %s (%s -> %s)", t.ID, flow.Describe(t.Event), s.DisplayName(t.From), s.DisplayName(t.To))

	asserts, unchecked := Guard(t.Guard)
	for _, a := range asserts {
		e.line(2, a)
	}
	for _, p := range unchecked {
		e.comment(2, "guard: %s", spec.FormatPredicate(p))
	}

	e.line(2, LowerEvent(t.Event))
	if t.Action != nil {
		e.comment(2, "effect: %s", spec.FormatAction(t.Action))
	}
	e.line(2, PostCondition(s, t.To))

	if e.opts.Screenshots {
		name := fmt.Sprintf("%s-step-%d-%s.png", shotPrefix, n, Slug(t.To))
		e.line(2, "await expect(page).toHaveScreenshot("+Quote(name)+");")
	}
}
