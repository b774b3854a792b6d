// Package report summarizes a spec for humans: its shape, ranked flows,
// loops, property verdicts and an optional fuzz campaign, as Markdown or
// HTML.
package report

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/spec"
)

// Options controls Build.
type Options struct {
	Extract []flow.Option
	// Fuzz runs a campaign when set.
	Fuzz *fuzz.Options
}

// Report is everything a summary shows.
type Report struct {
	Spec        *spec.Spec
	Flows       []flow.Flow
	Loops       []flow.Loop
	Verdicts    []flow.Verdict
	Unreachable []string
	Fuzz        []fuzz.FuzzTest
}

// Build analyzes s.
func Build(s *spec.Spec, opts Options) (*Report, error) {
	flows, err := flow.Extract(s, opts.Extract...)
	if err != nil {
		return nil, err
	}
	verdicts, err := flow.Verify(s, flows)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Spec:     s,
		Flows:    flows,
		Loops:    flow.Loops(s),
		Verdicts: verdicts,
	}

	reachable := make(map[string]bool)
	for _, id := range flow.NewGraph(s).Reachable(s.InitialState) {
		reachable[id] = true
	}
	for _, st := range s.States {
		if !reachable[st.ID] {
			r.Unreachable = append(r.Unreachable, st.ID)
		}
	}

	if opts.Fuzz != nil {
		r.Fuzz, err = fuzz.GenerateFuzzTests(s, *opts.Fuzz)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Markdown renders r as GitHub-flavored Markdown.
func Markdown(r *Report) string {
	s := r.Spec
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", s.Name)
	if s.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", s.Description)
	}

	b.WriteString("| | |\n|---|---|\n")
	row(&b, "Version", s.Version)
	if s.Metadata.Platform != "" {
		row(&b, "Platform", s.Metadata.Platform)
	}
	if s.Metadata.AppID != "" {
		row(&b, "App", s.Metadata.AppID)
	}
	row(&b, "Sessions", fmt.Sprint(s.Metadata.SessionCount))
	row(&b, "States", fmt.Sprint(len(s.States)))
	row(&b, "Transitions", fmt.Sprint(len(s.Transitions)))
	row(&b, "Initial state", s.StateName(s.InitialState))

	b.WriteString("\n## Flows\n\n")
	if len(r.Flows) == 0 {
		b.WriteString("No flow from the initial state reaches a terminal state.\n")
	} else {
		b.WriteString("| # | Flow | Steps | Frequency | Transitions |\n|---:|---|---:|---:|---|\n")
		for i, f := range r.Flows {
			row(&b, fmt.Sprint(i+1), f.Name, fmt.Sprint(len(f.Transitions)), fmt.Sprint(f.Frequency), strings.Join(f.IDs(), " → "))
		}
	}

	if len(r.Loops) > 0 {
		b.WriteString("\n## Loops\n\n")
		for _, l := range r.Loops {
			fmt.Fprintf(&b, "- %s\n", strings.Join(l.Path, " → "))
		}
	}

	if len(r.Unreachable) > 0 {
		b.WriteString("\n## Unreachable states\n\n")
		for _, id := range r.Unreachable {
			fmt.Fprintf(&b, "- %s\n", s.StateName(id))
		}
	}

	if len(r.Verdicts) > 0 {
		b.WriteString("\n## Properties\n\n")
		b.WriteString("| Property | Kind | Predicate | Status | Counterexample |\n|---|---|---|---|---|\n")
		for i, v := range r.Verdicts {
			ce := ""
			if v.Counterexample != nil {
				ce = fmt.Sprintf("%s (step %d)", v.Counterexample.Name, v.Step)
			}
			pred := ""
			if i < len(s.Properties) && s.Properties[i].ID == v.PropertyID {
				pred = "`" + spec.FormatPredicate(s.Properties[i].Predicate) + "`"
			}
			row(&b, v.Name, string(v.Kind), pred, string(v.Status), ce)
		}
	}

	if len(r.Fuzz) > 0 {
		b.WriteString("\n## Fuzz campaign\n\n")
		b.WriteString("| Strategy | Tests | Steps | Expected to fail |\n|---|---:|---:|---:|\n")
		for _, st := range fuzz.AllStrategies {
			tests, steps, fail := 0, 0, 0
			for _, t := range r.Fuzz {
				if t.Strategy != st {
					continue
				}
				tests++
				steps += len(t.Steps)
				if t.Expected == fuzz.ExpectFail {
					fail++
				}
			}
			if tests > 0 {
				row(&b, string(st), fmt.Sprint(tests), fmt.Sprint(steps), fmt.Sprint(fail))
			}
		}
	}
	return b.String()
}

// HTML renders r as a standalone HTML page.
func HTML(r *Report) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(r)), &body); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(r.Spec.Name))
	b.WriteString("</head>\n<body>\n")
	b.Write(body.Bytes())
	b.WriteString("</body>\n</html>\n")
	return b.String(), nil
}

func row(b *strings.Builder, cells ...string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(strings.ReplaceAll(c, "|", `\|`))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
