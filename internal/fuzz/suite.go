package fuzz

import (
	"fmt"
	"strings"

	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/spec"
)

// RapidFireDelay is the pause between rapid-fire repeats, in milliseconds.
const RapidFireDelay = 10

// SuiteOptions controls GenerateFuzzSuite.
type SuiteOptions struct {
	BaseURL  string
	Comments bool
}

// GenerateFuzzSuite lowers tests into one Playwright file in the layout of
// the primary emitter. Tests expected to fail are marked with test.fail().
func GenerateFuzzSuite(s *spec.Spec, tests []FuzzTest, opts SuiteOptions) (string, error) {
	if err := spec.Check(s); err != nil {
		return "", err
	}
	for _, ft := range tests {
		for i, st := range ft.Steps {
			if st.TransitionID == "" {
				continue
			}
			if _, ok := s.Transition(st.TransitionID); !ok {
				return "", fmt.Errorf("fuzz test %q step %d: unknown transition %q", ft.Name, i, st.TransitionID)
			}
		}
	}

	popts := playwright.Options{Comments: opts.Comments, BaseURL: opts.BaseURL}
	out := playwright.File(s, popts, func(w *playwright.Writer) {
		for _, ft := range tests {
			w.Blank()
			w.Line(1, "test("+playwright.Quote(ft.Name)+", async ({ page }) => {")
			if opts.Comments {
				w.Line(2, "// "+ft.Description)
				w.Line(2, "// strategy: "+string(ft.Strategy)+"; targets: "+strings.Join(ft.Categories, ", "))
			}
			if ft.Expected == ExpectFail {
				w.Line(2, "test.fail();")
			}
			for _, st := range ft.Steps {
				for _, line := range lowerStep(s, st) {
					w.Line(2, line)
				}
			}
			w.Line(2, "await expect(page.locator('body')).toBeVisible();")
			w.Line(1, "});")
		}
	})
	return out, nil
}

// lowerStep reuses the emitter's event lowering for each step kind.
func lowerStep(s *spec.Spec, st Step) []string {
	switch st.Kind {
	case StepTransition:
		t, _ := s.Transition(st.TransitionID)
		return []string{playwright.LowerEvent(t.Event)}
	case StepRapid:
		t, _ := s.Transition(st.TransitionID)
		return []string{
			playwright.LowerEvent(t.Event) + " // rapid fire",
			fmt.Sprintf("await page.waitForTimeout(%d);", RapidFireDelay),
		}
	case StepFuzzInput:
		var el spec.ElementRef
		if st.Element != nil {
			el = *st.Element
		}
		return []string{playwright.LowerEvent(spec.Input{Element: el, Value: st.Value})}
	case StepSubmit:
		return []string{playwright.LowerEvent(spec.Submit{Element: st.Element})}
	case StepBack:
		return []string{playwright.LowerEvent(spec.Back{})}
	case StepNavigateDirect:
		if st.URL != "" {
			return []string{playwright.LowerEvent(spec.Navigate{URL: st.URL})}
		}
		return []string{playwright.Placeholder("state %q has no URL to open directly", st.State)}
	default:
		return []string{playwright.Placeholder("unsupported fuzz step %q", st.Kind)}
	}
}
