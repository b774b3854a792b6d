package harness

import (
	"fmt"
	"regexp"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Files    []string // Generated artifact paths for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Files) > 0 {
		fmt.Fprintf(&buf, "\nGenerated files:\n")
		for _, f := range e.Files {
			fmt.Fprintf(&buf, "  %s\n", f)
		}
	}
	return buf.String()
}

// EvaluateAssertions checks all assertions against a result and returns
// the failure messages. An empty slice means every assertion holds.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	errors := []string{}
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d: %s", i, err.Error()))
		}
	}
	return errors
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertContains:
		return assertContains(r, a)
	case AssertNotContains:
		return assertNotContains(r, a)
	case AssertMatches:
		return assertMatches(r, a)
	case AssertFileCount:
		return assertCount(r, a, "files", len(r.Artifacts))
	case AssertFlowCount:
		return assertCount(r, a, "flows", len(r.Flows))
	case AssertTestCount:
		return assertCount(r, a, "fuzz tests", len(r.Tests))
	case AssertFlowOrder:
		return assertFlowOrder(r, a)
	case AssertPropertyStatus:
		return assertPropertyStatus(r, a)
	}
	return fmt.Errorf("unknown assertion type: %s", a.Type)
}

// scope returns the artifacts an assertion applies to.
func scope(r *Result, a Assertion) ([]Artifact, error) {
	if a.File == "" {
		return r.Artifacts, nil
	}
	art, ok := r.Artifact(a.File)
	if !ok {
		return nil, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("file %s", a.File),
			Actual:   "not generated",
			Files:    r.Paths(),
		}
	}
	return []Artifact{art}, nil
}

func assertContains(r *Result, a Assertion) error {
	arts, err := scope(r, a)
	if err != nil {
		return err
	}
	for _, art := range arts {
		if strings.Contains(art.Content, a.Text) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("text %q", a.Text),
		Actual:   "not found in output",
		Files:    r.Paths(),
	}
}

func assertNotContains(r *Result, a Assertion) error {
	arts, err := scope(r, a)
	if err != nil {
		return err
	}
	for _, art := range arts {
		if strings.Contains(art.Content, a.Text) {
			return &AssertionError{
				Type:     AssertNotContains,
				Expected: fmt.Sprintf("no text %q", a.Text),
				Actual:   fmt.Sprintf("found in %s", art.Path),
				Files:    r.Paths(),
			}
		}
	}
	return nil
}

func assertMatches(r *Result, a Assertion) error {
	re, err := regexp.Compile(a.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", a.Pattern, err)
	}
	arts, err := scope(r, a)
	if err != nil {
		return err
	}
	for _, art := range arts {
		if re.MatchString(art.Content) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertMatches,
		Expected: fmt.Sprintf("match for /%s/", a.Pattern),
		Actual:   "no match in output",
		Files:    r.Paths(),
	}
}

func assertCount(r *Result, a Assertion, what string, got int) error {
	if got == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d %s", a.Count, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
		Files:    r.Paths(),
	}
}

// assertFlowOrder checks that the named flows appear in this rank order.
// Other flows may appear in between.
func assertFlowOrder(r *Result, a Assertion) error {
	rank := make(map[string]int, len(r.Flows))
	for i, name := range r.Flows {
		rank[name] = i + 1 // 1-indexed for readability
	}

	for _, name := range a.Flows {
		if rank[name] == 0 {
			return &AssertionError{
				Type:     AssertFlowOrder,
				Expected: fmt.Sprintf("all flows present: %v", a.Flows),
				Actual:   fmt.Sprintf("missing flow: %s", name),
			}
		}
	}
	for i := 1; i < len(a.Flows); i++ {
		prev, curr := a.Flows[i-1], a.Flows[i]
		if rank[prev] >= rank[curr] {
			return &AssertionError{
				Type:     AssertFlowOrder,
				Expected: fmt.Sprintf("flows in order: %v", a.Flows),
				Actual: fmt.Sprintf("%s (rank %d) should be before %s (rank %d)",
					prev, rank[prev], curr, rank[curr]),
			}
		}
	}
	return nil
}

func assertPropertyStatus(r *Result, a Assertion) error {
	for _, v := range r.Verdicts {
		if v.PropertyID != a.Property {
			continue
		}
		if string(v.Status) == a.Status {
			return nil
		}
		actual := string(v.Status)
		if v.Counterexample != nil {
			actual = fmt.Sprintf("%s by %q at step %d", v.Status, v.Counterexample.Name, v.Step)
		}
		return &AssertionError{
			Type:     AssertPropertyStatus,
			Expected: fmt.Sprintf("%s %s", a.Property, a.Status),
			Actual:   actual,
		}
	}
	return &AssertionError{
		Type:     AssertPropertyStatus,
		Expected: fmt.Sprintf("property %s", a.Property),
		Actual:   "not declared by the spec",
	}
}
