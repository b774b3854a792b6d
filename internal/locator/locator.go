// Package locator picks how generated tests find an element.
//
// The rule is shared by every emitter: a stable test id wins, then an
// accessibility label, then visible text (as a role query for buttons and
// links), then a structural selector, then raw coordinates. Coordinates are
// flagged fragile.
package locator

import "github.com/roach88/gremlin/internal/spec"

// Strategy names the element attribute a locator matches on.
type Strategy string

const (
	ByTestID      Strategy = "testId"
	ByLabel       Strategy = "label"
	ByRole        Strategy = "role"
	ByText        Strategy = "text"
	BySelector    Strategy = "selector"
	ByCoordinates Strategy = "coordinates"
	// None means the element reference carries nothing to match on.
	None Strategy = "none"
)

// Locator is the resolved way to address one element.
type Locator struct {
	Strategy Strategy
	Value    string // the id, label, text or selector
	Role     string // ByRole only: "button" or "link"
	X, Y     float64
}

// Fragile reports whether the locator depends on layout rather than
// identity.
func (l Locator) Fragile() bool {
	return l.Strategy == ByCoordinates || l.Strategy == None
}

// For applies the priority rule to el.
func For(el spec.ElementRef) Locator {
	switch {
	case el.TestID != "":
		return Locator{Strategy: ByTestID, Value: el.TestID}
	case el.AccessibilityLabel != "":
		return Locator{Strategy: ByLabel, Value: el.AccessibilityLabel}
	case el.Text != "":
		if role := Role(el.Type); role != "" {
			return Locator{Strategy: ByRole, Value: el.Text, Role: role}
		}
		return Locator{Strategy: ByText, Value: el.Text}
	case el.Selector != "":
		return Locator{Strategy: BySelector, Value: el.Selector}
	case el.X != nil && el.Y != nil:
		return Locator{Strategy: ByCoordinates, X: *el.X, Y: *el.Y}
	default:
		return Locator{Strategy: None}
	}
}

// Role maps an element type to the ARIA role used to disambiguate text
// matches. Only buttons and links get one.
func Role(elementType string) string {
	switch elementType {
	case "button":
		return "button"
	case "link":
		return "link"
	default:
		return ""
	}
}
