package playwright

import (
	"fmt"
	"regexp"

	"github.com/roach88/gremlin/internal/locator"
	"github.com/roach88/gremlin/internal/spec"
)

const (
	defaultLongPress = 800 // ms
	defaultScroll    = 600 // px
)

// swipe start and end points per direction on a 1280x800 viewport.
var swipeVectors = map[string][4]int{
	"left":  {640, 400, 240, 400},
	"right": {240, 400, 640, 400},
	"up":    {640, 600, 640, 200},
	"down":  {640, 200, 640, 600},
}

// Locate returns the Playwright locator expression for el. ok is false
// when el can only be addressed by coordinates or not at all.
func Locate(el spec.ElementRef) (expr string, ok bool) {
	l := locator.For(el)
	switch l.Strategy {
	case locator.ByTestID:
		return "page.getByTestId(" + Quote(l.Value) + ")", true
	case locator.ByLabel:
		return "page.getByLabel(" + Quote(l.Value) + ")", true
	case locator.ByRole:
		return "page.getByRole(" + Quote(l.Role) + ", { name: " + Quote(l.Value) + " })", true
	case locator.ByText:
		return "page.getByText(" + Quote(l.Value) + ")", true
	case locator.BySelector:
		return "page.locator(" + Quote(l.Value) + ")", true
	default:
		return "", false
	}
}

// Placeholder marks an event that could not be lowered.
func Placeholder(format string, args ...any) string {
	return "// gremlin: " + fmt.Sprintf(format, args...)
}

// LowerEvent lowers one event to one Playwright statement. Events that
// cannot be lowered yield a Placeholder comment.
func LowerEvent(ev spec.Event) string {
	switch ev := ev.(type) {
	case spec.Tap:
		return onElement(ev.Element, ".click()", func(x, y string) string {
			return "await page.mouse.click(" + x + ", " + y + ");"
		})
	case spec.DoubleTap:
		return onElement(ev.Element, ".dblclick()", func(x, y string) string {
			return "await page.mouse.dblclick(" + x + ", " + y + ");"
		})
	case spec.LongPress:
		d := ev.Duration
		if d <= 0 {
			d = defaultLongPress
		}
		opt := fmt.Sprintf("{ delay: %d }", d)
		return onElement(ev.Element, ".click("+opt+")", func(x, y string) string {
			return "await page.mouse.click(" + x + ", " + y + ", " + opt + ");"
		})
	case spec.Input:
		value := Quote(ev.Value)
		if ev.Masked {
			key := ev.Element.TestID
			if key == "" {
				key = ev.Element.Label()
			}
			value = "process.env." + envName(key) + " ?? ''"
		}
		return onElement(ev.Element, ".fill("+value+")", func(x, y string) string {
			return "await page.mouse.click(" + x + ", " + y + "); await page.keyboard.type(" + value + ");"
		})
	case spec.Submit:
		if ev.Element == nil {
			return "await page.keyboard.press('Enter');"
		}
		return onElement(*ev.Element, ".press('Enter')", func(x, y string) string {
			return "await page.mouse.click(" + x + ", " + y + "); await page.keyboard.press('Enter');"
		})
	case spec.Scroll:
		d := ev.Distance
		if d <= 0 {
			d = defaultScroll
		}
		var dx, dy int
		switch ev.Direction {
		case "up":
			dy = -d
		case "left":
			dx = -d
		case "right":
			dx = d
		default:
			dy = d
		}
		return fmt.Sprintf("await page.mouse.wheel(%d, %d);", dx, dy)
	case spec.Swipe:
		v, ok := swipeVectors[ev.Direction]
		if !ok {
			return Placeholder("swipe with unknown direction %q was not lowered", ev.Direction)
		}
		return fmt.Sprintf("await page.mouse.move(%d, %d); await page.mouse.down(); "+
			"await page.mouse.move(%d, %d, { steps: 10 }); await page.mouse.up();", v[0], v[1], v[2], v[3])
	case spec.Back:
		return "await page.goBack();"
	case spec.Navigate:
		if ev.URL != "" {
			return "await page.goto(" + Quote(ev.URL) + ");"
		}
		if ev.Screen != "" {
			return fmt.Sprintf("// navigation to %s happens in-app", ev.Screen)
		}
		return "// navigation happens in-app"
	case spec.UnknownEvent:
		return Placeholder("unsupported event %q was not lowered", ev.Type)
	case nil:
		return Placeholder("transition has no event")
	default:
		return Placeholder("unsupported event %q was not lowered", ev.Kind())
	}
}

// onElement applies call to el's locator, falling back to a coordinate
// statement marked fragile.
func onElement(el spec.ElementRef, call string, coords func(x, y string) string) string {
	if expr, ok := Locate(el); ok {
		return "await " + expr + call + ";"
	}
	l := locator.For(el)
	if l.Strategy == locator.ByCoordinates {
		return coords(num(l.X), num(l.Y)) + " // fragile: coordinate locator"
	}
	return Placeholder("element has no usable locator")
}

// Guard lowers the element conditions of a guard to assertions. Top-level
// visible and exists predicates, alone or inside an and, become expect
// statements; the rest is returned as unchecked for the caller to comment.
func Guard(p spec.Predicate) (asserts []string, unchecked []spec.Predicate) {
	var walk func(spec.Predicate)
	walk = func(p spec.Predicate) {
		switch p := p.(type) {
		case nil:
		case spec.And:
			for _, op := range p.Operands {
				walk(op)
			}
		case spec.ElementVisible:
			if expr, ok := Locate(p.Element); ok {
				asserts = append(asserts, "await expect("+expr+").toBeVisible();")
				return
			}
			unchecked = append(unchecked, p)
		case spec.ElementExists:
			if expr, ok := Locate(p.Element); ok {
				asserts = append(asserts, "await expect("+expr+").toBeAttached();")
				return
			}
			unchecked = append(unchecked, p)
		default:
			unchecked = append(unchecked, p)
		}
	}
	walk(p)
	return asserts, unchecked
}

// PostCondition asserts arrival in state id: a URL match when the state
// has a URL pattern or a URL, otherwise a settled page. A plain URL matches
// literally up to an optional query or fragment.
func PostCondition(s *spec.Spec, id string) string {
	st, ok := s.State(id)
	switch {
	case ok && st.Metadata.URLPattern != "":
		return "await expect(page).toHaveURL(new RegExp(" + Quote(st.Metadata.URLPattern) + "));"
	case ok && st.Metadata.URL != "":
		pattern := regexp.QuoteMeta(st.Metadata.URL) + `([?#].*)?$`
		return "await expect(page).toHaveURL(new RegExp(" + Quote(pattern) + "));"
	}
	return "await page.waitForLoadState('networkidle');"
}
