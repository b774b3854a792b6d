package maestro

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gremlin/internal/locator"
	"github.com/roach88/gremlin/internal/spec"
)

// Selector returns the Maestro element selector for el. Text matches are
// regular expressions in Maestro, so text is escaped. Maestro has no CSS
// selectors; a structural selector is matched as an id.
func Selector(el spec.ElementRef) (*yaml.Node, bool) {
	l := locator.For(el)
	switch l.Strategy {
	case locator.ByTestID, locator.BySelector:
		return mapping(str("id"), str(l.Value)), true
	case locator.ByLabel, locator.ByRole, locator.ByText:
		return mapping(str("text"), str(regexp.QuoteMeta(l.Value))), true
	case locator.ByCoordinates:
		point := strconv.FormatFloat(l.X, 'f', 0, 64) + "," + strconv.FormatFloat(l.Y, 'f', 0, 64)
		return mapping(str("point"), str(point)), true
	default:
		return nil, false
	}
}

// scroll directions map to the swipe that produces them.
var scrollSwipes = map[string]string{
	"up":    "DOWN",
	"left":  "RIGHT",
	"right": "LEFT",
}

var swipeDirections = map[string]string{
	"up":    "UP",
	"down":  "DOWN",
	"left":  "LEFT",
	"right": "RIGHT",
}

// lowerEvent appends the commands for ev. Events that cannot be lowered
// leave a marked comment.
func lowerEvent(c *commandList, ev spec.Event) {
	switch ev := ev.(type) {
	case spec.Tap:
		onElement(c, "tapOn", ev.Element)
	case spec.DoubleTap:
		onElement(c, "doubleTapOn", ev.Element)
	case spec.LongPress:
		onElement(c, "longPressOn", ev.Element)
	case spec.Input:
		onElement(c, "tapOn", ev.Element)
		value := ev.Value
		if ev.Masked {
			value = "${" + envName(ev.Element) + "}"
		}
		c.add(command("inputText", str(value)))
	case spec.Submit:
		c.add(command("pressKey", str("Enter")))
	case spec.Scroll:
		if dir, ok := scrollSwipes[ev.Direction]; ok {
			c.add(command("swipe", mapping(str("direction"), str(dir))))
			return
		}
		c.add(command("scroll", nil))
	case spec.Swipe:
		dir, ok := swipeDirections[ev.Direction]
		if !ok {
			c.comment(fmt.Sprintf("gremlin: swipe with unknown direction %q was not lowered", ev.Direction))
			return
		}
		c.add(command("swipe", mapping(str("direction"), str(dir))))
	case spec.Back:
		c.add(command("back", nil))
	case spec.Navigate:
		if ev.URL != "" {
			c.add(command("openLink", str(ev.URL)))
			return
		}
		target := ev.Screen
		if target == "" {
			target = "the next screen"
		}
		c.comment("navigation to " + target + " happens in-app")
	case spec.UnknownEvent:
		c.comment(fmt.Sprintf("gremlin: unsupported event %q was not lowered", ev.Type))
	case nil:
		c.comment("gremlin: transition has no event")
	default:
		c.comment(fmt.Sprintf("gremlin: unsupported event %q was not lowered", ev.Kind()))
	}
}

func onElement(c *commandList, name string, el spec.ElementRef) {
	sel, ok := Selector(el)
	if !ok {
		c.comment("gremlin: element has no usable locator")
		return
	}
	if locator.For(el).Fragile() {
		c.comment("fragile: coordinate locator")
	}
	c.add(command(name, sel))
}

// envName names the environment variable that supplies a masked value.
func envName(el spec.ElementRef) string {
	key := el.TestID
	if key == "" {
		key = el.Label()
	}
	var b strings.Builder
	b.WriteString("GREMLIN")
	prev := true
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			if prev {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prev = false
			continue
		}
		prev = true
	}
	if b.Len() == len("GREMLIN") {
		b.WriteString("_INPUT")
	}
	return b.String()
}

// guard lowers visible and exists conditions to assertVisible; other
// conditions are commented.
func guard(c *commandList, p spec.Predicate, comments bool) {
	switch p := p.(type) {
	case nil:
	case spec.And:
		for _, op := range p.Operands {
			guard(c, op, comments)
		}
	case spec.ElementVisible:
		assertVisible(c, p, p.Element, comments)
	case spec.ElementExists:
		assertVisible(c, p, p.Element, comments)
	default:
		if comments {
			c.comment("guard: " + spec.FormatPredicate(p))
		}
	}
}

func assertVisible(c *commandList, p spec.Predicate, el spec.ElementRef, comments bool) {
	sel, ok := Selector(el)
	if !ok || locator.For(el).Fragile() {
		if comments {
			c.comment("guard: " + spec.FormatPredicate(p))
		}
		return
	}
	c.add(command("assertVisible", sel))
}

// postCondition asserts arrival in state id. Maestro cannot read URLs, so
// a URL pattern is kept as a comment and the check waits for the screen
// to settle. A state title is asserted visible.
func postCondition(c *commandList, s *spec.Spec, id string, comments bool) {
	st, _ := s.State(id)
	if comments {
		switch {
		case st.Metadata.URLPattern != "":
			c.comment("expect URL matching " + st.Metadata.URLPattern)
		case st.Metadata.URL != "":
			c.comment("expect URL " + st.Metadata.URL)
		}
	}
	c.add(command("waitForAnimationToEnd", nil))
	if st.Metadata.Title != "" {
		c.add(command("assertVisible", mapping(str("text"), str(regexp.QuoteMeta(st.Metadata.Title)))))
	}
}
