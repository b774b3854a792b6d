package spec

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// Humanize turns an identifier such as "order_confirmation" or
// "order-confirmation" into "Order Confirmation".
func Humanize(id string) string {
	words := strings.FieldsFunc(id, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	return titler.String(strings.Join(words, " "))
}

// DisplayName returns the state's name, or its humanized id when the state
// is unnamed or unknown.
func (s *Spec) DisplayName(id string) string {
	if st, ok := s.State(id); ok && st.Name != "" {
		return st.Name
	}
	return Humanize(id)
}

var opSymbols = map[string]string{
	OpEq: "==",
	OpNe: "!=",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

// FormatPredicate renders p for people, e.g. `cartCount > 0 and
// visible("Add to cart")`.
func FormatPredicate(p Predicate) string {
	switch p := p.(type) {
	case nil:
		return "<none>"
	case Literal:
		return formatValue(p.Value)
	case Var:
		return p.Name
	case Compare:
		op, ok := opSymbols[p.Op]
		if !ok {
			op = p.Op
		}
		return FormatPredicate(p.Left) + " " + op + " " + FormatPredicate(p.Right)
	case And:
		return joinPredicates(p.Operands, " and ", "true")
	case Or:
		return joinPredicates(p.Operands, " or ", "false")
	case Not:
		return "not " + group(p.Operand)
	case InState:
		return "in " + p.State
	case ElementVisible:
		return fmt.Sprintf("visible(%q)", p.Element.Label())
	case ElementExists:
		return fmt.Sprintf("exists(%q)", p.Element.Label())
	default:
		return p.Kind()
	}
}

func joinPredicates(ps []Predicate, sep, empty string) string {
	if len(ps) == 0 {
		return empty
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = group(p)
	}
	return strings.Join(parts, sep)
}

// group parenthesizes compound operands.
func group(p Predicate) string {
	switch p := p.(type) {
	case And:
		if len(p.Operands) > 1 {
			return "(" + FormatPredicate(p) + ")"
		}
	case Or:
		if len(p.Operands) > 1 {
			return "(" + FormatPredicate(p) + ")"
		}
	}
	return FormatPredicate(p)
}

// FormatAction renders a for people, e.g. "cartCount += 1".
func FormatAction(a Action) string {
	switch a := a.(type) {
	case nil:
		return "<none>"
	case Assign:
		return a.Variable + " = " + formatValue(a.Value)
	case Increment:
		return a.Variable + " += " + formatValue(step(a.By))
	case Decrement:
		return a.Variable + " -= " + formatValue(step(a.By))
	case Push:
		return "push(" + a.Variable + ", " + formatValue(a.Value) + ")"
	case Pop:
		return "pop(" + a.Variable + ")"
	case Clear:
		return "clear(" + a.Variable + ")"
	case Sequence:
		parts := make([]string, len(a.Actions))
		for i, sub := range a.Actions {
			parts[i] = FormatAction(sub)
		}
		return strings.Join(parts, "; ")
	case UnknownAction:
		return "<unsupported action " + strconv.Quote(a.Type) + ">"
	default:
		return a.Kind()
	}
}

func formatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
