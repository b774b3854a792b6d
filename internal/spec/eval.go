package spec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
)

// ErrUnsupportedKind reports an UnknownAction reaching Apply.
var ErrUnsupportedKind = errors.New("unsupported kind")

// Env is the model state a predicate is evaluated against.
type Env struct {
	Vars    map[string]any
	State   string
	Visible []ElementRef // rendered and visible
	Present []ElementRef // attached to the tree; visible elements count as present
}

// Compile lowers p to an expr-lang expression. Literal values and element
// keys are bound by position in the returned slice, referenced as lits[i].
func Compile(p Predicate) (string, []any, error) {
	var c compiler
	src, err := c.lower(p)
	if err != nil {
		return "", nil, err
	}
	return src, c.lits, nil
}

// Eval evaluates p against env.
func Eval(p Predicate, env Env) (bool, error) {
	src, lits, err := Compile(p)
	if err != nil {
		return false, err
	}

	visible := make(map[string]bool, len(env.Visible))
	present := make(map[string]bool, len(env.Visible)+len(env.Present))
	for _, r := range env.Visible {
		visible[elementKey(r)] = true
		present[elementKey(r)] = true
	}
	for _, r := range env.Present {
		present[elementKey(r)] = true
	}
	vars := env.Vars
	if vars == nil {
		vars = map[string]any{}
	}

	out, err := expr.Eval(src, map[string]any{
		"vars":    vars,
		"state":   env.State,
		"visible": visible,
		"present": present,
		"lits":    lits,
	})
	if err != nil {
		return false, fmt.Errorf("evaluate %s: %w", src, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("evaluate %s: result %v is not a boolean", src, out)
	}
	return b, nil
}

type compiler struct {
	lits []any
}

func (c *compiler) bind(v any) string {
	c.lits = append(c.lits, v)
	return fmt.Sprintf("lits[%d]", len(c.lits)-1)
}

var compareOps = map[string]string{
	OpEq: "==",
	OpNe: "!=",
	OpLt: "<",
	OpLe: "<=",
	OpGt: ">",
	OpGe: ">=",
}

func (c *compiler) lower(p Predicate) (string, error) {
	switch p := p.(type) {
	case Literal:
		return c.bind(p.Value), nil
	case Var:
		return "vars[" + strconv.Quote(p.Name) + "]", nil
	case Compare:
		op, ok := compareOps[p.Op]
		if !ok {
			return "", fmt.Errorf("unknown comparison operator %q", p.Op)
		}
		left, err := c.lower(p.Left)
		if err != nil {
			return "", err
		}
		right, err := c.lower(p.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + op + " " + right + ")", nil
	case And:
		return c.join(p.Operands, " and ", "true")
	case Or:
		return c.join(p.Operands, " or ", "false")
	case Not:
		inner, err := c.lower(p.Operand)
		if err != nil {
			return "", err
		}
		return "(not " + inner + ")", nil
	case InState:
		return "(state == " + c.bind(p.State) + ")", nil
	case ElementVisible:
		return "(" + c.bind(elementKey(p.Element)) + " in visible)", nil
	case ElementExists:
		return "(" + c.bind(elementKey(p.Element)) + " in present)", nil
	case nil:
		return "", fmt.Errorf("predicate is missing")
	default:
		return "", fmt.Errorf("unsupported predicate %T", p)
	}
}

func (c *compiler) join(ops []Predicate, sep, empty string) (string, error) {
	if len(ops) == 0 {
		return empty, nil
	}
	parts := make([]string, len(ops))
	for i, op := range ops {
		s, err := c.lower(op)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return "(" + strings.Join(parts, sep) + ")", nil
}

// elementKey identifies an element by the fields a locator would use.
func elementKey(r ElementRef) string {
	return strings.Join([]string{r.TestID, r.AccessibilityLabel, r.Text, r.Type, r.Selector}, "\x1f")
}

// Apply runs a on a copy of vars and returns the copy.
func Apply(a Action, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = cloneValue(v)
	}
	if err := apply(a, out); err != nil {
		return nil, err
	}
	return out, nil
}

func apply(a Action, vars map[string]any) error {
	switch a := a.(type) {
	case nil:
		return nil
	case Assign:
		vars[a.Variable] = cloneValue(a.Value)
	case Increment:
		return addTo(vars, a.Variable, step(a.By))
	case Decrement:
		return addTo(vars, a.Variable, -step(a.By))
	case Push:
		list, err := listVar(vars, a.Variable)
		if err != nil {
			return err
		}
		vars[a.Variable] = append(list, cloneValue(a.Value))
	case Pop:
		list, err := listVar(vars, a.Variable)
		if err != nil {
			return err
		}
		if len(list) > 0 {
			vars[a.Variable] = list[:len(list)-1]
		}
	case Clear:
		vars[a.Variable] = zeroLike(vars[a.Variable])
	case Sequence:
		for i, sub := range a.Actions {
			if err := apply(sub, vars); err != nil {
				return fmt.Errorf("sequence[%d]: %w", i, err)
			}
		}
	case UnknownAction:
		return fmt.Errorf("action %q: %w", a.Type, ErrUnsupportedKind)
	}
	return nil
}

func step(by float64) float64 {
	if by == 0 {
		return 1
	}
	return by
}

func addTo(vars map[string]any, name string, delta float64) error {
	switch n := vars[name].(type) {
	case nil:
		vars[name] = delta
	case float64:
		vars[name] = n + delta
	case int:
		vars[name] = float64(n) + delta
	case int64:
		vars[name] = float64(n) + delta
	default:
		return fmt.Errorf("variable %q is %T, not a number", name, n)
	}
	return nil
}

func listVar(vars map[string]any, name string) ([]any, error) {
	switch l := vars[name].(type) {
	case nil:
		return nil, nil
	case []any:
		return l, nil
	default:
		return nil, fmt.Errorf("variable %q is %T, not an array", name, l)
	}
}

func zeroLike(v any) any {
	switch v.(type) {
	case string:
		return ""
	case float64, int, int64:
		return float64(0)
	case bool:
		return false
	case []any:
		return []any{}
	case map[string]any:
		return map[string]any{}
	default:
		return nil
	}
}
