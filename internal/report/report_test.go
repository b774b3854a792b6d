package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/spec"
	"github.com/roach88/gremlin/internal/testutil"
)

func TestBuild_Shop(t *testing.T) {
	r, err := Build(testutil.ShopSpec(t), Options{})
	require.NoError(t, err)

	assert.Len(t, r.Flows, 9)
	assert.Len(t, r.Loops, 1)
	require.Len(t, r.Verdicts, 3)
	assert.Equal(t, spec.StatusViolated, r.Verdicts[2].Status)
	assert.Empty(t, r.Unreachable)
	assert.Empty(t, r.Fuzz)
}

func TestMarkdown_Shop(t *testing.T) {
	r, err := Build(testutil.ShopSpec(t), Options{
		Extract: []flow.Option{flow.WithLimit(2)},
		Fuzz:    &fuzz.Options{Count: 6, Seed: 1},
	})
	require.NoError(t, err)
	md := Markdown(r)

	assert.True(t, strings.HasPrefix(md, "# Shop\n\nStorefront inferred from 12 web sessions\n"))
	assert.Contains(t, md, "| Platform | web |\n")
	assert.Contains(t, md, "| Transitions | 10 |\n")
	assert.Contains(t, md, "| Initial state | Home |\n")
	assert.Contains(t, md, "| 1 | Home to Order Confirmation (4) | 7 | 157 | t1 → t10 → t2 → t9 → t3 → t4 → t5 |\n")
	assert.NotContains(t, md, "| 3 |")
	assert.Contains(t, md, "## Loops")
	assert.Contains(t, md, "| cart never negative | never | `cartCount < 0` | verified |  |\n")
	assert.Contains(t, md, "| user eventually logs in | eventually |")
	assert.Contains(t, md, "violated | Home to Order Confirmation (4) (step 7) |")
	assert.Contains(t, md, "## Fuzz campaign")
	assert.Contains(t, md, "| invalid_state_access | 1 |")
}

func TestMarkdown_UnreachableAndNoFlows(t *testing.T) {
	s := testutil.LinearSpec("a", "b")
	s.AddState(spec.CreateState("orphan", "Orphan"), testutil.Epoch)
	s.AddTransition(spec.CreateTransition("tb2", "b", "a", spec.Back{}), testutil.Epoch)

	r, err := Build(s, Options{})
	require.NoError(t, err)
	md := Markdown(r)

	assert.Contains(t, md, "No flow from the initial state reaches a terminal state.")
	assert.Contains(t, md, "## Unreachable states\n\n- Orphan\n")
	assert.NotContains(t, md, "## Properties")
}

func TestMarkdown_EscapesPipes(t *testing.T) {
	s := testutil.LinearSpec("a", "b")
	s.Description = "a|b"
	r, err := Build(s, Options{})
	require.NoError(t, err)

	var b strings.Builder
	row(&b, "x|y", "z")
	assert.Equal(t, `| x\|y | z |`+"\n", b.String())
	assert.Contains(t, Markdown(r), "| 1 | a to b | 1 | 1 | tb |\n")
}

func TestHTML(t *testing.T) {
	s := testutil.ShopSpec(t)
	s.Name = "Shop <beta>"
	r, err := Build(s, Options{})
	require.NoError(t, err)

	out, err := HTML(r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>\n"))
	assert.Contains(t, out, "<title>Shop &lt;beta&gt;</title>")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<h2>Flows</h2>")
	assert.Contains(t, out, "<code>cartCount &lt; 0</code>")
	assert.True(t, strings.HasSuffix(out, "</html>\n"))
}
