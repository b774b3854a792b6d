package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/spec"
)

func TestFlows_Text(t *testing.T) {
	out, err := execute(t, NewFlowsCommand(&RootOptions{Format: "text"}), writeShopSpec(t))
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "1. Home to Order Confirmation (4) [157]: t1 -> t10 -> t2 -> t9 -> t3 -> t4 -> t5", lines[0])
	assert.Contains(t, out, "9. Home to Account (5) [19]")
	assert.Contains(t, out, "loop: ")
}

func TestFlows_FilterAndLimitJSON(t *testing.T) {
	out, err := execute(t, NewFlowsCommand(&RootOptions{Format: "json"}),
		writeShopSpec(t), "--filter", "Home to Account*", "--limit", "2")
	require.NoError(t, err)

	var result FlowsResult
	decodeResponse(t, out, &result)
	assert.Equal(t, "Shop", result.Spec)
	require.Len(t, result.Flows, 2)
	assert.Equal(t, "Home to Account (4)", result.Flows[0].Name)
	assert.Equal(t, "Home to Account (3)", result.Flows[1].Name)
	assert.Len(t, result.Loops, 1)
}

func TestFlows_NoMatch(t *testing.T) {
	out, err := execute(t, NewFlowsCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "--filter", "Nowhere*")
	require.NoError(t, err)
	assert.Contains(t, out, "No flows found.")
}

func TestFlows_BadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"bad glob", []string{"--filter", "[a"}},
		{"negative limit", []string{"--limit", "-1"}},
		{"zero depth", []string{"--max-depth", "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{writeShopSpec(t)}, tt.args...)
			out, err := execute(t, NewFlowsCommand(&RootOptions{Format: "text"}), args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, ErrCodeBadFlag)
		})
	}
}

func TestFlows_InvalidSpec(t *testing.T) {
	_, err := execute(t, NewFlowsCommand(&RootOptions{Format: "text"}), writeBrokenSpec(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "E207")
}

func TestGraph_Stdout(t *testing.T) {
	out, err := execute(t, NewGraphCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "--highlight", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "digraph")
	assert.Contains(t, out, "doublecircle")
}

func TestGraph_File(t *testing.T) {
	output := filepath.Join(t.TempDir(), "shop.dot")
	out, err := execute(t, NewGraphCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ wrote")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
}

func TestVerify_Violated(t *testing.T) {
	out, err := execute(t, NewVerifyCommand(&RootOptions{Format: "text"}), writeShopSpec(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `violated by "Home to Order Confirmation (4)" at step 7`)
	assert.Contains(t, out, "3 properties checked over 9 flows, 1 violated")
}

func TestVerify_JSON(t *testing.T) {
	out, err := execute(t, NewVerifyCommand(&RootOptions{Format: "json"}), writeShopSpec(t))
	require.Error(t, err)

	var result VerifyResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeViolated, resp.Error.Code)
	require.Len(t, result.Verdicts, 3)
	assert.Equal(t, spec.StatusVerified, result.Verdicts[0].Status)
	assert.Equal(t, spec.StatusViolated, result.Verdicts[2].Status)
	assert.Equal(t, 7, result.Verdicts[2].Step)
}

func TestVerify_Annotate(t *testing.T) {
	annotated := filepath.Join(t.TempDir(), "shop.verified.json")
	_, err := execute(t, NewVerifyCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "--annotate", annotated)
	require.Error(t, err)

	s, err := spec.LoadFile(annotated)
	require.NoError(t, err)
	require.Len(t, s.Properties, 3)
	assert.Equal(t, spec.StatusVerified, s.Properties[0].Status)
	assert.Equal(t, spec.StatusViolated, s.Properties[2].Status)
	assert.Equal(t, []string{"t1", "t10", "t2", "t9", "t3", "t4", "t5"}, s.Properties[2].Counterexample)
}
