package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_MarkdownStdout(t *testing.T) {
	out, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "-o", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "| Platform | web |")
	assert.Contains(t, out, "| # | Flow | Steps | Frequency | Transitions |")
	assert.Contains(t, out, "| Property | Kind | Predicate | Status | Counterexample |")
	assert.NotContains(t, out, "## Fuzz campaign")
}

func TestReport_HTMLWithFuzz(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, NewReportCommand(&RootOptions{Format: "text"}), writeShopSpec(t), "--html", "--fuzz", "-o", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "shop.report.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<table>")
	assert.Contains(t, string(data), "Fuzz campaign")
}

func TestReport_Archive(t *testing.T) {
	db := filepath.Join(t.TempDir(), "gremlin.db")
	out, err := execute(t, NewReportCommand(&RootOptions{Format: "json"}),
		writeShopSpec(t), "-o", t.TempDir(), "--archive", "--db", db)
	require.NoError(t, err)

	var result ReportResult
	decodeResponse(t, out, &result)
	require.Len(t, result.SpecHash, 64)
	require.Len(t, result.Files, 1)
}
