package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_PlaywrightToDirectory(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}), "playwright", writeShopSpec(t), "-o", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+filepath.Join(dir, "shop.spec.ts"))

	data, err := os.ReadFile(filepath.Join(dir, "shop.spec.ts"))
	require.NoError(t, err)
	src := string(data)
	assert.Contains(t, src, "test.describe('Shop', () => {")
	assert.Contains(t, src, "getByTestId('add-to-cart')")
	assert.Contains(t, src, "// Generated by gremlin")
}

func TestGenerate_PlaywrightStdout(t *testing.T) {
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}),
		"playwright", writeShopSpec(t), "-o", "-", "--no-comments", "--base-url", "http://localhost:3000")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "import { test, expect } from '@playwright/test';"))
	assert.Contains(t, out, "await page.goto('http://localhost:3000');")
	assert.NotContains(t, out, "--- ")
}

func TestGenerate_PlaywrightFilter(t *testing.T) {
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}),
		"playwright", writeShopSpec(t), "-o", "-", "--filter", "Home to Account*", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Home to Account (4)")
	assert.NotContains(t, out, "Home to Order Confirmation")
}

func TestGenerate_Color(t *testing.T) {
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}),
		"playwright", writeShopSpec(t), "-o", "-", "--color")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

func TestGenerate_MaestroFiles(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "json"}),
		"maestro", writeShopSpec(t), "-o", dir, "--limit", "3")
	require.NoError(t, err)

	var result GenerateResult
	decodeResponse(t, out, &result)
	assert.Equal(t, TargetMaestro, result.Target)
	require.Len(t, result.Files, 4)
	assert.Equal(t, filepath.Join(dir, "index.yaml"), result.Files[0].Path)
	assert.Empty(t, result.Files[0].Content)

	index, err := os.ReadFile(filepath.Join(dir, "index.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "appId: shop")
	assert.Contains(t, string(index), "runFlow")
	for _, f := range result.Files[1:] {
		assert.FileExists(t, f.Path)
	}
}

func TestGenerate_MaestroSingleStdout(t *testing.T) {
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}),
		"maestro", writeShopSpec(t), "-o", "-", "--single", "--app-id", "com.example.shop")
	require.NoError(t, err)
	assert.Contains(t, out, "appId: com.example.shop")
	assert.Contains(t, out, "\n---\n")
}

func TestGenerate_GroupByTransition(t *testing.T) {
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}),
		"playwright", writeShopSpec(t), "-o", "-", "--group-by", "transition")
	require.NoError(t, err)
	assert.Contains(t, out, "t10")
}

func TestGenerate_BadArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown target", []string{"cypress", "SPEC"}},
		{"bad group-by", []string{"playwright", "SPEC", "--group-by", "page"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeShopSpec(t)
			args := make([]string, len(tt.args))
			for i, a := range tt.args {
				if a == "SPEC" {
					a = path
				}
				args[i] = a
			}
			out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "text"}), args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, ErrCodeBadFlag)
		})
	}
}

func TestGenerate_Archive(t *testing.T) {
	db := filepath.Join(t.TempDir(), "archive", "gremlin.db")
	out, err := execute(t, NewGenerateCommand(&RootOptions{Format: "json"}),
		"playwright", writeShopSpec(t), "-o", t.TempDir(), "--archive", "--db", db)
	require.NoError(t, err)

	var result GenerateResult
	decodeResponse(t, out, &result)
	require.Len(t, result.SpecHash, 64)

	out, err = execute(t, NewArchiveCommand(&RootOptions{Format: "text"}), "artifacts", result.SpecHash, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "playwright")
	assert.Contains(t, out, "shop.spec.ts")
}
