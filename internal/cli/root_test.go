package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/gremlin/internal/testutil"
)

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeResponse parses a JSON envelope and decodes its data into v.
func decodeResponse(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if v != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}
	return resp
}

func writeShopSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, os.WriteFile(path, testutil.ShopJSON(), 0644))
	return path
}

func writeSession(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(testutil.SampleSession())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "gremlin", cmd.Use)
	assert.Contains(t, cmd.Long, "recorded user sessions")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{
		"compress", "decompress", "stats", "validate", "flows", "graph", "verify",
		"generate", "fuzz", "report", "archive", "test", "serve",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestGenerateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	genCmd, _, err := cmd.Find([]string{"generate"})
	require.NoError(t, err)

	outputFlag := genCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)

	for _, name := range []string{"filter", "limit", "max-depth", "group-by", "no-comments", "color", "archive", "db"} {
		assert.NotNil(t, genCmd.Flags().Lookup(name), name)
	}
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "--format", "xml", "flows", writeShopSpec(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestRootCommand_ConfigSetsDefaults(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "e2e")
	cfg := filepath.Join(dir, "gremlin.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output_dir: "+outDir+"\nbase_url: https://staging.example.com\n"), 0644))

	_, err := execute(t, NewRootCommand(), "--config", cfg, "generate", "playwright", writeShopSpec(t))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "shop.spec.ts"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "page.goto('https://staging.example.com')")
}

func TestRootCommand_BadConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "gremlin.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("colour: true\n"), 0644))

	_, err := execute(t, NewRootCommand(), "--config", cfg, "flows", writeShopSpec(t))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootOptions_SettingsDefault(t *testing.T) {
	opts := &RootOptions{}
	assert.Equal(t, "gremlin-out", opts.Settings().OutputDir)
}

func TestRootOptions_Logger(t *testing.T) {
	buf := &bytes.Buffer{}
	(&RootOptions{}).Logger(buf).Debug("hidden")
	(&RootOptions{Verbose: true}).Logger(buf).Debug("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
