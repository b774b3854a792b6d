package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brokenSpec = `name: Broken
states:
  - id: home
    name: Home
initialState: home
transitions:
  - id: t1
    from: home
    to: nowhere
    event:
      type: back
`

func writeBrokenSpec(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(brokenSpec), 0644))
	return path
}

func TestValidateValidSpec(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), writeShopSpec(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 spec file(s) valid")
}

func TestValidateValidSpecJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), writeShopSpec(t))
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Files)
}

func TestValidateInvalidSpec(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), writeShopSpec(t), writeBrokenSpec(t))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "Validation failed")
	assert.Contains(t, out, "E207")
	assert.Contains(t, out, "broken.yaml")
}

func TestValidateInvalidSpecJSON(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), writeBrokenSpec(t))
	require.Error(t, err)

	var result ValidationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E207", resp.Error.Code)
	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "transitions[0].to", result.Errors[0].Field)
}

func TestValidateNonExistentFile(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/spec.json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005") // ErrCodeNotFound
	assert.Contains(t, out, "not found")
}

func TestValidateUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.txt")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "unrecognized spec extension")
}

func TestValidateSession(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "--session", writeSession(t))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1 session file(s) valid")
}

func TestValidateSession_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"header":{"schemaVersion":1},"elements":[],"events":[],"screenshots":[]}`), 0644))

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "--session", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "E301")
}
