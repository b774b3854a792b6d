package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_OverridesDefaults(t *testing.T) {
	p := write(t, t.TempDir(), "gremlin.yaml", `
base_url: http://localhost:5173
app_id: com.example.shop
seed: 42
group_by: transition
comments: false
`)
	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5173", cfg.BaseURL)
	assert.Equal(t, "com.example.shop", cfg.AppID)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, "transition", cfg.GroupBy)
	assert.False(t, cfg.Comments)

	// Omitted keys keep their defaults.
	assert.Equal(t, "gremlin-out", cfg.OutputDir)
	assert.Equal(t, 10, cfg.FuzzCount)
	assert.Equal(t, 20, cfg.MaxSteps)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(write(t, t.TempDir(), "gremlin.yaml", "\n"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(write(t, t.TempDir(), "gremlin.yaml", "baseurl: x\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "baseurl")
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(write(t, t.TempDir(), "gremlin.yaml", "group_by: screen\nfuzz_count: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `group_by: want flow or transition, got "screen"`)
	assert.Contains(t, err.Error(), "fuzz_count: must be >= 0")
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Resolve("", dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg, "no file means defaults")

	write(t, dir, "gremlin.yml", "seed: 7\n")
	found, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "gremlin.yml"), found)

	cfg, err = Resolve("", dir)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Seed)

	explicit := write(t, t.TempDir(), "custom.yaml", "seed: 9\n")
	cfg, err = Resolve(explicit, dir)
	require.NoError(t, err)
	assert.Equal(t, int64(9), cfg.Seed)

	_, err = Resolve(filepath.Join(dir, "missing.yaml"), dir)
	assert.Error(t, err)
}
