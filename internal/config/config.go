// Package config loads gremlin.yaml, the optional project defaults file.
//
// Values resolve in order: command-line flags, then the file, then the
// built-in defaults from Default.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileNames are searched in order by Find.
var FileNames = []string{"gremlin.yaml", "gremlin.yml"}

// Config holds project defaults.
type Config struct {
	BaseURL     string `yaml:"base_url"`
	AppID       string `yaml:"app_id"`
	OutputDir   string `yaml:"output_dir"`
	Archive     string `yaml:"archive"` // SQLite archive path
	Seed        int64  `yaml:"seed"`
	FuzzCount   int    `yaml:"fuzz_count"`
	MaxSteps    int    `yaml:"max_steps"`
	GroupBy     string `yaml:"group_by"` // flow or transition
	Comments    bool   `yaml:"comments"`
	Screenshots bool   `yaml:"screenshots"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		OutputDir: "gremlin-out",
		Archive:   filepath.Join(".gremlin", "archive.db"),
		FuzzCount: 10,
		MaxSteps:  20,
		GroupBy:   "flow",
		Comments:  true,
	}
}

// Load reads the file at path over the defaults. Keys the file omits keep
// their default; unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Find returns the path of the first config file in dir, or "" when there
// is none.
func Find(dir string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// Resolve loads path when given, otherwise the config file found in dir,
// otherwise the defaults.
func Resolve(path, dir string) (Config, error) {
	if path == "" {
		found, err := Find(dir)
		if err != nil {
			return Default(), err
		}
		if found == "" {
			return Default(), nil
		}
		path = found
	}
	return Load(path)
}

// Validate checks value ranges.
func (c Config) Validate() error {
	var errs []error
	switch c.GroupBy {
	case "flow", "transition":
	default:
		errs = append(errs, fmt.Errorf("group_by: want flow or transition, got %q", c.GroupBy))
	}
	if c.FuzzCount < 0 {
		errs = append(errs, fmt.Errorf("fuzz_count: must be >= 0, got %d", c.FuzzCount))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("max_steps: must be >= 0, got %d", c.MaxSteps))
	}
	if c.OutputDir == "" {
		errs = append(errs, errors.New("output_dir: must not be empty"))
	}
	return errors.Join(errs...)
}
