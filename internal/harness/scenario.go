package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/spec"
)

// Scenario defines a generation scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Spec is the path to a spec document (.json, .yaml or .cue).
	// Relative paths resolve from the scenario file's directory.
	Spec string `yaml:"spec"`

	// Target selects what is generated.
	Target string `yaml:"target"`

	Options Options `yaml:"options,omitempty"`

	// Assertions validate the generated artifacts.
	Assertions []Assertion `yaml:"assertions"`
}

// Options tune generation. Zero values take each generator's defaults.
type Options struct {
	GroupBy     string   `yaml:"group_by,omitempty"` // flow or transition
	Comments    *bool    `yaml:"comments,omitempty"` // default true
	Screenshots bool     `yaml:"screenshots,omitempty"`
	BaseURL     string   `yaml:"base_url,omitempty"`
	AppID       string   `yaml:"app_id,omitempty"`
	Single      bool     `yaml:"single,omitempty"` // maestro: one multi-document stream
	MaxDepth    int      `yaml:"max_depth,omitempty"`
	Limit       int      `yaml:"limit,omitempty"`
	Seed        int64    `yaml:"seed,omitempty"`
	Count       int      `yaml:"count,omitempty"`
	MaxSteps    int      `yaml:"max_steps,omitempty"`
	Strategies  []string `yaml:"strategies,omitempty"`
}

// comments reports whether generated code carries comments.
func (o Options) comments() bool {
	return o.Comments == nil || *o.Comments
}

// Assertion validates generated output.
type Assertion struct {
	// Type specifies the assertion type:
	// - "contains": an artifact contains Text
	// - "not_contains": no artifact contains Text
	// - "matches": an artifact matches the regular expression Pattern
	// - "file_count": exactly Count artifacts were generated
	// - "flow_count": exactly Count flows were extracted
	// - "flow_order": Flows appear in this relative rank order
	// - "test_count": exactly Count fuzz tests were generated
	// - "property_status": Property has Status
	Type string `yaml:"type"`

	// File restricts contains, not_contains and matches to one artifact.
	File string `yaml:"file,omitempty"`

	Text     string   `yaml:"text,omitempty"`
	Pattern  string   `yaml:"pattern,omitempty"`
	Count    int      `yaml:"count,omitempty"`
	Flows    []string `yaml:"flows,omitempty"`
	Property string   `yaml:"property,omitempty"`
	Status   string   `yaml:"status,omitempty"`
}

// Assertion type constants.
const (
	AssertContains       = "contains"
	AssertNotContains    = "not_contains"
	AssertMatches        = "matches"
	AssertFileCount      = "file_count"
	AssertFlowCount      = "flow_count"
	AssertFlowOrder      = "flow_order"
	AssertTestCount      = "test_count"
	AssertPropertyStatus = "property_status"
)

// Target constants.
const (
	TargetFlows      = "flows"
	TargetGraph      = "graph"
	TargetPlaywright = "playwright"
	TargetMaestro    = "maestro"
	TargetFuzz       = "fuzz"
)

// LoadScenario reads and parses a scenario YAML file. The spec path
// resolves relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the spec path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Spec != "" && !filepath.IsAbs(scenario.Spec) && basePath != "" {
		scenario.Spec = filepath.Join(basePath, scenario.Spec)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Spec == "" {
		return fmt.Errorf("spec is required")
	}
	if _, err := spec.FormatFromPath(s.Spec); err != nil {
		return err
	}
	if _, err := os.Stat(s.Spec); os.IsNotExist(err) {
		return fmt.Errorf("spec file not found: %s", s.Spec)
	}

	switch s.Target {
	case TargetFlows, TargetGraph, TargetPlaywright, TargetMaestro, TargetFuzz:
	case "":
		return fmt.Errorf("target is required")
	default:
		return fmt.Errorf("unknown target %q", s.Target)
	}

	switch s.Options.GroupBy {
	case "", "flow", "transition":
	default:
		return fmt.Errorf("options.group_by: unknown grouping %q", s.Options.GroupBy)
	}
	for i, name := range s.Options.Strategies {
		if !knownStrategy(name) {
			return fmt.Errorf("options.strategies[%d]: unknown strategy %q", i, name)
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

func knownStrategy(name string) bool {
	for _, st := range fuzz.AllStrategies {
		if string(st) == name {
			return true
		}
	}
	return false
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertContains, AssertNotContains:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for %s", index, a.Type)
		}
	case AssertMatches:
		if a.Pattern == "" {
			return fmt.Errorf("assertions[%d]: pattern is required for matches", index)
		}
		if _, err := regexp.Compile(a.Pattern); err != nil {
			return fmt.Errorf("assertions[%d]: invalid pattern: %w", index, err)
		}
	case AssertFileCount, AssertFlowCount, AssertTestCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
	case AssertFlowOrder:
		if len(a.Flows) == 0 {
			return fmt.Errorf("assertions[%d]: flows list is required for flow_order", index)
		}
	case AssertPropertyStatus:
		if a.Property == "" {
			return fmt.Errorf("assertions[%d]: property is required for property_status", index)
		}
		if a.Status != string(spec.StatusVerified) && a.Status != string(spec.StatusViolated) {
			return fmt.Errorf("assertions[%d]: status must be verified or violated", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
