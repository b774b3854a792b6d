package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/store"
)

// FuzzOptions holds flags for the fuzz command.
type FuzzOptions struct {
	*RootOptions

	Seed       int64
	Count      int
	MaxSteps   int
	Strategies []string
	Output     string
	BaseURL    string
	NoComments bool
	Color      bool
	Archive    bool
	DB         string
}

// FuzzResult is the JSON payload of the fuzz command.
type FuzzResult struct {
	Spec     string          `json:"spec"`
	Seed     int64           `json:"seed"`
	SpecHash string          `json:"specHash,omitempty"`
	Tests    []fuzz.FuzzTest `json:"tests"`
	Files    []GeneratedFile `json:"files"`
}

// NewFuzzCommand creates the fuzz command.
func NewFuzzCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FuzzOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "fuzz <spec>",
		Short: "Generate a seeded adversarial Playwright suite",
		Long: `Generate adversarial tests by walking the spec with a seeded generator.
The same seed always produces the same suite.

Strategies: random_walk, boundary_abuse, sequence_mutation,
back_button_chaos, rapid_fire, invalid_state_access. Selected strategies
are used round-robin; the default is all of them.

Examples:
  gremlin fuzz shop.json --seed 42
  gremlin fuzz shop.json --strategy rapid_fire --strategy back_button_chaos -o -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFuzz(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "generator seed (default: seed from gremlin.yaml)")
	cmd.Flags().IntVar(&opts.Count, "count", 0, "strategy invocations (default: fuzz_count from gremlin.yaml)")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", 0, "maximum steps per test (default: max_steps from gremlin.yaml)")
	cmd.Flags().StringSliceVar(&opts.Strategies, "strategy", nil, "strategy to use (repeatable)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory, or - for stdout")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "override the spec's base URL")
	cmd.Flags().BoolVar(&opts.NoComments, "no-comments", false, "omit explanatory comments")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "syntax-highlight source printed to stdout")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "store the spec and the suite in the archive")
	cmd.Flags().StringVar(&opts.DB, "db", "", "archive database (default: archive from gremlin.yaml)")

	return cmd
}

func runFuzz(opts *FuzzOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg := opts.Settings()

	fopts := fuzz.Options{Seed: cfg.Seed, Count: cfg.FuzzCount, MaxSteps: cfg.MaxSteps}
	if cmd.Flags().Changed("seed") {
		fopts.Seed = opts.Seed
	}
	if opts.Count < 0 || opts.MaxSteps < 0 {
		return badFlag(f, "--count and --max-steps must be non-negative")
	}
	if opts.Count > 0 {
		fopts.Count = opts.Count
	}
	if opts.MaxSteps > 0 {
		fopts.MaxSteps = opts.MaxSteps
	}
	strategies, err := parseStrategies(opts.Strategies)
	if err != nil {
		return badFlag(f, "%v", err)
	}
	fopts.Strategies = strategies

	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}
	tests, err := fuzz.GenerateFuzzTests(s, fopts)
	if err != nil {
		return fail(f, err)
	}

	baseURL := cfg.BaseURL
	if opts.BaseURL != "" {
		baseURL = opts.BaseURL
	}
	src, err := fuzz.GenerateFuzzSuite(s, tests, fuzz.SuiteOptions{
		BaseURL:  baseURL,
		Comments: cfg.Comments && !opts.NoComments,
	})
	if err != nil {
		return fail(f, err)
	}
	f.VerboseLog("generated %d fuzz tests with seed %d", len(tests), fopts.Seed)

	files := []GeneratedFile{{Path: playwright.Slug(s.Name) + ".fuzz.spec.ts", Content: src, Bytes: len(src)}}
	if tests == nil {
		tests = []fuzz.FuzzTest{}
	}
	result := FuzzResult{Spec: s.Name, Seed: fopts.Seed, Tests: tests, Files: files}
	if opts.Archive {
		result.SpecHash, err = archiveArtifacts(opts.RootOptions, opts.DB, cmd, s, store.KindFuzz, files)
		if err != nil {
			return fail(f, err)
		}
	}
	return emitArtifacts(f, opts.Output, cfg.OutputDir, opts.Color, result, files)
}

// parseStrategies checks strategy names against the known set.
func parseStrategies(names []string) ([]fuzz.Strategy, error) {
	var out []fuzz.Strategy
	for _, name := range names {
		st := fuzz.Strategy(name)
		if !slices.Contains(fuzz.AllStrategies, st) {
			return nil, fmt.Errorf("unknown strategy %q", name)
		}
		out = append(out, st)
	}
	return out, nil
}
