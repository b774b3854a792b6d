package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/maestro"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/spec"
	"github.com/roach88/gremlin/internal/store"
	"github.com/roach88/gremlin/internal/testutil"
)

// Harness is the scenario execution engine.
// It archives artifacts with a deterministic clock and ids.
type Harness struct {
	store  *store.Store
	logger *slog.Logger
}

// Option configures Run.
type Option func(*Harness)

// WithLogger sets the logger. Logs are discarded by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the spec and archive it by content hash
// 2. Extract flows and verify properties along them
// 3. Generate the target's artifacts and archive them
// 4. Read the artifacts back and evaluate assertions
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}

	st, err := store.Open(":memory:",
		store.WithClock(testutil.NewFixedClock(time.Millisecond).Now),
		store.WithIDGenerator(testutil.NewSequentialIDs("artifact")),
		store.WithLogger(h.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()
	h.store = st

	ctx := context.Background()

	s, err := spec.LoadFile(scenario.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load spec: %w", err)
	}
	hash, err := st.PutSpec(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("failed to archive spec: %w", err)
	}

	result := NewResult()
	result.Spec = s.Name
	result.SpecHash = hash
	result.Target = scenario.Target

	o := scenario.Options
	flows, err := flow.Extract(s, extractOptions(o)...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract flows: %w", err)
	}
	for _, f := range flows {
		result.Flows = append(result.Flows, f.Name)
	}
	verdicts, err := flow.Verify(s, flows)
	if err != nil {
		return nil, fmt.Errorf("failed to verify properties: %w", err)
	}
	result.Verdicts = verdicts

	artifacts, err := h.generate(s, flows, scenario, result)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", scenario.Target, err)
	}
	for _, a := range artifacts {
		if _, err := st.PutArtifact(ctx, store.Artifact{
			SpecHash: hash,
			Kind:     artifactKind(scenario.Target),
			Path:     a.Path,
			Content:  a.Content,
		}); err != nil {
			return nil, fmt.Errorf("failed to archive artifact: %w", err)
		}
	}

	stored, err := st.ListArtifacts(ctx, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}
	for _, a := range stored {
		result.Artifacts = append(result.Artifacts, Artifact{Path: a.Path, Content: a.Content})
	}

	h.logger.Info("scenario generated",
		"scenario", scenario.Name,
		"target", scenario.Target,
		"flows", len(result.Flows),
		"artifacts", len(result.Artifacts),
	)

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// generate renders the scenario's target.
func (h *Harness) generate(s *spec.Spec, flows []flow.Flow, scenario *Scenario, result *Result) ([]Artifact, error) {
	o := scenario.Options
	slug := playwright.Slug(s.Name)

	switch scenario.Target {
	case TargetFlows:
		return []Artifact{{Path: slug + ".flows.txt", Content: flow.Table(flows)}}, nil

	case TargetGraph:
		dot, err := flow.DOT(s, flows...)
		if err != nil {
			return nil, err
		}
		return []Artifact{{Path: slug + ".dot", Content: dot}}, nil

	case TargetPlaywright:
		out, err := playwright.Generate(s, playwright.Options{
			GroupBy:     playwright.GroupBy(o.GroupBy),
			Comments:    o.comments(),
			Screenshots: o.Screenshots,
			BaseURL:     o.BaseURL,
			Extract:     extractOptions(o),
		})
		if err != nil {
			return nil, err
		}
		return []Artifact{{Path: playwright.FileName(s), Content: out}}, nil

	case TargetMaestro:
		mo := maestro.Options{
			GroupBy:     maestro.GroupBy(o.GroupBy),
			Comments:    o.comments(),
			Screenshots: o.Screenshots,
			AppID:       o.AppID,
			Extract:     extractOptions(o),
		}
		if o.Single {
			out, err := maestro.GenerateSingle(s, mo)
			if err != nil {
				return nil, err
			}
			return []Artifact{{Path: slug + ".maestro.yaml", Content: out}}, nil
		}
		files, err := maestro.Generate(s, mo)
		if err != nil {
			return nil, err
		}
		out := make([]Artifact, len(files))
		for i, f := range files {
			out[i] = Artifact{Path: path.Join("maestro", f.Path), Content: f.Content}
		}
		return out, nil

	case TargetFuzz:
		strategies := make([]fuzz.Strategy, len(o.Strategies))
		for i, name := range o.Strategies {
			strategies[i] = fuzz.Strategy(name)
		}
		tests, err := fuzz.GenerateFuzzTests(s, fuzz.Options{
			Count:      o.Count,
			MaxSteps:   o.MaxSteps,
			Strategies: strategies,
			Seed:       o.Seed,
		})
		if err != nil {
			return nil, err
		}
		for _, t := range tests {
			result.Tests = append(result.Tests, t.Name)
		}
		out, err := fuzz.GenerateFuzzSuite(s, tests, fuzz.SuiteOptions{BaseURL: o.BaseURL, Comments: o.comments()})
		if err != nil {
			return nil, err
		}
		return []Artifact{{Path: slug + ".fuzz.spec.ts", Content: out}}, nil
	}
	return nil, fmt.Errorf("unknown target %q", scenario.Target)
}

func extractOptions(o Options) []flow.Option {
	var opts []flow.Option
	if o.MaxDepth > 0 {
		opts = append(opts, flow.WithMaxDepth(o.MaxDepth))
	}
	if o.Limit > 0 {
		opts = append(opts, flow.WithLimit(o.Limit))
	}
	return opts
}

func artifactKind(target string) string {
	switch target {
	case TargetPlaywright:
		return store.KindPlaywright
	case TargetMaestro:
		return store.KindMaestro
	case TargetFuzz:
		return store.KindFuzz
	}
	return store.KindReport
}
