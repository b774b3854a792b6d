package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/spec"
)

// ExtractFlags holds the flow extraction flags shared by several commands.
type ExtractFlags struct {
	Filter   string // glob over flow names
	Limit    int
	MaxDepth int
}

func (e *ExtractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&e.Filter, "filter", "", "keep flows whose name matches a glob")
	cmd.Flags().IntVar(&e.Limit, "limit", flow.DefaultLimit, "maximum number of flows")
	cmd.Flags().IntVar(&e.MaxDepth, "max-depth", flow.DefaultMaxDepth, "maximum transitions per flow")
}

// options converts the flags to extraction options.
func (e *ExtractFlags) options() ([]flow.Option, error) {
	if e.Limit < 0 {
		return nil, fmt.Errorf("--limit must be non-negative, got %d", e.Limit)
	}
	if e.MaxDepth <= 0 {
		return nil, fmt.Errorf("--max-depth must be positive, got %d", e.MaxDepth)
	}
	opts := []flow.Option{flow.WithLimit(e.Limit), flow.WithMaxDepth(e.MaxDepth)}
	if e.Filter != "" {
		g, err := glob.Compile(e.Filter)
		if err != nil {
			return nil, fmt.Errorf("invalid --filter %q: %w", e.Filter, err)
		}
		opts = append(opts, flow.WithNameFilter(g.Match))
	}
	return opts, nil
}

// FlowsResult is the JSON payload of the flows command.
type FlowsResult struct {
	Spec  string      `json:"spec"`
	Flows []flow.Flow `json:"flows"`
	Loops []flow.Loop `json:"loops"`
}

// NewFlowsCommand creates the flows command.
func NewFlowsCommand(rootOpts *RootOptions) *cobra.Command {
	var ef ExtractFlags

	cmd := &cobra.Command{
		Use:   "flows <spec>",
		Short: "List the ranked user flows of a spec",
		Long: `Enumerate paths from the initial state to terminal states, ranked by
observed frequency.

Examples:
  gremlin flows shop.json
  gremlin flows shop.json --filter "Home to Account*" --limit 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlows(rootOpts, args[0], &ef, cmd)
		},
	}

	ef.register(cmd)
	return cmd
}

func runFlows(opts *RootOptions, path string, ef *ExtractFlags, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	xopts, err := ef.options()
	if err != nil {
		return badFlag(f, "%v", err)
	}
	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}
	flows, err := flow.Extract(s, xopts...)
	if err != nil {
		return fail(f, err)
	}
	loops := flow.Loops(s)

	var b strings.Builder
	if len(flows) == 0 {
		b.WriteString("No flows found.\n")
	}
	b.WriteString(flow.Table(flows))
	for _, l := range loops {
		fmt.Fprintf(&b, "loop: %s\n", l.Message)
	}
	if flows == nil {
		flows = []flow.Flow{}
	}
	if loops == nil {
		loops = []flow.Loop{}
	}
	return f.Success(FlowsResult{Spec: s.Name, Flows: flows, Loops: loops}, b.String())
}

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output    string
		highlight int
	)

	cmd := &cobra.Command{
		Use:   "graph <spec>",
		Short: "Render the state graph as Graphviz DOT",
		Long: `Render the spec's state graph in Graphviz DOT.

--highlight N emphasizes the transitions of the N highest ranked flows.

Examples:
  gremlin graph shop.json | dot -Tsvg > shop.svg
  gremlin graph shop.json --highlight 1 -o shop.dot`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, args[0], output, highlight, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path")
	cmd.Flags().IntVar(&highlight, "highlight", 0, "highlight the top N flows")
	return cmd
}

func runGraph(opts *RootOptions, path, output string, highlight int, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	if highlight < 0 {
		return badFlag(f, "--highlight must be non-negative, got %d", highlight)
	}
	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}

	var top []flow.Flow
	if highlight > 0 {
		top, err = flow.Extract(s, flow.WithLimit(highlight))
		if err != nil {
			return fail(f, err)
		}
	}
	dot, err := flow.DOT(s, top...)
	if err != nil {
		return fail(f, err)
	}

	if output == "-" {
		return f.Success(map[string]string{"dot": dot}, dot)
	}
	if err := writeFile(output, []byte(dot)); err != nil {
		return fail(f, err)
	}
	return f.Success(map[string]string{"output": output}, fmt.Sprintf("✓ wrote %s\n", output))
}

// VerifyResult is the JSON payload of the verify command.
type VerifyResult struct {
	Spec     string         `json:"spec"`
	Flows    int            `json:"flows"`
	Verdicts []flow.Verdict `json:"verdicts"`
	Violated int            `json:"violated"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		ef       ExtractFlags
		annotate string
	)

	cmd := &cobra.Command{
		Use:   "verify <spec>",
		Short: "Check the spec's properties along its flows",
		Long: `Simulate every extracted flow from the variables' initial values and
check each declared property. A violated property names the first flow
that breaks it and the step where it breaks.

--annotate writes a copy of the spec carrying the verdicts.

Exit codes:
  0 - All properties verified
  1 - One or more properties violated
  2 - Command error`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, args[0], &ef, annotate, cmd)
		},
	}

	ef.register(cmd)
	cmd.Flags().StringVar(&annotate, "annotate", "", "write the annotated spec to this path")
	return cmd
}

func runVerify(opts *RootOptions, path string, ef *ExtractFlags, annotate string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	xopts, err := ef.options()
	if err != nil {
		return badFlag(f, "%v", err)
	}
	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}
	flows, err := flow.Extract(s, xopts...)
	if err != nil {
		return fail(f, err)
	}
	verdicts, err := flow.Verify(s, flows)
	if err != nil {
		return fail(f, err)
	}

	if annotate != "" {
		data, err := json.MarshalIndent(flow.Annotate(s, verdicts), "", "  ")
		if err != nil {
			return fail(f, err)
		}
		if err := writeFile(annotate, append(data, '\n')); err != nil {
			return fail(f, err)
		}
		f.VerboseLog("wrote annotated spec to %s", annotate)
	}

	result := VerifyResult{Spec: s.Name, Flows: len(flows), Verdicts: verdicts}
	var b strings.Builder
	for _, v := range verdicts {
		if v.Status == spec.StatusViolated {
			result.Violated++
			fmt.Fprintf(&b, "✗ %s (%s): violated by %q at step %d\n", v.Name, v.Kind, v.Counterexample.Name, v.Step)
			continue
		}
		fmt.Fprintf(&b, "✓ %s (%s)\n", v.Name, v.Kind)
	}
	fmt.Fprintf(&b, "\n%d properties checked over %d flows, %d violated\n", len(verdicts), len(flows), result.Violated)

	if result.Violated > 0 {
		if err := f.Failure(result, ErrCodeViolated, fmt.Sprintf("%d property violated", result.Violated), b.String()); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%d property violated", result.Violated))
	}
	return f.Success(result, b.String())
}
