package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/config"
	"github.com/roach88/gremlin/internal/flow"
	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/maestro"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/report"
	"github.com/roach88/gremlin/internal/spec"
)

// Version is reported by the MCP server.
var Version = "0.1.0"

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve gremlin tools over MCP on stdio",
		Long: `Start a Model Context Protocol server on stdin/stdout exposing flow
extraction, property verification, test generation and fuzzing as tools.

Every tool takes either "spec", a path to a spec file, or "document", an
inline JSON spec.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newMCPServer(rootOpts.Settings())
			if err := mcpserver.ServeStdio(s.mcp); err != nil {
				return WrapExitError(ExitCommandError, "mcp server failed", err)
			}
			return nil
		},
	}
	return cmd
}

// mcpServer wraps the MCP server with the project defaults.
type mcpServer struct {
	cfg config.Config
	mcp *mcpserver.MCPServer
}

// newMCPServer creates and configures an MCP server with all gremlin tools.
func newMCPServer(cfg config.Config) *mcpServer {
	s := &mcpServer{cfg: cfg}
	s.mcp = mcpserver.NewMCPServer("gremlin", Version)
	s.registerTools()
	return s
}

func specArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("spec", mcp.Description("Path to a spec file (.json, .yaml, .yml or .cue)")),
		mcp.WithString("document", mcp.Description("Inline JSON spec, used when spec is empty")),
	}
}

func extractArgs() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithNumber("limit", mcp.Description("Maximum number of flows (default 10)")),
		mcp.WithNumber("max_depth", mcp.Description("Maximum transitions per flow (default 10)")),
	}
}

func tool(name, description string, groups ...[]mcp.ToolOption) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(description)}
	for _, g := range groups {
		opts = append(opts, g...)
	}
	return mcp.NewTool(name, opts...)
}

func (s *mcpServer) registerTools() {
	s.mcp.AddTool(
		tool("validate", "Validate a spec and list every structural problem", specArgs()),
		s.handleValidate,
	)

	s.mcp.AddTool(
		tool("flows", "List the spec's user flows ranked by observed frequency", specArgs(), extractArgs()),
		s.handleFlows,
	)

	s.mcp.AddTool(
		tool("verify", "Check the spec's properties along its flows and report counterexamples", specArgs(), extractArgs()),
		s.handleVerify,
	)

	s.mcp.AddTool(
		tool("generate_playwright", "Generate a Playwright TypeScript suite from the spec", specArgs(), extractArgs(), []mcp.ToolOption{
			mcp.WithString("group_by", mcp.Description("One test per flow or per transition: flow, transition")),
			mcp.WithString("base_url", mcp.Description("Override the spec's base URL")),
			mcp.WithBoolean("screenshots", mcp.Description("Capture a screenshot after every step")),
		}),
		s.handleGeneratePlaywright,
	)

	s.mcp.AddTool(
		tool("generate_maestro", "Generate Maestro flows from the spec as one multi-document YAML stream", specArgs(), extractArgs(), []mcp.ToolOption{
			mcp.WithString("group_by", mcp.Description("One flow per user flow or per transition: flow, transition")),
			mcp.WithString("app_id", mcp.Description("Override the spec's app id")),
			mcp.WithBoolean("screenshots", mcp.Description("Take a screenshot after every step")),
		}),
		s.handleGenerateMaestro,
	)

	s.mcp.AddTool(
		tool("fuzz", "Generate a seeded adversarial Playwright suite from the spec", specArgs(), []mcp.ToolOption{
			mcp.WithNumber("seed", mcp.Description("Generator seed; the same seed gives the same suite")),
			mcp.WithNumber("count", mcp.Description("Strategy invocations (default 10)")),
			mcp.WithNumber("max_steps", mcp.Description("Maximum steps per test (default 20)")),
			mcp.WithString("strategies", mcp.Description("Comma-separated strategies, e.g. 'rapid_fire,back_button_chaos'")),
		}),
		s.handleFuzz,
	)

	s.mcp.AddTool(
		tool("report", "Summarize the spec as Markdown: flows, loops, unreachable states and verdicts", specArgs(), extractArgs()),
		s.handleReport,
	)
}

// loadSpec resolves the spec or document argument.
func loadSpec(params map[string]any) (*spec.Spec, error) {
	if path := stringParam(params, "spec", ""); path != "" {
		return LoadSpec(path)
	}
	doc := stringParam(params, "document", "")
	if doc == "" {
		return nil, fmt.Errorf("spec or document is required")
	}
	return spec.Load([]byte(doc), spec.FormatJSON, "document")
}

func loadValid(params map[string]any) (*spec.Spec, error) {
	s, err := loadSpec(params)
	if err != nil {
		return nil, err
	}
	if err := spec.Check(s); err != nil {
		return nil, err
	}
	return s, nil
}

func extractOptions(params map[string]any) []flow.Option {
	return []flow.Option{
		flow.WithLimit(intParam(params, "limit", flow.DefaultLimit)),
		flow.WithMaxDepth(intParam(params, "max_depth", flow.DefaultMaxDepth)),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *mcpServer) handleValidate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sp, err := loadSpec(request.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	errs := spec.Validate(sp)
	if len(errs) == 0 {
		return mcp.NewToolResultText("valid"), nil
	}
	var b strings.Builder
	for _, e := range errs {
		fmt.Fprintf(&b, "%s\n", e.Error())
	}
	return mcp.NewToolResultError(b.String()), nil
}

func (s *mcpServer) handleFlows(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	flows, err := flow.Extract(sp, extractOptions(params)...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(flows) == 0 {
		return mcp.NewToolResultText("No flows found."), nil
	}
	return mcp.NewToolResultText(flow.Table(flows)), nil
}

func (s *mcpServer) handleVerify(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	flows, err := flow.Extract(sp, extractOptions(params)...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	verdicts, err := flow.Verify(sp, flows)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(verdicts)
}

func (s *mcpServer) groupBy(params map[string]any) (string, error) {
	g := stringParam(params, "group_by", s.cfg.GroupBy)
	if g != "flow" && g != "transition" {
		return "", fmt.Errorf("invalid group_by %q: must be flow or transition", g)
	}
	return g, nil
}

func (s *mcpServer) handleGeneratePlaywright(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groupBy, err := s.groupBy(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := playwright.Generate(sp, playwright.Options{
		GroupBy:     playwright.GroupBy(groupBy),
		Comments:    s.cfg.Comments,
		Screenshots: boolParam(params, "screenshots", s.cfg.Screenshots),
		BaseURL:     stringParam(params, "base_url", s.cfg.BaseURL),
		Extract:     extractOptions(params),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(src), nil
}

func (s *mcpServer) handleGenerateMaestro(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	groupBy, err := s.groupBy(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := maestro.GenerateSingle(sp, maestro.Options{
		GroupBy:     maestro.GroupBy(groupBy),
		Comments:    s.cfg.Comments,
		Screenshots: boolParam(params, "screenshots", s.cfg.Screenshots),
		AppID:       stringParam(params, "app_id", s.cfg.AppID),
		Extract:     extractOptions(params),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(src), nil
}

func (s *mcpServer) handleFuzz(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var names []string
	if raw := stringParam(params, "strategies", ""); raw != "" {
		for _, n := range strings.Split(raw, ",") {
			names = append(names, strings.TrimSpace(n))
		}
	}
	strategies, err := parseStrategies(names)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tests, err := fuzz.GenerateFuzzTests(sp, fuzz.Options{
		Seed:       int64(intParam(params, "seed", int(s.cfg.Seed))),
		Count:      intParam(params, "count", s.cfg.FuzzCount),
		MaxSteps:   intParam(params, "max_steps", s.cfg.MaxSteps),
		Strategies: strategies,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	src, err := fuzz.GenerateFuzzSuite(sp, tests, fuzz.SuiteOptions{BaseURL: s.cfg.BaseURL, Comments: s.cfg.Comments})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(src), nil
}

func (s *mcpServer) handleReport(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	sp, err := loadValid(params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	r, err := report.Build(sp, report.Options{Extract: extractOptions(params)})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(report.Markdown(r)), nil
}

func stringParam(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]any, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
