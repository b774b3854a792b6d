package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/fuzz"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/report"
	"github.com/roach88/gremlin/internal/store"
)

// ReportOptions holds flags for the report command.
type ReportOptions struct {
	*RootOptions
	ExtractFlags

	HTML    bool
	Fuzz    bool
	Output  string
	Color   bool
	Archive bool
	DB      string
}

// ReportResult is the JSON payload of the report command.
type ReportResult struct {
	Spec     string          `json:"spec"`
	SpecHash string          `json:"specHash,omitempty"`
	Files    []GeneratedFile `json:"files"`
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "report <spec>",
		Short: "Summarize a spec as Markdown or HTML",
		Long: `Write a summary of a spec: its states and transitions, ranked flows,
loops, unreachable states and property verdicts. --fuzz adds a fuzz
campaign using the seed and counts from gremlin.yaml.

Examples:
  gremlin report shop.json -o -
  gremlin report shop.json --html --fuzz -o reports`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(opts, args[0], cmd)
		},
	}

	opts.ExtractFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.HTML, "html", false, "render HTML instead of Markdown")
	cmd.Flags().BoolVar(&opts.Fuzz, "fuzz", false, "include a fuzz campaign")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory, or - for stdout")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "syntax-highlight output printed to stdout")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "store the spec and the report in the archive")
	cmd.Flags().StringVar(&opts.DB, "db", "", "archive database (default: archive from gremlin.yaml)")

	return cmd
}

func runReport(opts *ReportOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg := opts.Settings()

	xopts, err := opts.ExtractFlags.options()
	if err != nil {
		return badFlag(f, "%v", err)
	}
	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}

	ropts := report.Options{Extract: xopts}
	if opts.Fuzz {
		ropts.Fuzz = &fuzz.Options{Seed: cfg.Seed, Count: cfg.FuzzCount, MaxSteps: cfg.MaxSteps}
	}
	r, err := report.Build(s, ropts)
	if err != nil {
		return fail(f, err)
	}

	name := playwright.Slug(s.Name) + ".report.md"
	content := report.Markdown(r)
	if opts.HTML {
		name = playwright.Slug(s.Name) + ".report.html"
		content, err = report.HTML(r)
		if err != nil {
			return fail(f, err)
		}
	}

	files := []GeneratedFile{{Path: name, Content: content, Bytes: len(content)}}
	result := ReportResult{Spec: s.Name, Files: files}
	if opts.Archive {
		result.SpecHash, err = archiveArtifacts(opts.RootOptions, opts.DB, cmd, s, store.KindReport, files)
		if err != nil {
			return fail(f, err)
		}
	}
	return emitArtifacts(f, opts.Output, cfg.OutputDir, opts.Color, result, files)
}
