package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/maestro"
	"github.com/roach88/gremlin/internal/playwright"
	"github.com/roach88/gremlin/internal/spec"
	"github.com/roach88/gremlin/internal/store"
)

// Generation targets.
const (
	TargetPlaywright = "playwright"
	TargetMaestro    = "maestro"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	ExtractFlags

	Output      string
	GroupBy     string
	NoComments  bool
	Screenshots bool
	BaseURL     string
	AppID       string
	Single      bool
	Color       bool
	Archive     bool
	DB          string
}

// GeneratedFile is one artifact of a generate run.
type GeneratedFile struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	Bytes   int    `json:"bytes"`
}

// GenerateResult is the JSON payload of the generate command.
type GenerateResult struct {
	Target   string          `json:"target"`
	Spec     string          `json:"spec"`
	SpecHash string          `json:"specHash,omitempty"` // set when archived
	Files    []GeneratedFile `json:"files"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <playwright|maestro> <spec>",
		Short: "Generate end-to-end tests from a spec",
		Long: `Generate a Playwright suite or Maestro flows from a spec.

Files are written under --output (default: output_dir from gremlin.yaml).
An output of "-" prints the generated source instead; --color highlights it.
--archive also stores the spec and the generated files in the local archive.

Examples:
  gremlin generate playwright shop.json
  gremlin generate maestro shop.json -o e2e/maestro --group-by transition
  gremlin generate playwright shop.json -o - --filter "Home to Account*" --color`,
		Args:          cobra.ExactArgs(2),
		ValidArgs:     []string{TargetPlaywright, TargetMaestro},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], args[1], cmd)
		},
	}

	opts.ExtractFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output directory, or - for stdout")
	cmd.Flags().StringVar(&opts.GroupBy, "group-by", "", "one test per flow or per transition (flow|transition)")
	cmd.Flags().BoolVar(&opts.NoComments, "no-comments", false, "omit explanatory comments")
	cmd.Flags().BoolVar(&opts.Screenshots, "screenshots", false, "capture a screenshot after every step")
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "", "override the spec's base URL (playwright)")
	cmd.Flags().StringVar(&opts.AppID, "app-id", "", "override the spec's app id (maestro)")
	cmd.Flags().BoolVar(&opts.Single, "single", false, "one multi-document YAML file (maestro)")
	cmd.Flags().BoolVar(&opts.Color, "color", false, "syntax-highlight source printed to stdout")
	cmd.Flags().BoolVar(&opts.Archive, "archive", false, "store the spec and generated files in the archive")
	cmd.Flags().StringVar(&opts.DB, "db", "", "archive database (default: archive from gremlin.yaml)")

	return cmd
}

func runGenerate(opts *GenerateOptions, target, path string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)
	cfg := opts.Settings()

	if target != TargetPlaywright && target != TargetMaestro {
		return badFlag(f, "unknown target %q: must be %s or %s", target, TargetPlaywright, TargetMaestro)
	}
	groupBy := cfg.GroupBy
	if opts.GroupBy != "" {
		groupBy = opts.GroupBy
	}
	if groupBy != "flow" && groupBy != "transition" {
		return badFlag(f, "invalid --group-by %q: must be flow or transition", groupBy)
	}
	xopts, err := opts.ExtractFlags.options()
	if err != nil {
		return badFlag(f, "%v", err)
	}

	s, err := LoadValidSpec(path)
	if err != nil {
		return fail(f, err)
	}

	comments := cfg.Comments && !opts.NoComments
	screenshots := cfg.Screenshots || opts.Screenshots

	var files []GeneratedFile
	switch target {
	case TargetPlaywright:
		baseURL := cfg.BaseURL
		if opts.BaseURL != "" {
			baseURL = opts.BaseURL
		}
		src, err := playwright.Generate(s, playwright.Options{
			GroupBy:     playwright.GroupBy(groupBy),
			Comments:    comments,
			Screenshots: screenshots,
			BaseURL:     baseURL,
			Extract:     xopts,
		})
		if err != nil {
			return fail(f, err)
		}
		files = append(files, GeneratedFile{Path: playwright.FileName(s), Content: src})

	case TargetMaestro:
		appID := cfg.AppID
		if opts.AppID != "" {
			appID = opts.AppID
		}
		mopts := maestro.Options{
			GroupBy:     maestro.GroupBy(groupBy),
			Comments:    comments,
			Screenshots: screenshots,
			AppID:       appID,
			Extract:     xopts,
		}
		if opts.Single {
			src, err := maestro.GenerateSingle(s, mopts)
			if err != nil {
				return fail(f, err)
			}
			files = append(files, GeneratedFile{Path: playwright.Slug(s.Name) + ".maestro.yaml", Content: src})
			break
		}
		out, err := maestro.Generate(s, mopts)
		if err != nil {
			return fail(f, err)
		}
		for _, mf := range out {
			files = append(files, GeneratedFile{Path: mf.Path, Content: mf.Content})
		}
	}
	for i := range files {
		files[i].Bytes = len(files[i].Content)
	}

	result := GenerateResult{Target: target, Spec: s.Name, Files: files}
	if opts.Archive {
		hash, err := archiveArtifacts(opts.RootOptions, opts.DB, cmd, s, target, files)
		if err != nil {
			return fail(f, err)
		}
		result.SpecHash = hash
	}

	return emitArtifacts(f, opts.Output, cfg.OutputDir, opts.Color, result, files)
}

// emitArtifacts prints files to stdout or writes them under a directory.
func emitArtifacts(f *OutputFormatter, output, defaultDir string, color bool, result any, files []GeneratedFile) error {
	if output == "-" {
		if f.JSON() {
			return f.Success(result, "")
		}
		for _, gf := range files {
			if len(files) > 1 {
				fmt.Fprintf(f.Writer, "--- %s\n", gf.Path)
			}
			if err := printSource(f.Writer, gf, color); err != nil {
				return err
			}
		}
		return nil
	}

	dir := output
	if dir == "" {
		dir = defaultDir
	}
	var b strings.Builder
	for i, gf := range files {
		dest := filepath.Join(dir, filepath.FromSlash(gf.Path))
		if err := writeFile(dest, []byte(gf.Content)); err != nil {
			return fail(f, err)
		}
		f.VerboseLog("wrote %s (%d bytes)", dest, len(gf.Content))
		fmt.Fprintf(&b, "✓ %s\n", dest)
		files[i].Path = dest
		files[i].Content = ""
	}
	return f.Success(result, b.String())
}

func printSource(w io.Writer, gf GeneratedFile, color bool) error {
	if color {
		return writeHighlighted(w, gf.Content, lexerFor(gf.Path))
	}
	_, err := io.WriteString(w, gf.Content)
	return err
}

// archiveArtifacts stores s and files in the archive and returns the
// spec's content hash.
func archiveArtifacts(opts *RootOptions, db string, cmd *cobra.Command, s *spec.Spec, kind string, files []GeneratedFile) (string, error) {
	st, err := openArchive(opts, db, cmd)
	if err != nil {
		return "", err
	}
	defer st.Close()

	ctx := cmd.Context()
	hash, err := st.PutSpec(ctx, s)
	if err != nil {
		return "", &LoadError{Code: ErrCodeArchive, Message: "failed to archive spec", Err: err}
	}
	for _, gf := range files {
		_, err := st.PutArtifact(ctx, store.Artifact{SpecHash: hash, Kind: kind, Path: gf.Path, Content: gf.Content})
		if err != nil {
			return "", &LoadError{Code: ErrCodeArchive, Message: "failed to archive artifact", Err: err}
		}
	}
	return hash, nil
}
