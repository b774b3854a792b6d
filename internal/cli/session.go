package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/codec"
	"github.com/roach88/gremlin/internal/session"
)

// CompressedExt is the file extension of compressed sessions.
const CompressedExt = ".gremlin"

// CompressResult describes one compressed session.
type CompressResult struct {
	Input  string      `json:"input"`
	Output string      `json:"output"`
	Stats  codec.Stats `json:"stats"`
}

// NewCompressCommand creates the compress command.
func NewCompressCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compress <session.json>",
		Short: "Compress a recorded session",
		Long: `Compress a canonical JSON session into the compact binary form.

The session is validated first. By default the output replaces the input's
extension with .gremlin.

Examples:
  gremlin compress session.json
  gremlin compress session.json -o archive/run-1.gremlin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompress(rootOpts, args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default <input>.gremlin)")
	return cmd
}

func runCompress(opts *RootOptions, input, output string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	s, err := LoadSession(input)
	if err != nil {
		return fail(f, err)
	}
	if errs := session.Validate(s); len(errs) > 0 {
		return outputSessionErrors(f, errs)
	}

	stats, err := codec.MeasureCompression(s)
	if err != nil {
		return fail(f, err)
	}
	data, err := codec.Compress(s)
	if err != nil {
		return fail(f, err)
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + CompressedExt
	}
	if err := writeFile(output, data); err != nil {
		return fail(f, err)
	}
	f.VerboseLog("compressed %d events from %s", len(s.Events), input)

	result := CompressResult{Input: input, Output: output, Stats: stats}
	text := fmt.Sprintf("✓ %s → %s (%d → %d bytes, %.1fx)\n",
		input, output, stats.OriginalSize, stats.CompressedSize, stats.FinalRatio)
	return f.Success(result, text)
}

// NewDecompressCommand creates the decompress command.
func NewDecompressCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		output    string
		optimized bool
	)

	cmd := &cobra.Command{
		Use:   "decompress <session.gremlin>",
		Short: "Expand a compressed session to canonical JSON",
		Long: `Expand a compressed session back to canonical JSON.

With --optimized the intermediate short-key form is written instead.
An output of "-" (the default) writes to stdout.

Examples:
  gremlin decompress run-1.gremlin
  gremlin decompress run-1.gremlin -o run-1.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompress(rootOpts, args[0], output, optimized, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path")
	cmd.Flags().BoolVar(&optimized, "optimized", false, "write the optimized form")
	return cmd
}

func runDecompress(opts *RootOptions, input, output string, optimized bool, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := readInput(input)
	if err != nil {
		return fail(f, err)
	}

	var v any
	if optimized {
		v, err = codec.Decompress(data)
	} else {
		v, err = codec.Unpack(data)
	}
	if err != nil {
		return fail(f, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to decompress %s", input), Err: err})
	}

	if output == "-" {
		if f.JSON() {
			return f.Success(v, "")
		}
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fail(f, err)
		}
		return f.Success(nil, string(out)+"\n")
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fail(f, err)
	}
	if err := writeFile(output, append(out, '\n')); err != nil {
		return fail(f, err)
	}
	return f.Success(map[string]string{"input": input, "output": output},
		fmt.Sprintf("✓ %s → %s\n", input, output))
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <session>",
		Short: "Report compression statistics for a session",
		Long: `Measure every stage of the codec on a session: canonical JSON size,
optimized size, compressed size and a per-section breakdown.

The session may be canonical JSON or already compressed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runStats(opts *RootOptions, input string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	s, err := LoadSession(input)
	if err != nil {
		return fail(f, err)
	}
	stats, err := codec.MeasureCompression(s)
	if err != nil {
		return fail(f, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session:     %s\n", s.Header.SessionID)
	fmt.Fprintf(&b, "Events:      %d\n", len(s.Events))
	fmt.Fprintf(&b, "Elements:    %d\n", len(s.Elements))
	fmt.Fprintf(&b, "Original:    %d bytes\n", stats.OriginalSize)
	fmt.Fprintf(&b, "Optimized:   %d bytes (%.1fx)\n", stats.OptimizedSize, stats.OptimizationRatio())
	fmt.Fprintf(&b, "Compressed:  %d bytes (%.1fx)\n", stats.CompressedSize, stats.FinalRatio)
	b.WriteString("Breakdown:\n")
	fmt.Fprintf(&b, "  header       %d\n", stats.Breakdown.Header)
	fmt.Fprintf(&b, "  elements     %d\n", stats.Breakdown.Elements)
	fmt.Fprintf(&b, "  events       %d\n", stats.Breakdown.Events)
	fmt.Fprintf(&b, "  screenshots  %d\n", stats.Breakdown.Screenshots)
	return f.Success(stats, b.String())
}
