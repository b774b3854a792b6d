package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/store"
)

// openArchive opens the archive at db, or at the configured path when db
// is empty, creating parent directories as needed.
func openArchive(opts *RootOptions, db string, cmd *cobra.Command) (*store.Store, error) {
	if db == "" {
		db = opts.Settings().Archive
	}
	if db != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(db), 0755); err != nil {
			return nil, &LoadError{Code: ErrCodeArchive, Message: fmt.Sprintf("failed to create archive directory for %s", db), Err: err}
		}
	}
	st, err := store.Open(db, store.WithLogger(opts.Logger(cmd.ErrOrStderr())))
	if err != nil {
		return nil, &LoadError{Code: ErrCodeArchive, Message: fmt.Sprintf("failed to open archive %s", db), Err: err}
	}
	return st, nil
}

// ArchiveListing is the JSON payload of archive list.
type ArchiveListing struct {
	Sessions []store.SessionRecord `json:"sessions"`
	Specs    []store.SpecRecord    `json:"specs"`
}

// NewArchiveCommand creates the archive command and its subcommands.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the local archive of sessions, specs and artifacts",
		Long: `The archive is a SQLite database holding compressed sessions, specs keyed
by content hash and the files generated from them.

Examples:
  gremlin archive session runs/*.json
  gremlin archive spec shop.json
  gremlin archive list --app shop
  gremlin archive show 1f2e3d4c -o session.json
  gremlin archive artifacts <spec-hash>`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&db, "db", "", "archive database (default: archive from gremlin.yaml)")

	cmd.AddCommand(newArchiveSessionCommand(rootOpts, &db))
	cmd.AddCommand(newArchiveSpecCommand(rootOpts, &db))
	cmd.AddCommand(newArchiveListCommand(rootOpts, &db))
	cmd.AddCommand(newArchiveShowCommand(rootOpts, &db))
	cmd.AddCommand(newArchiveArtifactsCommand(rootOpts, &db))
	return cmd
}

func newArchiveSessionCommand(rootOpts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "session <session>...",
		Short:         "Archive recorded sessions",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openArchive(rootOpts, *db, cmd)
			if err != nil {
				return fail(f, err)
			}
			defer st.Close()

			records := make([]store.SessionRecord, 0, len(args))
			var b strings.Builder
			for _, path := range args {
				s, err := LoadSession(path)
				if err != nil {
					return fail(f, err)
				}
				rec, err := st.PutSession(cmd.Context(), s)
				if err != nil {
					return fail(f, &LoadError{Code: ErrCodeArchive, Message: fmt.Sprintf("failed to archive %s", path), Err: err})
				}
				records = append(records, rec)
				fmt.Fprintf(&b, "✓ %s → %s (%d events, %d bytes)\n", path, rec.SessionID, rec.EventCount, rec.CompressedSize)
			}
			return f.Success(records, b.String())
		},
	}
}

func newArchiveSpecCommand(rootOpts *RootOptions, db *string) *cobra.Command {
	return &cobra.Command{
		Use:           "spec <spec>...",
		Short:         "Archive specs by content hash",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openArchive(rootOpts, *db, cmd)
			if err != nil {
				return fail(f, err)
			}
			defer st.Close()

			hashes := make(map[string]string, len(args))
			var b strings.Builder
			for _, path := range args {
				s, err := LoadValidSpec(path)
				if err != nil {
					return fail(f, err)
				}
				hash, err := st.PutSpec(cmd.Context(), s)
				if err != nil {
					return fail(f, &LoadError{Code: ErrCodeArchive, Message: fmt.Sprintf("failed to archive %s", path), Err: err})
				}
				hashes[path] = hash
				fmt.Fprintf(&b, "✓ %s → %s\n", path, hash)
			}
			return f.Success(hashes, b.String())
		},
	}
}

func newArchiveListCommand(rootOpts *RootOptions, db *string) *cobra.Command {
	var appID string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List archived sessions and specs",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openArchive(rootOpts, *db, cmd)
			if err != nil {
				return fail(f, err)
			}
			defer st.Close()

			sessions, err := st.ListSessions(cmd.Context(), appID)
			if err != nil {
				return fail(f, err)
			}
			specs, err := st.ListSpecs(cmd.Context())
			if err != nil {
				return fail(f, err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Sessions (%d)\n", len(sessions))
			for _, r := range sessions {
				fmt.Fprintf(&b, "  %s  %-8s %-30s %4d events  %s\n",
					r.SessionID, r.Platform, r.AppID, r.EventCount, formatMillis(r.StartTime))
			}
			fmt.Fprintf(&b, "Specs (%d)\n", len(specs))
			for _, r := range specs {
				fmt.Fprintf(&b, "  %s  %s %s\n", r.Hash[:12], r.Name, r.Version)
			}
			return f.Success(ArchiveListing{Sessions: sessions, Specs: specs}, b.String())
		},
	}

	cmd.Flags().StringVar(&appID, "app", "", "only sessions of this app identifier")
	return cmd
}

func newArchiveShowCommand(rootOpts *RootOptions, db *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "show <session-id>",
		Short:         "Print an archived session as canonical JSON",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openArchive(rootOpts, *db, cmd)
			if err != nil {
				return fail(f, err)
			}
			defer st.Close()

			s, err := st.GetSession(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fail(f, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("session not archived: %s", args[0])})
			}
			if err != nil {
				return fail(f, err)
			}

			data, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fail(f, err)
			}
			if output == "-" {
				if f.JSON() {
					return f.Success(s, "")
				}
				return f.Success(nil, string(data)+"\n")
			}
			if err := writeFile(output, append(data, '\n')); err != nil {
				return fail(f, err)
			}
			return f.Success(map[string]string{"output": output}, fmt.Sprintf("✓ wrote %s\n", output))
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output path")
	return cmd
}

func newArchiveArtifactsCommand(rootOpts *RootOptions, db *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:           "artifacts <spec-hash>",
		Short:         "List or restore the files generated from an archived spec",
		Long:          `List the archived files of a spec. With -o they are written under a directory.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			st, err := openArchive(rootOpts, *db, cmd)
			if err != nil {
				return fail(f, err)
			}
			defer st.Close()

			if _, err := st.GetSpec(cmd.Context(), args[0]); errors.Is(err, store.ErrNotFound) {
				return fail(f, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("spec not archived: %s", args[0])})
			} else if err != nil {
				return fail(f, err)
			}
			artifacts, err := st.ListArtifacts(cmd.Context(), args[0])
			if err != nil {
				return fail(f, err)
			}

			files := make([]GeneratedFile, 0, len(artifacts))
			var b strings.Builder
			for _, a := range artifacts {
				gf := GeneratedFile{Path: a.Path, Bytes: len(a.Content)}
				if output != "" {
					dest := filepath.Join(output, a.Kind, filepath.FromSlash(a.Path))
					if err := writeFile(dest, []byte(a.Content)); err != nil {
						return fail(f, err)
					}
					gf.Path = dest
				}
				files = append(files, gf)
				fmt.Fprintf(&b, "%-10s %s (%d bytes)\n", a.Kind, gf.Path, gf.Bytes)
			}
			if len(artifacts) == 0 {
				b.WriteString("No artifacts archived.\n")
			}
			return f.Success(files, b.String())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "restore files under this directory")
	return cmd
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}
