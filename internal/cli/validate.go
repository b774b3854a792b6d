package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/gremlin/internal/session"
	"github.com/roach88/gremlin/internal/spec"
)

// ValidationIssue is one problem found in one file.
type ValidationIssue struct {
	File    string `json:"file"`
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var sessions bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate specs or sessions",
		Long: `Validate spec documents (JSON, YAML or CUE) against the schema and the
model's structural rules. With --session the files are recorded sessions,
canonical JSON or compressed.

Every problem in every file is reported.

Exit codes:
  0 - All files valid
  1 - One or more files invalid
  2 - Command error (missing or undecodable file)`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, sessions, cmd)
		},
	}

	cmd.Flags().BoolVar(&sessions, "session", false, "validate session files")
	return cmd
}

func runValidate(opts *RootOptions, paths []string, sessions bool, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	result := ValidationResult{Files: len(paths)}
	for _, path := range paths {
		f.VerboseLog("Validating %s", path)
		issues, err := validateFile(path, sessions)
		if err != nil {
			return fail(f, err)
		}
		result.Errors = append(result.Errors, issues...)
	}

	if len(result.Errors) > 0 {
		return outputValidationErrors(f, result)
	}

	result.Valid = true
	noun := "spec"
	if sessions {
		noun = "session"
	}
	return f.Success(result, fmt.Sprintf("✓ %d %s file(s) valid\n", len(paths), noun))
}

func validateFile(path string, sessions bool) ([]ValidationIssue, error) {
	var issues []ValidationIssue
	if sessions {
		s, err := LoadSession(path)
		if err != nil {
			return nil, err
		}
		for _, e := range session.Validate(s) {
			issues = append(issues, ValidationIssue{File: path, Field: e.Field, Code: e.Code, Message: e.Message})
		}
		return issues, nil
	}

	s, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	for _, e := range spec.Validate(s) {
		issues = append(issues, ValidationIssue{File: path, Field: e.Field, Code: e.Code, Message: e.Message})
	}
	return issues, nil
}

// outputValidationErrors outputs every validation problem.
func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	var b strings.Builder
	b.WriteString("✗ Validation failed\n\n")
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "%s\n  %s: %s: %s\n\n", e.File, e.Code, e.Field, e.Message)
	}
	first := result.Errors[0]
	if err := f.Failure(result, first.Code, first.Message, b.String()); err != nil {
		return err
	}
	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

// outputSessionErrors reports an invalid session passed to another command.
func outputSessionErrors(f *OutputFormatter, errs []session.ValidationError) error {
	result := ValidationResult{Files: 1}
	for _, e := range errs {
		result.Errors = append(result.Errors, ValidationIssue{Field: e.Field, Code: e.Code, Message: e.Message})
	}
	var b strings.Builder
	b.WriteString("✗ Invalid session\n")
	for _, e := range errs {
		fmt.Fprintf(&b, "  %s: %s: %s\n", e.Code, e.Field, e.Message)
	}
	if err := f.Failure(result, errs[0].Code, errs[0].Message, b.String()); err != nil {
		return err
	}
	return NewExitError(ExitFailure, fmt.Sprintf("invalid session: %d error(s)", len(errs)))
}
