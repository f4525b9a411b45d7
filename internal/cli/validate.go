package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/relmap/internal/relspec"
	"github.com/roach88/relmap/internal/schema"
)

// ValidationError is one problem found in a specs directory.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Relations []string          `json:"relations,omitempty"`
	Errors    []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <specs-dir>",
		Short: "Validate relation specs",
		Long: `Load every .cue, .yaml and .yml relation spec in a directory and report
all problems found: unknown field types, duplicate names, indexes over
missing columns.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, specsDir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	result, errs := relspec.Load(specsDir, relspec.LoadModeCollectAll)
	if result == nil && len(errs) > 0 {
		return formatter.Fail("failed to load specs", errs[0])
	}
	formatter.VerboseLog("Found %d spec file(s) in %s", result.FileCount, specsDir)

	if len(errs) > 0 {
		return outputValidationErrors(formatter, toValidationErrors(errs))
	}

	names := make([]string, len(result.Relations))
	for i, rel := range result.Relations {
		names[i] = rel.Name
	}
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Relations: names})
	}
	fmt.Fprintf(formatter.Writer, "✓ All specs valid (%d relation(s))\n", len(names))
	return nil
}

func toValidationErrors(errs []error) []ValidationError {
	out := make([]ValidationError, 0, len(errs))
	for _, err := range errs {
		var loadErr *relspec.LoadError
		if !errors.As(err, &loadErr) {
			out = append(out, ValidationError{Code: relspec.ErrCodeGeneric, Message: err.Error()})
			continue
		}
		ve := ValidationError{Code: loadErr.Code, Message: loadErr.Message, File: loadErr.File, Line: loadErr.Line}
		if loadErr.Pos.IsValid() {
			ve.File = loadErr.Pos.Filename()
			ve.Line = loadErr.Pos.Line()
		}
		out = append(out, ve)
	}
	return out
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
			TraceID: formatter.TraceID,
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		switch {
		case err.File != "" && err.Line > 0:
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		case err.File != "":
			fmt.Fprintf(formatter.Writer, "%s\n", err.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// loadRelations loads specsDir and fails on the first problem.
func loadRelations(formatter *OutputFormatter, specsDir string) (*relspec.Result, error) {
	result, errs := relspec.Load(specsDir, relspec.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, formatter.Fail("failed to load specs", errs[0])
	}
	formatter.VerboseLog("Loaded %d relation(s) from %d file(s)", len(result.Relations), result.FileCount)
	return result, nil
}

// collectObjects gathers the schema objects of rels without duplicates.
func collectObjects(rels []*schema.Relation) *schema.Collector {
	c := schema.NewCollector()
	c.AddRelations(rels...)
	return c
}
