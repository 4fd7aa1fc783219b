package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linearize/internal/harness"
)

// FileValidation is the validation outcome of one scenario file.
type FileValidation struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Problems []string `json:"problems,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>...",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the scenario schema and the structural
checks (node ranges, timestamps, expectation) without feeding the checker.

Faster than check for authoring feedback.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		fv := FileValidation{File: file, Valid: true}
		if _, err := harness.LoadScenario(file); err != nil {
			fv.Valid = false
			fv.Problems = problemsOf(err)
			result.Valid = false
		}
		formatter.VerboseLog("validated %s: %t", file, fv.Valid)
		result.Files = append(result.Files, fv)
	}

	if formatter.IsJSON() {
		var failure *CLIError
		if !result.Valid {
			failure = &CLIError{Code: ErrCodeInvalid, Message: "validation failed"}
		}
		if err := formatter.Report(result, failure); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, fv := range result.Files {
			if fv.Valid {
				fmt.Fprintf(w, "✓ %s\n", fv.File)
				continue
			}
			fmt.Fprintf(w, "✗ %s\n", fv.File)
			for _, p := range fv.Problems {
				fmt.Fprintf(w, "  %s\n", p)
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "validation failed")
	}
	return nil
}

// problemsOf lists schema problems individually and any other error whole.
func problemsOf(err error) []string {
	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		return schemaErr.Problems
	}
	return []string{err.Error()}
}
