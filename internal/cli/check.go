package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linearize/internal/harness"
	"github.com/roach88/linearize/internal/linearize"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Workers int  // concurrent expansions per saturation round
	Metrics bool // report checker metrics after the run
}

// CheckResult is the outcome of checking one scenario file.
type CheckResult struct {
	File       string              `json:"file"`
	Name       string              `json:"name"`
	Pass       bool                `json:"pass"`
	Verdict    string              `json:"verdict"`
	Expected   string              `json:"expected"`
	ViolatedAt *int                `json:"violated_at,omitempty"`
	Steps      int                 `json:"steps"`
	Live       []linearize.Summary `json:"live"`
	Errors     []string            `json:"errors,omitempty"`
}

// CheckReport is the overall check result.
type CheckReport struct {
	Results []CheckResult  `json:"results"`
	Passed  int            `json:"passed"`
	Failed  int            `json:"failed"`
	Total   int            `json:"total"`
	Metrics []MetricSample `json:"metrics,omitempty"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>...",
		Short: "Check scenario histories for linearizability",
		Long: `Feed each scenario's steps to a fresh checker and compare the verdict
with the scenario's expectation.

Exit codes:
  0 - Every scenario reached its expected verdict
  1 - One or more scenarios did not
  2 - Command error (unreadable scenario, contract violation, etc.)

Examples:
  linearize check history.yaml
  linearize check --workers 4 --metrics a.yaml b.yaml
  linearize check --format json history.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "concurrent expansions per saturation round")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "report checker metrics")

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

func runCheck(opts *CheckOptions, files []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	checkerOpts := []linearize.Option{
		linearize.WithLogger(logger),
		linearize.WithParallelism(opts.Workers),
	}
	var metrics *checkerMetrics
	if opts.Metrics {
		metrics = newCheckerMetrics()
		checkerOpts = append(checkerOpts, linearize.WithMetrics(metrics.metrics))
	}

	report := CheckReport{
		Results: make([]CheckResult, 0, len(files)),
		Total:   len(files),
	}
	for _, file := range files {
		scenario, err := harness.LoadScenario(file)
		if err != nil {
			msg := fmt.Sprintf("failed to load %s", file)
			_ = formatter.Error(ErrCodeLoad, msg, err.Error())
			return WrapExitError(ExitCommandError, msg, err)
		}

		result, err := harness.Run(cmd.Context(), scenario,
			harness.WithRunLogger(logger),
			harness.WithCheckerOptions(checkerOpts...),
		)
		if err != nil {
			msg := fmt.Sprintf("failed to check %s", scenario.Name)
			_ = formatter.Error(ErrCodeCheck, msg, err.Error())
			return WrapExitError(ExitCommandError, msg, err)
		}

		cr := CheckResult{
			File:       file,
			Name:       scenario.Name,
			Pass:       result.Pass,
			Verdict:    result.Verdict,
			Expected:   scenario.Expect.Verdict,
			ViolatedAt: result.ViolatedAt,
			Steps:      len(result.Steps),
			Live:       result.Live,
			Errors:     result.Errors,
		}
		report.Results = append(report.Results, cr)
		if cr.Pass {
			report.Passed++
		} else {
			report.Failed++
		}

		if !formatter.IsJSON() {
			writeCheckText(cmd.OutOrStdout(), cr, result.Final, opts.Verbose)
		}
	}

	if metrics != nil {
		samples, err := metrics.samples()
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read metrics", err)
		}
		report.Metrics = samples
	}

	var failure *CLIError
	if report.Failed > 0 {
		failure = &CLIError{
			Code:    ErrCodeFailed,
			Message: fmt.Sprintf("%d scenario(s) did not reach the expected verdict", report.Failed),
		}
	}

	if formatter.IsJSON() {
		if err := formatter.Report(report, failure); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if report.Metrics != nil {
			writeMetricsText(w, report.Metrics)
		}
		fmt.Fprintf(w, "\nCheck Summary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)
	}

	if failure != nil {
		return NewExitError(ExitFailure, failure.Message)
	}
	return nil
}

func writeCheckText(w io.Writer, cr CheckResult, final string, verbose bool) {
	mark := "✓"
	if !cr.Pass {
		mark = "✗"
	}

	verdict := cr.Verdict
	if cr.ViolatedAt != nil {
		verdict = fmt.Sprintf("%s at step %d", verdict, *cr.ViolatedAt)
	}
	if cr.Pass {
		fmt.Fprintf(w, "%s %s: %s (%d steps)\n", mark, cr.Name, verdict, cr.Steps)
	} else {
		fmt.Fprintf(w, "%s %s: %s, expected %s\n", mark, cr.Name, verdict, cr.Expected)
		for _, e := range cr.Errors {
			fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(strings.TrimSpace(e), "\n", "\n  "))
		}
	}

	if verbose {
		fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(final, "\n", "\n  "))
	}
}
