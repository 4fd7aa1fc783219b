package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linearize/internal/harness"
	"github.com/roach88/linearize/internal/linearize"
	"github.com/roach88/linearize/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	History  string // optional - specific history only
	Workers  int
}

// ReplayHistoryResult holds the replay result for a single history.
type ReplayHistoryResult struct {
	HistoryID  string  `json:"history_id"`
	Name       string  `json:"name"`
	Spans      int     `json:"spans"`
	Verdict    string  `json:"verdict"`
	ViolatedAt *int    `json:"violated_at,omitempty"`
	Mismatches []int64 `json:"mismatches,omitempty"`
	HashMatch  bool    `json:"hash_match"`
	Consistent bool    `json:"consistent"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Histories      []ReplayHistoryResult `json:"histories"`
	TotalHistories int                   `json:"total_histories"`
	AllConsistent  bool                  `json:"all_consistent"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-check recorded histories",
		Long: `Re-feed recorded histories into a fresh checker and verify that every
stored verdict is reproduced and that sealed histories still match their
content hash.

Exit codes:
  0 - All histories replayed consistently
  1 - A stored verdict or content hash was not reproduced
  2 - Command error (database not found, unknown history, etc.)

Examples:
  linearize replay --db ./histories.db
  linearize replay --db ./histories.db --history 0190a0b2-...
  linearize replay --db ./histories.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.History, "history", "", "replay specific history only")
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "concurrent expansions per saturation round")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	var ids []string
	if opts.History != "" {
		ids = []string{opts.History}
	} else {
		histories, err := st.ListHistories(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list histories", err)
		}
		for _, h := range histories {
			ids = append(ids, h.ID)
		}
	}

	result := ReplayResult{
		Histories:      make([]ReplayHistoryResult, 0, len(ids)),
		TotalHistories: len(ids),
		AllConsistent:  true,
	}

	if len(ids) == 0 {
		if formatter.IsJSON() {
			return formatter.Success(result)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No histories found in database.")
		return nil
	}

	for _, id := range ids {
		report, err := harness.Replay(ctx, st, id,
			linearize.WithLogger(logger),
			linearize.WithParallelism(opts.Workers),
		)
		if errors.Is(err, store.ErrNotFound) {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown history", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay history %s", id), err)
		}

		hr := ReplayHistoryResult{
			HistoryID:  report.History.ID,
			Name:       report.History.Name,
			Spans:      len(report.Result.Steps),
			Verdict:    report.Result.Verdict,
			ViolatedAt: report.Result.ViolatedAt,
			Mismatches: report.Mismatches,
			HashMatch:  report.HashMatch,
			Consistent: report.Consistent(),
		}
		result.Histories = append(result.Histories, hr)
		if !hr.Consistent {
			result.AllConsistent = false
		}
		formatter.VerboseLog("%s\n%s", id, report.Result.Final)
	}

	if formatter.IsJSON() {
		var failure *CLIError
		if !result.AllConsistent {
			failure = &CLIError{Code: ErrCodeDiverged, Message: "replay did not reproduce the recording"}
		}
		if err := formatter.Report(result, failure); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result)
	}

	if !result.AllConsistent {
		return NewExitError(ExitFailure, "replay did not reproduce the recording")
	}
	return nil
}

func outputReplayText(cmd *cobra.Command, result ReplayResult) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replayed %d histories\n\n", result.TotalHistories)
	for _, h := range result.Histories {
		mark := "✓"
		if !h.Consistent {
			mark = "✗"
		}
		verdict := h.Verdict
		if h.ViolatedAt != nil {
			verdict = fmt.Sprintf("%s at span %d", verdict, *h.ViolatedAt)
		}
		fmt.Fprintf(w, "%s %s (%s): %d spans, %s\n", mark, h.HistoryID, h.Name, h.Spans, verdict)
		if len(h.Mismatches) > 0 {
			fmt.Fprintf(w, "  Verdict mismatch at spans %v\n", h.Mismatches)
		}
		if !h.HashMatch {
			fmt.Fprintln(w, "  Content hash mismatch")
		}
	}

	fmt.Fprintln(w)
	if result.AllConsistent {
		fmt.Fprintln(w, "✓ All histories consistent")
	} else {
		fmt.Fprintln(w, "✗ Some histories diverged")
	}
}
