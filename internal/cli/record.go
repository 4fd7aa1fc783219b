package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linearize/internal/harness"
	"github.com/roach88/linearize/internal/store"
)

// RecordOptions holds flags for the record command.
type RecordOptions struct {
	*RootOptions
	Database string
	Name     string // history name (defaults to the scenario name)
}

// RecordResult describes a recorded history.
type RecordResult struct {
	HistoryID   string `json:"history_id"`
	Name        string `json:"name"`
	Spans       int    `json:"spans"`
	Verdict     string `json:"verdict"`
	ViolatedAt  *int   `json:"violated_at,omitempty"`
	ContentHash string `json:"content_hash"`
}

// NewRecordCommand creates the record command.
func NewRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RecordOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record <scenario.yaml>",
		Short: "Check a scenario and store its history",
		Long: `Check a scenario and store every fed span with the checker's answer in a
SQLite database. The stored history is sealed with its content hash and can
be re-checked later with replay.

The scenario's expectation is not enforced: record stores whatever happened.

Examples:
  linearize record --db ./histories.db history.yaml
  linearize record --db ./histories.db --name nightly-42 history.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Name, "name", "", "history name (default: scenario name)")

	return cmd
}

func runRecord(opts *RecordOptions, file string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	scenario, err := harness.LoadScenario(file)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load %s", file), err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	name := opts.Name
	if name == "" {
		name = scenario.Name
	}
	sink, err := harness.NewStoreSink(ctx, st, store.UUIDv7Generator{}, name, scenario.Nodes)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create history", err)
	}
	logger.Info("recording history", "id", sink.HistoryID(), "name", name)

	result, err := harness.Run(ctx, scenario,
		harness.WithRunSink(sink),
		harness.WithRunLogger(logger),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to record %s", scenario.Name), err)
	}

	hash, err := sink.Seal(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to seal history", err)
	}

	rec := RecordResult{
		HistoryID:   sink.HistoryID(),
		Name:        name,
		Spans:       len(result.Steps),
		Verdict:     result.Verdict,
		ViolatedAt:  result.ViolatedAt,
		ContentHash: hash,
	}

	if formatter.IsJSON() {
		return formatter.Success(rec)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Recorded %s (%s)\n", rec.HistoryID, rec.Name)
	fmt.Fprintf(w, "  Spans:   %d\n", rec.Spans)
	fmt.Fprintf(w, "  Verdict: %s\n", rec.Verdict)
	fmt.Fprintf(w, "  Hash:    %s\n", rec.ContentHash)
	return nil
}
