package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/linearize/internal/history"
	"github.com/roach88/linearize/internal/linearize"
)

// RunOption configures Run.
type RunOption func(*runConfig)

type runConfig struct {
	checkerOpts []linearize.Option
	sink        Sink
	logger      *slog.Logger
}

// WithCheckerOptions passes options to the checker the scenario is fed to.
func WithCheckerOptions(opts ...linearize.Option) RunOption {
	return func(c *runConfig) {
		c.checkerOpts = append(c.checkerOpts, opts...)
	}
}

// WithRunSink forwards every fed step to s, e.g. a StoreSink.
func WithRunSink(s Sink) RunOption {
	return func(c *runConfig) {
		c.sink = s
	}
}

// WithRunLogger sets the logger for run progress.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Run feeds a scenario's steps to a fresh checker and evaluates its
// expectation.
//
// Execution flow:
// 1. Create a checker for scenario.Nodes
// 2. Feed every step in order through a Recorder (so sinks see them)
// 3. Record per-step answers and the first violation
// 4. Compare the verdict with scenario.Expect
//
// A step that breaks the checker's contract (non-monotonic timestamps,
// unmatched resume) aborts the run with an error; expectation mismatches are
// reported in Result.Errors instead.
func Run(ctx context.Context, scenario *Scenario, opts ...RunOption) (*Result, error) {
	cfg := runConfig{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	lin, err := linearize.New(scenario.Nodes, cfg.checkerOpts...)
	if err != nil {
		return nil, fmt.Errorf("create checker: %w", err)
	}

	recOpts := []RecorderOption{WithRecorderLogger(cfg.logger)}
	if cfg.sink != nil {
		recOpts = append(recOpts, WithSink(cfg.sink))
	}
	rec := NewRecorder(lin, NewLogicalClock(), recOpts...)

	result := NewResult(scenario.Name)
	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		span, err := step.Span()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		ok, err := rec.Feed(ctx, step.Node, span)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		result.AddStep(i, history.Entry{Node: step.Node, Span: span}, ok, lin.Len())
	}

	result.Live = lin.Snapshot()
	result.Final = lin.String()

	for _, msg := range CheckExpectation(result, scenario.Expect) {
		result.AddError(msg)
	}

	cfg.logger.Info("scenario complete",
		"scenario", scenario.Name,
		"verdict", result.Verdict,
		"pass", result.Pass,
		"steps", len(result.Steps),
	)
	return result, nil
}
