package linearize

import "log/slog"

// Option configures a Linearizer.
type Option func(*Linearizer)

// WithLogger sets the logger for feed and violation events.
//
// Default: a logger that discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Linearizer) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithParallelism sets how many live-set members may be expanded
// concurrently within one saturation round.
//
// Default: 1 (sequential). Values below 1 are treated as 1.
func WithParallelism(workers int) Option {
	return func(l *Linearizer) {
		l.workers = max(workers, 1)
	}
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *Metrics) Option {
	return func(l *Linearizer) {
		l.metrics = m
	}
}
