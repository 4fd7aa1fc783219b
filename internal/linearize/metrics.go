package linearize

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for checker activity.
// A nil *Metrics disables instrumentation.
type Metrics struct {
	// feeds counts FeedSpan calls that reached the live set.
	feeds prometheus.Counter

	// violations counts checkers whose live set became empty.
	violations prometheus.Counter

	// successors counts possibilities produced by Step.
	successors prometheus.Counter

	// live is the live-set size after the most recent feed.
	live prometheus.Gauge

	// rounds is the number of saturation rounds per feed.
	rounds prometheus.Histogram
}

// NewMetrics creates checker metrics registered with reg.
// Registering twice on the same registry panics, like promauto.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		feeds: f.NewCounter(prometheus.CounterOpts{
			Namespace: "linearize",
			Subsystem: "checker",
			Name:      "feeds_total",
			Help:      "Total spans fed into a non-violated live set",
		}),
		violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "linearize",
			Subsystem: "checker",
			Name:      "violations_total",
			Help:      "Total histories proven non-linearizable",
		}),
		successors: f.NewCounter(prometheus.CounterOpts{
			Namespace: "linearize",
			Subsystem: "checker",
			Name:      "successors_total",
			Help:      "Total successor possibilities produced during saturation",
		}),
		live: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "linearize",
			Subsystem: "checker",
			Name:      "live_possibilities",
			Help:      "Live-set size after the most recent feed",
		}),
		rounds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linearize",
			Subsystem: "checker",
			Name:      "saturation_rounds",
			Help:      "Saturation rounds needed per feed",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128},
		}),
	}
}

func (m *Metrics) observeFeed(live, rounds, successors int, violated bool) {
	if m == nil {
		return
	}
	m.feeds.Inc()
	m.live.Set(float64(live))
	m.rounds.Observe(float64(rounds))
	m.successors.Add(float64(successors))
	if violated {
		m.violations.Inc()
	}
}
