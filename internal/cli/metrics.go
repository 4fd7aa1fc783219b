package cli

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/linearize/internal/linearize"
)

// MetricSample is one gathered metric value.
type MetricSample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// checkerMetrics bundles a private registry with the checker collectors
// registered on it.
type checkerMetrics struct {
	reg     *prometheus.Registry
	metrics *linearize.Metrics
}

func newCheckerMetrics() *checkerMetrics {
	reg := prometheus.NewRegistry()
	return &checkerMetrics{reg: reg, metrics: linearize.NewMetrics(reg)}
}

// samples flattens the registry into name/value pairs. Histograms are
// reported as their _count and _sum.
func (c *checkerMetrics) samples() ([]MetricSample, error) {
	families, err := c.reg.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []MetricSample
	for _, mf := range families {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out = append(out, MetricSample{Name: name, Value: m.GetCounter().GetValue()})
			case m.GetGauge() != nil:
				out = append(out, MetricSample{Name: name, Value: m.GetGauge().GetValue()})
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				out = append(out,
					MetricSample{Name: name + "_count", Value: float64(h.GetSampleCount())},
					MetricSample{Name: name + "_sum", Value: h.GetSampleSum()},
				)
			}
		}
	}
	return out, nil
}

func writeMetricsText(w io.Writer, samples []MetricSample) {
	fmt.Fprintln(w, "Metrics:")
	for _, s := range samples {
		fmt.Fprintf(w, "  %s %g\n", s.Name, s.Value)
	}
}
