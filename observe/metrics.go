// Package observe exports asyncschema run statistics as Prometheus metrics.
package observe

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/reoring/asyncschema"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// Metrics implements asyncschema.Observer over a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ asyncschema.Observer = (*Metrics)(nil)

// NewMetrics creates the collectors under namespace ("asyncschema" when
// empty) and registers them on a new registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "asyncschema"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Validate calls by outcome and short-circuit policy",
			},
			[]string{"outcome", "first"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "field_errors_total",
				Help:      "Validation errors by top-level field",
			},
			[]string{"field"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Duration of Validate calls",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"outcome"},
		),
	}
	m.registry.MustRegister(m.runs, m.failures, m.duration)
	return m
}

// ObserveRun records one run. Field errors are labelled by their top-level
// field so array indexes do not multiply series.
func (m *Metrics) ObserveRun(_ context.Context, s asyncschema.RunStats) {
	outcome := OutcomeOK
	switch {
	case s.Canceled:
		outcome = OutcomeCanceled
	case s.Errors > 0:
		outcome = OutcomeFailed
	}
	m.runs.WithLabelValues(outcome, fmt.Sprint(s.First)).Inc()
	m.duration.WithLabelValues(outcome).Observe(s.Duration.Seconds())
	for _, f := range s.Failed {
		top, _, _ := strings.Cut(f, ".")
		m.failures.WithLabelValues(top).Inc()
	}
}

// Registry exposes the registry, e.g. for promhttp.HandlerFor.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Gather collects the current metric families.
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) { return m.registry.Gather() }

// WriteText writes the metrics in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
