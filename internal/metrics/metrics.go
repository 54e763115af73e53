// Package metrics exposes prometheus collectors for annotation update cycles.
package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace is used when New gets an empty namespace.
const DefaultNamespace = "typographic"

// Cycle describes one completed update cycle.
type Cycle struct {
	Reported    int
	Matched     int
	Annotations int
	Duration    time.Duration
}

// Metrics holds the engine collectors. A nil *Metrics ignores observations.
type Metrics struct {
	cycles      prometheus.Counter
	failures    prometheus.Counter
	reported    prometheus.Counter
	matched     prometheus.Counter
	annotations prometheus.Gauge
	duration    prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	namespace = strings.Join(strings.Split(namespace, "."), "_")
	const subsystem = "engine"

	m := &Metrics{
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycles_total",
			Help:      "completed update cycles",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "failures_total",
			Help:      "update cycles rejected by a precondition",
		}),
		reported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "reported_nodes_total",
			Help:      "nodes rescanned by update cycles",
		}),
		matched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "matched_nodes_total",
			Help:      "unchanged nodes skipped by update cycles",
		}),
		annotations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "annotations",
			Help:      "annotations after the last cycle",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cycle_duration_seconds",
			Help:      "update cycle duration",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
	for _, c := range []prometheus.Collector{
		m.cycles, m.failures, m.reported, m.matched, m.annotations, m.duration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveCycle records a completed cycle.
func (m *Metrics) ObserveCycle(c Cycle) {
	if m == nil {
		return
	}
	m.cycles.Inc()
	m.reported.Add(float64(c.Reported))
	m.matched.Add(float64(c.Matched))
	m.annotations.Set(float64(c.Annotations))
	m.duration.Observe(c.Duration.Seconds())
}

// ObserveFailure records a rejected cycle.
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}
