package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the lookup module.
type Metrics struct {
	// Match outcomes by entity type and match type
	LookupOutcome *prometheus.CounterVec

	// Store predicate latencies by entity type and predicate
	QueryLatency *prometheus.HistogramVec

	// Overall lookup latency
	LookupLatency prometheus.Histogram
}

// New creates a new Metrics instance with all lookup module metrics registered.
func New() *Metrics {
	return &Metrics{
		LookupOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "collreg_lookup_outcomes_total",
			Help: "Total lookup outcomes by entity type and match type",
		}, []string{"entity", "match_type"}), // entity: "institution", "collection"

		QueryLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "collreg_lookup_query_duration_seconds",
			Help:    "Duration of store lookup predicates by entity type and predicate",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"entity", "predicate"}),

		LookupLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "collreg_lookup_duration_seconds",
			Help:    "Duration of full lookups including candidate gathering",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// IncrementOutcome records the resolved match type for one entity type.
func (m *Metrics) IncrementOutcome(entity, matchType string) {
	if m != nil {
		m.LookupOutcome.WithLabelValues(entity, matchType).Inc()
	}
}

// ObserveQueryLatency records the duration of one store predicate.
func (m *Metrics) ObserveQueryLatency(entity, predicate string, d time.Duration) {
	if m != nil {
		m.QueryLatency.WithLabelValues(entity, predicate).Observe(d.Seconds())
	}
}

// ObserveLookupLatency records the total lookup duration.
func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}
