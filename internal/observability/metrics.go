package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "expcalc"

// Metrics holds the calculator's Prometheus collectors on a private registry.
// Metrics satisfies encounter.Observer and is safe for concurrent use.
type Metrics struct {
	registry          *prometheus.Registry
	expectations      prometheus.Counter
	slotsEvaluated    prometheus.Counter
	unknownSpecies    prometheus.Counter
	divisionUndefined prometheus.Counter
	analysisDuration  prometheus.Histogram
	requests          *prometheus.CounterVec
}

// NewMetrics registers every collector, plus the Go runtime and process
// collectors, on a fresh registry.
//
// Postcondition: Returns a Metrics whose Handler serves all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		expectations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expectations_computed_total",
			Help:      "Encounter method expectations computed.",
		}),
		slotsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_evaluated_total",
			Help:      "Encounter slots folded into an expectation.",
		}),
		unknownSpecies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_species_total",
			Help:      "Default records substituted for species missing from the reference table.",
		}),
		divisionUndefined: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "division_undefined_total",
			Help:      "Battle projections rejected for a non-positive per-battle EXP.",
		}),
		analysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of a full dataset analysis.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Calculator RPCs by method and status code.",
		}, []string{"method", "code"}),
	}
	m.registry.MustRegister(
		m.expectations,
		m.slotsEvaluated,
		m.unknownSpecies,
		m.divisionUndefined,
		m.analysisDuration,
		m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ExpectationComputed records one method expectation over slots slots.
func (m *Metrics) ExpectationComputed(slots int) {
	m.expectations.Inc()
	m.slotsEvaluated.Add(float64(slots))
}

// UnknownSpecies records a default-record substitution. The identifier is not
// recorded; the calculator logs it.
func (m *Metrics) UnknownSpecies(string) {
	m.unknownSpecies.Inc()
}

// DivisionUndefined records a rejected battle projection.
func (m *Metrics) DivisionUndefined() {
	m.divisionUndefined.Inc()
}

// ObserveAnalysis records the duration of one dataset analysis.
func (m *Metrics) ObserveAnalysis(d time.Duration) {
	m.analysisDuration.Observe(d.Seconds())
}

// RequestHandled records one RPC outcome.
func (m *Metrics) RequestHandled(method, code string) {
	m.requests.WithLabelValues(method, code).Inc()
}

// Registry exposes the underlying registry for tests and additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the HTTP handler serving the registry in the Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
