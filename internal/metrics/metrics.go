// Package metrics exposes Prometheus instrumentation for the query pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	// Store round trips by collection and operation (count, find).
	StoreQueries *prometheus.CounterVec
	StoreLatency *prometheus.HistogramVec

	// Authorization checks by entity type, check kind and result.
	AuthzChecks *prometheus.CounterVec

	// Requested fields removed by the censor, by entity type.
	CensoredFields *prometheus.CounterVec

	// Root pipeline outcomes and latency by entity type.
	PipelineOutcomes *prometheus.CounterVec
	PipelineLatency  *prometheus.HistogramVec

	// Authorization fragment cache lookups by result (hit, miss).
	FragmentCache *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		StoreQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhaven_store_queries_total",
			Help: "Document store queries by collection and operation",
		}, []string{"collection", "op"}),

		StoreLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pawhaven_store_query_duration_seconds",
			Help:    "Document store query latency by collection",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"collection"}),

		AuthzChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhaven_authz_checks_total",
			Help: "Authorization checks by entity type, check and result",
		}, []string{"entity", "check", "result"}), // check: permission, affiliation, ownership

		CensoredFields: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhaven_censored_fields_total",
			Help: "Requested fields removed by the censor",
		}, []string{"entity"}),

		PipelineOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhaven_pipeline_outcomes_total",
			Help: "Query pipeline outcomes by entity type",
		}, []string{"entity", "outcome"}), // outcome: ok, not_found, forbidden, unauthenticated, error

		PipelineLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pawhaven_pipeline_duration_seconds",
			Help:    "End-to-end query pipeline latency by entity type",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"entity"}),

		FragmentCache: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pawhaven_authz_fragment_cache_total",
			Help: "Authorization fragment cache lookups",
		}, []string{"result"}),
	}
}

// ObserveQuery implements store.Observer.
func (m *Metrics) ObserveQuery(collection, op string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.StoreQueries.WithLabelValues(collection, op).Inc()
	m.StoreLatency.WithLabelValues(collection).Observe(elapsed.Seconds())
}

// ObserveCheck records an authorization check.
func (m *Metrics) ObserveCheck(entity, check string, granted bool) {
	if m == nil {
		return
	}
	result := "denied"
	if granted {
		result = "granted"
	}
	m.AuthzChecks.WithLabelValues(entity, check, result).Inc()
}

// AddCensored records fields removed by the censor.
func (m *Metrics) AddCensored(entity string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CensoredFields.WithLabelValues(entity).Add(float64(n))
}

// ObservePipeline records a root pipeline run.
func (m *Metrics) ObservePipeline(entity, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.PipelineOutcomes.WithLabelValues(entity, outcome).Inc()
	m.PipelineLatency.WithLabelValues(entity).Observe(elapsed.Seconds())
}

// ObserveFragmentCache records a fragment cache lookup.
func (m *Metrics) ObserveFragmentCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.FragmentCache.WithLabelValues("hit").Inc()
		return
	}
	m.FragmentCache.WithLabelValues("miss").Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
