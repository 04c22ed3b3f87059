// Package metrics exposes Prometheus instrumentation for the decomposition
// engine: query counts and latency per arity, search effort, feasibility
// rejections and infeasibility cache growth.
//
// Metrics are registered on the Registerer passed to New. A nil Registerer
// yields working but unregistered collectors, which is what the CLI uses
// for one-shot runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "sumsquares"
	engineSubsystem  = "engine"
)

// Query results.
const (
	ResultFeasible   = "feasible"
	ResultInfeasible = "infeasible"
	ResultError      = "error"
)

// Metrics holds the engine collectors.
type Metrics struct {
	// QueriesTotal counts top-level queries.
	// Labels: arity (2, 3, 4), result (feasible, infeasible, error)
	QueriesTotal *prometheus.CounterVec

	// QueryDuration measures top-level query latency.
	// Labels: arity
	QueryDuration *prometheus.HistogramVec

	// DecompositionsTotal counts decompositions returned to callers.
	// Labels: arity
	DecompositionsTotal *prometheus.CounterVec

	// CandidatesTotal counts leading-term candidates tried by each layer.
	// Labels: arity
	CandidatesTotal *prometheus.CounterVec

	// RejectionsTotal counts feasibility filter hits.
	// Labels: arity, reason (residue, cached, fermat, legendre)
	RejectionsTotal *prometheus.CounterVec

	// CacheInsertsTotal counts values added to the infeasibility cache.
	CacheInsertsTotal prometheus.Counter
}

// New creates the collectors and registers them on reg if it is non-nil.
// Registering twice on the same Registerer panics, as with promauto.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		QueriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "queries_total",
			Help:      "Total decomposition queries by arity and result",
		}, []string{"arity", "result"}),

		QueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "query_duration_seconds",
			Help:      "Decomposition query duration",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10},
		}, []string{"arity"}),

		DecompositionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "decompositions_total",
			Help:      "Total decompositions returned by arity",
		}, []string{"arity"}),

		CandidatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "candidates_total",
			Help:      "Leading-term candidates tried by each search layer",
		}, []string{"arity"}),

		RejectionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "rejections_total",
			Help:      "Values ruled out by a feasibility filter",
		}, []string{"arity", "reason"}),

		CacheInsertsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: engineSubsystem,
			Name:      "cache_inserts_total",
			Help:      "Values recorded in the two-square infeasibility cache",
		}),
	}
}

// ObserveSearch implements core.Recorder.
func (m *Metrics) ObserveSearch(arity int, candidates int) {
	m.CandidatesTotal.WithLabelValues(strconv.Itoa(arity)).Add(float64(candidates))
}

// ObserveRejection implements core.Recorder.
func (m *Metrics) ObserveRejection(arity int, reason string) {
	m.RejectionsTotal.WithLabelValues(strconv.Itoa(arity), reason).Inc()
}

// ObserveCacheInsert implements core.Recorder.
func (m *Metrics) ObserveCacheInsert() {
	m.CacheInsertsTotal.Inc()
}

// RecordQuery records one finished top-level query.
func (m *Metrics) RecordQuery(arity int, result string, found int, elapsed time.Duration) {
	a := strconv.Itoa(arity)
	m.QueriesTotal.WithLabelValues(a, result).Inc()
	m.QueryDuration.WithLabelValues(a).Observe(elapsed.Seconds())
	if found > 0 {
		m.DecompositionsTotal.WithLabelValues(a).Add(float64(found))
	}
}
