package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sells-group/seo-leads/internal/model"
)

// Metrics holds the Prometheus collectors for pipeline runs.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	rows          prometheus.Counter
	hotLeads      prometheus.Counter
	sourceResults *prometheus.CounterVec
	runDuration   prometheus.Histogram
	leadDuration  prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seoleads",
			Name:      "runs_total",
			Help:      "Pipeline runs by final status.",
		}, []string{"status"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seoleads",
			Name:      "rows_total",
			Help:      "Scored rows produced.",
		}),
		hotLeads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "seoleads",
			Name:      "hot_leads_total",
			Help:      "Rows at or above the hot-lead threshold.",
		}),
		sourceResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "seoleads",
			Name:      "audit_source_results_total",
			Help:      "Audit signal source outcomes.",
		}, []string{"source", "result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seoleads",
			Name:      "run_duration_seconds",
			Help:      "Wall time of one pipeline run.",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 2400},
		}),
		leadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "seoleads",
			Name:      "lead_duration_seconds",
			Help:      "Wall time to evaluate one lead.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.runs, m.rows, m.hotLeads, m.sourceResults, m.runDuration, m.leadDuration)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSource records one audit source outcome. Its signature matches
// audit.Observer.
func (m *Metrics) ObserveSource(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "unavailable"
	}
	m.sourceResults.WithLabelValues(source, result).Inc()
}

// ObserveLead records one lead evaluation.
func (m *Metrics) ObserveLead(d time.Duration) {
	m.leadDuration.Observe(d.Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(status model.RunStatus, rows, hot int, d time.Duration) {
	m.runs.WithLabelValues(string(status)).Inc()
	m.rows.Add(float64(rows))
	m.hotLeads.Add(float64(hot))
	m.runDuration.Observe(d.Seconds())
}
