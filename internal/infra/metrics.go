package infra

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Archive run outcomes, used as the "result" label.
const (
	RunResultOK    = "ok"
	RunResultEmpty = "empty"
	RunResultBusy  = "busy"
	RunResultError = "error"
)

// Metrics holds the archive engine's Prometheus instruments. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	runs             *prometheus.CounterVec
	runDuration      prometheus.Histogram
	salesArchived    prometheus.Counter
	summariesWritten prometheus.Counter
	snapshots        *prometheus.CounterVec
}

// NewMetrics registers the instruments on reg. Tests pass a fresh
// prometheus.NewRegistry(); the server uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minipos_archive_runs_total",
			Help: "Archive runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "minipos_archive_run_duration_seconds",
			Help:    "Wall time of archive runs, including the transaction.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		salesArchived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minipos_archive_sales_archived_total",
			Help: "Live sale rows removed by archive runs.",
		}),
		summariesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "minipos_archive_summaries_written_total",
			Help: "Summary rows written by archive runs.",
		}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "minipos_archive_snapshots_total",
			Help: "Batch snapshot uploads by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.runs, m.runDuration, m.salesArchived, m.summariesWritten, m.snapshots)
	return m
}

// ObserveRun records one archive run.
func (m *Metrics) ObserveRun(result string, archived, summaries int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	if archived > 0 {
		m.salesArchived.Add(float64(archived))
	}
	if summaries > 0 {
		m.summariesWritten.Add(float64(summaries))
	}
}

// ObserveSnapshot records a snapshot upload attempt ("ok", "error", "skipped").
func (m *Metrics) ObserveSnapshot(result string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(result).Inc()
}
