// Package metrics provides prometheus collectors for screening and comps
// activity.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Import modes recorded by FindingsImported.
const (
	ImportSingle = "single"
	ImportBulk   = "bulk"
)

// Metrics contains the underwriting dashboard collectors. It satisfies both
// screening.Recorder and comps.Recorder.
type Metrics struct {
	runsStartedTotal   prometheus.Counter
	runsCompletedTotal prometheus.Counter
	runDurationSeconds prometheus.Histogram

	entitiesAddedTotal    *prometheus.CounterVec
	findingsImportedTotal *prometheus.CounterVec

	compsRankedTotal *prometheus.CounterVec
	compsResultRows  *prometheus.GaugeVec
}

// New creates the collectors and registers them on registry.
func New(registry prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) initMetrics() {
	m.runsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "screening_runs_started_total",
		Help: "Total number of screening runs started",
	})

	m.runsCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "screening_runs_completed_total",
		Help: "Total number of screening runs that completed",
	})

	m.runDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "screening_run_duration_seconds",
		Help:    "Time from run start to completion",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 8), // 250ms to 32s
	})

	m.entitiesAddedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_entities_added_total",
			Help: "Total number of entities added after load",
		},
		[]string{"source"}, // manual, intake
	)

	m.findingsImportedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "screening_findings_imported_total",
			Help: "Total number of prior findings attached to entities",
		},
		[]string{"mode"},
	)

	m.compsRankedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comps_ranked_total",
			Help: "Total number of comp set computations",
		},
		[]string{"kind"}, // sale, rent
	)

	m.compsResultRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "comps_result_rows",
			Help: "Rows returned by the most recent comp set computation",
		},
		[]string{"kind"},
	)
}

// Describe implements the Collector interface
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.runsStartedTotal.Describe(ch)
	m.runsCompletedTotal.Describe(ch)
	m.runDurationSeconds.Describe(ch)
	m.entitiesAddedTotal.Describe(ch)
	m.findingsImportedTotal.Describe(ch)
	m.compsRankedTotal.Describe(ch)
	m.compsResultRows.Describe(ch)
}

// Collect implements the Collector interface
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.runsStartedTotal.Collect(ch)
	m.runsCompletedTotal.Collect(ch)
	m.runDurationSeconds.Collect(ch)
	m.entitiesAddedTotal.Collect(ch)
	m.findingsImportedTotal.Collect(ch)
	m.compsRankedTotal.Collect(ch)
	m.compsResultRows.Collect(ch)
}

// RunStarted records a screening run start.
func (m *Metrics) RunStarted() {
	m.runsStartedTotal.Inc()
}

// RunCompleted records a screening run completion and its duration.
func (m *Metrics) RunCompleted(d time.Duration) {
	m.runsCompletedTotal.Inc()
	m.runDurationSeconds.Observe(d.Seconds())
}

// EntityAdded records an entity entering the store after load.
func (m *Metrics) EntityAdded(source string) {
	m.entitiesAddedTotal.WithLabelValues(source).Inc()
}

// FindingsImported records prior findings attached by an import.
func (m *Metrics) FindingsImported(mode string, n int) {
	m.findingsImportedTotal.WithLabelValues(mode).Add(float64(n))
}

// CompsRanked records a comp set computation.
func (m *Metrics) CompsRanked(kind string, rows int) {
	m.compsRankedTotal.WithLabelValues(kind).Inc()
	m.compsResultRows.WithLabelValues(kind).Set(float64(rows))
}

// Handler serves the registry in the prometheus exposition format.
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}
