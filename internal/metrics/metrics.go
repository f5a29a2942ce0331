// Package metrics exposes export progress as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kb-dk/ds-cumulus-export/internal/core/domain"
	"github.com/kb-dk/ds-cumulus-export/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.ExportMetrics = (*Metrics)(nil)

const namespace = "cumulus_export"

// Metrics records export counters on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	mapDuration prometheus.Histogram
	records     *prometheus.CounterVec
	runs        prometheus.Counter
	lastRun     *prometheus.GaugeVec
}

// New creates Metrics backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		mapDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "map_duration_seconds",
			Help:      "Time spent mapping a single record",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		records: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records handled by the exporter, by outcome",
		}, []string{"outcome"}),
		runs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Completed export runs",
		}),
		lastRun: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_records",
			Help:      "Record counters of the most recent run",
		}, []string{"counter"}),
	}
}

// RecordMapped observes the time spent mapping one record.
func (m *Metrics) RecordMapped(d time.Duration) {
	m.mapDuration.Observe(d.Seconds())
}

// RecordWritten counts a record accepted by the writer.
func (m *Metrics) RecordWritten() {
	m.records.WithLabelValues("written").Inc()
}

// RecordSkipped counts a record dropped because of a record error.
func (m *Metrics) RecordSkipped() {
	m.records.WithLabelValues("skipped").Inc()
}

// RunFinished publishes the counters of a completed run.
func (m *Metrics) RunFinished(run domain.RunSummary) {
	m.runs.Inc()
	m.lastRun.WithLabelValues("processed").Set(float64(run.Processed))
	m.lastRun.WithLabelValues("written").Set(float64(run.Written))
	m.lastRun.WithLabelValues("skipped").Set(float64(run.Skipped))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
