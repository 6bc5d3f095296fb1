package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ndbc_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for a batch run.
type Metrics struct {
	StationsProcessed *prometheus.CounterVec // labels: outcome={ok,unavailable,transport_error,...}
	RowsWritten       prometheus.Counter
	LinesSkipped      prometheus.Counter
	StationDuration   prometheus.Histogram
	MetadataCheckOK   prometheus.Gauge
	BatchRunning      prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stations_processed_total",
			Help:      "Stations processed by outcome.",
		}, []string{"outcome"}),
		RowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Total observation rows written to station artifacts.",
		}),
		LinesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_skipped_total",
			Help:      "Report data lines dropped because no timestamp could be decoded.",
		}),
		StationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "station_duration_seconds",
			Help:      "Duration of a complete fetch-parse-write run for one station.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		MetadataCheckOK: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "metadata_check_ok",
			Help:      "1 when the station metadata check passed, 0 otherwise.",
		}),
		BatchRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "batch_running",
			Help:      "1 while a batch is in progress, 0 when finished.",
		}),
	}
}

// NewMetrics creates and registers all batch metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsProcessed,
		m.RowsWritten,
		m.LinesSkipped,
		m.StationDuration,
		m.MetadataCheckOK,
		m.BatchRunning,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
