package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the adjustment service.
type Metrics struct {
	AdjustRequests *prometheus.CounterVec // labels: outcome={success,missing_file,computation_error,serialization_error}
	AdjustDuration prometheus.Histogram
	RowsReturned   prometheus.Histogram
	MissingFiles   *prometheus.CounterVec // labels: file={Input YLT,Counts,Metrics,Gates}
	InFlight       prometheus.Gauge

	// Audit event publishing.
	AuditEvents *prometheus.CounterVec // labels: outcome={published,error}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		AdjustRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_adjust",
			Name:      "adjust_requests_total",
			Help:      "Adjustment requests by outcome.",
		}, []string{"outcome"}),
		AdjustDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_adjust",
			Name:      "adjust_duration_seconds",
			Help:      "Duration of a complete adjustment request, including the external routine.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		RowsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "climate_adjust",
			Name:      "adjust_rows_returned",
			Help:      "Rows returned per successful adjustment after truncation.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5},
		}),
		MissingFiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_adjust",
			Name:      "missing_files_total",
			Help:      "Requests rejected because a required input file was missing, by file.",
		}, []string{"file"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_adjust",
			Name:      "adjust_in_flight",
			Help:      "Adjustment requests currently running.",
		}),
		AuditEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_adjust",
			Name:      "audit_events_total",
			Help:      "Adjustment audit events by publish outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.AdjustRequests,
		m.AdjustDuration,
		m.RowsReturned,
		m.MissingFiles,
		m.InFlight,
		m.AuditEvents,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		AdjustRequests: prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_adjust", Name: "adjust_requests_total"}, []string{"outcome"}),
		AdjustDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_adjust", Name: "adjust_duration_seconds"}),
		RowsReturned:   prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "climate_adjust", Name: "adjust_rows_returned"}),
		MissingFiles:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_adjust", Name: "missing_files_total"}, []string{"file"}),
		InFlight:       prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "climate_adjust", Name: "adjust_in_flight"}),
		AuditEvents:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "climate_adjust", Name: "audit_events_total"}, []string{"outcome"}),
	}
}
