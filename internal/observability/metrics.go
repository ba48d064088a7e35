package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// specimen mapping pipeline.
type Metrics struct {
	DatasetsLoaded prometheus.Counter
	RowsValidated  prometheus.Counter
	RowsRejected   *prometheus.CounterVec // labels: reason
	DatasetLoaded  prometheus.Gauge       // 1 when a dataset is resident

	MapsGenerated   prometheus.Counter
	EmptySelections prometheus.Counter
	UnmatchedPoints prometheus.Counter
	RenderDuration  prometheus.Histogram

	Exports *prometheus.CounterVec // labels: format
}

// NewMetrics creates and registers all pipeline metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		DatasetsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "datasets_loaded_total",
			Help:      "Total successfully loaded specimen workbooks.",
		}),
		RowsValidated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "rows_validated_total",
			Help:      "Total input rows that passed validation.",
		}),
		RowsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "rows_rejected_total",
			Help:      "Input rows rejected during validation, by reason.",
		}, []string{"reason"}),
		DatasetLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "specimen_mapper",
			Name:      "dataset_loaded",
			Help:      "1 when a validated dataset is resident, 0 otherwise.",
		}),
		MapsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "maps_generated_total",
			Help:      "Total map pairs rendered.",
		}),
		EmptySelections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "empty_selections_total",
			Help:      "Map requests whose taxonomy selection matched no records.",
		}),
		UnmatchedPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "unmatched_points_total",
			Help:      "In-region points that landed in no county polygon.",
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "specimen_mapper",
			Name:      "render_duration_seconds",
			Help:      "Duration of a complete aggregate-and-render cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "specimen_mapper",
			Name:      "exports_total",
			Help:      "Export requests by format.",
		}, []string{"format"}),
	}

	prometheus.MustRegister(
		m.DatasetsLoaded,
		m.RowsValidated,
		m.RowsRejected,
		m.DatasetLoaded,
		m.MapsGenerated,
		m.EmptySelections,
		m.UnmatchedPoints,
		m.RenderDuration,
		m.Exports,
	)

	return m
}

// NewMetricsForTesting creates Metrics without touching the default registry
// to avoid "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		DatasetsLoaded:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "datasets_loaded_total"}),
		RowsValidated:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "rows_validated_total"}),
		RowsRejected:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "rows_rejected_total"}, []string{"reason"}),
		DatasetLoaded:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "specimen_mapper", Name: "dataset_loaded"}),
		MapsGenerated:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "maps_generated_total"}),
		EmptySelections: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "empty_selections_total"}),
		UnmatchedPoints: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "unmatched_points_total"}),
		RenderDuration:  prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "specimen_mapper", Name: "render_duration_seconds"}),
		Exports:         prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "specimen_mapper", Name: "exports_total"}, []string{"format"}),
	}
}
