package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BatchMetrics is safe to use through a nil pointer; every recorder is then a no-op.
type BatchMetrics struct {
	registry *prometheus.Registry

	documentTotal    *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	batchesInFlight  prometheus.Gauge
	summaryTotal     *prometheus.CounterVec
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	documentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbatch",
			Subsystem: "pipeline",
			Name:      "documents_total",
			Help:      "Total evaluated documents by entry status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cvbatch",
			Subsystem: "pipeline",
			Name:      "document_duration_seconds",
			Help:      "Extraction plus evaluation time per document by entry status.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)
	batchesInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cvbatch",
			Subsystem: "pipeline",
			Name:      "batches_in_flight",
			Help:      "Number of batches currently being evaluated.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	summaryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cvbatch",
			Subsystem: "synthesis",
			Name:      "summaries_total",
			Help:      "Total comparative summaries computed by status.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
		[]string{"status"},
	)

	registry.MustRegister(documentTotal, documentDuration, batchesInFlight, summaryTotal)

	return &BatchMetrics{
		registry:         registry,
		documentTotal:    documentTotal,
		documentDuration: documentDuration,
		batchesInFlight:  batchesInFlight,
		summaryTotal:     summaryTotal,
	}
}

func (m *BatchMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *BatchMetrics) StartBatch() {
	if m == nil {
		return
	}
	m.batchesInFlight.Inc()
}

func (m *BatchMetrics) FinishBatch() {
	if m == nil {
		return
	}
	m.batchesInFlight.Dec()
}

func (m *BatchMetrics) ObserveDocument(status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.documentTotal.WithLabelValues(status).Inc()
	m.documentDuration.WithLabelValues(status).Observe(duration.Seconds())
}

func (m *BatchMetrics) ObserveSummary(status string) {
	if m == nil {
		return
	}
	if status == "" {
		status = "unknown"
	}
	m.summaryTotal.WithLabelValues(status).Inc()
}
