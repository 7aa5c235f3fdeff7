package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the memory subsystem
// and the sync ingest service.
type Metrics struct {
	IngestedRecords prometheus.Counter
	SkippedRecords  *prometheus.CounterVec
	IngestBatches   prometheus.Counter
	AuthFailures    prometheus.Counter
	TurnsPersisted  prometheus.Counter
	SystemNotes     prometheus.Counter
	JournalErrors   prometheus.Counter
	BrainErrors     *prometheus.CounterVec
	QueryLatency    prometheus.Histogram
	IngestBatchSize prometheus.Histogram
	WSObservers     prometheus.Gauge
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		IngestedRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_records_total",
			Help:      "Records merged into the memory store by the sync service.",
		}),
		SkippedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_records_total",
			Help:      "Batch lines skipped by reason.",
		}, []string{"reason"}),
		IngestBatches: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_batches_total",
			Help:      "Batches accepted by the sync service.",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Sync requests rejected for missing or wrong auth.",
		}),
		TurnsPersisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_persisted_total",
			Help:      "Conversational turns written to store and journal.",
		}),
		SystemNotes: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "system_notes_total",
			Help:      "System notes written to store and journal.",
		}),
		JournalErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_errors_total",
			Help:      "Failed journal appends. These are durability losses.",
		}),
		BrainErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "brain_errors_total",
			Help:      "Brain adapter errors by code.",
		}, []string{"code"}),
		QueryLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "memory_query_latency_ms",
			Help:      "Memory store similarity query latency in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		IngestBatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingest_batch_records",
			Help:      "Records ingested per batch.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000},
		}),
		WSObservers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_observers",
			Help:      "Connected ingest event observers.",
		}),
	}
}

func (m *Metrics) ObserveQueryLatency(d time.Duration) {
	m.QueryLatency.Observe(float64(d) / float64(time.Millisecond))
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
