package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIngestMetrics() {
	r.EdgesIngested = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_edges_ingested_total",
			Help: "Edges read from edge sources",
		},
		[]string{"source"}, // file, s3, postgres
	)

	r.BytesIngested = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_bytes_ingested_total",
			Help: "Raw bytes read from edge and partition sources",
		},
		[]string{"source"},
	)

	r.IngestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tsm_ingest_duration_seconds",
			Help:    "Time spent loading one input in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"source"},
	)

	r.PartitionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_partitions_total",
			Help: "Partitions loaded or detected",
		},
		[]string{"origin"}, // file, detected
	)
}
