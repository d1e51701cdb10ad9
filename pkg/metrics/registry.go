package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all metrics recorded by analysis runs
type Registry struct {
	// Run Metrics
	RunsTotal     *prometheus.CounterVec
	RunDuration   *prometheus.HistogramVec
	StageDuration *prometheus.HistogramVec

	// Analysis Metrics
	CommunitiesSelected *prometheus.GaugeVec
	NodesSelected       *prometheus.GaugeVec
	TiesTotal           *prometheus.CounterVec
	MeanEI              *prometheus.GaugeVec
	MatchesTotal        *prometheus.CounterVec
	SkippedCommunities  *prometheus.CounterVec
	IntermediariesTotal prometheus.Counter

	// Ingest Metrics
	EdgesIngested   *prometheus.CounterVec
	BytesIngested   *prometheus.CounterVec
	IngestDuration  *prometheus.HistogramVec
	PartitionsTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every metric registered, plus the Go
// runtime collector
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initRunMetrics()
	r.initAnalysisMetrics()
	r.initIngestMetrics()
	r.registry.MustRegister(collectors.NewGoCollector())

	return r
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile dumps the current values in the text exposition format,
// for pickup by a node exporter textfile collector
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
