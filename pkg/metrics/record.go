package metrics

import (
	"time"
)

// RecordRun records a finished analysis run
func (r *Registry) RecordRun(kind, status string, duration time.Duration) {
	r.RunsTotal.WithLabelValues(kind, status).Inc()
	r.RunDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordStage records the duration of one analysis stage
func (r *Registry) RecordStage(stage string, duration time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordSelection records the partition filter output of one snapshot
func (r *Registry) RecordSelection(snapshot string, communities, nodes int) {
	r.CommunitiesSelected.WithLabelValues(snapshot).Set(float64(communities))
	r.NodesSelected.WithLabelValues(snapshot).Set(float64(nodes))
}

// RecordTies records classified ties and the resulting mean EI index
func (r *Registry) RecordTies(snapshot string, internal, external int, meanEI float64) {
	r.TiesTotal.WithLabelValues("internal").Add(float64(internal))
	r.TiesTotal.WithLabelValues("external").Add(float64(external))
	r.MeanEI.WithLabelValues(snapshot).Set(meanEI)
}

// RecordMatches records the outcome of a cross-snapshot comparison
func (r *Registry) RecordMatches(best, divergent, convergent int) {
	r.MatchesTotal.WithLabelValues("best").Add(float64(best))
	r.MatchesTotal.WithLabelValues("divergent").Add(float64(divergent))
	r.MatchesTotal.WithLabelValues("convergent").Add(float64(convergent))
}

// RecordSkipped records communities dropped for an empty sample
func (r *Registry) RecordSkipped(snapshot string, n int) {
	if n > 0 {
		r.SkippedCommunities.WithLabelValues(snapshot).Add(float64(n))
	}
}

// RecordIntermediaries records detected intermediary nodes
func (r *Registry) RecordIntermediaries(n int) {
	r.IntermediariesTotal.Add(float64(n))
}

// RecordIngest records one loaded input
func (r *Registry) RecordIngest(source string, edges int, bytes int64, duration time.Duration) {
	r.EdgesIngested.WithLabelValues(source).Add(float64(edges))
	if bytes > 0 {
		r.BytesIngested.WithLabelValues(source).Add(float64(bytes))
	}
	r.IngestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordPartition records a partition by origin
func (r *Registry) RecordPartition(origin string) {
	r.PartitionsTotal.WithLabelValues(origin).Inc()
}
