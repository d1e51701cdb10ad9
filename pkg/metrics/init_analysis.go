package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initAnalysisMetrics() {
	r.CommunitiesSelected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tsm_communities_selected",
			Help: "Number of communities kept by the partition filter",
		},
		[]string{"snapshot"},
	)

	r.NodesSelected = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tsm_nodes_selected",
			Help: "Number of nodes in the selected communities",
		},
		[]string{"snapshot"},
	)

	r.TiesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_ties_total",
			Help: "Ties classified by the tie composition analysis",
		},
		[]string{"class"}, // internal, external
	)

	r.MeanEI = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tsm_mean_ei_index",
			Help: "Mean EI index over communities with at least one tie",
		},
		[]string{"snapshot"},
	)

	r.MatchesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_matches_total",
			Help: "Cross-snapshot matching outcomes",
		},
		[]string{"kind"}, // best, divergent, convergent
	)

	r.SkippedCommunities = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "tsm_skipped_communities_total",
			Help: "Communities left out because their sample was empty",
		},
		[]string{"snapshot"},
	)

	r.IntermediariesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "tsm_intermediaries_total",
			Help: "Nodes reported as intermediaries between communities",
		},
	)
}
