package detect

import (
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// Modularity returns Newman's modularity of a partition over the undirected
// projection of edges: Σ_c [ L_c/m − (d_c / 2m)² ], where L_c is the number
// of edges inside community c and d_c the total degree of its nodes. Nodes
// without a label are left out.
func Modularity(edges graph.EdgeList, p *graph.Partition) float64 {
	g := project(edges)
	if g.edges == 0 || p == nil {
		return 0
	}
	return g.modularity(func(n string) (graph.CommunityID, bool) {
		return p.CommunityOf(n)
	})
}

func (g *undirected) modularity(communityOf func(string) (graph.CommunityID, bool)) float64 {
	internal := make(map[graph.CommunityID]int)
	degree := make(map[graph.CommunityID]int)
	for _, n := range g.nodes {
		c, ok := communityOf(n)
		if !ok {
			continue
		}
		degree[c] += len(g.neighbors[n])
		for _, m := range g.neighbors[n] {
			if cm, ok := communityOf(m); ok && cm == c && n < m {
				internal[c]++
			}
		}
	}

	m := float64(g.edges)
	q := 0.0
	for c, d := range degree {
		share := float64(d) / (2 * m)
		q += float64(internal[c])/m - share*share
	}
	return q
}
