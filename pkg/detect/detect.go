// Package detect produces community partitions for snapshots that arrive
// without one.
package detect

import (
	"context"
	"errors"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// ErrNoEdges is returned when there is nothing to partition.
var ErrNoEdges = errors.New("detect: edge list is empty")

// Detector assigns every node of a snapshot to one community.
type Detector interface {
	Detect(ctx context.Context, edges graph.EdgeList) (*graph.Partition, error)
}

// undirected is the simple undirected projection of a directed edge list.
// Repeated ties, reciprocal ties and self-loops collapse away.
type undirected struct {
	nodes     []string
	neighbors map[string][]string
	edges     int
}

func project(edges graph.EdgeList) *undirected {
	g := &undirected{neighbors: make(map[string][]string)}
	seen := make(map[[2]string]struct{}, len(edges))
	for _, e := range edges {
		if e.Source == e.Target {
			continue
		}
		key := [2]string{e.Source, e.Target}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		g.neighbors[key[0]] = append(g.neighbors[key[0]], key[1])
		g.neighbors[key[1]] = append(g.neighbors[key[1]], key[0])
		g.edges++
	}
	// isolated self-loop nodes still get a community
	for _, n := range edges.Nodes() {
		if _, ok := g.neighbors[n]; !ok {
			g.neighbors[n] = nil
		}
		g.nodes = append(g.nodes, n)
	}
	return g
}
