package detect

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// LabelPropagation detects communities by repeatedly giving each node the
// label most common among its neighbours, on the undirected projection of
// the snapshot. Visiting order is shuffled with Seed, so runs with the same
// seed and input produce the same partition.
type LabelPropagation struct {
	MaxIterations int
	Seed          uint64
}

// NewLabelPropagation returns a detector with the given iteration cap.
func NewLabelPropagation(maxIterations int, seed uint64) *LabelPropagation {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &LabelPropagation{MaxIterations: maxIterations, Seed: seed}
}

// Detect partitions the snapshot and records the partition's modularity.
// Community IDs are decimal integers numbered by descending size.
func (lp *LabelPropagation) Detect(ctx context.Context, edges graph.EdgeList) (*graph.Partition, error) {
	if len(edges) == 0 {
		return nil, ErrNoEdges
	}
	g := project(edges)

	// Each node starts in its own community
	labels := make(map[string]int, len(g.nodes))
	for i, n := range g.nodes {
		labels[n] = i
	}

	order := slices.Clone(g.nodes)
	rng := rand.New(rand.NewPCG(lp.Seed, lp.Seed^0x9e3779b97f4a7c15))

	for iter := 0; iter < max(lp.MaxIterations, 1); iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		changed := false
		for _, n := range order {
			best, ok := dominantLabel(g.neighbors[n], labels, labels[n])
			if ok && best != labels[n] {
				labels[n] = best
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	assignments := renumber(g.nodes, labels)
	p, err := graph.NewPartition(assignments, 0)
	if err != nil {
		return nil, err
	}
	q := g.modularity(p.CommunityOf)
	return graph.NewPartition(assignments, q)
}

// dominantLabel returns the most frequent neighbour label. The current label
// wins ties, otherwise the smallest label does.
func dominantLabel(neighbors []string, labels map[string]int, current int) (int, bool) {
	if len(neighbors) == 0 {
		return current, false
	}
	counts := make(map[int]int, len(neighbors))
	for _, m := range neighbors {
		counts[labels[m]]++
	}

	best, bestCount := current, counts[current]
	for label, c := range counts {
		if c > bestCount || (c == bestCount && best != current && label < best) {
			best, bestCount = label, c
		}
	}
	return best, true
}

// renumber maps raw labels to "0", "1", ... by descending community size,
// ties by the label's first node in input order.
func renumber(nodes []string, labels map[string]int) []graph.Assignment {
	size := make(map[int]int)
	first := make(map[int]int)
	for i, n := range nodes {
		l := labels[n]
		if _, ok := first[l]; !ok {
			first[l] = i
		}
		size[l]++
	}

	raw := make([]int, 0, len(size))
	for l := range size {
		raw = append(raw, l)
	}
	slices.SortFunc(raw, func(a, b int) int {
		if size[a] != size[b] {
			return size[b] - size[a]
		}
		return first[a] - first[b]
	})
	id := make(map[int]graph.CommunityID, len(raw))
	for i, l := range raw {
		id[l] = graph.CommunityID(strconv.Itoa(i))
	}

	out := make([]graph.Assignment, len(nodes))
	for i, n := range nodes {
		out[i] = graph.Assignment{Node: n, Community: id[labels[n]]}
	}
	return out
}
