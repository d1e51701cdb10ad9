package graph

// Index holds incoming adjacency built once per edge list, so callers never
// rescan the edges per node. Values are edge multiplicities.
type Index struct {
	in map[string]map[string]int
}

// NewIndex indexes edges by target.
func NewIndex(edges EdgeList) *Index {
	idx := &Index{in: make(map[string]map[string]int)}
	for _, e := range edges {
		if idx.in[e.Target] == nil {
			idx.in[e.Target] = make(map[string]int)
		}
		idx.in[e.Target][e.Source]++
	}
	return idx
}

// Incoming returns sender → tie count for ties pointing at node.
func (idx *Index) Incoming(node string) map[string]int {
	return idx.in[node]
}

// InNeighbours returns the number of distinct senders with a tie to node.
// Repeated ties count once.
func (idx *Index) InNeighbours(node string) int {
	return len(idx.in[node])
}
