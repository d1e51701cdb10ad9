package algorithms

import (
	"testing"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// buildPartition creates a partition from node → community pairs
func buildPartition(t *testing.T, assign map[string]string) *graph.Partition {
	t.Helper()

	m := make(map[string]graph.CommunityID, len(assign))
	for node, c := range assign {
		m[node] = graph.CommunityID(c)
	}
	p, err := graph.PartitionFromMap(m, 0)
	if err != nil {
		t.Fatalf("Failed to build partition: %v", err)
	}
	return p
}

// edges builds an edge list from source/target pairs
func edges(pairs ...string) graph.EdgeList {
	out := make(graph.EdgeList, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, graph.Edge{Source: pairs[i], Target: pairs[i+1]})
	}
	return out
}

// repeat returns n copies of the edge source → target
func repeat(source, target string, n int) graph.EdgeList {
	out := make(graph.EdgeList, n)
	for i := range out {
		out[i] = graph.Edge{Source: source, Target: target}
	}
	return out
}

// selectAll runs the partition filter keeping every community
func selectAll(t *testing.T, e graph.EdgeList, assign map[string]string) *CommunitySet {
	t.Helper()

	set, err := SelectTopCommunities(e, buildPartition(t, assign), TopKProportion(1))
	if err != nil {
		t.Fatalf("SelectTopCommunities failed: %v", err)
	}
	return set
}

// communitySet builds a community set directly from members
func communitySet(t *testing.T, members ...Member) *CommunitySet {
	t.Helper()

	set, err := NewCommunitySet(members)
	if err != nil {
		t.Fatalf("NewCommunitySet failed: %v", err)
	}
	return set
}

func member(node, community string, prominence int) Member {
	return Member{Node: node, Community: graph.CommunityID(community), Prominence: prominence}
}

func ids(values ...string) []graph.CommunityID {
	out := make([]graph.CommunityID, len(values))
	for i, v := range values {
		out[i] = graph.CommunityID(v)
	}
	return out
}
