package algorithms

import (
	"cmp"
	"math"
	"slices"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// SelectTopCommunities keeps the k most populous communities of a partition
// and ranks their members by in-degree on the subgraph induced by the
// selection, counting each distinct sender once. Requesting more communities
// than exist selects all of them.
func SelectTopCommunities(edges graph.EdgeList, partition *graph.Partition, k TopK) (*CommunitySet, error) {
	const op = "SelectTopCommunities"

	if partition == nil || partition.Len() == 0 {
		return nil, NewError(op).Context("partition is empty").Cause(ErrInvalidPartition).Err()
	}
	if err := k.Validate(); err != nil {
		return nil, invalidOption(op, err)
	}

	populations := partition.Populations()
	ranked := rankCommunities(populations)
	ranked = ranked[:resolveTopK(k, len(ranked))]

	set := newCommunitySet(ranked)

	// Induced subgraph: both endpoints inside the selection
	selected := func(node string) bool {
		c, ok := partition.CommunityOf(node)
		return ok && set.Contains(c)
	}
	induced := make(graph.EdgeList, 0, len(edges))
	for _, e := range edges {
		if selected(e.Source) && selected(e.Target) {
			induced = append(induced, e)
		}
	}
	idx := graph.NewIndex(induced)

	for _, node := range partition.Nodes() {
		c, _ := partition.CommunityOf(node)
		if !set.Contains(c) {
			continue
		}
		prominence := idx.InNeighbours(node)
		set.Members = append(set.Members, Member{
			Node:       node,
			Community:  c,
			Prominence: prominence,
		})
		set.memberOf[node] = c
		set.prominence[node] = prominence
	}
	set.groupMembers()

	set.Summary = summarize(partition, edges, induced, len(populations), len(set.Members))
	return set, nil
}

// resolveTopK turns a count or proportion into a number of communities.
func resolveTopK(k TopK, total int) int {
	n := k.Count
	if k.Proportion != 0 {
		n = int(math.Round(k.Proportion * float64(total)))
		if n < 1 {
			n = 1
		}
	}
	if n > total {
		n = total
	}
	return n
}

// rankCommunities orders communities by population desc, then by ID.
func rankCommunities(populations map[graph.CommunityID]int) []CommunityRank {
	ranked := make([]CommunityRank, 0, len(populations))
	for id, pop := range populations {
		ranked = append(ranked, CommunityRank{ID: id, Population: pop})
	}
	slices.SortFunc(ranked, func(a, b CommunityRank) int {
		if c := cmp.Compare(b.Population, a.Population); c != 0 {
			return c
		}
		return graph.CompareCommunityIDs(a.ID, b.ID)
	})
	for i := range ranked {
		ranked[i].Rank = i
	}
	return ranked
}

// sortMembers orders by prominence desc, then community rank, then node.
func sortMembers(members []Member, rank map[graph.CommunityID]int) {
	slices.SortFunc(members, func(a, b Member) int {
		if c := cmp.Compare(b.Prominence, a.Prominence); c != 0 {
			return c
		}
		if c := cmp.Compare(rank[a.Community], rank[b.Community]); c != 0 {
			return c
		}
		return cmp.Compare(a.Node, b.Node)
	})
}

func summarize(p *graph.Partition, edges, induced graph.EdgeList, communities, selected int) PartitionSummary {
	s := PartitionSummary{
		TotalCommunities: communities,
		TotalNodes:       p.Len(),
		SelectedNodes:    selected,
		Modularity:       p.Modularity(),
	}
	if s.TotalNodes > 0 {
		s.NodeProportion = float64(selected) / float64(s.TotalNodes)
	}
	if all := len(edges.Dedupe()); all > 0 {
		s.EdgeProportion = float64(len(induced.Dedupe())) / float64(all)
	}
	return s
}
