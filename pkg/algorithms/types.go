package algorithms

import (
	"fmt"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/validation"
)

// TopK selects how many of the most populous communities to keep. Exactly
// one of Count or Proportion is set; use TopKCount or TopKProportion.
type TopK struct {
	Count      int
	Proportion float64
}

// TopKCount keeps the n most populous communities.
func TopKCount(n int) TopK {
	return TopK{Count: n}
}

// TopKProportion keeps round(p × communities) communities, p in (0, 1].
func TopKProportion(p float64) TopK {
	return TopK{Proportion: p}
}

// Validate checks that exactly one selector is set and in range.
func (k TopK) Validate() error {
	switch {
	case k.Count != 0 && k.Proportion != 0:
		return fmt.Errorf("top-k: count and proportion are mutually exclusive")
	case k.Proportion != 0:
		return validation.Proportion("top-k", k.Proportion)
	case k.Count <= 0:
		return fmt.Errorf("top-k: count must be positive, got %d", k.Count)
	}
	return nil
}

// Sample selects which members of each community take part in matching or
// intermediary detection: the top Proportion by prominence, or the members
// named in Allowlist.
type Sample struct {
	Proportion float64
	Allowlist  []string
}

// SampleProportion samples the top p of each community by prominence.
func SampleProportion(p float64) Sample {
	return Sample{Proportion: p}
}

// SampleAllowlist samples only the named nodes.
func SampleAllowlist(nodes ...string) Sample {
	return Sample{Allowlist: nodes}
}

// Validate checks that exactly one sampling mode is set.
func (s Sample) Validate() error {
	switch {
	case len(s.Allowlist) > 0 && s.Proportion != 0:
		return fmt.Errorf("sample: proportion and allowlist are mutually exclusive")
	case len(s.Allowlist) > 0:
		return validation.Allowlist(s.Allowlist)
	default:
		return validation.Proportion("sample", s.Proportion)
	}
}

// Member is one node retained by the partition filter.
type Member struct {
	Node       string
	Community  graph.CommunityID
	Prominence int // in-degree on the subgraph induced by the selection
}

// CommunityRank describes one selected community.
type CommunityRank struct {
	ID         graph.CommunityID
	Population int
	Rank       int // 0 is the most populous
}

// PartitionSummary reports how much of the network the selection covers.
type PartitionSummary struct {
	TotalCommunities int
	TotalNodes       int
	SelectedNodes    int
	NodeProportion   float64 // selected nodes / labelled nodes
	EdgeProportion   float64 // unweighted induced edges / unweighted edges
	Modularity       float64 // as reported by the detector
}

// CommunitySet is the output of the partition filter: the top-k communities
// and their members ranked by prominence.
type CommunitySet struct {
	Communities []CommunityRank
	Members     []Member // sorted by prominence desc
	Summary     PartitionSummary

	rank        map[graph.CommunityID]int
	memberOf    map[string]graph.CommunityID
	prominence  map[string]int
	byCommunity map[graph.CommunityID][]Member
}

// Contains reports whether community id was selected.
func (s *CommunitySet) Contains(id graph.CommunityID) bool {
	_, ok := s.rank[id]
	return ok
}

// Rank returns the population rank of a selected community.
func (s *CommunitySet) Rank(id graph.CommunityID) (int, bool) {
	r, ok := s.rank[id]
	return r, ok
}

// CommunityOf returns the community of a retained node.
func (s *CommunitySet) CommunityOf(node string) (graph.CommunityID, bool) {
	c, ok := s.memberOf[node]
	return c, ok
}

// Prominence returns the prominence of a retained node, 0 if absent.
func (s *CommunitySet) Prominence(node string) int {
	return s.prominence[node]
}

// MembersOf returns the members of one community in prominence order. The
// slice is shared; callers must not modify it.
func (s *CommunitySet) MembersOf(id graph.CommunityID) []Member {
	return s.byCommunity[id]
}

// IDs returns the selected community IDs in rank order.
func (s *CommunitySet) IDs() []graph.CommunityID {
	ids := make([]graph.CommunityID, len(s.Communities))
	for i, c := range s.Communities {
		ids[i] = c.ID
	}
	return ids
}

// NewCommunitySet rebuilds a CommunitySet from previously computed members,
// e.g. a node list loaded from disk. Communities are ranked by member count.
func NewCommunitySet(members []Member) (*CommunitySet, error) {
	if len(members) == 0 {
		return nil, NewError("NewCommunitySet").Context("no members").Cause(ErrInvalidPartition).Err()
	}

	assignments := make([]graph.Assignment, len(members))
	for i, m := range members {
		assignments[i] = graph.Assignment{Node: m.Node, Community: m.Community}
	}
	p, err := graph.NewPartition(assignments, 0)
	if err != nil {
		return nil, NewError("NewCommunitySet").Cause(err).Err()
	}

	ranked := rankCommunities(p.Populations())
	set := newCommunitySet(ranked)
	set.Members = make([]Member, len(members))
	copy(set.Members, members)
	for _, m := range set.Members {
		set.memberOf[m.Node] = m.Community
		set.prominence[m.Node] = m.Prominence
	}
	set.groupMembers()
	set.Summary = PartitionSummary{
		TotalCommunities: len(ranked),
		TotalNodes:       p.Len(),
		SelectedNodes:    p.Len(),
		NodeProportion:   1,
	}
	return set, nil
}

func newCommunitySet(ranked []CommunityRank) *CommunitySet {
	set := &CommunitySet{
		Communities: ranked,
		rank:        make(map[graph.CommunityID]int, len(ranked)),
		memberOf:    make(map[string]graph.CommunityID),
		prominence:  make(map[string]int),
	}
	for _, c := range ranked {
		set.rank[c.ID] = c.Rank
	}
	return set
}

// groupMembers sorts the members and groups them by community.
func (s *CommunitySet) groupMembers() {
	sortMembers(s.Members, s.rank)
	s.byCommunity = make(map[graph.CommunityID][]Member, len(s.Communities))
	for _, m := range s.Members {
		s.byCommunity[m.Community] = append(s.byCommunity[m.Community], m)
	}
}
