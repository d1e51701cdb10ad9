package algorithms

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/validation"
)

// BridgeOptions configures intermediary detection.
type BridgeOptions struct {
	Sample Sample
	// Ratio is the minimum second-highest / highest received-tie ratio.
	// Zero accepts any node receiving from at least two communities, one of
	// them not its own.
	Ratio float64 `validate:"gte=0,lte=1"`
	// ZeroPad lists every selected community in each distribution.
	ZeroPad    bool
	Unweighted bool
}

// DefaultBridgeOptions samples the top 10% of each community and requires
// the runner-up community to send at least half as many ties as the leader.
func DefaultBridgeOptions() BridgeOptions {
	return BridgeOptions{
		Sample: SampleProportion(0.1),
		Ratio:  0.5,
	}
}

// CommunityCount is a number of received ties from one community.
type CommunityCount struct {
	Community graph.CommunityID
	Count     int
}

// BridgeRecord describes a node whose incoming ties span communities.
type BridgeRecord struct {
	Node         string
	Community    graph.CommunityID
	Total        int
	Distribution []CommunityCount // count desc, then community rank
}

// Counts returns the distribution as a map.
func (r BridgeRecord) Counts() map[graph.CommunityID]int {
	m := make(map[graph.CommunityID]int, len(r.Distribution))
	for _, c := range r.Distribution {
		m[c.Community] = c.Count
	}
	return m
}

// FindIntermediaries returns the sampled nodes whose incoming ties from
// selected communities are split across at least two communities, sorted
// by total received ties.
func FindIntermediaries(set *CommunitySet, edges graph.EdgeList, opts BridgeOptions) ([]BridgeRecord, error) {
	const op = "FindIntermediaries"

	if set == nil || len(set.Communities) == 0 {
		return nil, NewError(op).Context("no communities selected").Cause(ErrEmptyCommunity).Err()
	}
	if err := opts.Sample.Validate(); err != nil {
		return nil, invalidOption(op, err)
	}
	if err := validation.Struct(opts); err != nil {
		return nil, invalidOption(op, err)
	}

	if opts.Unweighted {
		edges = edges.Dedupe()
	}
	idx := graph.NewIndex(edges)

	samples, _ := newSampler(opts.Sample).sampleAll(set)
	if len(samples) == 0 {
		return nil, NewError(op).Cause(ErrEmptySample).Err()
	}

	var bridges []BridgeRecord
	for _, c := range set.Communities {
		for _, m := range samples[c.ID] {
			rec, ok := bridgeRecord(set, idx, m, opts)
			if ok {
				bridges = append(bridges, rec)
			}
		}
	}

	slices.SortFunc(bridges, func(x, y BridgeRecord) int {
		if c := cmp.Compare(y.Total, x.Total); c != 0 {
			return c
		}
		return cmp.Compare(x.Node, y.Node)
	})
	return bridges, nil
}

func bridgeRecord(set *CommunitySet, idx *graph.Index, m Member, opts BridgeOptions) (BridgeRecord, bool) {
	received := make(map[graph.CommunityID]int)
	for sender, n := range idx.Incoming(m.Node) {
		if c, ok := set.CommunityOf(sender); ok {
			received[c] += n
		}
	}
	if len(received) == 0 {
		return BridgeRecord{}, false
	}

	rec := BridgeRecord{Node: m.Node, Community: m.Community}
	crossCommunity := false
	for c, n := range received {
		rec.Distribution = append(rec.Distribution, CommunityCount{Community: c, Count: n})
		rec.Total += n
		if c != m.Community {
			crossCommunity = true
		}
	}
	byRank := func(x, y CommunityCount) int {
		if c := cmp.Compare(y.Count, x.Count); c != 0 {
			return c
		}
		rx, _ := set.Rank(x.Community)
		ry, _ := set.Rank(y.Community)
		return cmp.Compare(rx, ry)
	}
	slices.SortFunc(rec.Distribution, byRank)

	if !qualifies(rec.Distribution, crossCommunity, opts.Ratio) {
		return BridgeRecord{}, false
	}

	if opts.ZeroPad {
		for _, c := range set.Communities {
			if _, ok := received[c.ID]; !ok {
				rec.Distribution = append(rec.Distribution, CommunityCount{Community: c.ID})
			}
		}
	}
	return rec, true
}

// qualifies applies the bridge rule to a distribution sorted by count desc:
// at least two contributing communities, the runner-up within ratio of the
// leader. A zero ratio drops the runner-up test only.
func qualifies(dist []CommunityCount, crossCommunity bool, ratio float64) bool {
	if len(dist) < 2 {
		return false
	}
	if ratio == 0 {
		return crossCommunity
	}
	return float64(dist[1].Count) >= ratio*float64(dist[0].Count)
}
