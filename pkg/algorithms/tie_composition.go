package algorithms

import (
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// TieClass classifies a tie relative to the selected communities.
type TieClass int

const (
	TieInternal TieClass = iota // both endpoints in the same community
	TieExternal                 // endpoints in different communities
)

func (c TieClass) String() string {
	if c == TieInternal {
		return "internal"
	}
	return "external"
}

// TieScope controls which ties count as external.
type TieScope int

const (
	// ScopeAll counts ties between a selected community and any other node,
	// including nodes outside the selection or without a label.
	ScopeAll TieScope = iota
	// ScopeSelected counts only ties whose endpoints are both selected.
	ScopeSelected
)

// DegeneratePolicy decides what happens to a community with zero ties,
// whose EI index is undefined.
type DegeneratePolicy int

const (
	DegenerateFail DegeneratePolicy = iota // return ErrDegenerateTieCount
	DegenerateSkip                         // report with Defined=false
)

// TieOptions configures the tie composition analysis.
type TieOptions struct {
	Unweighted bool // collapse repeated ties before counting
	Scope      TieScope
	Degenerate DegeneratePolicy
}

// DefaultTieOptions counts unweighted ties against every other node and
// fails on communities without ties.
func DefaultTieOptions() TieOptions {
	return TieOptions{
		Unweighted: true,
		Scope:      ScopeAll,
		Degenerate: DegenerateFail,
	}
}

// TieRecord is an edge annotated with the selected community of each
// endpoint. An empty community means the endpoint is outside the selection.
type TieRecord struct {
	Edge            graph.Edge
	SourceCommunity graph.CommunityID
	TargetCommunity graph.CommunityID
	Class           TieClass
}

// Selected reports whether both endpoints belong to selected communities.
func (r TieRecord) Selected() bool {
	return r.SourceCommunity != "" && r.TargetCommunity != ""
}

// CommunityTies holds the tie counts and EI index of one community.
type CommunityTies struct {
	ID       graph.CommunityID
	Internal int
	Sent     int // external ties to other selected communities
	Received int // external ties from other selected communities
	Outside  int // external ties with nodes outside the selection
	EI       float64
	Defined  bool // false when the community has no ties
}

// External returns all external ties.
func (c CommunityTies) External() int {
	return c.Sent + c.Received + c.Outside
}

// Total returns internal plus external ties.
func (c CommunityTies) Total() int {
	return c.Internal + c.External()
}

// TieComposition is the result of the tie composition analysis.
type TieComposition struct {
	Communities []CommunityTies // in community rank order
	Records     []TieRecord
	MeanEI      float64 // mean over communities with a defined EI
	Options     TieOptions

	position map[graph.CommunityID]int
}

// Community returns the counts for one community.
func (tc *TieComposition) Community(id graph.CommunityID) (CommunityTies, bool) {
	i, ok := tc.position[id]
	if !ok {
		return CommunityTies{}, false
	}
	return tc.Communities[i], true
}

// ComputeTieComposition classifies every tie touching a selected community
// as internal or external and derives each community's EI index,
// (external − internal) / (external + internal).
func ComputeTieComposition(set *CommunitySet, edges graph.EdgeList, opts TieOptions) (*TieComposition, error) {
	const op = "ComputeTieComposition"

	if set == nil || len(set.Communities) == 0 {
		return nil, NewError(op).Context("no communities selected").Cause(ErrEmptyCommunity).Err()
	}
	if opts.Unweighted {
		edges = edges.Dedupe()
	}

	tc := &TieComposition{
		Communities: make([]CommunityTies, len(set.Communities)),
		Options:     opts,
		position:    make(map[graph.CommunityID]int, len(set.Communities)),
	}
	for i, c := range set.Communities {
		tc.Communities[i] = CommunityTies{ID: c.ID}
		tc.position[c.ID] = i
	}

	for _, e := range edges {
		src, _ := set.CommunityOf(e.Source)
		dst, _ := set.CommunityOf(e.Target)
		if src == "" && dst == "" {
			continue
		}
		if opts.Scope == ScopeSelected && (src == "" || dst == "") {
			continue
		}

		rec := TieRecord{Edge: e, SourceCommunity: src, TargetCommunity: dst, Class: TieExternal}
		switch {
		case src == dst:
			rec.Class = TieInternal
			tc.Communities[tc.position[src]].Internal++
		case src != "" && dst != "":
			tc.Communities[tc.position[src]].Sent++
			tc.Communities[tc.position[dst]].Received++
		case src != "":
			tc.Communities[tc.position[src]].Outside++
		default:
			tc.Communities[tc.position[dst]].Outside++
		}
		tc.Records = append(tc.Records, rec)
	}

	defined := 0
	sum := 0.0
	for i := range tc.Communities {
		c := &tc.Communities[i]
		total := c.Total()
		if total == 0 {
			if opts.Degenerate == DegenerateFail {
				return nil, NewError(op).Community(c.ID).Cause(ErrDegenerateTieCount).Err()
			}
			continue
		}
		c.EI = float64(c.External()-c.Internal) / float64(total)
		c.Defined = true
		sum += c.EI
		defined++
	}
	if defined > 0 {
		tc.MeanEI = sum / float64(defined)
	}

	return tc, nil
}
