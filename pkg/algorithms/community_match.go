package algorithms

import (
	"cmp"
	"slices"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/validation"
)

// MatchOptions configures cross-snapshot community matching.
type MatchOptions struct {
	Sample   Sample
	Weighted bool // weight nodes by prominence pooled from both snapshots
	// MatchThreshold is the minimum score for a best match to be retained.
	MatchThreshold float64 `validate:"gte=0,lte=1"`
	// CooccurrenceThreshold is the lower score at which a pair counts
	// towards divergence or convergence.
	CooccurrenceThreshold float64 `validate:"gte=0,lte=1,ltefield=MatchThreshold"`
	// RatioThreshold, when positive, additionally requires a secondary
	// pair to score at least this fraction of the community's best score.
	RatioThreshold float64 `validate:"gte=0,lte=1"`
}

// DefaultMatchOptions compares the top 1% of each community, weighted by
// prominence, and keeps matches of at least 0.3.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Sample:                SampleProportion(0.01),
		Weighted:              true,
		MatchThreshold:        0.3,
		CooccurrenceThreshold: 0.1,
	}
}

// PairScore is the Jaccard score of one A-side and one B-side community.
type PairScore struct {
	A     graph.CommunityID
	B     graph.CommunityID
	Score float64
}

// Match is a retained best match with the sampled nodes both sides share.
type Match struct {
	A           graph.CommunityID
	B           graph.CommunityID
	Score       float64
	SharedNodes []string
}

// Pattern names one community and the counterparts it matches strongly.
type Pattern struct {
	Community    graph.CommunityID
	Counterparts []graph.CommunityID
}

// MatchResult is the outcome of comparing two community sets.
type MatchResult struct {
	Pairs      []PairScore // every nonzero pair, A rank order then score desc
	Best       []Match     // best match per A community, when >= MatchThreshold
	Divergent  []Pattern   // A communities mapping onto several B communities
	Convergent []Pattern   // B communities absorbing several A communities

	// QualifyingA lists, per A community, the B communities scoring at
	// least CooccurrenceThreshold; QualifyingB is the converse.
	QualifyingA map[graph.CommunityID][]graph.CommunityID
	QualifyingB map[graph.CommunityID][]graph.CommunityID

	SkippedA []graph.CommunityID // communities whose sample was empty
	SkippedB []graph.CommunityID
	Options  MatchOptions
}

// Score returns the score of pair (a, b), 0 when not recorded.
func (r *MatchResult) Score(a, b graph.CommunityID) float64 {
	for _, p := range r.Pairs {
		if p.A == a && p.B == b {
			return p.Score
		}
	}
	return 0
}

// BestFor returns the retained best match of an A community.
func (r *MatchResult) BestFor(a graph.CommunityID) (Match, bool) {
	for _, m := range r.Best {
		if m.A == a {
			return m, true
		}
	}
	return Match{}, false
}

// MatchCommunities compares every community of snapshot A with every
// community of snapshot B by Jaccard similarity of their samples and flags
// divergence (one A community splitting across several B communities) and
// convergence (several A communities merging into one B community).
func MatchCommunities(a, b *CommunitySet, opts MatchOptions) (*MatchResult, error) {
	const op = "MatchCommunities"

	if a == nil || len(a.Communities) == 0 {
		return nil, NewError(op).Context("A side has no communities").Cause(ErrEmptyCommunity).Err()
	}
	if b == nil || len(b.Communities) == 0 {
		return nil, NewError(op).Context("B side has no communities").Cause(ErrEmptyCommunity).Err()
	}
	if err := opts.Sample.Validate(); err != nil {
		return nil, invalidOption(op, err)
	}
	if err := validation.Struct(opts); err != nil {
		return nil, invalidOption(op, err)
	}

	s := newSampler(opts.Sample)
	samplesA, skippedA := s.sampleAll(a)
	samplesB, skippedB := s.sampleAll(b)
	if len(samplesA) == 0 {
		return nil, NewError(op).Context("A side").Cause(ErrEmptySample).Err()
	}
	if len(samplesB) == 0 {
		return nil, NewError(op).Context("B side").Cause(ErrEmptySample).Err()
	}

	weight := func(node string) int {
		return a.Prominence(node) + b.Prominence(node)
	}

	result := &MatchResult{
		QualifyingA: make(map[graph.CommunityID][]graph.CommunityID),
		QualifyingB: make(map[graph.CommunityID][]graph.CommunityID),
		SkippedA:    skippedA,
		SkippedB:    skippedB,
		Options:     opts,
	}

	for _, ca := range a.Communities {
		sampleA, ok := samplesA[ca.ID]
		if !ok {
			continue
		}
		nodesA := nodeSet(sampleA)

		var rowPairs []PairScore
		best := PairScore{A: ca.ID}
		for _, cb := range b.Communities {
			sampleB, ok := samplesB[cb.ID]
			if !ok {
				continue
			}
			score := jaccard(nodesA, nodeSet(sampleB), opts.Weighted, weight)
			if score <= 0 {
				continue
			}
			pair := PairScore{A: ca.ID, B: cb.ID, Score: score}
			rowPairs = append(rowPairs, pair)
			if score > best.Score {
				best = pair
			}
		}
		if len(rowPairs) == 0 {
			continue
		}

		slices.SortStableFunc(rowPairs, func(x, y PairScore) int {
			return cmp.Compare(y.Score, x.Score)
		})
		result.Pairs = append(result.Pairs, rowPairs...)

		if best.Score >= opts.MatchThreshold {
			result.Best = append(result.Best, Match{
				A:           best.A,
				B:           best.B,
				Score:       best.Score,
				SharedNodes: sharedNodes(nodesA, nodeSet(samplesB[best.B]), weight),
			})
		}

		var counterparts []graph.CommunityID
		for _, p := range rowPairs {
			if p.Score < opts.CooccurrenceThreshold {
				continue
			}
			result.QualifyingA[ca.ID] = append(result.QualifyingA[ca.ID], p.B)
			result.QualifyingB[p.B] = append(result.QualifyingB[p.B], ca.ID)
			if opts.RatioThreshold > 0 && p.Score < opts.RatioThreshold*best.Score {
				continue
			}
			counterparts = append(counterparts, p.B)
		}
		if best.Score >= opts.CooccurrenceThreshold && len(counterparts) >= 2 {
			result.Divergent = append(result.Divergent, Pattern{Community: ca.ID, Counterparts: counterparts})
		}
	}

	for _, cb := range b.Communities {
		sources := result.QualifyingB[cb.ID]
		if len(sources) < 2 {
			continue
		}
		counterparts := sources
		if opts.RatioThreshold > 0 {
			counterparts = nil
			top := 0.0
			for _, src := range sources {
				top = max(top, result.Score(src, cb.ID))
			}
			for _, src := range sources {
				if result.Score(src, cb.ID) >= opts.RatioThreshold*top {
					counterparts = append(counterparts, src)
				}
			}
		}
		if len(counterparts) >= 2 {
			result.Convergent = append(result.Convergent, Pattern{Community: cb.ID, Counterparts: counterparts})
		}
	}

	return result, nil
}

func nodeSet(members []Member) map[string]struct{} {
	set := make(map[string]struct{}, len(members))
	for _, m := range members {
		set[m.Node] = struct{}{}
	}
	return set
}

// jaccard returns |A∩B| / |A∪B|, or the weighted form Σw(A∩B) / Σw(A∪B).
// A weighted union of zero falls back to the unweighted ratio.
func jaccard(a, b map[string]struct{}, weighted bool, weight func(string) int) float64 {
	inter, union := 0, 0
	interW, unionW := 0, 0
	for n := range a {
		union++
		unionW += weight(n)
		if _, ok := b[n]; ok {
			inter++
			interW += weight(n)
		}
	}
	for n := range b {
		if _, ok := a[n]; !ok {
			union++
			unionW += weight(n)
		}
	}
	if union == 0 {
		return 0
	}
	if weighted && unionW > 0 {
		return float64(interW) / float64(unionW)
	}
	return float64(inter) / float64(union)
}

// sharedNodes returns the intersection ordered by pooled weight desc, then name.
func sharedNodes(a, b map[string]struct{}, weight func(string) int) []string {
	var shared []string
	for n := range a {
		if _, ok := b[n]; ok {
			shared = append(shared, n)
		}
	}
	slices.SortFunc(shared, func(x, y string) int {
		if c := cmp.Compare(weight(y), weight(x)); c != 0 {
			return c
		}
		return cmp.Compare(x, y)
	})
	return shared
}
