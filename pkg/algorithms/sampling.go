package algorithms

import (
	"math"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// sampler draws the per-community samples used by matching and
// intermediary detection.
type sampler struct {
	opts    Sample
	allowed map[string]struct{}
}

func newSampler(opts Sample) *sampler {
	s := &sampler{opts: opts}
	if len(opts.Allowlist) > 0 {
		s.allowed = make(map[string]struct{}, len(opts.Allowlist))
		for _, n := range opts.Allowlist {
			s.allowed[n] = struct{}{}
		}
	}
	return s
}

// sample returns the members of one community chosen by the sampling options,
// in prominence order. Proportional samples keep floor(p × size) members and
// never fewer than one.
func (s *sampler) sample(set *CommunitySet, id graph.CommunityID) []Member {
	members := set.MembersOf(id)
	if len(members) == 0 {
		return nil
	}

	if s.allowed != nil {
		out := make([]Member, 0, len(members))
		for _, m := range members {
			if _, ok := s.allowed[m.Node]; ok {
				out = append(out, m)
			}
		}
		return out
	}

	n := int(math.Floor(s.opts.Proportion * float64(len(members))))
	if n < 1 {
		n = 1
	}
	return members[:n:n]
}

// sampleAll samples every selected community and returns the samples keyed
// by community, plus the communities whose sample came out empty.
func (s *sampler) sampleAll(set *CommunitySet) (map[graph.CommunityID][]Member, []graph.CommunityID) {
	samples := make(map[graph.CommunityID][]Member, len(set.Communities))
	var empty []graph.CommunityID
	for _, c := range set.Communities {
		sample := s.sample(set, c.ID)
		if len(sample) == 0 {
			empty = append(empty, c.ID)
			continue
		}
		samples[c.ID] = sample
	}
	return samples, empty
}
