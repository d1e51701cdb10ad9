package graph

import (
	"cmp"
	"strconv"
)

// CommunityID identifies a community within one Partition. IDs are opaque
// labels assigned by the external detector.
type CommunityID string

// Edge is a directed tie from Source to Target.
type Edge struct {
	Source string
	Target string
}

// EdgeList is an ordered edge sequence. Repeated edges encode weight.
type EdgeList []Edge

// Dedupe returns the unweighted edge list: multiple ties from A to B count
// once. The first occurrence order is preserved.
func (l EdgeList) Dedupe() EdgeList {
	seen := make(map[Edge]struct{}, len(l))
	out := make(EdgeList, 0, len(l))
	for _, e := range l {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Nodes returns every distinct endpoint in first-seen order.
func (l EdgeList) Nodes() []string {
	seen := make(map[string]struct{}, len(l))
	out := make([]string, 0, len(l))
	add := func(n string) {
		if _, ok := seen[n]; !ok {
			seen[n] = struct{}{}
			out = append(out, n)
		}
	}
	for _, e := range l {
		add(e.Source)
		add(e.Target)
	}
	return out
}

// CompareCommunityIDs orders community IDs naturally: numerically when both
// parse as integers, lexicographically otherwise. Integer IDs sort first.
func CompareCommunityIDs(a, b CommunityID) int {
	ai, aErr := strconv.ParseInt(string(a), 10, 64)
	bi, bErr := strconv.ParseInt(string(b), 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		if c := cmp.Compare(ai, bi); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
