package graph

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidPartition is returned when a node→community mapping is empty or
// inconsistent.
var ErrInvalidPartition = errors.New("invalid partition")

// Assignment is one row of a detector's output.
type Assignment struct {
	Node      string
	Community CommunityID
}

// Partition is an immutable node→community mapping for one snapshot.
type Partition struct {
	communityOf map[string]CommunityID
	modularity  float64
}

// NewPartition builds a Partition from detector output. Each node must map to
// exactly one non-empty community; repeating an identical assignment is
// tolerated, a conflicting one is not.
func NewPartition(assignments []Assignment, modularity float64) (*Partition, error) {
	if len(assignments) == 0 {
		return nil, fmt.Errorf("%w: no assignments", ErrInvalidPartition)
	}

	communityOf := make(map[string]CommunityID, len(assignments))
	for i, a := range assignments {
		if a.Node == "" {
			return nil, fmt.Errorf("%w: empty node id at row %d", ErrInvalidPartition, i)
		}
		if a.Community == "" {
			return nil, fmt.Errorf("%w: node %q has empty community id", ErrInvalidPartition, a.Node)
		}
		if prev, ok := communityOf[a.Node]; ok && prev != a.Community {
			return nil, fmt.Errorf("%w: node %q assigned to both %q and %q", ErrInvalidPartition, a.Node, prev, a.Community)
		}
		communityOf[a.Node] = a.Community
	}

	return &Partition{communityOf: communityOf, modularity: modularity}, nil
}

// PartitionFromMap builds a Partition from a ready-made mapping.
func PartitionFromMap(m map[string]CommunityID, modularity float64) (*Partition, error) {
	assignments := make([]Assignment, 0, len(m))
	for node, c := range m {
		assignments = append(assignments, Assignment{Node: node, Community: c})
	}
	return NewPartition(assignments, modularity)
}

// CommunityOf returns the community of node and whether it is labelled.
func (p *Partition) CommunityOf(node string) (CommunityID, bool) {
	c, ok := p.communityOf[node]
	return c, ok
}

// Len returns the number of labelled nodes.
func (p *Partition) Len() int {
	return len(p.communityOf)
}

// Modularity returns the quality score reported by the detector.
func (p *Partition) Modularity() float64 {
	return p.modularity
}

// Nodes returns all labelled nodes in sorted order.
func (p *Partition) Nodes() []string {
	nodes := make([]string, 0, len(p.communityOf))
	for n := range p.communityOf {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}

// Populations returns the number of nodes per community.
func (p *Partition) Populations() map[CommunityID]int {
	return CountBy(p.Nodes(), func(n string) (CommunityID, bool) {
		return p.communityOf[n], true
	})
}

// Communities returns the distinct community IDs in natural order.
func (p *Partition) Communities() []CommunityID {
	pops := p.Populations()
	ids := make([]CommunityID, 0, len(pops))
	for id := range pops {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, CompareCommunityIDs)
	return ids
}
