// Package report turns analysis results into ordered tabular records for
// CSV files and terminal output.
package report

import (
	"math"
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// Table is a titled set of records with a header row.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
}

// Records returns the header followed by the rows.
func (t Table) Records() [][]string {
	out := make([][]string, 0, len(t.Rows)+1)
	out = append(out, t.Header)
	return append(out, t.Rows...)
}

// Members lists retained nodes as name,community,in-degree, the layout
// read back by ingest.ReadMembers.
func Members(set *algorithms.CommunitySet) Table {
	t := Table{Title: "Community members", Header: []string{"name", "community", "in-degree"}}
	for _, m := range set.Members {
		t.Rows = append(t.Rows, []string{m.Node, string(m.Community), strconv.Itoa(m.Prominence)})
	}
	return t
}

// Partition lists node,community rows in node order.
func Partition(p *graph.Partition) Table {
	t := Table{Title: "Partition", Header: []string{"name", "community"}}
	for _, node := range p.Nodes() {
		c, _ := p.CommunityOf(node)
		t.Rows = append(t.Rows, []string{node, string(c)})
	}
	return t
}

// Detection summarizes a detected partition.
func Detection(p *graph.Partition) Table {
	return Table{
		Title:  "Detection",
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"nodes", strconv.Itoa(p.Len())},
			{"communities", strconv.Itoa(len(p.Communities()))},
			{"modularity", formatFloat(p.Modularity())},
		},
	}
}

// Communities lists the selected communities in rank order.
func Communities(set *algorithms.CommunitySet) Table {
	t := Table{Title: "Top communities", Header: []string{"rank", "community", "population"}}
	for _, c := range set.Communities {
		t.Rows = append(t.Rows, []string{strconv.Itoa(c.Rank + 1), string(c.ID), strconv.Itoa(c.Population)})
	}
	return t
}

// Summary reports how much of the network the selection covers.
func Summary(s algorithms.PartitionSummary) Table {
	return Table{
		Title:  "Partition summary",
		Header: []string{"metric", "value"},
		Rows: [][]string{
			{"communities", strconv.Itoa(s.TotalCommunities)},
			{"nodes", strconv.Itoa(s.TotalNodes)},
			{"selected_nodes", strconv.Itoa(s.SelectedNodes)},
			{"node_proportion", formatFloat(s.NodeProportion)},
			{"edge_proportion", formatFloat(s.EdgeProportion)},
			{"modularity", formatFloat(s.Modularity)},
		},
	}
}

// EIIndices lists tie counts and the EI index per community. Communities
// without ties have an empty ei_index.
func EIIndices(tc *algorithms.TieComposition) Table {
	t := Table{
		Title:  "EI indices",
		Header: []string{"community", "internal", "sent", "received", "outside", "ei_index"},
	}
	for _, c := range tc.Communities {
		ei := ""
		if c.Defined {
			ei = formatFloat(c.EI)
		}
		t.Rows = append(t.Rows, []string{
			string(c.ID),
			strconv.Itoa(c.Internal),
			strconv.Itoa(c.Sent),
			strconv.Itoa(c.Received),
			strconv.Itoa(c.Outside),
			ei,
		})
	}
	t.Rows = append(t.Rows, []string{"mean", "", "", "", "", formatFloat(tc.MeanEI)})
	return t
}

// Overlap lists each community's tie shares and, below it, one row per
// partner with the partner's incoming and outgoing shares.
func Overlap(overlaps []algorithms.CommunityOverlap) Table {
	t := Table{
		Title:  "Community overlap",
		Header: []string{"community", "partner", "internal", "incoming", "outgoing", "in_minus_out"},
	}
	for _, o := range overlaps {
		if !o.Defined {
			t.Rows = append(t.Rows, []string{string(o.ID), "", "", "", "", ""})
			continue
		}
		t.Rows = append(t.Rows, []string{
			string(o.ID), "",
			formatFloat(o.Internal),
			formatFloat(o.Incoming),
			formatFloat(o.Outgoing),
			formatFloat(o.Net()),
		})
		for _, p := range o.Partners {
			t.Rows = append(t.Rows, []string{
				string(o.ID), string(p.Partner), "",
				formatFloat(p.Incoming),
				formatFloat(p.Outgoing),
				formatFloat(p.Incoming - p.Outgoing),
			})
		}
	}
	return t
}

// Grid lays the shared-tie matrix out with one column per community.
func Grid(m *algorithms.ProximityMatrix) Table {
	t := Table{Title: "Shared ties", Header: append([]string{"community"}, idStrings(m.Communities)...)}
	for i, id := range m.Communities {
		row := make([]string, 0, len(m.Communities)+1)
		row = append(row, string(id))
		for _, v := range m.Cells[i] {
			row = append(row, formatFloat(v))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Pairs lists every nonzero similarity between snapshot A and B
// communities.
func Pairs(r *algorithms.MatchResult) Table {
	t := Table{Title: "Community similarity", Header: []string{"community_a", "community_b", "jaccard"}}
	for _, p := range r.Pairs {
		t.Rows = append(t.Rows, []string{string(p.A), string(p.B), formatFloat(p.Score)})
	}
	return t
}

// Matches lists the best match of each A community and the nodes the two
// samples share.
func Matches(r *algorithms.MatchResult) Table {
	t := Table{Title: "Top community matches", Header: []string{"community_a", "community_b", "jaccard", "shared_nodes"}}
	for _, m := range r.Best {
		t.Rows = append(t.Rows, []string{string(m.A), string(m.B), formatFloat(m.Score), strings.Join(m.SharedNodes, " ")})
	}
	return t
}

// Patterns lists divergent and convergent communities.
func Patterns(r *algorithms.MatchResult) Table {
	t := Table{Title: "Divergence and convergence", Header: []string{"pattern", "community", "counterparts"}}
	for _, p := range r.Divergent {
		t.Rows = append(t.Rows, []string{"divergence", string(p.Community), strings.Join(idStrings(p.Counterparts), " ")})
	}
	for _, p := range r.Convergent {
		t.Rows = append(t.Rows, []string{"convergence", string(p.Community), strings.Join(idStrings(p.Counterparts), " ")})
	}
	return t
}

// Bridges lists intermediaries with their tie distribution written as
// community:count pairs.
func Bridges(records []algorithms.BridgeRecord) Table {
	t := Table{Title: "Intermediaries", Header: []string{"name", "community", "total", "distribution"}}
	for _, r := range records {
		dist := make([]string, len(r.Distribution))
		for i, d := range r.Distribution {
			dist[i] = string(d.Community) + ":" + strconv.Itoa(d.Count)
		}
		t.Rows = append(t.Rows, []string{r.Node, string(r.Community), strconv.Itoa(r.Total), strings.Join(dist, " ")})
	}
	return t
}

// formatFloat rounds to four decimals and drops trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func idStrings(ids []graph.CommunityID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
