package algorithms

import (
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// MatrixMode selects which off-diagonal ties a cell counts.
type MatrixMode int

const (
	ModeBoth     MatrixMode = iota // sent plus received
	ModeSent                       // ties row → column
	ModeReceived                   // ties column → row
)

// MatrixOptions configures the shared-tie matrix.
type MatrixOptions struct {
	Mode MatrixMode
	// Normalize divides each cell by its row total.
	Normalize bool
	// Reciprocal maps off-diagonal cells to 1/x, empty cells to 1, and
	// zeroes the diagonal, so that scarce ties stand out.
	Reciprocal bool
}

// ProximityMatrix counts ties between every pair of selected communities.
// The diagonal holds internal ties.
type ProximityMatrix struct {
	Communities []graph.CommunityID
	Internal    []int
	Sent        [][]int     // Sent[i][j] = ties from community i to community j
	Cells       [][]float64 // derived values according to Options
	Options     MatrixOptions
}

// Received returns ties from community j into community i.
func (m *ProximityMatrix) Received(i, j int) int {
	return m.Sent[j][i]
}

// RowTotal returns internal + sent + received ties of community i.
func (m *ProximityMatrix) RowTotal(i int) int {
	total := m.Internal[i]
	for j := range m.Communities {
		if j == i {
			continue
		}
		total += m.Sent[i][j] + m.Sent[j][i]
	}
	return total
}

// BuildSharedTieMatrix derives a community × community matrix from the tie
// records whose endpoints are both in selected communities.
func BuildSharedTieMatrix(tc *TieComposition, opts MatrixOptions) (*ProximityMatrix, error) {
	const op = "BuildSharedTieMatrix"

	if tc == nil || len(tc.Communities) == 0 {
		return nil, NewError(op).Context("no communities").Cause(ErrEmptyCommunity).Err()
	}
	if opts.Mode < ModeBoth || opts.Mode > ModeReceived {
		return nil, NewError(op).Context("unknown matrix mode").Cause(ErrInvalidOption).Err()
	}

	n := len(tc.Communities)
	m := &ProximityMatrix{
		Communities: make([]graph.CommunityID, n),
		Internal:    make([]int, n),
		Sent:        make([][]int, n),
		Cells:       make([][]float64, n),
		Options:     opts,
	}
	for i, c := range tc.Communities {
		m.Communities[i] = c.ID
		m.Sent[i] = make([]int, n)
		m.Cells[i] = make([]float64, n)
	}

	for _, r := range tc.Records {
		if !r.Selected() {
			continue
		}
		i := tc.position[r.SourceCommunity]
		j := tc.position[r.TargetCommunity]
		if i == j {
			m.Internal[i]++
			continue
		}
		m.Sent[i][j]++
	}

	for i := 0; i < n; i++ {
		total := m.RowTotal(i)
		if opts.Normalize && total == 0 {
			if tc.Options.Degenerate == DegenerateFail {
				return nil, NewError(op).Community(m.Communities[i]).Cause(ErrDegenerateTieCount).Err()
			}
		}
		for j := 0; j < n; j++ {
			v := float64(m.cellCount(i, j))
			if opts.Normalize && total > 0 {
				v /= float64(total)
			}
			if opts.Reciprocal {
				switch {
				case i == j:
					v = 0
				case v == 0:
					v = 1
				default:
					v = 1 / v
				}
			}
			m.Cells[i][j] = v
		}
	}

	return m, nil
}

func (m *ProximityMatrix) cellCount(i, j int) int {
	if i == j {
		return m.Internal[i]
	}
	switch m.Options.Mode {
	case ModeSent:
		return m.Sent[i][j]
	case ModeReceived:
		return m.Sent[j][i]
	default:
		return m.Sent[i][j] + m.Sent[j][i]
	}
}

// PartnerShare is the share of a community's ties exchanged with one partner.
type PartnerShare struct {
	Partner  graph.CommunityID
	Incoming float64 // ties from the partner / row total
	Outgoing float64 // ties to the partner / row total
}

// CommunityOverlap breaks a community's ties down by direction and partner.
type CommunityOverlap struct {
	ID       graph.CommunityID
	Internal float64
	Incoming float64
	Outgoing float64
	Partners []PartnerShare // partners with at least one tie, in rank order
	Defined  bool
}

// Net returns incoming minus outgoing share.
func (o CommunityOverlap) Net() float64 {
	return o.Incoming - o.Outgoing
}

// Overlap reports, for every community, how its ties are shared out among
// the other selected communities as proportions of its row total.
func (m *ProximityMatrix) Overlap() []CommunityOverlap {
	out := make([]CommunityOverlap, len(m.Communities))
	for i, id := range m.Communities {
		o := CommunityOverlap{ID: id}
		total := m.RowTotal(i)
		if total == 0 {
			out[i] = o
			continue
		}
		o.Defined = true
		t := float64(total)
		o.Internal = float64(m.Internal[i]) / t
		for j, partner := range m.Communities {
			if j == i {
				continue
			}
			in, sent := m.Sent[j][i], m.Sent[i][j]
			o.Incoming += float64(in) / t
			o.Outgoing += float64(sent) / t
			if in > 0 || sent > 0 {
				o.Partners = append(o.Partners, PartnerShare{
					Partner:  partner,
					Incoming: float64(in) / t,
					Outgoing: float64(sent) / t,
				})
			}
		}
		out[i] = o
	}
	return out
}
