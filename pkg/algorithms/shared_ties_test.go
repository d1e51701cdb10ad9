package algorithms

import (
	"errors"
	"math"
	"testing"
)

// setupMatrixComposition builds three communities with known tie traffic:
// 1 = {a,b}, 2 = {c,d}, 3 = {e}
func setupMatrixComposition(t *testing.T, opts TieOptions) *TieComposition {
	t.Helper()

	e := edges(
		"a", "b",
		"b", "a",
		"a", "c",
		"c", "a",
		"d", "a",
		"e", "c",
		"c", "d",
	)
	set := selectAll(t, e, map[string]string{"a": "1", "b": "1", "c": "2", "d": "2", "e": "3"})

	tc, err := ComputeTieComposition(set, e, opts)
	if err != nil {
		t.Fatalf("ComputeTieComposition failed: %v", err)
	}
	return tc
}

func assertCell(t *testing.T, m *ProximityMatrix, i, j int, want float64) {
	t.Helper()
	if got := m.Cells[i][j]; math.Abs(got-want) > 1e-9 {
		t.Errorf("Cells[%d][%d] = %f, want %f", i, j, got, want)
	}
}

// TestBuildSharedTieMatrix_Modes tests sent/received/both cells
func TestBuildSharedTieMatrix_Modes(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())

	both, err := BuildSharedTieMatrix(tc, MatrixOptions{Mode: ModeBoth})
	if err != nil {
		t.Fatalf("BuildSharedTieMatrix failed: %v", err)
	}
	assertCell(t, both, 0, 0, 2)
	assertCell(t, both, 0, 1, 3)
	assertCell(t, both, 0, 2, 0)
	assertCell(t, both, 1, 2, 1)

	sent, _ := BuildSharedTieMatrix(tc, MatrixOptions{Mode: ModeSent})
	assertCell(t, sent, 0, 1, 1)
	assertCell(t, sent, 1, 0, 2)
	assertCell(t, sent, 2, 1, 1)

	received, _ := BuildSharedTieMatrix(tc, MatrixOptions{Mode: ModeReceived})
	assertCell(t, received, 0, 1, 2)
	assertCell(t, received, 1, 2, 1)
	if received.Received(1, 2) != 1 {
		t.Errorf("Received(1,2) = %d, want 1", received.Received(1, 2))
	}
}

// TestBuildSharedTieMatrix_RowTotals tests the diagonal and row totals
func TestBuildSharedTieMatrix_RowTotals(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())
	m, err := BuildSharedTieMatrix(tc, MatrixOptions{})
	if err != nil {
		t.Fatalf("BuildSharedTieMatrix failed: %v", err)
	}

	for i, c := range tc.Communities {
		if m.Internal[i] != c.Internal {
			t.Errorf("Diagonal %d = %d, want internal %d", i, m.Internal[i], c.Internal)
		}
		if got, want := m.RowTotal(i), c.Internal+c.Sent+c.Received; got != want {
			t.Errorf("RowTotal(%d) = %d, want %d", i, got, want)
		}
	}
	if m.RowTotal(0) != 5 || m.RowTotal(2) != 1 {
		t.Errorf("Unexpected row totals: %d, %d", m.RowTotal(0), m.RowTotal(2))
	}
}

// TestBuildSharedTieMatrix_Normalize tests per-row proportions
func TestBuildSharedTieMatrix_Normalize(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())
	m, err := BuildSharedTieMatrix(tc, MatrixOptions{Mode: ModeBoth, Normalize: true})
	if err != nil {
		t.Fatalf("BuildSharedTieMatrix failed: %v", err)
	}

	assertCell(t, m, 0, 0, 0.4)
	assertCell(t, m, 0, 1, 0.6)
	assertCell(t, m, 2, 1, 1)

	sum := 0.0
	for _, v := range m.Cells[0] {
		sum += v
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Expected normalized row to sum to 1, got %f", sum)
	}
}

// TestBuildSharedTieMatrix_Reciprocal tests the scarcity transform
func TestBuildSharedTieMatrix_Reciprocal(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())
	m, err := BuildSharedTieMatrix(tc, MatrixOptions{Mode: ModeBoth, Reciprocal: true})
	if err != nil {
		t.Fatalf("BuildSharedTieMatrix failed: %v", err)
	}

	for i := range m.Communities {
		assertCell(t, m, i, i, 0)
	}
	assertCell(t, m, 0, 1, 1.0/3.0)
	assertCell(t, m, 0, 2, 1) // no ties maps to the sentinel
}

// TestBuildSharedTieMatrix_DegenerateRow tests normalizing an empty row
func TestBuildSharedTieMatrix_DegenerateRow(t *testing.T) {
	e := edges("a", "b", "c", "q")
	set := selectAll(t, e, map[string]string{"a": "1", "b": "1", "c": "2"})

	tc, err := ComputeTieComposition(set, e, DefaultTieOptions())
	if err != nil {
		t.Fatalf("ComputeTieComposition failed: %v", err)
	}

	// community 2 only has a tie outside the selection
	_, err = BuildSharedTieMatrix(tc, MatrixOptions{Normalize: true})
	if !errors.Is(err, ErrDegenerateTieCount) {
		t.Errorf("Expected ErrDegenerateTieCount, got %v", err)
	}

	tc.Options.Degenerate = DegenerateSkip
	m, err := BuildSharedTieMatrix(tc, MatrixOptions{Normalize: true})
	if err != nil {
		t.Fatalf("Expected skip policy to succeed, got %v", err)
	}
	assertCell(t, m, 1, 1, 0)
}

// TestBuildSharedTieMatrix_InvalidMode tests option validation
func TestBuildSharedTieMatrix_InvalidMode(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())
	_, err := BuildSharedTieMatrix(tc, MatrixOptions{Mode: MatrixMode(9)})
	if !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}
}

// TestProximityMatrix_Overlap tests the per-partner breakdown
func TestProximityMatrix_Overlap(t *testing.T) {
	tc := setupMatrixComposition(t, DefaultTieOptions())
	m, _ := BuildSharedTieMatrix(tc, MatrixOptions{})

	overlap := m.Overlap()
	o := overlap[0]
	if !o.Defined {
		t.Fatal("Expected community 1 overlap to be defined")
	}
	if math.Abs(o.Internal-0.4) > 1e-9 || math.Abs(o.Incoming-0.4) > 1e-9 || math.Abs(o.Outgoing-0.2) > 1e-9 {
		t.Errorf("Unexpected shares: %+v", o)
	}
	if math.Abs(o.Net()-0.2) > 1e-9 {
		t.Errorf("Net() = %f, want 0.2", o.Net())
	}
	if len(o.Partners) != 1 || o.Partners[0].Partner != "2" {
		t.Fatalf("Expected single partner 2, got %+v", o.Partners)
	}

	total := o.Internal + o.Incoming + o.Outgoing
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("Expected shares to sum to 1, got %f", total)
	}
}
