package algorithms

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-subgraph/pkg/graph"
)

// setupBridgeSet builds a node n in community N receiving 10 ties from X
// and 6 ties from Y
func setupBridgeSet(t *testing.T) (*CommunitySet, graph.EdgeList) {
	t.Helper()

	e := append(repeat("x1", "n", 10), repeat("y1", "n", 6)...)
	set := selectAll(t, e, map[string]string{"x1": "X", "y1": "Y", "n": "N"})
	return set, e
}

func bridgeOptions(ratio float64) BridgeOptions {
	opts := DefaultBridgeOptions()
	opts.Sample = SampleProportion(1)
	opts.Ratio = ratio
	return opts
}

// TestFindIntermediaries_Ratio tests the runner-up ratio rule
func TestFindIntermediaries_Ratio(t *testing.T) {
	set, e := setupBridgeSet(t)

	tests := []struct {
		name    string
		ratio   float64
		bridges int
	}{
		{"ratio met", 0.5, 1},
		{"ratio exactly met", 0.6, 1},
		{"ratio missed", 0.7, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bridges, err := FindIntermediaries(set, e, bridgeOptions(tt.ratio))
			if err != nil {
				t.Fatalf("FindIntermediaries failed: %v", err)
			}
			if len(bridges) != tt.bridges {
				t.Fatalf("Expected %d bridges, got %d: %+v", tt.bridges, len(bridges), bridges)
			}
		})
	}

	bridges, _ := FindIntermediaries(set, e, bridgeOptions(0.5))
	b := bridges[0]
	if b.Node != "n" || b.Community != "N" || b.Total != 16 {
		t.Errorf("Unexpected bridge: %+v", b)
	}
	want := []CommunityCount{{"X", 10}, {"Y", 6}}
	if len(b.Distribution) != len(want) {
		t.Fatalf("Distribution = %+v, want %+v", b.Distribution, want)
	}
	for i := range want {
		if b.Distribution[i] != want[i] {
			t.Errorf("Distribution[%d] = %+v, want %+v", i, b.Distribution[i], want[i])
		}
	}
}

// TestFindIntermediaries_ZeroPad tests padding with silent communities
func TestFindIntermediaries_ZeroPad(t *testing.T) {
	set, e := setupBridgeSet(t)

	opts := bridgeOptions(0.5)
	opts.ZeroPad = true
	bridges, err := FindIntermediaries(set, e, opts)
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}
	if len(bridges) != 1 {
		t.Fatalf("Expected 1 bridge, got %d", len(bridges))
	}

	counts := bridges[0].Counts()
	if len(counts) != 3 {
		t.Fatalf("Expected every community listed, got %v", counts)
	}
	if n, ok := counts["N"]; !ok || n != 0 {
		t.Errorf("Expected N padded with 0, got %d (present=%v)", n, ok)
	}
	last := bridges[0].Distribution[2]
	if last.Community != "N" {
		t.Errorf("Expected padding after received counts, got %+v", bridges[0].Distribution)
	}
}

// TestFindIntermediaries_ZeroRatio tests that r = 0 still needs two contributing
// communities, one of them foreign
func TestFindIntermediaries_ZeroRatio(t *testing.T) {
	assign := map[string]string{"a": "1", "b": "1", "c": "2"}

	ownOnly := edges("b", "a")
	set := selectAll(t, ownOnly, assign)
	bridges, err := FindIntermediaries(set, ownOnly, bridgeOptions(0))
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}
	if len(bridges) != 0 {
		t.Errorf("Expected no bridges from own-community ties, got %+v", bridges)
	}

	foreignOnly := edges("c", "a")
	set = selectAll(t, foreignOnly, assign)
	bridges, err = FindIntermediaries(set, foreignOnly, bridgeOptions(0))
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}
	if len(bridges) != 0 {
		t.Errorf("Expected no bridges from a single foreign community, got %+v", bridges)
	}

	cross := edges("b", "a", "c", "a")
	set = selectAll(t, cross, assign)
	bridges, err = FindIntermediaries(set, cross, bridgeOptions(0))
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}
	if len(bridges) != 1 || bridges[0].Node != "a" {
		t.Errorf("Expected a as the only bridge, got %+v", bridges)
	}
}

// TestFindIntermediaries_Unweighted tests collapsing repeated ties
func TestFindIntermediaries_Unweighted(t *testing.T) {
	set, e := setupBridgeSet(t)

	opts := bridgeOptions(0.7)
	opts.Unweighted = true
	bridges, err := FindIntermediaries(set, e, opts)
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}
	if len(bridges) != 1 || bridges[0].Total != 2 {
		t.Errorf("Expected one bridge with 2 unweighted ties, got %+v", bridges)
	}
}

// TestFindIntermediaries_Order tests sorting by total then node
func TestFindIntermediaries_Order(t *testing.T) {
	assign := map[string]string{"a": "1", "b": "1", "c": "2", "d": "2", "e": "3"}
	e := edges(
		"a", "c", "e", "c", // c: 2 ties
		"c", "b", "e", "b", // b: 2 ties
		"a", "d", "a", "d", "c", "d", "e", "d", // d: 4 ties, own community 2 of them
		"q", "e", // sender without a label
	)
	set := selectAll(t, e, assign)

	bridges, err := FindIntermediaries(set, e, bridgeOptions(0.5))
	if err != nil {
		t.Fatalf("FindIntermediaries failed: %v", err)
	}

	var got []string
	for _, b := range bridges {
		got = append(got, b.Node)
	}
	want := []string{"d", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("Bridges = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bridges = %v, want %v", got, want)
			break
		}
	}
}

// TestFindIntermediaries_Errors tests invalid inputs
func TestFindIntermediaries_Errors(t *testing.T) {
	set, e := setupBridgeSet(t)

	if _, err := FindIntermediaries(nil, e, DefaultBridgeOptions()); !errors.Is(err, ErrEmptyCommunity) {
		t.Errorf("Expected ErrEmptyCommunity, got %v", err)
	}

	opts := DefaultBridgeOptions()
	opts.Ratio = 2
	if _, err := FindIntermediaries(set, e, opts); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("Expected ErrInvalidOption, got %v", err)
	}

	opts = DefaultBridgeOptions()
	opts.Sample = SampleAllowlist("nobody")
	if _, err := FindIntermediaries(set, e, opts); !errors.Is(err, ErrEmptySample) {
		t.Errorf("Expected ErrEmptySample, got %v", err)
	}
}
