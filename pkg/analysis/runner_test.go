package analysis

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/config"
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingDetector always returns err
type failingDetector struct{ err error }

func (d failingDetector) Detect(context.Context, graph.EdgeList) (*graph.Partition, error) {
	return nil, d.err
}

// setupSnapshot builds two triangles joined by one tie in each direction
func setupSnapshot(t *testing.T, name, first, second string) Snapshot {
	t.Helper()

	edges := graph.EdgeList{
		{Source: "a1", Target: "a2"}, {Source: "a2", Target: "a3"}, {Source: "a3", Target: "a1"}, {Source: "a2", Target: "a1"},
		{Source: "b1", Target: "b2"}, {Source: "b2", Target: "b3"}, {Source: "b3", Target: "b1"},
		{Source: "a1", Target: "b1"}, {Source: "b2", Target: "a1"},
	}
	p, err := graph.PartitionFromMap(map[string]graph.CommunityID{
		"a1": graph.CommunityID(first), "a2": graph.CommunityID(first), "a3": graph.CommunityID(first),
		"b1": graph.CommunityID(second), "b2": graph.CommunityID(second), "b3": graph.CommunityID(second),
	}, 0.4)
	require.NoError(t, err)
	return Snapshot{Name: name, Edges: edges, Partition: p}
}

func setupRunner(t *testing.T, opts ...Option) (*Runner, *metrics.Registry, *bytes.Buffer) {
	t.Helper()

	var logs bytes.Buffer
	reg := metrics.NewRegistry()
	opts = append([]Option{WithLogger(logging.NewJSONLogger(&logs, logging.DebugLevel)), WithMetrics(reg)}, opts...)
	r, err := NewRunner(config.Default(), opts...)
	require.NoError(t, err)
	r.newRunID = func() string { return "run-1" }
	return r, reg, &logs
}

func runCount(t *testing.T, reg *metrics.Registry, kind, status string) float64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, reg.RunsTotal.WithLabelValues(kind, status).Write(&m))
	return m.Counter.GetValue()
}

func stageCount(t *testing.T, reg *metrics.Registry, stage string) uint64 {
	t.Helper()

	var m dto.Metric
	require.NoError(t, reg.StageDuration.WithLabelValues(stage).(prometheus.Metric).Write(&m))
	return m.Histogram.GetSampleCount()
}

// TestNewRunner_InvalidConfig tests config validation
func TestNewRunner_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Matrix.Mode = "diagonal"

	_, err := NewRunner(cfg)
	assert.Error(t, err)

	r, err := NewRunner(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), r.Config())
}

// TestAnalyzeSnapshot tests the full single-snapshot pipeline
func TestAnalyzeSnapshot(t *testing.T) {
	r, reg, logs := setupRunner(t)

	report, err := r.AnalyzeSnapshot(context.Background(), setupSnapshot(t, "jan", "1", "2"))
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, []graph.CommunityID{"1", "2"}, report.Set.IDs())
	assert.Equal(t, 0.4, report.Set.Summary.Modularity)

	c1, ok := report.Ties.Community("1")
	require.True(t, ok)
	assert.Equal(t, 4, c1.Internal)
	assert.InDelta(t, -1.0/3, c1.EI, 1e-12)
	c2, _ := report.Ties.Community("2")
	assert.InDelta(t, -0.2, c2.EI, 1e-12)
	assert.InDelta(t, (-1.0/3-0.2)/2, report.Ties.MeanEI, 1e-12)

	assert.Equal(t, 6, report.Matrix.RowTotal(0))
	assert.Len(t, report.Overlap, 2)

	require.Len(t, report.Bridges, 2)
	assert.Equal(t, "a1", report.Bridges[0].Node)
	assert.Equal(t, "b1", report.Bridges[1].Node)

	assert.Equal(t, 1.0, runCount(t, reg, KindSnapshot, "success"))
	for _, stage := range []string{StageSelect, StageTies, StageMatrix, StageBridges} {
		assert.Equal(t, uint64(1), stageCount(t, reg, stage), stage)
	}
	assert.Equal(t, uint64(0), stageCount(t, reg, StageDetect))

	out := logs.String()
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, `"snapshot":"jan"`)
	assert.Contains(t, out, `"msg":"tie_composition completed"`)
	assert.Contains(t, out, `"msg":"analysis run completed"`)
}

// TestAnalyzeSnapshot_Detect tests partitioning snapshots without a partition
func TestAnalyzeSnapshot_Detect(t *testing.T) {
	r, reg, _ := setupRunner(t)

	var edges graph.EdgeList
	for _, clique := range [][]string{{"p", "q", "r", "s"}, {"u", "v", "w"}} {
		for i := range clique {
			for j := i + 1; j < len(clique); j++ {
				edges = append(edges, graph.Edge{Source: clique[i], Target: clique[j]})
			}
		}
	}

	report, err := r.AnalyzeSnapshot(context.Background(), Snapshot{Name: "detected", Edges: edges})
	require.NoError(t, err)
	assert.Equal(t, []algorithms.CommunityRank{
		{ID: "0", Population: 4, Rank: 0},
		{ID: "1", Population: 3, Rank: 1},
	}, report.Set.Communities)
	assert.Equal(t, -1.0, report.Ties.MeanEI)
	assert.Empty(t, report.Bridges)

	var m dto.Metric
	require.NoError(t, reg.PartitionsTotal.WithLabelValues("detected").Write(&m))
	assert.Equal(t, 1.0, m.Counter.GetValue())
	assert.Equal(t, uint64(1), stageCount(t, reg, StageDetect))
}

// TestAnalyzeSnapshot_Errors tests failure and cancellation accounting
func TestAnalyzeSnapshot_Errors(t *testing.T) {
	boom := errors.New("detector unavailable")
	r, reg, logs := setupRunner(t, WithDetector(failingDetector{err: boom}))

	_, err := r.AnalyzeSnapshot(context.Background(), Snapshot{Name: "x", Edges: graph.EdgeList{{Source: "a", Target: "b"}}})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), StageDetect)
	assert.Equal(t, 1.0, runCount(t, reg, KindSnapshot, "error"))
	assert.Contains(t, logs.String(), `"msg":"analysis run failed"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.AnalyzeSnapshot(ctx, setupSnapshot(t, "jan", "1", "2"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1.0, runCount(t, reg, KindSnapshot, "canceled"))
}

// TestAnalyzeSnapshot_Degenerate tests that a community without ties fails
// the run under the default policy
func TestAnalyzeSnapshot_Degenerate(t *testing.T) {
	r, _, _ := setupRunner(t)

	p, err := graph.PartitionFromMap(map[string]graph.CommunityID{"a": "1", "b": "1", "c": "2"}, 0)
	require.NoError(t, err)

	_, err = r.AnalyzeSnapshot(context.Background(), Snapshot{Edges: graph.EdgeList{{Source: "a", Target: "b"}}, Partition: p})
	assert.ErrorIs(t, err, algorithms.ErrDegenerateTieCount)
}

// TestCompare tests matching two snapshots with renamed communities
func TestCompare(t *testing.T) {
	r, reg, _ := setupRunner(t)

	report, err := r.Compare(context.Background(), setupSnapshot(t, "jan", "1", "2"), setupSnapshot(t, "feb", "x", "y"))
	require.NoError(t, err)

	require.Len(t, report.Match.Best, 2)
	assert.Equal(t, graph.CommunityID("x"), report.Match.Best[0].B)
	assert.Equal(t, 1.0, report.Match.Best[0].Score)
	assert.Equal(t, []string{"a1"}, report.Match.Best[0].SharedNodes)
	assert.Equal(t, graph.CommunityID("y"), report.Match.Best[1].B)
	assert.Empty(t, report.Match.Divergent)
	assert.Empty(t, report.Match.Convergent)

	assert.Equal(t, 1.0, runCount(t, reg, KindCompare, "success"))

	var m dto.Metric
	require.NoError(t, reg.MatchesTotal.WithLabelValues("best").Write(&m))
	assert.Equal(t, 2.0, m.Counter.GetValue())
}

// TestCompareSets tests matching community sets loaded from member files
func TestCompareSets(t *testing.T) {
	r, _, _ := setupRunner(t)

	a, err := algorithms.NewCommunitySet([]algorithms.Member{{Node: "n1", Community: "1", Prominence: 2}})
	require.NoError(t, err)
	b, err := algorithms.NewCommunitySet([]algorithms.Member{{Node: "n2", Community: "9", Prominence: 2}})
	require.NoError(t, err)

	report, err := r.CompareSets(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, report.Match.Pairs)
	assert.Empty(t, report.Match.Best)
}

// TestAnalyze_Steps tests that only the requested steps run
func TestAnalyze_Steps(t *testing.T) {
	r, reg, _ := setupRunner(t)

	report, err := r.Analyze(context.Background(), setupSnapshot(t, "jan", "1", "2"), StepMatrix)
	require.NoError(t, err)
	assert.NotNil(t, report.Ties)
	assert.NotNil(t, report.Matrix)
	assert.Nil(t, report.Bridges)
	assert.Equal(t, uint64(0), stageCount(t, reg, StageBridges))

	report, err = r.Analyze(context.Background(), setupSnapshot(t, "jan", "1", "2"), 0)
	require.NoError(t, err)
	assert.Nil(t, report.Ties)
	assert.Len(t, report.Set.Members, 6)
}

// TestDetect tests standalone detection
func TestDetect(t *testing.T) {
	r, reg, _ := setupRunner(t)

	p, err := r.Detect(context.Background(), setupSnapshot(t, "jan", "1", "2"))
	require.NoError(t, err)
	assert.Equal(t, 6, p.Len())
	assert.Equal(t, uint64(1), stageCount(t, reg, StageDetect))

	_, err = r.Detect(context.Background(), Snapshot{})
	assert.Error(t, err)
}
