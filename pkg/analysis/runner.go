// Package analysis runs the full community tie analysis over one snapshot
// or compares two snapshots, logging every stage and recording metrics.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/config"
	"github.com/dd0wney/cluso-subgraph/pkg/detect"
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/metrics"
	"github.com/google/uuid"
)

// Stage names used in logs and the stage duration metric
const (
	StageDetect   = "detect_communities"
	StageSelect   = "select_communities"
	StageTies     = "tie_composition"
	StageMatrix   = "shared_tie_matrix"
	StageBridges  = "intermediaries"
	StageMatching = "match_communities"
)

// Run kinds
const (
	KindSnapshot = "snapshot"
	KindCompare  = "compare"
)

// Steps selects the analyses run after the partition filter.
type Steps uint8

const (
	StepTies Steps = 1 << iota
	StepMatrix // implies StepTies
	StepBridges

	AllSteps = StepTies | StepMatrix | StepBridges
)

// Snapshot is one observation of the network. When Partition is nil the
// runner's detector partitions the edges.
type Snapshot struct {
	Name      string
	Edges     graph.EdgeList
	Partition *graph.Partition
}

// SnapshotReport holds every result of a single-snapshot analysis.
type SnapshotReport struct {
	RunID    string
	Snapshot string
	Set      *algorithms.CommunitySet
	Ties     *algorithms.TieComposition
	Matrix   *algorithms.ProximityMatrix
	Overlap  []algorithms.CommunityOverlap
	Bridges  []algorithms.BridgeRecord
	Duration time.Duration
}

// CompareReport holds the result of matching two snapshots.
type CompareReport struct {
	RunID    string
	A, B     *algorithms.CommunitySet
	Match    *algorithms.MatchResult
	Duration time.Duration
}

// Runner executes analyses with one configuration.
type Runner struct {
	cfg      *config.Config
	detector detect.Detector
	logger   logging.Logger
	metrics  *metrics.Registry
	newRunID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithDetector replaces the label propagation detector.
func WithDetector(d detect.Detector) Option {
	return func(r *Runner) { r.detector = d }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics records run metrics into reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Runner) { r.metrics = reg }
}

// NewRunner validates cfg and returns a runner. A nil cfg uses defaults.
func NewRunner(cfg *config.Config, opts ...Option) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis config: %w", err)
	}

	r := &Runner{
		cfg:      cfg,
		logger:   logging.NopLogger{},
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.detector == nil {
		r.detector = detect.NewLabelPropagation(cfg.Detect.MaxIterations, cfg.Detect.Seed)
	}
	r.logger = r.logger.With(logging.Component("analysis"))
	return r, nil
}

// Config returns the runner's configuration.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// Detect partitions a snapshot with the runner's detector.
func (r *Runner) Detect(ctx context.Context, snap Snapshot) (*graph.Partition, error) {
	return r.detect(ctx, r.logger.With(logging.Snapshot(snap.Name)), snap.Edges)
}

// Select partitions the snapshot if needed and keeps its top communities.
func (r *Runner) Select(ctx context.Context, snap Snapshot) (*algorithms.CommunitySet, error) {
	return r.selectCommunities(ctx, r.logger.With(logging.Snapshot(snap.Name)), snap)
}

// AnalyzeSnapshot runs the partition filter, tie composition, shared-tie
// matrix and intermediary detection over one snapshot.
func (r *Runner) AnalyzeSnapshot(ctx context.Context, snap Snapshot) (*SnapshotReport, error) {
	return r.Analyze(ctx, snap, AllSteps)
}

// Analyze runs the partition filter followed by the selected steps.
func (r *Runner) Analyze(ctx context.Context, snap Snapshot, steps Steps) (report *SnapshotReport, err error) {
	runID := r.newRunID()
	log := r.logger.With(logging.RunID(runID), logging.Snapshot(snap.Name))
	start := time.Now()
	defer func() { r.finishRun(log, KindSnapshot, start, err) }()

	set, err := r.selectCommunities(ctx, log, snap)
	if err != nil {
		return nil, err
	}
	report = &SnapshotReport{RunID: runID, Snapshot: snap.Name, Set: set}

	if steps&StepMatrix != 0 {
		steps |= StepTies
	}

	if steps&StepTies != 0 {
		if err := r.stage(ctx, log, StageTies, func() ([]logging.Field, error) {
			tc, err := algorithms.ComputeTieComposition(set, snap.Edges, r.cfg.TieOptions())
			if err != nil {
				return nil, err
			}
			report.Ties = tc
			r.recordTies(snap.Name, tc)
			return []logging.Field{logging.Count(len(tc.Records)), logging.Float64("mean_ei", tc.MeanEI)}, nil
		}); err != nil {
			return nil, err
		}
	}

	if steps&StepMatrix != 0 {
		if err := r.stage(ctx, log, StageMatrix, func() ([]logging.Field, error) {
			m, err := algorithms.BuildSharedTieMatrix(report.Ties, r.cfg.MatrixOptions())
			if err != nil {
				return nil, err
			}
			report.Matrix = m
			report.Overlap = m.Overlap()
			return []logging.Field{logging.Int("communities", len(m.Communities))}, nil
		}); err != nil {
			return nil, err
		}
	}

	if steps&StepBridges != 0 {
		if err := r.stage(ctx, log, StageBridges, func() ([]logging.Field, error) {
			bridges, err := algorithms.FindIntermediaries(set, snap.Edges, r.cfg.BridgeOptions())
			if err != nil {
				return nil, err
			}
			report.Bridges = bridges
			if r.metrics != nil {
				r.metrics.RecordIntermediaries(len(bridges))
			}
			return []logging.Field{logging.Count(len(bridges))}, nil
		}); err != nil {
			return nil, err
		}
	}

	report.Duration = time.Since(start)
	return report, nil
}

// Compare selects the top communities of both snapshots and matches them.
func (r *Runner) Compare(ctx context.Context, a, b Snapshot) (report *CompareReport, err error) {
	runID := r.newRunID()
	log := r.logger.With(logging.RunID(runID))
	start := time.Now()
	defer func() { r.finishRun(log, KindCompare, start, err) }()

	setA, err := r.selectCommunities(ctx, log.With(logging.Snapshot(a.Name)), a)
	if err != nil {
		return nil, err
	}
	setB, err := r.selectCommunities(ctx, log.With(logging.Snapshot(b.Name)), b)
	if err != nil {
		return nil, err
	}

	report, err = r.match(ctx, log, runID, setA, setB)
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

// CompareSets matches two previously selected community sets, e.g. member
// files written by an earlier run.
func (r *Runner) CompareSets(ctx context.Context, a, b *algorithms.CommunitySet) (report *CompareReport, err error) {
	runID := r.newRunID()
	log := r.logger.With(logging.RunID(runID))
	start := time.Now()
	defer func() { r.finishRun(log, KindCompare, start, err) }()

	report, err = r.match(ctx, log, runID, a, b)
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (r *Runner) match(ctx context.Context, log logging.Logger, runID string, a, b *algorithms.CommunitySet) (*CompareReport, error) {
	report := &CompareReport{RunID: runID, A: a, B: b}
	err := r.stage(ctx, log, StageMatching, func() ([]logging.Field, error) {
		res, err := algorithms.MatchCommunities(a, b, r.cfg.MatchOptions())
		if err != nil {
			return nil, err
		}
		report.Match = res

		for _, id := range res.SkippedA {
			log.Warn("community skipped: empty sample", logging.Snapshot("a"), logging.Community(id))
		}
		for _, id := range res.SkippedB {
			log.Warn("community skipped: empty sample", logging.Snapshot("b"), logging.Community(id))
		}
		if r.metrics != nil {
			r.metrics.RecordSkipped("a", len(res.SkippedA))
			r.metrics.RecordSkipped("b", len(res.SkippedB))
			r.metrics.RecordMatches(len(res.Best), len(res.Divergent), len(res.Convergent))
		}
		return []logging.Field{
			logging.Int("pairs", len(res.Pairs)),
			logging.Int("matches", len(res.Best)),
			logging.Int("divergent", len(res.Divergent)),
			logging.Int("convergent", len(res.Convergent)),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (r *Runner) selectCommunities(ctx context.Context, log logging.Logger, snap Snapshot) (*algorithms.CommunitySet, error) {
	partition := snap.Partition
	if partition == nil {
		p, err := r.detect(ctx, log, snap.Edges)
		if err != nil {
			return nil, err
		}
		partition = p
	}

	var set *algorithms.CommunitySet
	err := r.stage(ctx, log, StageSelect, func() ([]logging.Field, error) {
		s, err := algorithms.SelectTopCommunities(snap.Edges, partition, r.cfg.TopK())
		if err != nil {
			return nil, err
		}
		set = s
		if r.metrics != nil {
			r.metrics.RecordSelection(snapshotLabel(snap.Name), len(s.Communities), len(s.Members))
		}
		return []logging.Field{
			logging.Int("communities", len(s.Communities)),
			logging.Int("nodes", len(s.Members)),
			logging.Float64("node_proportion", s.Summary.NodeProportion),
			logging.Float64("edge_proportion", s.Summary.EdgeProportion),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

func (r *Runner) detect(ctx context.Context, log logging.Logger, edges graph.EdgeList) (*graph.Partition, error) {
	var partition *graph.Partition
	err := r.stage(ctx, log, StageDetect, func() ([]logging.Field, error) {
		p, err := r.detector.Detect(ctx, edges)
		if err != nil {
			return nil, err
		}
		partition = p
		if r.metrics != nil {
			r.metrics.RecordPartition("detected")
		}
		return []logging.Field{
			logging.Int("communities", len(p.Communities())),
			logging.Float64("modularity", p.Modularity()),
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return partition, nil
}

// stage runs fn as one named, timed step. Cancellation is checked before
// the step starts.
func (r *Runner) stage(ctx context.Context, log logging.Logger, name string, fn func() ([]logging.Field, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s := logging.StartStage(log, name)
	fields, err := fn()
	var elapsed time.Duration
	if err != nil {
		elapsed = s.Fail(err)
	} else {
		elapsed = s.Done(fields...)
	}
	if r.metrics != nil {
		r.metrics.RecordStage(name, elapsed)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (r *Runner) recordTies(snapshot string, tc *algorithms.TieComposition) {
	if r.metrics == nil {
		return
	}
	var internal, external int
	for _, c := range tc.Communities {
		internal += c.Internal
		external += c.External()
	}
	r.metrics.RecordTies(snapshotLabel(snapshot), internal, external, tc.MeanEI)
}

func (r *Runner) finishRun(log logging.Logger, kind string, start time.Time, err error) {
	elapsed := time.Since(start)
	status := "success"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = "canceled"
	case err != nil:
		status = "error"
	}
	if r.metrics != nil {
		r.metrics.RecordRun(kind, status, elapsed)
	}
	if err != nil {
		log.Error("analysis run failed", logging.String("kind", kind), logging.Latency(elapsed), logging.Error(err))
		return
	}
	log.Info("analysis run completed", logging.String("kind", kind), logging.Latency(elapsed))
}

func snapshotLabel(name string) string {
	if name == "" {
		return "default"
	}
	return name
}
