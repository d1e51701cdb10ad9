package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/graph"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/metrics"
)

// Loader reads snapshot inputs from any supported source and records what
// it read.
type Loader struct {
	Opener  *Opener
	CSV     CSVOptions
	Query   string // edge query for postgres:// sources
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// NewLoader returns a loader for local files and, when s3 is non-nil,
// S3 objects.
func NewLoader(s3 ObjectGetter, csv CSVOptions, logger logging.Logger, reg *metrics.Registry) *Loader {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Loader{
		Opener:  &Opener{S3: s3},
		CSV:     csv,
		Logger:  logger.With(logging.Component("ingest")),
		Metrics: reg,
	}
}

// LoadEdges reads an edge list from a file, an S3 object or Postgres.
func (l *Loader) LoadEdges(ctx context.Context, uri string) (graph.EdgeList, error) {
	start := time.Now()
	kind := KindOf(uri)

	var (
		edges graph.EdgeList
		size  int64
		err   error
	)
	if kind == KindPostgres {
		edges, err = l.loadPostgres(ctx, uri)
	} else {
		size, err = l.read(ctx, uri, func(in *Input) error {
			var rerr error
			edges, rerr = ReadEdges(in, l.CSV)
			return rerr
		})
	}
	if err != nil {
		l.Logger.Error("failed to load edges", logging.Source(redact(uri)), logging.Error(err))
		return nil, err
	}

	elapsed := time.Since(start)
	if l.Metrics != nil {
		l.Metrics.RecordIngest(string(kind), len(edges), size, elapsed)
	}
	l.Logger.Info("edges loaded",
		logging.Source(redact(uri)),
		logging.Count(len(edges)),
		logging.Latency(elapsed),
	)
	return edges, nil
}

// LoadPartition reads node,community rows.
func (l *Loader) LoadPartition(ctx context.Context, uri string) (*graph.Partition, error) {
	var p *graph.Partition
	_, err := l.read(ctx, uri, func(in *Input) error {
		var rerr error
		p, rerr = ReadPartition(in, l.CSV, 0)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	if l.Metrics != nil {
		l.Metrics.RecordPartition("file")
	}
	l.Logger.Info("partition loaded", logging.Source(uri), logging.Count(p.Len()))
	return p, nil
}

// LoadMembers reads a member file and rebuilds its community set.
func (l *Loader) LoadMembers(ctx context.Context, uri string) (*algorithms.CommunitySet, error) {
	var members []algorithms.Member
	_, err := l.read(ctx, uri, func(in *Input) error {
		var rerr error
		members, rerr = ReadMembers(in, l.CSV)
		return rerr
	})
	if err != nil {
		return nil, err
	}
	set, err := algorithms.NewCommunitySet(members)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", uri, err)
	}
	l.Logger.Info("members loaded",
		logging.Source(uri),
		logging.Count(len(members)),
		logging.Int("communities", len(set.Communities)),
	)
	return set, nil
}

func (l *Loader) read(ctx context.Context, uri string, fn func(*Input) error) (int64, error) {
	in, err := l.Opener.Open(ctx, uri)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	if err := fn(in); err != nil {
		return 0, fmt.Errorf("%s: %w", uri, err)
	}
	return in.Size, nil
}

func (l *Loader) loadPostgres(ctx context.Context, uri string) (graph.EdgeList, error) {
	src, err := NewPGEdgeSource(ctx, uri, l.Query)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.Edges(ctx)
}
