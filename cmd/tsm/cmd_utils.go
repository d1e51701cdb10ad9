package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dd0wney/cluso-subgraph/pkg/analysis"
	"github.com/dd0wney/cluso-subgraph/pkg/ingest"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

// snapshotFlags are shared by commands that read one snapshot.
type snapshotFlags struct {
	partition     string
	name          string
	top           int
	topProportion float64
}

func (f *snapshotFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.partition, "partition", "p", "", "partition file (name,community); detected when omitted")
	cmd.Flags().StringVar(&f.name, "name", "", "snapshot name for logs and metrics (default: input file name)")
	cmd.Flags().IntVarP(&f.top, "top", "k", 0, "number of communities to keep")
	cmd.Flags().Float64Var(&f.topProportion, "top-proportion", 0, "proportion of communities to keep, in (0, 1]")
}

// apply copies the selection flags that were set into the profile.
func (f *snapshotFlags) apply(cmd *cobra.Command) {
	ifChanged(cmd, "top", func() {
		cfg.Communities.Top = f.top
		cfg.Communities.Proportion = 0
	})
	ifChanged(cmd, "top-proportion", func() { cfg.Communities.Proportion = f.topProportion })
}

// sampleFlags select members per community.
type sampleFlags struct {
	proportion float64
	allowlist  string
}

func (f *sampleFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.proportion, "sample", 0, "proportion of each community's most prominent members to use")
	cmd.Flags().StringVar(&f.allowlist, "allowlist", "", "comma-separated nodes to use instead of a proportion")
}

func (f *sampleFlags) apply(cmd *cobra.Command, proportion *float64, allowlist *[]string) {
	ifChanged(cmd, "sample", func() {
		*proportion = f.proportion
		*allowlist = nil
	})
	ifChanged(cmd, "allowlist", func() {
		*allowlist = splitList(f.allowlist)
		*proportion = 0
	})
}

func ifChanged(cmd *cobra.Command, flag string, apply func()) {
	if cmd.Flags().Changed(flag) {
		apply()
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func newRunner() (*analysis.Runner, error) {
	return analysis.NewRunner(cfg, analysis.WithLogger(logger), analysis.WithMetrics(registry))
}

// newLoader builds an input loader, with an S3 client when any input needs one.
func newLoader(ctx context.Context, uris ...string) (*ingest.Loader, error) {
	var s3 ingest.ObjectGetter
	for _, uri := range uris {
		if ingest.KindOf(uri) != ingest.KindS3 {
			continue
		}
		client, err := ingest.NewS3Client(ctx, ingest.S3Options{
			Region:   cfg.Ingest.AWSRegion,
			Endpoint: s3Endpoint,
		})
		if err != nil {
			return nil, err
		}
		s3 = client
		break
	}

	l := ingest.NewLoader(s3, cfg.CSVOptions(), logger, registry)
	l.Query = cfg.Ingest.Query
	return l, nil
}

// loadSnapshot reads an edge list and, when given, its partition.
func loadSnapshot(ctx context.Context, edgesURI, partitionURI, name string) (analysis.Snapshot, error) {
	l, err := newLoader(ctx, edgesURI, partitionURI)
	if err != nil {
		return analysis.Snapshot{}, err
	}

	snap := analysis.Snapshot{Name: name}
	if snap.Name == "" {
		snap.Name = snapshotName(edgesURI)
	}
	if snap.Edges, err = l.LoadEdges(ctx, edgesURI); err != nil {
		return analysis.Snapshot{}, err
	}
	if partitionURI != "" {
		if snap.Partition, err = l.LoadPartition(ctx, partitionURI); err != nil {
			return analysis.Snapshot{}, err
		}
	}
	return snap, nil
}

// snapshotName derives a name from an input's base name without extensions.
func snapshotName(uri string) string {
	if ingest.KindOf(uri) == ingest.KindPostgres {
		return "postgres"
	}
	base := filepath.Base(uri)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

// output is one result table and the file name suffix it is saved under.
type output struct {
	file  string
	table report.Table
}

// emit prints the tables and, with --out, saves each as
// <out>/<prefix>_<file>.csv.
func emit(cmd *cobra.Command, outputs ...output) error {
	if !quiet {
		tables := make([]report.Table, len(outputs))
		for i, o := range outputs {
			tables[i] = o.table
		}
		if err := report.Print(cmd.OutOrStdout(), tables...); err != nil {
			return err
		}
	}
	if outDir == "" {
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for _, o := range outputs {
		path := filepath.Join(outDir, outPrefix+"_"+o.file+".csv")
		if err := report.WriteCSVFile(path, o.table); err != nil {
			return err
		}
		logger.Info("results written", logging.String("path", path), logging.Count(len(o.table.Rows)))
	}
	return nil
}
