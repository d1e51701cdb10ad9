package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/analysis"
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var (
	matchSample       sampleFlags
	matchEdges        bool
	matchPartitionA   string
	matchPartitionB   string
	matchThreshold    float64
	matchCooccurrence float64
	matchRatio        float64
	matchUnweighted   bool
)

var matchCmd = &cobra.Command{
	Use:   "match A B",
	Short: "Match communities across two snapshots",
	Long: `Compare the communities of snapshot A with those of snapshot B using the
Jaccard coefficient over each community's most prominent members,
weighted by in-degree in both snapshots.

A and B are member files written by "tsm communities". With --edges they
are edge lists instead, partitioned by --partition-a/--partition-b or by
community detection.

Reports every nonzero similarity, the best match of each A community,
A communities that split (divergence) and B communities that absorbed
several A communities (convergence).`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	matchSample.register(matchCmd)
	matchCmd.Flags().BoolVar(&matchEdges, "edges", false, "A and B are edge lists")
	matchCmd.Flags().StringVar(&matchPartitionA, "partition-a", "", "partition of A (with --edges)")
	matchCmd.Flags().StringVar(&matchPartitionB, "partition-b", "", "partition of B (with --edges)")
	matchCmd.Flags().Float64Var(&matchThreshold, "threshold", 0.3, "minimum similarity of a reported match")
	matchCmd.Flags().Float64Var(&matchCooccurrence, "cooccurrence", 0.1, "minimum similarity for divergence and convergence")
	matchCmd.Flags().Float64Var(&matchRatio, "ratio", 0, "also require this fraction of the best score for divergence")
	matchCmd.Flags().BoolVar(&matchUnweighted, "unweighted", false, "plain Jaccard coefficient")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	matchSample.apply(cmd, &cfg.Match.Sample.Proportion, &cfg.Match.Sample.Allowlist)
	ifChanged(cmd, "threshold", func() { cfg.Match.Threshold = matchThreshold })
	ifChanged(cmd, "cooccurrence", func() { cfg.Match.Cooccurrence = matchCooccurrence })
	ifChanged(cmd, "ratio", func() { cfg.Match.Ratio = matchRatio })
	ifChanged(cmd, "unweighted", func() { cfg.Match.Weighted = !matchUnweighted })

	r, err := newRunner()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var res *analysis.CompareReport
	if matchEdges {
		a, err := loadSnapshot(ctx, args[0], matchPartitionA, "a")
		if err != nil {
			return err
		}
		b, err := loadSnapshot(ctx, args[1], matchPartitionB, "b")
		if err != nil {
			return err
		}
		if res, err = r.Compare(ctx, a, b); err != nil {
			return err
		}
	} else {
		l, err := newLoader(ctx, args...)
		if err != nil {
			return err
		}
		a, err := l.LoadMembers(ctx, args[0])
		if err != nil {
			return err
		}
		b, err := l.LoadMembers(ctx, args[1])
		if err != nil {
			return err
		}
		if res, err = r.CompareSets(ctx, a, b); err != nil {
			return err
		}
	}

	return emit(cmd,
		output{"similarity", report.Pairs(res.Match)},
		output{"matches", report.Matches(res.Match)},
		output{"patterns", report.Patterns(res.Match)},
	)
}
