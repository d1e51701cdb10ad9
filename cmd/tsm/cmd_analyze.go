package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var analyzeFlags snapshotFlags

var analyzeCmd = &cobra.Command{
	Use:   "analyze EDGES",
	Short: "Run every single-snapshot analysis",
	Long: `Run community selection, the EI index, the shared-tie matrix and
intermediary detection over one snapshot, using the settings of the
analysis profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeFlags.register(analyzeCmd)
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analyzeFlags.apply(cmd)

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], analyzeFlags.partition, analyzeFlags.name)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.AnalyzeSnapshot(ctx, snap)
	if err != nil {
		return err
	}

	return emit(cmd,
		output{"summary", report.Summary(res.Set.Summary)},
		output{"communities", report.Members(res.Set)},
		output{"ei_indices", report.EIIndices(res.Ties)},
		output{"overlap", report.Overlap(res.Overlap)},
		output{"grid", report.Grid(res.Matrix)},
		output{"bridges", report.Bridges(res.Bridges)},
	)
}
