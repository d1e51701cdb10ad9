package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/analysis"
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var (
	gridFlags      snapshotFlags
	gridMode       string
	gridNormalize  bool
	gridReciprocal bool
)

var gridCmd = &cobra.Command{
	Use:   "grid EDGES",
	Short: "Tabulate ties shared between the selected communities",
	Long: `Build the communities x communities shared-tie matrix. The diagonal holds
each community's internal ties; off-diagonal cells count ties sent,
received or both.

--normalize divides each row by the community's total ties.
--reciprocal turns counts into distances (1/x, 1 for empty cells).`,
	Args: cobra.ExactArgs(1),
	RunE: runGrid,
}

func init() {
	gridFlags.register(gridCmd)
	gridCmd.Flags().StringVar(&gridMode, "mode", "both", "sent, received or both")
	gridCmd.Flags().BoolVar(&gridNormalize, "normalize", false, "divide each row by its total")
	gridCmd.Flags().BoolVar(&gridReciprocal, "reciprocal", false, "replace cells with their reciprocal")
	rootCmd.AddCommand(gridCmd)
}

func runGrid(cmd *cobra.Command, args []string) error {
	gridFlags.apply(cmd)
	ifChanged(cmd, "mode", func() { cfg.Matrix.Mode = gridMode })
	ifChanged(cmd, "normalize", func() { cfg.Matrix.Normalize = gridNormalize })
	ifChanged(cmd, "reciprocal", func() { cfg.Matrix.Reciprocal = gridReciprocal })
	// ties outside the selection do not enter the matrix
	cfg.Ties.Scope = "selected"

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], gridFlags.partition, gridFlags.name)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Analyze(ctx, snap, analysis.StepMatrix)
	if err != nil {
		return err
	}

	return emit(cmd, output{"grid", report.Grid(res.Matrix)})
}
