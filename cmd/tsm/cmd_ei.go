package main

import (
	"fmt"

	"github.com/dd0wney/cluso-subgraph/pkg/algorithms"
	"github.com/dd0wney/cluso-subgraph/pkg/analysis"
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var (
	eiFlags          snapshotFlags
	eiWeighted       bool
	eiScope          string
	eiSkipDegenerate bool
	eiVerbose        bool
)

var eiCmd = &cobra.Command{
	Use:   "ei EDGES",
	Short: "Compute the EI index of each selected community",
	Long: `Classify every tie touching the selected communities as internal or
external and compute each community's EI index, (E - I) / (E + I).
-1 means all ties stay inside the community, 1 means all ties leave it.

With --verbose, also break each community's ties down by partner
community into incoming and outgoing shares.`,
	Args: cobra.ExactArgs(1),
	RunE: runEI,
}

func init() {
	eiFlags.register(eiCmd)
	eiCmd.Flags().BoolVar(&eiWeighted, "weighted", false, "count repeated ties separately")
	eiCmd.Flags().StringVar(&eiScope, "scope", "all", "external ties: all (include unselected nodes) or selected")
	eiCmd.Flags().BoolVar(&eiSkipDegenerate, "skip-degenerate", false, "report communities without ties instead of failing")
	eiCmd.Flags().BoolVarP(&eiVerbose, "verbose", "v", false, "also report the overlap breakdown")
	rootCmd.AddCommand(eiCmd)
}

func runEI(cmd *cobra.Command, args []string) error {
	eiFlags.apply(cmd)
	ifChanged(cmd, "weighted", func() { cfg.Ties.Weighted = eiWeighted })
	ifChanged(cmd, "scope", func() { cfg.Ties.Scope = eiScope })
	ifChanged(cmd, "skip-degenerate", func() {
		if eiSkipDegenerate {
			cfg.Ties.Degenerate = "skip"
		}
	})

	steps := analysis.StepTies
	if eiVerbose {
		steps |= analysis.StepMatrix
	}

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], eiFlags.partition, eiFlags.name)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Analyze(ctx, snap, steps)
	if algorithms.IsDegenerate(err) {
		return fmt.Errorf("%w (use --skip-degenerate to report it)", err)
	}
	if err != nil {
		return err
	}

	outputs := []output{{"ei_indices", report.EIIndices(res.Ties)}}
	if eiVerbose {
		outputs = append(outputs, output{"overlap", report.Overlap(res.Overlap)})
	}
	return emit(cmd, outputs...)
}
