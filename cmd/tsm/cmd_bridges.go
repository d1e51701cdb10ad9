package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/analysis"
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var (
	bridgesFlags    snapshotFlags
	bridgesSample   sampleFlags
	bridgesRatio    float64
	bridgesZeroPad  bool
	bridgesWeighted bool
)

var bridgesCmd = &cobra.Command{
	Use:   "bridges EDGES",
	Short: "Find nodes that receive ties from several communities",
	Long: `Find intermediaries: prominent nodes whose incoming ties come from at
least two selected communities, where the second-largest source sends at
least --ratio times as many ties as the largest.

With --ratio 0 the ratio test is dropped: any node receiving ties from at
least two communities, one of them not its own, qualifies.`,
	Args: cobra.ExactArgs(1),
	RunE: runBridges,
}

func init() {
	bridgesFlags.register(bridgesCmd)
	bridgesSample.register(bridgesCmd)
	bridgesCmd.Flags().Float64Var(&bridgesRatio, "ratio", 0.5, "minimum second/highest community ratio")
	bridgesCmd.Flags().BoolVar(&bridgesZeroPad, "zero-pad", false, "list every selected community in distributions")
	bridgesCmd.Flags().BoolVar(&bridgesWeighted, "weighted", true, "count repeated ties separately")
	rootCmd.AddCommand(bridgesCmd)
}

func runBridges(cmd *cobra.Command, args []string) error {
	bridgesFlags.apply(cmd)
	bridgesSample.apply(cmd, &cfg.Bridges.Sample.Proportion, &cfg.Bridges.Sample.Allowlist)
	ifChanged(cmd, "ratio", func() { cfg.Bridges.Ratio = bridgesRatio })
	ifChanged(cmd, "zero-pad", func() { cfg.Bridges.ZeroPad = bridgesZeroPad })
	ifChanged(cmd, "weighted", func() { cfg.Bridges.Weighted = bridgesWeighted })

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], bridgesFlags.partition, bridgesFlags.name)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Analyze(ctx, snap, analysis.StepBridges)
	if err != nil {
		return err
	}

	return emit(cmd, output{"bridges", report.Bridges(res.Bridges)})
}
