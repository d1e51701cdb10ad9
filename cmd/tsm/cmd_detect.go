package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var (
	detectName          string
	detectMaxIterations int
	detectSeed          uint64
)

var detectCmd = &cobra.Command{
	Use:   "detect EDGES",
	Short: "Partition a network into communities",
	Long: `Partition the undirected projection of a network with label propagation
and write the result as a name,community file usable with --partition.
Communities are numbered from 0 in decreasing size.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectName, "name", "", "snapshot name for logs and metrics")
	detectCmd.Flags().IntVar(&detectMaxIterations, "max-iterations", 100, "label propagation rounds")
	detectCmd.Flags().Uint64Var(&detectSeed, "seed", 1, "node order seed")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	ifChanged(cmd, "max-iterations", func() { cfg.Detect.MaxIterations = detectMaxIterations })
	ifChanged(cmd, "seed", func() { cfg.Detect.Seed = detectSeed })

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], "", detectName)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	p, err := r.Detect(ctx, snap)
	if err != nil {
		return err
	}

	return emit(cmd, output{"detection", report.Detection(p)}, output{"partition", report.Partition(p)})
}
