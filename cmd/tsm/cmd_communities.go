package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/report"
	"github.com/spf13/cobra"
)

var communitiesFlags snapshotFlags

var communitiesCmd = &cobra.Command{
	Use:   "communities EDGES",
	Short: "Select the largest communities and rank their members",
	Long: `Select the most populous communities of a partitioned network and rank
their members by in-degree on the subgraph the selection induces.

The member file (<prefix>_communities.csv) is the input of "tsm match".

Examples:
  tsm communities edges.csv -p partition.csv -k 10 -o results
  tsm communities s3://snapshots/2024-01/edges.csv.sz --top-proportion 0.2`,
	Args: cobra.ExactArgs(1),
	RunE: runCommunities,
}

func init() {
	communitiesFlags.register(communitiesCmd)
	rootCmd.AddCommand(communitiesCmd)
}

func runCommunities(cmd *cobra.Command, args []string) error {
	communitiesFlags.apply(cmd)

	ctx := cmd.Context()
	snap, err := loadSnapshot(ctx, args[0], communitiesFlags.partition, communitiesFlags.name)
	if err != nil {
		return err
	}
	r, err := newRunner()
	if err != nil {
		return err
	}
	res, err := r.Analyze(ctx, snap, 0)
	if err != nil {
		return err
	}

	return emit(cmd,
		output{"summary", report.Summary(res.Set.Summary)},
		output{"ranks", report.Communities(res.Set)},
		output{"communities", report.Members(res.Set)},
	)
}
