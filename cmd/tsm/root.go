package main

import (
	"github.com/dd0wney/cluso-subgraph/pkg/config"
	"github.com/dd0wney/cluso-subgraph/pkg/logging"
	"github.com/dd0wney/cluso-subgraph/pkg/metrics"
	"github.com/spf13/cobra"
)

// --- Global Flags ---
var (
	configPath  string
	logLevel    string
	outDir      string
	outPrefix   string
	metricsFile string
	s3Endpoint  string
	quiet       bool

	// set up by PersistentPreRunE
	cfg      *config.Config
	logger   logging.Logger = logging.NopLogger{}
	registry *metrics.Registry

	rootCmd = &cobra.Command{
		Use:   "tsm",
		Short: "Community tie analytics for directed social networks",
		Long: `tsm analyzes partitioned social tie networks. It selects the largest
communities, measures their insularity with the EI index, tabulates the
ties they share, matches communities across two snapshots and finds
intermediary nodes.

Edge inputs may be local files, s3:// objects or postgres:// databases.
Files ending in .sz (snappy stream) or .snappy (snappy block) are
decompressed on the fly.`,
		SilenceUsage:       true,
		PersistentPreRunE:  setup,
		PersistentPostRunE: flushMetrics,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "analysis profile (YAML)")
	pf.StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides the profile)")
	pf.StringVarP(&outDir, "out", "o", "", "directory for CSV results")
	pf.StringVar(&outPrefix, "prefix", "tsm", "file name prefix for CSV results")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.StringVar(&s3Endpoint, "s3-endpoint", "", "S3-compatible endpoint for s3:// inputs")
	pf.BoolVarP(&quiet, "quiet", "q", false, "do not print result tables")
}

func setup(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c = loaded
	}
	if logLevel != "" {
		c.Log.Level = logLevel
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}

	cfg = c
	logger = logging.NewJSONLogger(cmd.ErrOrStderr(), level).With(logging.Component("tsm"))
	registry = metrics.NewRegistry()
	return nil
}

func flushMetrics(cmd *cobra.Command, args []string) error {
	if metricsFile == "" || registry == nil {
		return nil
	}
	if err := registry.WriteTextfile(metricsFile); err != nil {
		return err
	}
	logger.Debug("metrics written", logging.String("path", metricsFile))
	return nil
}
