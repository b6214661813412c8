package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/internal/bench"
	"github.com/leapstack-labs/framebench/pkg/engine"
)

// NewCompareCommand creates the compare command.
func NewCompareCommand() *cobra.Command {
	var engines []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run the benchmark pipeline on several engines and compare",
		Long: `Run the identical benchmark pipeline against multiple engines, one after
another, and render a side-by-side stage comparison. The first engine is the
baseline; every other engine's speedup is baseline seconds divided by its
own.

Engines run strictly sequentially so their measurements never contend for
the same cores.`,
		Example: `  # Row-oriented baseline vs. vectorized engine (the default pairing)
  framebench compare

  # Pick the engines and order explicitly
  framebench compare --engines sqlite,duckdb --rows 100000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()

			if len(engines) < 2 {
				return fmt.Errorf("compare needs at least two engines, got %d", len(engines))
			}
			for _, name := range engines {
				if _, ok := engine.Get(name); !ok {
					return &engine.UnknownEngineError{Type: name, Available: engine.ListEngines()}
				}
			}

			store := openHistory(cfg, logger)
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			reports := make([]*bench.Report, 0, len(engines))
			for _, name := range engines {
				logger.Info("benchmarking engine", "engine", name)
				engineCfg := *cfg
				engineCfg.Database = engineDatabase(cfg.Database, name)
				report, err := executeBenchmark(ctx, &engineCfg, name, store, logger)
				if err != nil {
					return fmt.Errorf("engine %s: %w", name, err)
				}
				reports = append(reports, report)
			}

			return renderComparison(cmd.OutOrStdout(), reports, cfg.OutputFormat)
		},
	}

	cmd.Flags().StringSliceVar(&engines, "engines", []string{"sqlite", "duckdb"},
		"Engines to benchmark, baseline first")
	return cmd
}
