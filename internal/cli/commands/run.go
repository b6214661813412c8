package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/internal/state"
)

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark pipeline on one engine",
		Long: `Run the five-stage benchmark pipeline (load, merge, summarize,
correlate, group_aggregate) against the configured engine and report the
wall-clock seconds spent in each stage.

Every run is recorded in the history database so later runs can be compared
against it; recording is best-effort and never fails a benchmark.`,
		Example: `  # Benchmark the default engine (duckdb) at the default size
  framebench run

  # Benchmark the row-oriented baseline on a smaller dataset
  framebench run --engine sqlite --rows 100000 --cols 20

  # Machine-readable output
  framebench run --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := newLogger(cmd, cfg)
			ctx := cmd.Context()

			store := openHistory(cfg, logger)
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			// Fetch the comparison baseline before this run replaces it.
			var previous *state.Run
			var previousTotal float64
			if store != nil {
				if prev, err := store.GetLatestRun(cfg.Engine); err == nil && prev != nil {
					if timings, err := store.GetStageTimings(prev.ID); err == nil {
						previous = prev
						for _, t := range timings {
							previousTotal += t.Seconds
						}
					}
				}
			}

			report, err := executeBenchmark(ctx, cfg, cfg.Engine, store, logger)
			if err != nil {
				if report != nil && len(report.Stages) > 0 {
					// Show what completed before the failing stage.
					_ = renderReport(cmd.OutOrStdout(), report, cfg.OutputFormat, false)
				}
				return err
			}

			if err := renderReport(cmd.OutOrStdout(), report, cfg.OutputFormat, !cfg.NoChart); err != nil {
				return err
			}

			if cfg.OutputFormat == "table" && previous != nil && previousTotal > 0 &&
				previous.Rows == cfg.Rows && previous.Cols == cfg.Cols && previous.Bins == cfg.Bins {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\nPrevious %s run (%s): %ss total (%s this run)\n",
					previous.Engine, shortID(previous.ID), formatSeconds(previousTotal),
					formatSpeedup(previousTotal, report.Total()))
			}
			return nil
		},
	}
	return cmd
}
