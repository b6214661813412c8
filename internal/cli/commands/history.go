package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded benchmark runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd)
			logger := newLogger(cmd, cfg)

			if cfg.History == "" {
				return fmt.Errorf("run history is disabled (empty history path)")
			}
			if _, err := os.Stat(cfg.History); os.IsNotExist(err) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "(no recorded runs)")
				return nil
			}

			store := state.NewSQLiteStore(logger)
			if err := store.Open(cfg.History); err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer func() { _ = store.Close() }()
			if err := store.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate run history: %w", err)
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}

			totals := make(map[string]float64, len(runs))
			for _, run := range runs {
				timings, err := store.GetStageTimings(run.ID)
				if err != nil {
					return err
				}
				for _, t := range timings {
					totals[run.ID] += t.Seconds
				}
			}

			return renderRuns(cmd.OutOrStdout(), runs, totals, cfg.OutputFormat)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return cmd
}
