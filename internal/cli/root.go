// Package cli provides the command-line interface for framebench.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/internal/cli/commands"
	"github.com/leapstack-labs/framebench/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "framebench",
		Short: "framebench - Tabular Engine Benchmark Harness",
		Long: `framebench benchmarks a fixed pipeline of tabular operations (load, merge,
summarize, correlate, group_aggregate) against interchangeable engines and
reports per-stage wall-clock time.

Two engines ship by default: duckdb (vectorized, columnar) and sqlite
(row-oriented baseline). The same pipeline runs unchanged on both, so the
timing difference is the engine's.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			cmd.SetContext(commands.WithConfig(cmd.Context(), cfg))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go, DuckDB, and SQLite
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./framebench.yaml)")
	rootCmd.PersistentFlags().StringP("engine", "e", config.DefaultEngine, "Tabular engine to benchmark")
	rootCmd.PersistentFlags().String("database", config.DefaultDatabase, "Engine database path (:memory: keeps everything in RAM)")
	rootCmd.PersistentFlags().String("history", config.DefaultHistory, "Run history database path (empty disables recording)")
	rootCmd.PersistentFlags().Int("rows", config.DefaultRows, "Rows per generated dataset")
	rootCmd.PersistentFlags().Int("cols", config.DefaultCols, "Columns per generated dataset")
	rootCmd.PersistentFlags().Int("bins", config.DefaultBins, "Buckets for the group_aggregate stage")
	rootCmd.PersistentFlags().Uint64("seed", config.DefaultSeed, "Seed for the deterministic data generator")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutput, "Output format (table|json)")
	rootCmd.PersistentFlags().Bool("no-chart", false, "Suppress the stage duration bar chart")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	// Register completion for enumerable flags
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("engine", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"duckdb", "sqlite"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewCompareCommand())
	rootCmd.AddCommand(commands.NewEnginesCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewInitCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
