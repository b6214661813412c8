// Package commands implements the framebench subcommands.
package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/framebench/internal/cli/config"
)

// configKey is used to store config in the command context.
type configKey struct{}

// WithConfig returns a context carrying the loaded CLI config.
// The root command attaches it before any subcommand runs.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// getConfig retrieves the config from the command context, falling back to
// defaults when the root command did not load one (e.g. in tests).
func getConfig(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return &config.Config{
		Engine:       config.DefaultEngine,
		Database:     config.DefaultDatabase,
		History:      config.DefaultHistory,
		Rows:         config.DefaultRows,
		Cols:         config.DefaultCols,
		Bins:         config.DefaultBins,
		Seed:         config.DefaultSeed,
		OutputFormat: config.DefaultOutput,
	}
}

// newLogger builds the command's structured logger. It writes to stderr so
// report output on stdout stays machine-readable.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
