package commands

// bench.go - shared benchmark execution and run history recording

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/framebench/internal/bench"
	"github.com/leapstack-labs/framebench/internal/cli/config"
	"github.com/leapstack-labs/framebench/internal/state"
	"github.com/leapstack-labs/framebench/pkg/engine"
)

// benchConfig maps CLI configuration onto harness parameters.
func benchConfig(cfg *config.Config) bench.Config {
	return bench.Config{Rows: cfg.Rows, Cols: cfg.Cols, Bins: cfg.Bins, Seed: cfg.Seed}
}

// engineDatabase derives a per-engine database path. Engines write
// incompatible file formats, so a comparison over a file-backed database
// gives each engine its own file; in-memory databases pass through.
func engineDatabase(path, engineName string) string {
	if path == "" || path == ":memory:" {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + engineName + ext
}

// openHistory opens the run history store, creating its directory if
// needed. History is best-effort: on failure it logs a warning and returns
// nil, and the benchmark proceeds unrecorded.
func openHistory(cfg *config.Config, logger *slog.Logger) *state.SQLiteStore {
	if cfg.History == "" {
		return nil
	}
	if dir := filepath.Dir(cfg.History); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			logger.Warn("cannot create history directory", "path", dir, "error", err)
			return nil
		}
	}

	store := state.NewSQLiteStore(logger)
	if err := store.Open(cfg.History); err != nil {
		logger.Warn("cannot open run history", "path", cfg.History, "error", err)
		return nil
	}
	if err := store.Migrate(); err != nil {
		logger.Warn("cannot migrate run history", "path", cfg.History, "error", err)
		_ = store.Close()
		return nil
	}
	return store
}

// executeBenchmark runs the full pipeline on one engine and records the
// outcome in the history store (when store is non-nil). The report is
// returned even when a stage failed, holding the stages that completed.
func executeBenchmark(ctx context.Context, cfg *config.Config, engineName string, store *state.SQLiteStore, logger *slog.Logger) (*bench.Report, error) {
	engCfg := engine.Config{Type: engineName, Path: cfg.Database}
	eng, err := engine.New(engCfg, logger)
	if err != nil {
		return nil, err
	}
	if err := eng.Connect(ctx, engCfg); err != nil {
		return nil, fmt.Errorf("failed to connect %s engine: %w", engineName, err)
	}
	defer func() { _ = eng.Close() }()

	harness, err := bench.New(eng, benchConfig(cfg), logger)
	if err != nil {
		return nil, err
	}

	var runID string
	if store != nil {
		run, err := store.CreateRun(engineName, cfg.Rows, cfg.Cols, cfg.Bins, cfg.Seed)
		if err != nil {
			logger.Warn("cannot record run start", "error", err)
		} else {
			runID = run.ID
		}
	}

	report, runErr := harness.Run(ctx)

	if store != nil && runID != "" {
		status := state.RunStatusCompleted
		errMsg := ""
		if runErr != nil {
			status = state.RunStatusFailed
			errMsg = runErr.Error()
		}
		timings := make([]state.StageTiming, len(report.Stages))
		for i, s := range report.Stages {
			timings[i] = state.StageTiming{Stage: s.Name, Seconds: s.Seconds}
		}
		if err := store.CompleteRun(runID, status, errMsg, timings); err != nil {
			logger.Warn("cannot record run completion", "run_id", runID, "error", err)
		}
	}

	return report, runErr
}
