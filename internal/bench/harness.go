package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/leapstack-labs/framebench/pkg/engine"
)

// Stage names, in pipeline order. Later stages consume earlier outputs, so
// the order is fixed: load produces the two input frames, merge combines
// them once, and the three statistics stages all read the merged frame.
const (
	StageLoad           = "load"
	StageMerge          = "merge"
	StageSummarize      = "summarize"
	StageCorrelate      = "correlate"
	StageGroupAggregate = "group_aggregate"
)

// StageOrder lists the pipeline stages in execution order.
var StageOrder = []string{StageLoad, StageMerge, StageSummarize, StageCorrelate, StageGroupAggregate}

// Engine-side table names used by the harness. Reruns against the same
// database replace them.
const (
	leftTable   = "bench_left"
	rightTable  = "bench_right"
	mergedTable = "bench_merged"
)

// Config holds the scalar parameters of a benchmark run.
type Config struct {
	// Rows is the row count of each generated dataset.
	Rows int `json:"rows"`
	// Cols is the column count of each generated dataset; the merged frame
	// has twice as many columns.
	Cols int `json:"cols"`
	// Bins is the bucket count for the group_aggregate stage.
	Bins int `json:"bins"`
	// Seed drives the deterministic data generator.
	Seed uint64 `json:"seed"`
}

// DefaultConfig returns the standard benchmark size.
func DefaultConfig() Config {
	return Config{Rows: 1_000_000, Cols: 50, Bins: 5, Seed: 42}
}

// Validate checks the config's scalar parameters.
func (c Config) Validate() error {
	if c.Rows < 1 {
		return fmt.Errorf("rows must be positive, got %d", c.Rows)
	}
	if c.Cols < 1 {
		return fmt.Errorf("cols must be positive, got %d", c.Cols)
	}
	if c.Bins < 1 {
		return fmt.Errorf("bins must be positive, got %d", c.Bins)
	}
	return nil
}

// Harness runs the benchmark pipeline against one engine. A harness
// instance owns exactly one run's stage result map; it is single-threaded
// and stages execute strictly in order.
type Harness struct {
	engine engine.Engine
	cfg    Config
	logger *slog.Logger
}

// New creates a harness for the given engine and config.
func New(eng engine.Engine, cfg Config, logger *slog.Logger) (*Harness, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid benchmark config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Harness{engine: eng, cfg: cfg, logger: logger}, nil
}

// Run executes the pipeline and returns the stage result map. The first
// failing stage aborts the run: its error is returned wrapped with the
// stage name, together with the partial report of the stages that had
// already completed. There are no retries.
func (h *Harness) Run(ctx context.Context) (*Report, error) {
	report := NewReport(h.engine.Name(), h.cfg)

	var left, right, merged *engine.Frame
	defer func() {
		// Best-effort cleanup; the report is already built.
		for _, f := range []*engine.Frame{left, right, merged} {
			if f != nil {
				_ = h.engine.DropFrame(ctx, f)
			}
		}
	}()

	gen := rand.New(rand.NewPCG(h.cfg.Seed, h.cfg.Seed))

	stages := []struct {
		name string
		fn   func() error
	}{
		{StageLoad, func() error {
			var err error
			left, err = h.engine.CreateFrame(ctx, leftTable, columnNames("left_", h.cfg.Cols), randomMatrix(gen, h.cfg.Rows, h.cfg.Cols))
			if err != nil {
				return err
			}
			right, err = h.engine.CreateFrame(ctx, rightTable, columnNames("right_", h.cfg.Cols), randomMatrix(gen, h.cfg.Rows, h.cfg.Cols))
			return err
		}},
		{StageMerge, func() error {
			var err error
			merged, err = h.engine.MergeByIndex(ctx, mergedTable, left, right)
			return err
		}},
		{StageSummarize, func() error {
			var err error
			report.Summary, err = h.engine.Describe(ctx, merged)
			return err
		}},
		{StageCorrelate, func() error {
			var err error
			report.Correlation, err = h.engine.Correlate(ctx, merged)
			return err
		}},
		{StageGroupAggregate, func() error {
			var err error
			report.Groups, err = h.engine.GroupAggregate(ctx, merged, h.cfg.Bins)
			return err
		}},
	}

	h.logger.Info("starting benchmark",
		"engine", h.engine.Name(), "rows", h.cfg.Rows, "cols", h.cfg.Cols, "bins", h.cfg.Bins)

	for _, stage := range stages {
		h.logger.Debug("running stage", "stage", stage.name)
		timer, err := Track(stage.fn)
		if err != nil {
			return report, fmt.Errorf("stage %s: %w", stage.name, err)
		}
		report.Add(stage.name, timer.Interval())
		h.logger.Info("stage complete", "stage", stage.name, "seconds", timer.Interval())
	}

	return report, nil
}

// columnNames builds prefixed column names; the prefix keeps the two
// generated datasets' columns disjoint.
func columnNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return names
}

// randomMatrix generates rows×cols uniform values in [0, 1).
func randomMatrix(gen *rand.Rand, rows, cols int) [][]float64 {
	data := make([][]float64, rows)
	for i := range data {
		row := make([]float64, cols)
		for j := range row {
			row[j] = gen.Float64()
		}
		data[i] = row
	}
	return data
}
