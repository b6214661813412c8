package bench

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/framebench/internal/testutil"
	"github.com/leapstack-labs/framebench/pkg/engine"
)

func newBenchEngine(t *testing.T) engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{Type: "sqlite", Path: ":memory:"}, testutil.NewTestLogger(t))
	require.NoError(t, err)
	require.NoError(t, eng.Connect(context.Background(), engine.Config{Path: ":memory:"}))
	t.Cleanup(func() { _ = eng.Close() })
	return eng
}

func TestHarness_Run(t *testing.T) {
	cfg := Config{Rows: 20, Cols: 3, Bins: 5, Seed: 42}
	h, err := New(newBenchEngine(t), cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.NoError(t, err)
	require.True(t, report.Complete())

	// The stage result map holds exactly the five stages, in execution
	// order, each exactly once.
	require.Len(t, report.Stages, len(StageOrder))
	for i, stage := range report.Stages {
		assert.Equal(t, StageOrder[i], stage.Name)
		assert.GreaterOrEqual(t, stage.Seconds, 0.0)
	}

	assert.Equal(t, "sqlite", report.Engine)
	assert.Greater(t, report.Total(), 0.0)

	// Merged frame: union of columns, all rows present.
	require.NotNil(t, report.Summary)
	require.Len(t, report.Summary.Columns, 2*cfg.Cols)
	for _, stats := range report.Summary.Columns {
		assert.Equal(t, int64(cfg.Rows), stats.Count, "column %s", stats.Column)
	}

	require.NotNil(t, report.Correlation)
	assert.Len(t, report.Correlation.Columns, 2*cfg.Cols)

	require.NotNil(t, report.Groups)
	assert.LessOrEqual(t, len(report.Groups.Bins), cfg.Bins)
}

func TestHarness_SeededMeanMatchesIndependentComputation(t *testing.T) {
	cfg := Config{Rows: 10, Cols: 2, Bins: 5, Seed: 7}

	// Reproduce the harness's generator stream: the left matrix is drawn
	// first, then the right, row-major.
	gen := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	want := make(map[string]float64)
	for _, prefix := range []string{"left_", "right_"} {
		sums := make([]float64, cfg.Cols)
		for i := 0; i < cfg.Rows; i++ {
			for j := 0; j < cfg.Cols; j++ {
				sums[j] += gen.Float64()
			}
		}
		for j, sum := range sums {
			want[columnNames(prefix, cfg.Cols)[j]] = sum / float64(cfg.Rows)
		}
	}

	h, err := New(newBenchEngine(t), cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)
	report, err := h.Run(context.Background())
	require.NoError(t, err)

	for col, mean := range want {
		stats := report.Summary.Stats(col)
		require.NotNil(t, stats, "column %s missing from summary", col)
		assert.InDelta(t, mean, stats.Mean, 1e-9, "column %s", col)
	}
}

// mergeFailEngine fails at the merge stage to exercise the abort path.
type mergeFailEngine struct {
	engine.Engine
	err error
}

func (e *mergeFailEngine) MergeByIndex(context.Context, string, *engine.Frame, *engine.Frame) (*engine.Frame, error) {
	return nil, e.err
}

func TestHarness_StageFailureAbortsWithPartialReport(t *testing.T) {
	sentinel := errors.New("shape mismatch")
	eng := &mergeFailEngine{Engine: newBenchEngine(t), err: sentinel}

	h, err := New(eng, Config{Rows: 5, Cols: 2, Bins: 2, Seed: 1}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	report, err := h.Run(context.Background())
	require.ErrorIs(t, err, sentinel)
	assert.ErrorContains(t, err, "stage merge")

	// The completed load stage stays recorded; nothing after it does.
	require.NotNil(t, report)
	assert.False(t, report.Complete())
	require.Len(t, report.Stages, 1)
	assert.Equal(t, StageLoad, report.Stages[0].Name)
	_, ok := report.Seconds(StageMerge)
	assert.False(t, ok)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cases := []Config{
		{Rows: 0, Cols: 1, Bins: 1},
		{Rows: 1, Cols: 0, Bins: 1},
		{Rows: 1, Cols: 1, Bins: 0},
		{Rows: -5, Cols: 10, Bins: 5},
	}
	for _, cfg := range cases {
		assert.Error(t, cfg.Validate(), "config %+v", cfg)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1_000_000, cfg.Rows)
	assert.Equal(t, 50, cfg.Cols)
	assert.Equal(t, 5, cfg.Bins)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, DefaultConfig(), nil)
	assert.Error(t, err)

	_, err = New(newBenchEngine(t), Config{}, nil)
	assert.Error(t, err)
}
