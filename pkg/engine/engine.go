// Package engine provides the tabular processing engine interface and
// implementations for framebench's benchmark pipeline.
//
// An Engine exposes a small, fixed capability set: building a frame from an
// in-memory numeric matrix, merging two frames on their row index, computing
// per-column descriptive statistics, computing a pairwise Pearson
// correlation matrix, and grouping rows into equal-width index bins with
// per-column means. Everything heavier than orchestration is delegated to
// the backing engine; framebench never reimplements merge, correlation, or
// group-by itself.
package engine

import (
	"context"
)

// Config holds the configuration for connecting to an engine.
type Config struct {
	// Type specifies the engine type (e.g., "duckdb", "sqlite")
	Type string

	// Path is the database file path. Use ":memory:" (the default when
	// empty) for an in-memory database.
	Path string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Frame is an opaque handle to a tabular dataset held by an engine.
// Callers never see the storage layout; they pass the handle back into the
// engine's operations.
type Frame struct {
	// Table is the engine-side table backing this frame.
	Table string

	// Rows is the number of rows in the frame.
	Rows int

	// Columns lists the frame's numeric column names in order. The
	// positional row index is maintained by the engine and is not listed.
	Columns []string
}

// NumColumns returns the number of named columns in the frame.
func (f *Frame) NumColumns() int {
	return len(f.Columns)
}

// ColumnStats holds descriptive statistics for a single column.
type ColumnStats struct {
	Column string
	Count  int64
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Summary holds per-column descriptive statistics for a frame.
// Columns appear in frame order.
type Summary struct {
	Columns []ColumnStats
}

// Stats returns the statistics for the named column, or nil if the column
// is not part of the summary.
func (s *Summary) Stats(column string) *ColumnStats {
	for i := range s.Columns {
		if s.Columns[i].Column == column {
			return &s.Columns[i]
		}
	}
	return nil
}

// CorrMatrix is a pairwise Pearson correlation matrix over a frame's
// columns. Values is square with Values[i][j] = corr(Columns[i], Columns[j]).
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// At returns the correlation between columns i and j.
func (m *CorrMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// GroupResult holds the outcome of an equal-width group aggregation.
// Bins lists the non-empty bin identifiers in ascending order; Means[b][c]
// is the mean of Columns[c] within Bins[b].
type GroupResult struct {
	Columns []string
	Bins    []int64
	Means   [][]float64
}

// Engine defines the interface that all tabular engines must implement.
// Implementations register themselves via Register in an init function and
// are selected explicitly by name; there is no implicit backend switching.
type Engine interface {
	// Name returns the engine's registered name (e.g., "duckdb").
	Name() string

	// Connect establishes the engine's backing connection.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the backing connection and releases resources.
	Close() error

	// CreateFrame builds a frame named name from a row-major matrix. Every
	// row of data must have exactly len(columns) values, and column names
	// must be unique valid identifiers.
	CreateFrame(ctx context.Context, name string, columns []string, data [][]float64) (*Frame, error)

	// MergeByIndex aligns left and right on their positional row index and
	// materializes a frame named name whose column set is the union of both
	// inputs' columns. The inputs must have equal row counts and disjoint
	// column names.
	MergeByIndex(ctx context.Context, name string, left, right *Frame) (*Frame, error)

	// Describe computes count, mean, sample standard deviation, min,
	// quartiles, and max for every column of the frame.
	Describe(ctx context.Context, f *Frame) (*Summary, error)

	// Correlate computes the pairwise Pearson correlation matrix across all
	// columns of the frame.
	Correlate(ctx context.Context, f *Frame) (*CorrMatrix, error)

	// GroupAggregate partitions the frame's rows into bins equal-width
	// buckets over the row index and returns the per-bin mean of every
	// column. Empty bins are omitted.
	GroupAggregate(ctx context.Context, f *Frame, bins int) (*GroupResult, error)

	// DropFrame discards an engine-side frame. Dropping a frame that no
	// longer exists is not an error.
	DropFrame(ctx context.Context, f *Frame) error
}
