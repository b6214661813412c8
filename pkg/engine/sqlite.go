package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Engine { return NewSQLiteEngine(logger) })
}

// SQLiteEngine implements the Engine interface on SQLite, a row-oriented
// storage engine. It is framebench's baseline backend: the same pipeline
// that the vectorized engine runs, executed row at a time.
//
// SQLite's core has no stddev, correlation, or quantile aggregates, so the
// engine derives them from sum/sum-of-squares/cross-product aggregates and
// order statistics. The per-row scanning cost stays inside SQLite; only the
// final scalar arithmetic happens here.
type SQLiteEngine struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteEngine creates a new SQLite engine instance.
func NewSQLiteEngine(logger *slog.Logger) *SQLiteEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteEngine{logger: logger}
}

// Name returns the engine's registered name.
func (e *SQLiteEngine) Name() string { return "sqlite" }

// Connect establishes a connection to SQLite.
// Use ":memory:" (or an empty path) for an in-memory database.
func (e *SQLiteEngine) Connect(ctx context.Context, cfg Config) error {
	dsn := cfg.Path
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" {
		dsn += "?_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// The in-memory database lives on a single connection; a second
	// connection would see a different, empty database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	e.db = db
	return nil
}

// Close closes the SQLite connection.
func (e *SQLiteEngine) Close() error {
	if e.db != nil {
		err := e.db.Close()
		e.db = nil
		return err
	}
	return nil
}

// CreateFrame materializes a row-major matrix as a SQLite table. Rows are
// inserted one at a time through a prepared statement inside a single
// transaction.
func (e *SQLiteEngine) CreateFrame(ctx context.Context, name string, columns []string, data [][]float64) (*Frame, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := checkFrameInput(name, columns, data); err != nil {
		return nil, err
	}

	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return nil, fmt.Errorf("failed to replace frame %s: %w", name, err)
	}

	ddl := make([]string, 0, len(columns)+1)
	ddl = append(ddl, indexColumn+" INTEGER")
	for _, col := range columns {
		ddl = append(ddl, col+" REAL")
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(ddl, ", "))
	if _, err := e.db.ExecContext(ctx, create); err != nil {
		return nil, fmt.Errorf("failed to create frame %s: %w", name, err)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin insert transaction: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)+1), ", ")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, placeholders)
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to prepare insert for %s: %w", name, err)
	}

	args := make([]any, len(columns)+1)
	for i, values := range data {
		args[0] = int64(i)
		for j, v := range values {
			args[j+1] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return nil, fmt.Errorf("failed to insert row %d into %s: %w", i, name, err)
		}
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to close insert statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit frame %s: %w", name, err)
	}

	e.logger.Debug("created frame", "engine", "sqlite", "frame", name, "rows", len(data), "columns", len(columns))

	frame := &Frame{Table: name, Rows: len(data)}
	frame.Columns = append(frame.Columns, columns...)
	return frame, nil
}

// MergeByIndex joins left and right on the row index into a new table.
func (e *SQLiteEngine) MergeByIndex(ctx context.Context, name string, left, right *Frame) (*Frame, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := checkMergeInput(name, left, right); err != nil {
		return nil, err
	}

	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return nil, fmt.Errorf("failed to replace frame %s: %w", name, err)
	}

	query := fmt.Sprintf(
		"CREATE TABLE %s AS SELECT l.%s, %s, %s FROM %s l JOIN %s r ON l.%s = r.%s",
		name, indexColumn,
		qualifiedColumns("l", left.Columns), qualifiedColumns("r", right.Columns),
		left.Table, right.Table, indexColumn, indexColumn,
	)
	if _, err := e.db.ExecContext(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to merge %s and %s: %w", left.Table, right.Table, err)
	}

	frame := &Frame{Table: name, Rows: left.Rows}
	frame.Columns = append(frame.Columns, left.Columns...)
	frame.Columns = append(frame.Columns, right.Columns...)
	return frame, nil
}

// Describe computes per-column descriptive statistics. Standard deviation
// comes from sum and sum-of-squares; quartiles interpolate linearly between
// order statistics, matching quantile_cont semantics.
func (e *SQLiteEngine) Describe(ctx context.Context, f *Frame) (*Summary, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	summary := &Summary{Columns: make([]ColumnStats, 0, len(f.Columns))}
	for _, col := range f.Columns {
		query := fmt.Sprintf(
			"SELECT count(%[1]s), avg(%[1]s), min(%[1]s), max(%[1]s), sum(%[1]s), sum(%[1]s * %[1]s) FROM %[2]s",
			col, f.Table,
		)

		stats := ColumnStats{Column: col}
		var mean, min, max, sum, sumSq sql.NullFloat64
		err := e.db.QueryRowContext(ctx, query).Scan(&stats.Count, &mean, &min, &max, &sum, &sumSq)
		if err != nil {
			return nil, fmt.Errorf("failed to describe column %s: %w", col, err)
		}
		stats.Mean = nullToNaN(mean)
		stats.Min = nullToNaN(min)
		stats.Max = nullToNaN(max)
		stats.Std = sampleStddev(stats.Count, sum.Float64, sumSq.Float64)

		for _, q := range []struct {
			p    float64
			dest *float64
		}{
			{0.25, &stats.Q25},
			{0.5, &stats.Median},
			{0.75, &stats.Q75},
		} {
			v, err := e.quantileCont(ctx, f.Table, col, q.p, stats.Count)
			if err != nil {
				return nil, err
			}
			*q.dest = v
		}

		summary.Columns = append(summary.Columns, stats)
	}
	return summary, nil
}

// quantileCont computes the linearly interpolated p-quantile of a column
// from its order statistics.
func (e *SQLiteEngine) quantileCont(ctx context.Context, table, col string, p float64, count int64) (float64, error) {
	if count == 0 {
		return math.NaN(), nil
	}

	h := p * float64(count-1)
	lo := int64(math.Floor(h))
	frac := h - float64(lo)

	query := fmt.Sprintf(
		"SELECT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL ORDER BY %[1]s LIMIT 2 OFFSET %[3]d",
		col, table, lo,
	)
	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to compute quantile of %s: %w", col, err)
	}
	defer func() { _ = rows.Close() }()

	values := make([]float64, 0, 2)
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return 0, fmt.Errorf("failed to scan quantile of %s: %w", col, err)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("error iterating quantile of %s: %w", col, err)
	}

	switch {
	case len(values) == 0:
		return math.NaN(), nil
	case frac == 0 || len(values) == 1:
		return values[0], nil
	default:
		return values[0] + frac*(values[1]-values[0]), nil
	}
}

// Correlate computes the Pearson correlation matrix. Each pair, diagonal
// included, costs one aggregate query over the frame; a zero-variance
// column correlates as NaN even against itself, matching corr's NULL.
func (e *SQLiteEngine) Correlate(ctx context.Context, f *Frame) (*CorrMatrix, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	n := len(f.Columns)
	matrix := &CorrMatrix{Values: make([][]float64, n)}
	matrix.Columns = append(matrix.Columns, f.Columns...)
	for i := range matrix.Values {
		matrix.Values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r, err := e.pearson(ctx, f.Table, f.Columns[i], f.Columns[j])
			if err != nil {
				return nil, err
			}
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}
	return matrix, nil
}

// pearson computes corr(x, y) from one pass of SQL aggregates.
func (e *SQLiteEngine) pearson(ctx context.Context, table, x, y string) (float64, error) {
	query := fmt.Sprintf(
		"SELECT count(*), sum(%[1]s), sum(%[2]s), sum(%[1]s * %[1]s), sum(%[2]s * %[2]s), sum(%[1]s * %[2]s) FROM %[3]s",
		x, y, table,
	)

	var count int64
	var sx, sy, sxx, syy, sxy sql.NullFloat64
	err := e.db.QueryRowContext(ctx, query).Scan(&count, &sx, &sy, &sxx, &syy, &sxy)
	if err != nil {
		return 0, fmt.Errorf("failed to correlate %s and %s: %w", x, y, err)
	}
	if count == 0 {
		return math.NaN(), nil
	}

	nf := float64(count)
	cov := nf*sxy.Float64 - sx.Float64*sy.Float64
	varX := nf*sxx.Float64 - sx.Float64*sx.Float64
	varY := nf*syy.Float64 - sy.Float64*sy.Float64
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return math.NaN(), nil
	}
	return cov / denom, nil
}

// GroupAggregate bins rows by index into equal-width buckets and computes
// the mean of every column per bucket.
func (e *SQLiteEngine) GroupAggregate(ctx context.Context, f *Frame, bins int) (*GroupResult, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := checkBins(bins); err != nil {
		return nil, err
	}

	result := &GroupResult{}
	result.Columns = append(result.Columns, f.Columns...)
	if f.Rows == 0 {
		return result, nil
	}

	// SQLite integer division already floors non-negative operands.
	bin := fmt.Sprintf("(%s * %d) / %d", indexColumn, bins, f.Rows)
	exprs := make([]string, len(f.Columns))
	for i, col := range f.Columns {
		exprs[i] = "avg(" + col + ")"
	}
	query := fmt.Sprintf(
		"SELECT %s AS bin, %s FROM %s GROUP BY bin ORDER BY bin",
		bin, strings.Join(exprs, ", "), f.Table,
	)

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to group-aggregate %s: %w", f.Table, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var binID int64
		cells := make([]sql.NullFloat64, len(f.Columns))
		dest := make([]any, 0, len(f.Columns)+1)
		dest = append(dest, &binID)
		for j := range cells {
			dest = append(dest, &cells[j])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		means := make([]float64, len(cells))
		for j, cell := range cells {
			means[j] = nullToNaN(cell)
		}
		result.Bins = append(result.Bins, binID)
		result.Means = append(result.Means, means)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return result, nil
}

// DropFrame drops the backing table if it exists.
func (e *SQLiteEngine) DropFrame(ctx context.Context, f *Frame) error {
	if e.db == nil {
		return fmt.Errorf("database connection not established")
	}
	if !validIdentifier(f.Table) {
		return fmt.Errorf("invalid frame table %q", f.Table)
	}
	if _, err := e.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+f.Table); err != nil {
		return fmt.Errorf("failed to drop frame %s: %w", f.Table, err)
	}
	return nil
}

// sampleStddev derives the sample standard deviation from aggregate sums.
// Returns NaN when fewer than two observations exist, matching stddev_samp.
func sampleStddev(count int64, sum, sumSq float64) float64 {
	if count < 2 {
		return math.NaN()
	}
	nf := float64(count)
	variance := (sumSq - sum*sum/nf) / (nf - 1)
	if variance < 0 {
		// Floating-point cancellation can push a near-zero variance negative.
		variance = 0
	}
	return math.Sqrt(variance)
}

// Ensure SQLiteEngine implements Engine interface
var _ Engine = (*SQLiteEngine)(nil)
