package engine

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"strings"

	"github.com/marcboeker/go-duckdb"
)

func init() {
	Register("duckdb", func(logger *slog.Logger) Engine { return NewDuckDBEngine(logger) })
}

// DuckDBEngine implements the Engine interface on DuckDB, a vectorized
// columnar engine. This is the accelerated backend in framebench's CPU
// baseline vs. analytical engine comparison.
type DuckDBEngine struct {
	connector *duckdb.Connector
	db        *sql.DB
	logger    *slog.Logger
}

// NewDuckDBEngine creates a new DuckDB engine instance.
func NewDuckDBEngine(logger *slog.Logger) *DuckDBEngine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DuckDBEngine{logger: logger}
}

// Name returns the engine's registered name.
func (e *DuckDBEngine) Name() string { return "duckdb" }

// Connect establishes a connection to DuckDB.
// Use ":memory:" (or an empty path) for an in-memory database.
func (e *DuckDBEngine) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == ":memory:" {
		// DuckDB uses the empty DSN for in-memory databases.
		path = ""
	}

	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = connector.Close()
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	e.connector = connector
	e.db = db
	return nil
}

// Close closes the DuckDB connection.
func (e *DuckDBEngine) Close() error {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			return err
		}
		e.db = nil
	}
	if e.connector != nil {
		if err := e.connector.Close(); err != nil {
			return err
		}
		e.connector = nil
	}
	return nil
}

// CreateFrame materializes a row-major matrix as a DuckDB table. Rows are
// loaded through the appender API, which is DuckDB's bulk ingestion path.
func (e *DuckDBEngine) CreateFrame(ctx context.Context, name string, columns []string, data [][]float64) (*Frame, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := checkFrameInput(name, columns, data); err != nil {
		return nil, err
	}

	ddl := make([]string, 0, len(columns)+1)
	ddl = append(ddl, indexColumn+" BIGINT")
	for _, col := range columns {
		ddl = append(ddl, col+" DOUBLE")
	}
	create := fmt.Sprintf("CREATE OR REPLACE TABLE %s (%s)", name, strings.Join(ddl, ", "))
	if _, err := e.db.ExecContext(ctx, create); err != nil {
		return nil, fmt.Errorf("failed to create frame %s: %w", name, err)
	}

	conn, err := e.connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire appender connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	appender, err := duckdb.NewAppenderFromConn(conn, "", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create appender for %s: %w", name, err)
	}

	row := make([]driver.Value, len(columns)+1)
	for i, values := range data {
		row[0] = int64(i)
		for j, v := range values {
			row[j+1] = v
		}
		if err := appender.AppendRow(row...); err != nil {
			_ = appender.Close()
			return nil, fmt.Errorf("failed to append row %d to %s: %w", i, name, err)
		}
	}
	if err := appender.Close(); err != nil {
		return nil, fmt.Errorf("failed to flush appender for %s: %w", name, err)
	}

	e.logger.Debug("created frame", "engine", "duckdb", "frame", name, "rows", len(data), "columns", len(columns))

	frame := &Frame{Table: name, Rows: len(data)}
	frame.Columns = append(frame.Columns, columns...)
	return frame, nil
}

// MergeByIndex joins left and right on the row index into a new table.
func (e *DuckDBEngine) MergeByIndex(ctx context.Context, name string, left, right *Frame) (*Frame, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}
	if err := checkMergeInput(name, left, right); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"CREATE OR REPLACE TABLE %s AS SELECT l.%s, %s, %s FROM %s l JOIN %s r ON l.%s = r.%s",
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

// Describe computes per-column descriptive statistics using DuckDB's
// native aggregates, including quantile_cont for interpolated quartiles.
func (e *DuckDBEngine) Describe(ctx context.Context, f *Frame) (*Summary, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	summary := &Summary{Columns: make([]ColumnStats, 0, len(f.Columns))}
	for _, col := range f.Columns {
		query := fmt.Sprintf(
			"SELECT count(%[1]s), avg(%[1]s), stddev_samp(%[1]s), min(%[1]s), "+
				"quantile_cont(%[1]s, 0.25), quantile_cont(%[1]s, 0.5), quantile_cont(%[1]s, 0.75), max(%[1]s) FROM %[2]s",
			col, f.Table,
		)

		stats := ColumnStats{Column: col}
		var mean, std, min, q25, med, q75, max sql.NullFloat64
		err := e.db.QueryRowContext(ctx, query).Scan(
			&stats.Count, &mean, &std, &min, &q25, &med, &q75, &max,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to describe column %s: %w", col, err)
		}
		stats.Mean = nullToNaN(mean)
		stats.Std = nullToNaN(std)
		stats.Min = nullToNaN(min)
		stats.Q25 = nullToNaN(q25)
		stats.Median = nullToNaN(med)
		stats.Q75 = nullToNaN(q75)
		stats.Max = nullToNaN(max)
		summary.Columns = append(summary.Columns, stats)
	}
	return summary, nil
}

// Correlate computes the Pearson correlation matrix with DuckDB's corr
// aggregate, one query per matrix row.
func (e *DuckDBEngine) Correlate(ctx context.Context, f *Frame) (*CorrMatrix, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	n := len(f.Columns)
	matrix := &CorrMatrix{Values: make([][]float64, n)}
	matrix.Columns = append(matrix.Columns, f.Columns...)

	for i, ci := range f.Columns {
		exprs := make([]string, n)
		for j, cj := range f.Columns {
			exprs[j] = fmt.Sprintf("corr(%s, %s)", ci, cj)
		}
		query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(exprs, ", "), f.Table)

		cells := make([]sql.NullFloat64, n)
		dest := make([]any, n)
		for j := range cells {
			dest[j] = &cells[j]
		}
		if err := e.db.QueryRowContext(ctx, query).Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to correlate column %s: %w", ci, err)
		}

		matrix.Values[i] = make([]float64, n)
		for j, cell := range cells {
			matrix.Values[i][j] = nullToNaN(cell)
		}
	}
	return matrix, nil
}

// GroupAggregate bins rows by index into equal-width buckets and computes
// the mean of every column per bucket.
func (e *DuckDBEngine) GroupAggregate(ctx context.Context, f *Frame, bins int) (*GroupResult, error) {
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

	// DuckDB's / on integers yields a double, so floor before casting;
	// CAST alone rounds to nearest.
	bin := fmt.Sprintf("CAST(floor(%s * %d / %d) AS BIGINT)", indexColumn, bins, f.Rows)
	exprs := make([]string, len(f.Columns))
	for i, col := range f.Columns {
		exprs[i] = "avg(" + col + ")"
	}
	query := fmt.Sprintf(
		"SELECT %s AS bin, %s FROM %s GROUP BY 1 ORDER BY 1",
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
func (e *DuckDBEngine) DropFrame(ctx context.Context, f *Frame) error {
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

// Ensure DuckDBEngine implements Engine interface
var _ Engine = (*DuckDBEngine)(nil)
