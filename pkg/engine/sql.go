package engine

// sql.go - shared input validation and SQL fragment helpers for the
// SQL-backed engine implementations.

import (
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"
)

// indexColumn is the engine-maintained positional row index column. It is
// reserved; frames may not declare a column with this name.
const indexColumn = "row_idx"

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validIdentifier reports whether name is safe to splice into SQL as a
// table or column identifier.
func validIdentifier(name string) bool {
	return identifierRe.MatchString(name)
}

// checkFrameInput validates a CreateFrame request: table and column names
// must be identifiers, column names unique and not the reserved index
// column, and every data row must match the column count.
func checkFrameInput(name string, columns []string, data [][]float64) error {
	if !validIdentifier(name) {
		return fmt.Errorf("invalid frame name %q", name)
	}
	if len(columns) == 0 {
		return fmt.Errorf("frame %s: at least one column required", name)
	}
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if !validIdentifier(col) {
			return fmt.Errorf("frame %s: invalid column name %q", name, col)
		}
		if col == indexColumn {
			return fmt.Errorf("frame %s: column name %q is reserved", name, col)
		}
		if _, dup := seen[col]; dup {
			return fmt.Errorf("frame %s: duplicate column name %q", name, col)
		}
		seen[col] = struct{}{}
	}
	for i, row := range data {
		if len(row) != len(columns) {
			return fmt.Errorf("frame %s: row %d has %d values, want %d", name, i, len(row), len(columns))
		}
	}
	return nil
}

// checkMergeInput validates a MergeByIndex request: equal row counts and
// disjoint column sets.
func checkMergeInput(name string, left, right *Frame) error {
	if !validIdentifier(name) {
		return fmt.Errorf("invalid frame name %q", name)
	}
	if left == nil || right == nil {
		return fmt.Errorf("merge %s: both input frames required", name)
	}
	if left.Rows != right.Rows {
		return fmt.Errorf("merge %s: row count mismatch: %d vs %d", name, left.Rows, right.Rows)
	}
	seen := make(map[string]struct{}, len(left.Columns))
	for _, col := range left.Columns {
		seen[col] = struct{}{}
	}
	for _, col := range right.Columns {
		if _, dup := seen[col]; dup {
			return fmt.Errorf("merge %s: column %q present in both frames", name, col)
		}
	}
	return nil
}

// checkBins validates a GroupAggregate bin count.
func checkBins(bins int) error {
	if bins < 1 {
		return fmt.Errorf("bin count must be positive, got %d", bins)
	}
	return nil
}

// nullToNaN converts a NULL aggregate result (e.g. correlation of a
// zero-variance column) to NaN, matching DataFrame engine conventions.
func nullToNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// qualifiedColumns renders "alias.col1, alias.col2, ..." for a select list.
func qualifiedColumns(alias string, columns []string) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = alias + "." + col
	}
	return strings.Join(parts, ", ")
}
