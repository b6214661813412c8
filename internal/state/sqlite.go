// Package state persists benchmark run history in a SQLite database.
// Every harness invocation is recorded as a run with its per-stage
// timings, so later invocations can be compared against earlier ones.
package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// RunStatus is the lifecycle state of a recorded benchmark run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run is one recorded benchmark invocation.
type Run struct {
	ID          string     `json:"id"`
	Engine      string     `json:"engine"`
	Rows        int        `json:"rows"`
	Cols        int        `json:"cols"`
	Bins        int        `json:"bins"`
	Seed        uint64     `json:"seed"`
	Status      RunStatus  `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StageTiming is one stage measurement belonging to a run. Position
// preserves the pipeline's execution order.
type StageTiming struct {
	RunID    string  `json:"run_id"`
	Position int     `json:"position"`
	Stage    string  `json:"stage"`
	Seconds  float64 `json:"seconds"`
}

// SQLiteStore implements the run history store on SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite history store instance.
// A nil logger discards output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewSQLiteStoreWithDB wraps an existing database connection. Used by tests
// to inject a mock connection; Migrate is the caller's responsibility.
func NewSQLiteStoreWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// An in-memory database exists per connection; pin to one.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// CreateRun records the start of a benchmark run.
func (s *SQLiteStore) CreateRun(engineName string, rows, cols, bins int, seed uint64) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{
		ID:        generateID(),
		Engine:    engineName,
		Rows:      rows,
		Cols:      cols,
		Bins:      bins,
		Seed:      seed,
		Status:    RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("engine", engineName))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, engine, rows, cols, bins, seed, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Engine, run.Rows, run.Cols, run.Bins, int64(run.Seed), string(run.Status), run.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// CompleteRun marks a run finished and stores its stage timings in one
// transaction. errMsg is empty for a successful run.
func (s *SQLiteStore) CompleteRun(id string, status RunStatus, errMsg string, stages []StageTiming) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC()
	var errorPtr *string
	if errMsg != "" {
		errorPtr = &errMsg
	}

	res, err := tx.Exec(
		"UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?",
		string(status), errorPtr, now, id,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		_ = tx.Rollback()
		return fmt.Errorf("run not found: %s", id)
	}

	for i, stage := range stages {
		_, err := tx.Exec(
			"INSERT INTO stage_timings (run_id, position, stage, seconds) VALUES (?, ?, ?, ?)",
			id, i, stage.Stage, stage.Seconds,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record stage %s: %w", stage.Stage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run completion: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit < 1 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT id, engine, rows, cols, bins, seed, status, error, started_at, completed_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// GetLatestRun returns the most recent completed run for an engine, or nil
// if there is none.
func (s *SQLiteStore) GetLatestRun(engineName string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRow(
		`SELECT id, engine, rows, cols, bins, seed, status, error, started_at, completed_at
		 FROM runs WHERE engine = ? AND status = ?
		 ORDER BY started_at DESC, id DESC LIMIT 1`,
		engineName, string(RunStatusCompleted),
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetStageTimings returns a run's stage timings in execution order.
func (s *SQLiteStore) GetStageTimings(runID string) ([]StageTiming, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.Query(
		"SELECT run_id, position, stage, seconds FROM stage_timings WHERE run_id = ? ORDER BY position",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stage timings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var timings []StageTiming
	for rows.Next() {
		var t StageTiming
		if err := rows.Scan(&t.RunID, &t.Position, &t.Stage, &t.Seconds); err != nil {
			return nil, fmt.Errorf("failed to scan stage timing: %w", err)
		}
		timings = append(timings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stage timings: %w", err)
	}
	return timings, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var run Run
	var seed int64
	var status string
	var errMsg sql.NullString
	var completed sql.NullTime
	err := sc.Scan(&run.ID, &run.Engine, &run.Rows, &run.Cols, &run.Bins, &seed,
		&status, &errMsg, &run.StartedAt, &completed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Seed = uint64(seed)
	run.Status = RunStatus(status)
	run.Error = errMsg.String
	if completed.Valid {
		t := completed.Time
		run.CompletedAt = &t
	}
	return &run, nil
}
