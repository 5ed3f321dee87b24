// Package history records runs and their case results in a local SQLite
// database so outcomes can be compared across runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/specialistvlad/shotgrid/internal/ctxlog"
	"github.com/specialistvlad/shotgrid/internal/model"
	"github.com/specialistvlad/shotgrid/internal/results"
	_ "modernc.org/sqlite"
)

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded run.
type Run struct {
	ID         string
	BaseURL    string
	StartedAt  time.Time
	FinishedAt time.Time
	Total      int
	Passed     int
	Failed     int
	Skipped    int
}

// CaseRecord is one recorded case result.
type CaseRecord struct {
	RunID     string
	Key       string
	Outcome   string
	Failure   string
	Reason    string
	StartedAt time.Time
	Duration  time.Duration
}

// Open opens (and creates/migrates) the database at the given path.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL: %w", err)
	}
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys=ON;")
	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout=5000;")

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	var ver int
	_ = s.db.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&ver)

	if ver == 0 {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS runs (
  id          TEXT PRIMARY KEY,
  base_url    TEXT NOT NULL,
  started_at  INTEGER NOT NULL,
  finished_at INTEGER,
  total       INTEGER NOT NULL DEFAULT 0,
  passed      INTEGER NOT NULL DEFAULT 0,
  failed      INTEGER NOT NULL DEFAULT 0,
  skipped     INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS case_results (
  run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
  case_key    TEXT NOT NULL,
  browser     TEXT NOT NULL,
  viewport    TEXT NOT NULL,
  component   TEXT NOT NULL,
  occurrence  INTEGER NOT NULL DEFAULT 0,
  path        TEXT NOT NULL,
  outcome     TEXT NOT NULL,
  failure     TEXT NOT NULL DEFAULT '',
  reason      TEXT NOT NULL DEFAULT '',
  started_at  INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  PRIMARY KEY (run_id, browser, viewport, component, occurrence)
);
CREATE INDEX IF NOT EXISTS idx_case_results_key ON case_results(case_key, started_at);
`)
		if err == nil {
			_, err = tx.ExecContext(ctx, "PRAGMA user_version=1;")
		}
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migrate v1: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// BeginRun inserts a run row.
func (s *Store) BeginRun(ctx context.Context, id, baseURL string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, base_url, started_at) VALUES (?, ?, ?)`,
		id, baseURL, startedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// FinishRun stores the end time and the counts of a run.
func (s *Store) FinishRun(ctx context.Context, id string, finishedAt time.Time, sum results.Summary) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, total = ?, passed = ?, failed = ?, skipped = ? WHERE id = ?`,
		finishedAt.UnixMilli(), sum.Total, sum.Passed, sum.Failed, sum.Skipped, id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: no such run", id)
	}
	return nil
}

// RecordResult stores one case result of a run.
func (s *Store) RecordResult(ctx context.Context, runID string, r model.CaptureResult) error {
	started := r.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO case_results
  (run_id, case_key, browser, viewport, component, occurrence, path, outcome, failure, reason, started_at, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, r.Case.Key(), r.Case.Browser.Name, r.Case.Viewport.Name, r.Case.Component.Name, r.Case.Occurrence, r.Case.Component.Path,
		r.Outcome.Kind.String(), string(r.Outcome.Failure), r.Outcome.Reason, started.UnixMilli(), r.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.Case.Key(), err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, base_url, started_at, COALESCE(finished_at, 0), total, passed, failed, skipped
FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished int64
		if err := rows.Scan(&r.ID, &r.BaseURL, &started, &finished, &r.Total, &r.Passed, &r.Failed, &r.Skipped); err != nil {
			return nil, err
		}
		r.StartedAt = time.UnixMilli(started).UTC()
		if finished != 0 {
			r.FinishedAt = time.UnixMilli(finished).UTC()
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CaseHistory returns the recorded results of one case key, newest first.
func (s *Store) CaseHistory(ctx context.Context, key string, limit int) ([]CaseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT run_id, case_key, outcome, failure, reason, started_at, duration_ms
FROM case_results WHERE case_key = ? ORDER BY started_at DESC LIMIT ?`, key, limit)
	if err != nil {
		return nil, fmt.Errorf("query case history: %w", err)
	}
	defer rows.Close()

	var out []CaseRecord
	for rows.Next() {
		var c CaseRecord
		var started, durMS int64
		if err := rows.Scan(&c.RunID, &c.Key, &c.Outcome, &c.Failure, &c.Reason, &started, &durMS); err != nil {
			return nil, err
		}
		c.StartedAt = time.UnixMilli(started).UTC()
		c.Duration = time.Duration(durMS) * time.Millisecond
		out = append(out, c)
	}
	return out, rows.Err()
}

// Recorder writes every observed result of one run to the store.
type Recorder struct {
	store *Store
	runID string
}

// NewRecorder binds the store to a run.
func NewRecorder(store *Store, runID string) *Recorder {
	return &Recorder{store: store, runID: runID}
}

// Observe implements the executor observer contract. Write failures are
// logged; history never fails a run.
func (r *Recorder) Observe(ctx context.Context, res model.CaptureResult) {
	if err := r.store.RecordResult(context.WithoutCancel(ctx), r.runID, res); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to record case history.", "error", err)
	}
}
