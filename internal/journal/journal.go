// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package journal keeps a SQLite ledger of generation runs and the outcome
// of every topic in them.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/poembook/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort as text in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNoRuns is returned by LatestRun on an empty journal.
var ErrNoRuns = errors.New("journal has no runs")

// Store manages the journal database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the journal at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Topic workers record concurrently; one connection serializes them.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			kind TEXT,
			mode TEXT,
			model TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			idx INTEGER NOT NULL,
			topic TEXT NOT NULL,
			status TEXT NOT NULL,
			path TEXT,
			error TEXT,
			recorded_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_run_id ON outcomes(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a run, assigning an ID and start time when missing.
func (s *Store) BeginRun(ctx context.Context, run types.Run) (types.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, kind, mode, model) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(timeLayout), run.Kind, string(run.Mode), run.Model,
	)
	if err != nil {
		return run, fmt.Errorf("inserting run: %w", err)
	}
	return run, nil
}

// Record stores one topic outcome under runID.
func (s *Store) Record(ctx context.Context, runID string, o types.Outcome) error {
	var errText sql.NullString
	if o.Err != nil {
		errText = sql.NullString{String: o.Err.Error(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, idx, topic, status, path, error, recorded_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, o.Index, o.Topic, string(o.Status), o.Path, errText, time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording outcome for %q: %w", o.Topic, err)
	}
	return nil
}

// FinishRun stamps the run's finish time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`,
		time.Now().UTC().Format(timeLayout), runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run: unknown run %s", runID)
	}
	return nil
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (types.Run, error) {
	var (
		run                         types.Run
		started                     string
		finished, kind, mode, model sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, finished_at, kind, mode, model FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&run.ID, &started, &finished, &kind, &mode, &model)
	if errors.Is(err, sql.ErrNoRows) {
		return run, ErrNoRuns
	}
	if err != nil {
		return run, fmt.Errorf("querying latest run: %w", err)
	}

	run.StartedAt, _ = time.Parse(timeLayout, started)
	if finished.Valid {
		run.FinishedAt, _ = time.Parse(timeLayout, finished.String)
	}
	run.Kind = kind.String
	run.Mode = types.ConcurrencyMode(mode.String)
	run.Model = model.String
	return run, nil
}

// Outcomes returns every outcome of a run in outline order.
func (s *Store) Outcomes(ctx context.Context, runID string) ([]types.RunEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT idx, topic, status, path, error, recorded_at FROM outcomes WHERE run_id = ? ORDER BY idx, rowid`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var entries []types.RunEntry
	for rows.Next() {
		var (
			e        types.RunEntry
			status   string
			path     sql.NullString
			errText  sql.NullString
			recorded string
		)
		if err := rows.Scan(&e.Index, &e.Topic, &status, &path, &errText, &recorded); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		e.Status = types.OutcomeStatus(status)
		e.Path = path.String
		e.Error = errText.String
		e.RecordedAt, _ = time.Parse(timeLayout, recorded)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Recorder binds the store to one run so callers can record outcomes
// without carrying the run ID.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RunRecorder records outcomes for a single run.
type RunRecorder struct {
	store *Store
	runID string
}

// Record stores o under the bound run.
func (r *RunRecorder) Record(ctx context.Context, o types.Outcome) error {
	return r.store.Record(ctx, r.runID, o)
}
