// Package store persists pipeline runs and score tables in SQLite so the
// dashboard can serve them without re-running the pipeline.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScoreRow is one persisted score record.
type ScoreRow struct {
	RunID      string  `json:"run_id"`
	GroupBy    string  `json:"group_by"`
	GroupValue string  `json:"group_value"`
	VisitCount int     `json:"visit_count"`
	Score      float64 `json:"score"`
}

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dsn and configures WAL mode.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "store: open sqlite")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	command    TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	detail     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scores (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL REFERENCES runs(id),
	group_by    TEXT NOT NULL,
	group_value TEXT NOT NULL,
	visit_count INTEGER NOT NULL,
	score       REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_scores_run_id ON scores(run_id);
`

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateRun records the start of a pipeline invocation.
func (s *Store) CreateRun(ctx context.Context, command string) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{
		ID:        uuid.New().String(),
		Command:   command,
		Status:    RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, command, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Command, run.Status, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "store: insert run")
	}
	return run, nil
}

// FinishRun marks a run completed or failed with a detail message.
func (s *Store) FinishRun(ctx context.Context, runID, status, detail string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, detail = ?, updated_at = ? WHERE id = ?`,
		status, detail, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "store: finish run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Errorf("store: run %s not found", runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, status, COALESCE(detail, ''), created_at, updated_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Command, &r.Status, &r.Detail, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "store: iterate runs")
}

// SaveScores persists one score table inside a transaction.
func (s *Store) SaveScores(ctx context.Context, scores []ScoreRow) error {
	if len(scores) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "store: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO scores (run_id, group_by, group_value, visit_count, score) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "store: prepare insert")
	}
	defer stmt.Close() //nolint:errcheck

	for _, sc := range scores {
		if _, err := stmt.ExecContext(ctx, sc.RunID, sc.GroupBy, sc.GroupValue, sc.VisitCount, sc.Score); err != nil {
			return eris.Wrap(err, "store: insert score")
		}
	}
	return eris.Wrap(tx.Commit(), "store: commit scores")
}

// ScoresForRun returns the score rows saved under a run.
func (s *Store) ScoresForRun(ctx context.Context, runID string) ([]ScoreRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, group_by, group_value, visit_count, score FROM scores WHERE run_id = ? ORDER BY group_value`,
		runID)
	if err != nil {
		return nil, eris.Wrapf(err, "store: scores for run %s", runID)
	}
	defer rows.Close() //nolint:errcheck
	return scanScores(rows)
}

// LatestScores returns the scores of the most recent completed run that
// saved any, or nil when no such run exists.
func (s *Store) LatestScores(ctx context.Context) ([]ScoreRow, error) {
	var runID string
	err := s.db.QueryRowContext(ctx,
		`SELECT r.id FROM runs r
		 WHERE r.status = ? AND EXISTS (SELECT 1 FROM scores sc WHERE sc.run_id = r.id)
		 ORDER BY r.created_at DESC LIMIT 1`,
		RunStatusCompleted).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: latest run")
	}
	return s.ScoresForRun(ctx, runID)
}

func scanScores(rows *sql.Rows) ([]ScoreRow, error) {
	var out []ScoreRow
	for rows.Next() {
		var sc ScoreRow
		if err := rows.Scan(&sc.RunID, &sc.GroupBy, &sc.GroupValue, &sc.VisitCount, &sc.Score); err != nil {
			return nil, eris.Wrap(err, "store: scan score")
		}
		out = append(out, sc)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate scores")
}
