// Package history keeps a local SQLite ledger of past migration runs.
// Recording is best effort: the CLI logs store errors and keeps going,
// a broken ledger never fails a migration.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id                TEXT PRIMARY KEY,
	started_at        TIMESTAMP NOT NULL,
	finished_at       TIMESTAMP,
	source            TEXT NOT NULL,
	dest              TEXT NOT NULL,
	dry_run           INTEGER NOT NULL DEFAULT 0,
	duplicates_action TEXT NOT NULL DEFAULT '',
	on_dest_exists    TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL DEFAULT 'running',
	moved             INTEGER NOT NULL DEFAULT 0,
	quarantined       INTEGER NOT NULL DEFAULT 0,
	skipped           INTEGER NOT NULL DEFAULT 0,
	errors            INTEGER NOT NULL DEFAULT 0,
	report_path       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one row of the ledger. Status stays "running" until RecordFinish
// updates it, so crashed runs remain visible as such.
type Run struct {
	ID               string
	StartedAt        time.Time
	FinishedAt       *time.Time
	Source           string
	Dest             string
	DryRun           bool
	DuplicatesAction string
	OnDestExists     string
	Status           string
	Moved            int
	Quarantined      int
	Skipped          int
	Errors           int
	ReportPath       string
}

// Store manages the SQLite database holding the run ledger
type Store struct {
	db   *sql.DB
	path string
}

// DefaultPath returns the default ledger location
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "casemover", "history.db"), nil
}

// Open opens (creating if needed) the ledger at path and prepares the schema.
// The special path ":memory:" opens an in-memory database.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Single connection: the ledger has one writer, and ":memory:"
	// databases exist per connection.
	db.SetMaxOpenConns(1)

	// busy_timeout must come first so the remaining statements wait on
	// locks instead of failing outright.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare history schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// execWithRetry runs a statement, backing off briefly when another process
// holds the database lock during initialization.
func execWithRetry(db *sql.DB, stmt string) error {
	const maxRetries = 5
	baseDelay := 10 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the ledger's database path
func (s *Store) Path() string {
	return s.path
}

// RecordStart inserts the run with status "running". Call it before the
// first move so an aborted process still leaves a trace.
func (s *Store) RecordStart(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = "running"
	}
	query := `INSERT INTO runs
		(id, started_at, source, dest, dry_run, duplicates_action, on_dest_exists, status, report_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		run.ID,
		run.StartedAt,
		run.Source,
		run.Dest,
		run.DryRun,
		run.DuplicatesAction,
		run.OnDestExists,
		run.Status,
		run.ReportPath,
	)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// RecordFinish updates the run identified by run.ID with its final status,
// counters, and finish time
func (s *Store) RecordFinish(ctx context.Context, run *Run) error {
	query := `UPDATE runs
		SET finished_at = ?, status = ?, moved = ?, quarantined = ?, skipped = ?, errors = ?, report_path = ?
		WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query,
		run.FinishedAt,
		run.Status,
		run.Moved,
		run.Quarantined,
		run.Skipped,
		run.Errors,
		run.ReportPath,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to record run finish: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %s not found in history", run.ID)
	}
	return nil
}

// Recent returns up to limit runs, newest first
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT id, started_at, finished_at, source, dest, dry_run,
		duplicates_action, on_dest_exists, status, moved, quarantined, skipped, errors, report_path
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var finished sql.NullTime
		err := rows.Scan(
			&run.ID,
			&run.StartedAt,
			&finished,
			&run.Source,
			&run.Dest,
			&run.DryRun,
			&run.DuplicatesAction,
			&run.OnDestExists,
			&run.Status,
			&run.Moved,
			&run.Quarantined,
			&run.Skipped,
			&run.Errors,
			&run.ReportPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate run rows: %w", err)
	}
	return runs, nil
}
