// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an opt-in journal of conversion jobs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docflow/pkg/types"
)

const defaultLimit = 20

// timeLayout is fixed-width so that started sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded job.
type Entry struct {
	ID         string          `json:"id" yaml:"id"`
	Op         types.Operation `json:"op" yaml:"op"`
	Input      string          `json:"input" yaml:"input"`
	Output     string          `json:"output" yaml:"output"`
	Status     types.JobStatus `json:"status" yaml:"status"`
	Error      string          `json:"error,omitempty" yaml:"error,omitempty"`
	Started    time.Time       `json:"started" yaml:"started"`
	DurationMS int64           `json:"duration_ms" yaml:"duration_ms"`
}

// EntryFromResult converts a finished job into a journal entry with a new ID.
func EntryFromResult(r types.JobResult) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		Op:         r.Job.Op,
		Input:      r.Job.Input,
		Output:     r.Job.Output,
		Status:     r.Status,
		Started:    r.Started.UTC(),
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return e
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// DefaultPath returns ~/.local/share/docflow/history.db, or a path in the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "docflow-history.db"
	}
	return filepath.Join(home, ".local", "share", "docflow", "history.db")
}

// Open opens or creates the history database at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

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
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			op TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			started TEXT NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_started ON jobs(started)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts e. An empty ID is filled with a new UUID.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (id, op, input, output, status, error, started, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.Op), e.Input, e.Output, string(e.Status), e.Error,
		e.Started.UTC().Format(timeLayout), e.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("recording job %s: %w", e.ID, err)
	}
	return nil
}

// ListOptions filters List.
type ListOptions struct {
	// Limit caps the number of entries (default 20).
	Limit int
	// Status keeps only entries with this status when set.
	Status types.JobStatus
	// Op keeps only entries for this operation when set.
	Op types.Operation
}

// List returns recorded entries, most recent first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT id, op, input, output, status, COALESCE(error, ''), started, duration_ms FROM jobs WHERE 1=1`
	var args []any
	if opts.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(opts.Status))
	}
	if opts.Op != "" {
		query += ` AND op = ?`
		args = append(args, string(opts.Op))
	}
	query += ` ORDER BY started DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e              Entry
			op, status, ts string
		)
		if err := rows.Scan(&e.ID, &op, &e.Input, &e.Output, &status, &e.Error, &ts, &e.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		e.Op = types.Operation(op)
		e.Status = types.JobStatus(status)
		if e.Started, err = time.Parse(timeLayout, ts); err != nil {
			return nil, fmt.Errorf("parsing start time of job %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
