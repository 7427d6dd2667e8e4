// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps an audit log of sync runs in SQLite. The log is
// write-mostly: nothing in the sync path reads it back, so deleting the
// database never changes which files get converted.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docsync/pkg/types"
)

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// RunRecord is a stored run without its per-file rows.
type RunRecord struct {
	ID         int64     `json:"id"`
	InputDir   string    `json:"input_dir"`
	OutputDir  string    `json:"output_dir"`
	Force      bool      `json:"force"`
	Backend    string    `json:"backend"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Found      int       `json:"found"`
	Converted  int       `json:"converted"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input_dir TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			forced INTEGER NOT NULL,
			backend TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			found INTEGER NOT NULL,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_files (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_files_run_id ON run_files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores run and its per-file outcomes in one transaction and
// returns the new run ID.
func (s *Store) Record(ctx context.Context, run types.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (input_dir, output_dir, forced, backend, started_at, finished_at,
			found, converted, skipped, failed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Config.InputDir, run.Config.OutputDir, run.Config.Force, run.Backend,
		run.StartedAt.UTC().Format(time.RFC3339Nano), run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Found, run.Converted, run.Skipped, run.Failed)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_files (run_id, name, source, destination, status, error)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing file insert: %w", err)
	}
	defer stmt.Close()

	for _, f := range run.Files {
		if _, err := stmt.ExecContext(ctx, id, f.Name, f.Source, f.Destination, string(f.Status), f.Error); err != nil {
			return 0, fmt.Errorf("inserting file %s: %w", f.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_dir, output_dir, forced, backend, started_at, finished_at,
			found, converted, skipped, failed
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var backend sql.NullString
		var started, finished string
		if err := rows.Scan(&r.ID, &r.InputDir, &r.OutputDir, &r.Force, &backend,
			&started, &finished, &r.Found, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Backend = backend.String
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Files returns the per-file outcomes of run id in the order they were
// recorded.
func (s *Store) Files(ctx context.Context, id int64) ([]types.FileResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, source, destination, status, error
		FROM run_files WHERE run_id = ? ORDER BY rowid`, id)
	if err != nil {
		return nil, fmt.Errorf("querying files for run %d: %w", id, err)
	}
	defer rows.Close()

	var out []types.FileResult
	for rows.Next() {
		var f types.FileResult
		var status string
		var errMsg sql.NullString
		if err := rows.Scan(&f.Name, &f.Source, &f.Destination, &status, &errMsg); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		f.Status = types.FileStatus(status)
		f.Error = errMsg.String
		out = append(out, f)
	}
	return out, rows.Err()
}
