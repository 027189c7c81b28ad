// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive records conversion runs in a local SQLite database so past
// conversions can be listed and exported.
package archive

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/transcript-md/pkg/types"
)

// ErrNotFound is returned by Get when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

// Store manages the archive SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the archive database at path, creating its parent
// directory and the schema when missing.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
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
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			input_sha256 TEXT,
			lines INTEGER NOT NULL,
			records INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			fragments INTEGER NOT NULL,
			characters INTEGER NOT NULL,
			truncated INTEGER NOT NULL,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record inserts run and returns it as stored. A missing ID is filled with a
// new UUID and a zero ConvertedAt with the current time.
func (s *Store) Record(ctx context.Context, run types.Run) (types.Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.ConvertedAt.IsZero() {
		run.ConvertedAt = time.Now()
	}
	run.ConvertedAt = run.ConvertedAt.UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, input, output, input_sha256, lines, records, skipped, fragments, characters, truncated, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Input, run.Output, run.InputSHA256,
		run.Lines, run.Records, run.Skipped, run.Fragments, run.Characters, run.Truncated,
		run.ConvertedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return types.Run{}, fmt.Errorf("recording run: %w", err)
	}
	return run, nil
}

const selectRuns = `SELECT id, input, output, COALESCE(input_sha256, ''), lines, records, skipped,
	fragments, characters, truncated, converted_at FROM runs`

// List returns recorded runs, newest first. A limit of zero or less returns
// every run.
func (s *Store) List(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Get returns the run with the given ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (types.Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (types.Run, error) {
	var (
		run         types.Run
		convertedAt string
	)
	err := sc.Scan(&run.ID, &run.Input, &run.Output, &run.InputSHA256,
		&run.Lines, &run.Records, &run.Skipped, &run.Fragments, &run.Characters,
		&run.Truncated, &convertedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Run{}, err
		}
		return types.Run{}, fmt.Errorf("scanning run: %w", err)
	}
	run.ConvertedAt, err = time.Parse(time.RFC3339Nano, convertedAt)
	if err != nil {
		return types.Run{}, fmt.Errorf("parsing converted_at %q: %w", convertedAt, err)
	}
	return run, nil
}

// FileDigest returns the hex SHA-256 of the file at path.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
