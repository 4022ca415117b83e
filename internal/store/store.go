// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store records screening runs in a SQLite database so runs with
// different rules, count modes or relabel models can be compared file by
// file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/transcript-screen/pkg/types"
)

// ErrRunNotFound is returned when no run matches an ID or ID prefix.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded batch screening run.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	InputDir  string    `json:"input_dir" yaml:"input_dir"`
	CountMode string    `json:"count_mode" yaml:"count_mode"`

	// Config is the effective screen configuration, serialized as YAML.
	Config string `json:"config,omitempty" yaml:"config,omitempty"`

	Files       int `json:"files" yaml:"files"`
	NeedsReview int `json:"needs_review" yaml:"needs_review"`
	Failed      int `json:"failed" yaml:"failed"`
}

// Store manages the run database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
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
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			input_dir TEXT,
			count_mode TEXT,
			config TEXT,
			files INTEGER,
			needs_review INTEGER,
			failed INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			filename TEXT NOT NULL,
			student_words INTEGER,
			ai_words INTEGER,
			unknown_words INTEGER,
			total INTEGER,
			pct_student REAL,
			status TEXT,
			note TEXT,
			error TEXT,
			PRIMARY KEY (run_id, filename)
		)`,
		`CREATE TABLE IF NOT EXISTS pages (
			run_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			page INTEGER NOT NULL,
			student_words INTEGER,
			ai_words INTEGER,
			unknown_words INTEGER,
			PRIMARY KEY (run_id, filename, page),
			FOREIGN KEY (run_id, filename) REFERENCES results(run_id, filename) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores a run and its results in one transaction. A missing ID
// is filled with a new UUID and a zero StartedAt with the current time.
// The stored run is returned.
func (s *Store) SaveRun(ctx context.Context, run Run, results []types.ScreeningResult) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC().Truncate(time.Second)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, input_dir, count_mode, config, files, needs_review, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.Format(time.RFC3339), run.InputDir, run.CountMode, run.Config,
		run.Files, run.NeedsReview, run.Failed,
	); err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}

	for _, r := range results {
		var pct sql.NullFloat64
		if r.PctStudent != nil {
			pct = sql.NullFloat64{Float64: *r.PctStudent, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, filename, student_words, ai_words, unknown_words, total, pct_student, status, note, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, r.Filename, r.StudentWords, r.AIWords, r.UnknownWords, r.Total, pct,
			string(r.Status), r.Note, r.Error,
		); err != nil {
			return Run{}, fmt.Errorf("inserting result %s: %w", r.Filename, err)
		}
		for _, p := range r.Pages {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO pages (run_id, filename, page, student_words, ai_words, unknown_words)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				run.ID, r.Filename, p.Page, p.StudentWords, p.AIWords, p.UnknownWords,
			); err != nil {
				return Run{}, fmt.Errorf("inserting page %s/%d: %w", r.Filename, p.Page, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("committing run: %w", err)
	}
	return run, nil
}

const runColumns = `id, started_at, input_dir, count_mode, config, files, needs_review, failed`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		r       Run
		started string
	)
	if err := sc.Scan(&r.ID, &started, &r.InputDir, &r.CountMode, &r.Config, &r.Files, &r.NeedsReview, &r.Failed); err != nil {
		return Run{}, err
	}
	t, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return Run{}, fmt.Errorf("parsing started_at %q: %w", started, err)
	}
	r.StartedAt = t
	return r, nil
}

// Runs lists recorded runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Resolve finds a run by full ID or unique ID prefix.
func (s *Store) Resolve(ctx context.Context, ref string) (Run, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Run{}, fmt.Errorf("empty run id: %w", ErrRunNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ESCAPE '\' ORDER BY id LIMIT 2`,
		ref, escapeLike(ref)+"%")
	if err != nil {
		return Run{}, fmt.Errorf("querying run %s: %w", ref, err)
	}
	defer rows.Close()

	var found []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return Run{}, fmt.Errorf("scanning run: %w", err)
		}
		if r.ID == ref {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return Run{}, err
	}
	switch len(found) {
	case 0:
		return Run{}, fmt.Errorf("%s: %w", ref, ErrRunNotFound)
	case 1:
		return found[0], nil
	}
	return Run{}, fmt.Errorf("run id prefix %q is ambiguous", ref)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Results returns the stored results of a run, with pages, ordered by
// filename.
func (s *Store) Results(ctx context.Context, runID string) ([]types.ScreeningResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT filename, student_words, ai_words, unknown_words, total, pct_student, status, note, error
		 FROM results WHERE run_id = ? ORDER BY filename`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var (
		out   []types.ScreeningResult
		index = map[string]int{}
	)
	for rows.Next() {
		var (
			r      types.ScreeningResult
			pct    sql.NullFloat64
			status string
		)
		if err := rows.Scan(&r.Filename, &r.StudentWords, &r.AIWords, &r.UnknownWords, &r.Total, &pct, &status, &r.Note, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		if pct.Valid {
			v := pct.Float64
			r.PctStudent = &v
		}
		r.Status = types.Status(status)
		index[r.Filename] = len(out)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := s.db.QueryContext(ctx,
		`SELECT filename, page, student_words, ai_words, unknown_words
		 FROM pages WHERE run_id = ? ORDER BY filename, page`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var (
			name string
			p    types.CountRecord
		)
		if err := prows.Scan(&name, &p.Page, &p.StudentWords, &p.AIWords, &p.UnknownWords); err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		if i, ok := index[name]; ok {
			out[i].Pages = append(out[i].Pages, p)
		}
	}
	return out, prows.Err()
}
