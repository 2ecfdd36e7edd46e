// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records completed merges in a local SQLite database so
// the UI and CLI can list recent output files. Selections are never stored.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/tetra-pdf/pkg/types"
)

const (
	dbFile            = "history.db"
	defaultMaxResults = 20
)

// ErrNotFound is returned by Get for an unknown merge ID.
var ErrNotFound = errors.New("merge not found")

// Store manages the history database.
type Store struct {
	db         *sqlx.DB
	dir        string
	maxResults int
}

// NewStore opens or creates dir/history.db and its schema.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sqlx.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, dir: cfg.Dir, maxResults: maxResults}
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
		`CREATE TABLE IF NOT EXISTS merges (
			id TEXT PRIMARY KEY,
			output_path TEXT NOT NULL,
			page_count INTEGER NOT NULL DEFAULT 0,
			size INTEGER NOT NULL DEFAULT 0,
			success BOOLEAN NOT NULL,
			message TEXT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS merge_inputs (
			merge_id TEXT NOT NULL REFERENCES merges(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			path TEXT NOT NULL,
			PRIMARY KEY (merge_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_merges_started_at ON merges(started_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a merge result and its inputs.
func (s *Store) Record(ctx context.Context, r types.MergeResult) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	_, err = tx.NamedExecContext(ctx,
		`INSERT INTO merges (id, output_path, page_count, size, success, message, started_at, finished_at)
		 VALUES (:id, :output_path, :page_count, :size, :success, :message, :started_at, :finished_at)`, r)
	if err != nil {
		return fmt.Errorf("inserting merge %s: %w", r.ID, err)
	}

	for i, in := range r.Inputs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO merge_inputs (merge_id, position, path) VALUES (?, ?, ?)`,
			r.ID, i, in,
		); err != nil {
			return fmt.Errorf("inserting input %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const selectMerges = `SELECT id, output_path, page_count, size, success, message, started_at, finished_at FROM merges`

// Recent returns up to limit merges, newest first. limit <= 0 uses the
// configured default.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.MergeResult, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	var results []types.MergeResult
	if err := s.db.SelectContext(ctx, &results,
		selectMerges+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	); err != nil {
		return nil, fmt.Errorf("querying merges: %w", err)
	}
	for i := range results {
		inputs, err := s.inputs(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Inputs = inputs
	}
	return results, nil
}

// Get returns one merge by ID.
func (s *Store) Get(ctx context.Context, id string) (types.MergeResult, error) {
	var r types.MergeResult
	err := s.db.GetContext(ctx, &r, selectMerges+` WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err != nil {
		return r, fmt.Errorf("querying merge %s: %w", id, err)
	}
	r.Inputs, err = s.inputs(ctx, id)
	return r, err
}

// Delete removes one merge record. The output file is left alone.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM merges WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting merge %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *Store) inputs(ctx context.Context, id string) ([]string, error) {
	var paths []string
	if err := s.db.SelectContext(ctx, &paths,
		`SELECT path FROM merge_inputs WHERE merge_id = ? ORDER BY position`, id,
	); err != nil {
		return nil, fmt.Errorf("querying inputs for %s: %w", id, err)
	}
	return paths, nil
}
