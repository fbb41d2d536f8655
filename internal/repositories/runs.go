// package repositories provides the persistence layer for sync history.
package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/spindle/internal/models"
)

// RunRepository persists [models.SyncRun] records in the sync_runs table.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository backed by the given database.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a completed (or failed) run record.
func (r *RunRepository) Create(run models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid sync run: %w", err)
	}

	query := `
		INSERT INTO sync_runs (
			id, started_at, finished_at,
			source_count, mirror_count, event_count,
			eligible_count, locked_count,
			added_count, removed_count, rebuilt, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.SourceCount,
		run.MirrorCount,
		run.EventCount,
		run.EligibleCount,
		run.LockedCount,
		run.Added,
		run.Removed,
		boolToInt(run.Rebuilt),
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves one run by ID.
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := selectColumns + " WHERE id = ?"

	run, err := scanRun(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}

	return run, nil
}

// List retrieves the most recent runs, newest first.
func (r *RunRepository) List(limit int) ([]models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := selectColumns + " ORDER BY started_at DESC LIMIT ?"

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer rows.Close()

	var runs []models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sync runs: %w", err)
	}

	return runs, nil
}

// Latest retrieves the most recent run, or nil when no run has been recorded.
func (r *RunRepository) Latest() (*models.SyncRun, error) {
	query := selectColumns + " ORDER BY started_at DESC LIMIT 1"

	run, err := scanRun(r.db.QueryRow(query))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest sync run: %w", err)
	}

	return run, nil
}

const selectColumns = `
	SELECT id, started_at, finished_at,
		source_count, mirror_count, event_count,
		eligible_count, locked_count,
		added_count, removed_count, rebuilt, error
	FROM sync_runs
`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.SyncRun, error) {
	var run models.SyncRun
	var startedAt, finishedAt string
	var rebuilt int

	err := s.Scan(
		&run.RunID, &startedAt, &finishedAt,
		&run.SourceCount, &run.MirrorCount, &run.EventCount,
		&run.EligibleCount, &run.LockedCount,
		&run.Added, &run.Removed, &rebuilt, &run.Error,
	)
	if err != nil {
		return nil, err
	}

	if run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return nil, fmt.Errorf("bad started_at %q: %w", startedAt, err)
	}
	if run.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
		return nil, fmt.Errorf("bad finished_at %q: %w", finishedAt, err)
	}
	run.Rebuilt = rebuilt != 0

	return &run, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
