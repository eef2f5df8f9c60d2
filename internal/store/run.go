package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// ErrRunNotFound is returned when a run id has no record.
var ErrRunNotFound = errors.New("run not found")

// CheckResult is one stored check outcome.
type CheckResult struct {
	Position int
	Name     string
	Status   string
	Detail   string
}

// Run is one stored suite invocation.
type Run struct {
	ID        uuid.UUID
	BaseURL   string
	StartedAt time.Time
	ElapsedMs int64
	Passed    int
	Failed    int
	Skipped   int
	Results   []CheckResult
}

// RunStore handles run history storage using DuckDB.
type RunStore struct {
	db *sql.DB
}

// NewRunStore creates a new run store.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// Save stores a run and its per-check results in one transaction.
func (s *RunStore) Save(ctx context.Context, run *Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, queryInsertRun,
		run.ID.String(), run.BaseURL, run.StartedAt, run.ElapsedMs,
		run.Passed, run.Failed, run.Skipped)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for _, res := range run.Results {
		_, err = tx.ExecContext(ctx, queryInsertResult,
			run.ID.String(), res.Position, res.Name, res.Status, res.Detail)
		if err != nil {
			return fmt.Errorf("failed to insert result %q: %w", res.Name, err)
		}
	}

	return tx.Commit()
}

// Get retrieves one run with its results.
func (s *RunStore) Get(ctx context.Context, id uuid.UUID) (*Run, error) {
	row := s.db.QueryRowContext(ctx, queryGetRun, id.String())

	var run Run
	var rawID string
	err := row.Scan(&rawID, &run.BaseURL, &run.StartedAt, &run.ElapsedMs,
		&run.Passed, &run.Failed, &run.Skipped)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	run.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse run id: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, queryGetResults, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var res CheckResult
		if err := rows.Scan(&res.Position, &res.Name, &res.Status, &res.Detail); err != nil {
			return nil, err
		}
		run.Results = append(run.Results, res)
	}
	return &run, rows.Err()
}

// ListParams filters the recent-run listing.
type ListParams struct {
	BaseURL    string
	FailedOnly bool
	Limit      uint64
}

// List returns the most recent runs, newest first.
func (s *RunStore) List(ctx context.Context, params ListParams) ([]Run, error) {
	builder := sq.Select("id", "base_url", "started_at", "elapsed_ms", "passed", "failed", "skipped").
		From("runs").
		OrderBy("started_at DESC")

	if params.BaseURL != "" {
		builder = builder.Where(sq.Eq{"base_url": params.BaseURL})
	}
	if params.FailedOnly {
		builder = builder.Where(sq.Gt{"failed": 0})
	}
	if params.Limit > 0 {
		builder = builder.Limit(params.Limit)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var rawID string
		if err := rows.Scan(&rawID, &run.BaseURL, &run.StartedAt, &run.ElapsedMs,
			&run.Passed, &run.Failed, &run.Skipped); err != nil {
			return nil, err
		}
		run.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("failed to parse run id: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
