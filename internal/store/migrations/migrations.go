// Package migrations manages the history database schema. Applied migrations
// are tracked in a schema_migrations table so Run is idempotent.
package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	id   int
	name string
	stmt string
}

var all = []migration{
	{
		id:   1,
		name: "create_runs",
		stmt: `
			CREATE TABLE IF NOT EXISTS runs (
				id         VARCHAR PRIMARY KEY,
				base_url   VARCHAR NOT NULL,
				started_at TIMESTAMP NOT NULL,
				elapsed_ms BIGINT NOT NULL,
				passed     INTEGER NOT NULL,
				failed     INTEGER NOT NULL,
				skipped    INTEGER NOT NULL
			)`,
	},
	{
		id:   2,
		name: "create_results",
		stmt: `
			CREATE TABLE IF NOT EXISTS results (
				run_id   VARCHAR NOT NULL,
				position INTEGER NOT NULL,
				name     VARCHAR NOT NULL,
				status   VARCHAR NOT NULL,
				detail   VARCHAR NOT NULL DEFAULT '',
				PRIMARY KEY (run_id, position)
			)`,
	},
}

// Run applies all pending migrations in order.
func Run(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			id         INTEGER PRIMARY KEY,
			name       VARCHAR NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	for _, m := range all {
		applied, err := isApplied(ctx, db, m.id)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.id, m.name, err)
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (id, name) VALUES (?, ?)`, m.id, m.name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.id, err)
		}
		zap.S().Named("migrations").Debugw("applied migration", "id", m.id, "name", m.name)
	}
	return nil
}

func isApplied(ctx context.Context, db *sql.DB, id int) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT count(*) FROM schema_migrations WHERE id = ?`, id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	return count > 0, nil
}
