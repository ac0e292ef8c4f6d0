package migration

import (
	"context"

	"github.com/jmoiron/sqlx"

	"fhtsuite/internal/errors"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner creates the validation run schema. Statements are written
// for both sqlite3 and postgres.
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. It is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createRunsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create validation_runs table", err)
	}

	if err := r.createRecordsTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create validation_records table", err)
	}

	if err := r.createFailuresTable(ctx, db); err != nil {
		return errors.DatabaseError("failed to create validation_failures table", err)
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.DatabaseError("failed to create indexes", err)
	}

	return nil
}

func (r *MigrationRunner) createRunsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_runs (
			run_id TEXT PRIMARY KEY,
			seed BIGINT NOT NULL,
			alpha DOUBLE PRECISION NOT NULL,
			beta DOUBLE PRECISION NOT NULL,
			epsilon DOUBLE PRECISION NOT NULL,
			patterns TEXT NOT NULL,
			sizes TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			failure_count INTEGER NOT NULL,
			duration DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createRecordsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_records (
			run_id TEXT NOT NULL REFERENCES validation_runs(run_id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			pattern TEXT NOT NULL,
			size INTEGER NOT NULL,
			dataset_size INTEGER NOT NULL,
			processing_time DOUBLE PRECISION NOT NULL,
			fingerprint TEXT NOT NULL,
			consciousness_score DOUBLE PRECISION NOT NULL,
			stability_score DOUBLE PRECISION NOT NULL,
			breakthrough_score DOUBLE PRECISION NOT NULL,
			correlation DOUBLE PRECISION NOT NULL,
			pearson_correlation DOUBLE PRECISION NOT NULL,
			pearson_p_value DOUBLE PRECISION NOT NULL,
			spearman_correlation DOUBLE PRECISION NOT NULL,
			spearman_p_value DOUBLE PRECISION NOT NULL,
			ks_statistic DOUBLE PRECISION NOT NULL,
			ks_p_value DOUBLE PRECISION NOT NULL,
			characteristics TEXT NOT NULL,
			PRIMARY KEY (run_id, sequence)
		)
	`)
	return err
}

func (r *MigrationRunner) createFailuresTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS validation_failures (
			run_id TEXT NOT NULL REFERENCES validation_runs(run_id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			pattern TEXT NOT NULL,
			size INTEGER NOT NULL,
			stage TEXT NOT NULL,
			error TEXT NOT NULL,
			PRIMARY KEY (run_id, position)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_validation_runs_created_at ON validation_runs(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_records_pattern ON validation_records(run_id, pattern)`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
