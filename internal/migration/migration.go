package migration

import (
	"context"

	"priorelicit/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db sqlx.ExecerContext) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{version: "1.0.0"}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in order. Every step is idempotent.
func (r *MigrationRunner) Run(ctx context.Context, db sqlx.ExecerContext) error {
	steps := []struct {
		name string
		run  func(context.Context, sqlx.ExecerContext) error
	}{
		{"records table", createRecordsTable},
		{"study_settings table", createStudySettingsTable},
		{"indexes", createIndexes},
	}
	for _, step := range steps {
		if err := step.run(ctx, db); err != nil {
			return errors.Wrapf(err, "failed to create %s", step.name)
		}
	}
	return nil
}

func createRecordsTable(ctx context.Context, db sqlx.ExecerContext) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS records (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			task_id VARCHAR(255) NOT NULL DEFAULT '',
			space VARCHAR(50) NOT NULL DEFAULT '',
			feedback VARCHAR(50) NOT NULL DEFAULT '',
			payload JSONB,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func createStudySettingsTable(ctx context.Context, db sqlx.ExecerContext) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS study_settings (
			id SMALLINT PRIMARY KEY CHECK (id = 1),
			task_id VARCHAR(255) NOT NULL,
			elicitation_space VARCHAR(50) NOT NULL,
			feedback_mode VARCHAR(50) NOT NULL,
			load_record BOOLEAN NOT NULL DEFAULT false,
			record_name VARCHAR(255) NOT NULL DEFAULT '',
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

func createIndexes(ctx context.Context, db sqlx.ExecerContext) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_records_task_created ON records (task_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_records_name_created ON records (name, created_at DESC);
	`)
	return err
}
