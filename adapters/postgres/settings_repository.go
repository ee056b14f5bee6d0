package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"

	"priorelicit/domain/core"
	"priorelicit/internal/errors"
	"priorelicit/models"
	"priorelicit/ports"

	"github.com/jmoiron/sqlx"
)

// SettingsRepositoryImpl keeps the study settings in a single-row table.
// Postgres serializes the upserts.
type SettingsRepositoryImpl struct {
	db *sqlx.DB
}

// NewSettingsRepository creates a new PostgreSQL settings repository
func NewSettingsRepository(db *sqlx.DB) ports.SettingsRepository {
	return &SettingsRepositoryImpl{db: db}
}

// Get returns the current settings
func (r *SettingsRepositoryImpl) Get(ctx context.Context) (*models.StudySettings, error) {
	var s models.StudySettings
	err := r.db.GetContext(ctx, &s, `
		SELECT task_id, elicitation_space, feedback_mode, load_record, record_name, updated_at
		FROM study_settings
		WHERE id = 1
	`)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrSettingsNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get study settings", err)
	}
	return &s, nil
}

// Save upserts the settings row
func (r *SettingsRepositoryImpl) Save(ctx context.Context, s *models.StudySettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO study_settings (id, task_id, elicitation_space, feedback_mode, load_record, record_name, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, NOW())
		ON CONFLICT (id) DO UPDATE SET
			task_id = EXCLUDED.task_id,
			elicitation_space = EXCLUDED.elicitation_space,
			feedback_mode = EXCLUDED.feedback_mode,
			load_record = EXCLUDED.load_record,
			record_name = EXCLUDED.record_name,
			updated_at = NOW()
	`, s.TaskID, s.ElicitationSpace, s.FeedbackMode, s.LoadRecord, s.RecordName)
	if err != nil {
		return errors.DatabaseError("failed to save study settings", err)
	}
	return nil
}
