package ports

import (
	"context"

	"priorelicit/models"
)

// RecordRepository stores saved elicitation records
type RecordRepository interface {
	// Create stores a record, assigning its ID and creation time when unset
	Create(ctx context.Context, record *models.Record) (*models.Record, error)

	// Get retrieves a record by ID; a missing record yields core.ErrRecordNotFound
	Get(ctx context.Context, id string) (*models.Record, error)

	// GetByName returns the newest record with the given name
	GetByName(ctx context.Context, name string) (*models.Record, error)

	// List returns records newest first, optionally filtered by task and limited
	List(ctx context.Context, taskID string, limit int) ([]*models.Record, error)
}

// SettingsRepository stores the single current study configuration
type SettingsRepository interface {
	// Get returns the current settings; before any save it yields core.ErrSettingsNotFound
	Get(ctx context.Context) (*models.StudySettings, error)

	// Save replaces the current settings
	Save(ctx context.Context, settings *models.StudySettings) error
}
