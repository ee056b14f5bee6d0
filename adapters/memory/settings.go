package memory

import (
	"context"
	"sync"
	"time"

	"priorelicit/domain/core"
	"priorelicit/models"
	"priorelicit/ports"
)

// SettingsStore keeps the current study settings in process memory
type SettingsStore struct {
	mu       sync.RWMutex
	settings *models.StudySettings
}

var _ ports.SettingsRepository = (*SettingsStore)(nil)

// NewSettingsStore creates a store with nothing saved
func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

// Get returns a copy of the saved settings
func (s *SettingsStore) Get(ctx context.Context) (*models.StudySettings, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return nil, core.ErrSettingsNotFound
	}
	c := *s.settings
	return &c, nil
}

// Save replaces the settings
func (s *SettingsStore) Save(ctx context.Context, settings *models.StudySettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := *settings
	c.UpdatedAt = time.Now().UTC()
	s.mu.Lock()
	s.settings = &c
	s.mu.Unlock()
	return nil
}
