package app

import (
	"context"
	stderrors "errors"

	"priorelicit/domain/core"
	"priorelicit/internal"
	"priorelicit/internal/errors"
	"priorelicit/internal/report"
	"priorelicit/models"
	"priorelicit/ports"
)

// StudyService manages the study settings and saved elicitation records
type StudyService struct {
	records  ports.RecordRepository
	settings ports.SettingsRepository
	logger   *internal.Logger
}

// NewStudyService creates a study service over the given stores
func NewStudyService(records ports.RecordRepository, settings ports.SettingsRepository, logger *internal.Logger) *StudyService {
	return &StudyService{records: records, settings: settings, logger: logger.With("study")}
}

// Settings returns the saved settings, or the defaults before any save
func (s *StudyService) Settings(ctx context.Context) (*models.StudySettings, error) {
	settings, err := s.settings.Get(ctx)
	if stderrors.Is(err, core.ErrSettingsNotFound) {
		d := models.DefaultStudySettings()
		return &d, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load study settings")
	}
	return settings, nil
}

// SaveSettings validates and stores new settings
func (s *StudyService) SaveSettings(ctx context.Context, settings *models.StudySettings) (*models.StudySettings, error) {
	if err := settings.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	if err := s.settings.Save(ctx, settings); err != nil {
		return nil, errors.Wrap(err, "failed to save study settings")
	}
	s.logger.Info("study settings updated: task=%s space=%s feedback=%s",
		settings.TaskID, settings.ElicitationSpace, settings.FeedbackMode)
	return s.Settings(ctx)
}

// CreateRecord stores a record, stamping task, space and feedback from the current
// settings when the caller leaves them empty.
func (s *StudyService) CreateRecord(ctx context.Context, rec *models.Record) (*models.Record, error) {
	if err := rec.Validate(); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if rec.TaskID == "" {
		rec.TaskID = settings.TaskID
	}
	if rec.Space == "" {
		rec.Space = settings.ElicitationSpace
	}
	if rec.Feedback == "" {
		rec.Feedback = settings.FeedbackMode
	}
	created, err := s.records.Create(ctx, rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store record")
	}
	s.logger.Info("stored record %s (%s)", created.ID, created.Name)
	return created, nil
}

// Record returns one record by ID
func (s *StudyService) Record(ctx context.Context, id string) (*models.Record, error) {
	recordID, err := core.ParseRecordID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	rec, err := s.records.Get(ctx, recordID.String())
	if stderrors.Is(err, core.ErrNotFound) {
		return nil, errors.NotFound("record " + id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load record")
	}
	return rec, nil
}

// Records lists records newest first
func (s *StudyService) Records(ctx context.Context, taskID string, limit int) ([]*models.Record, error) {
	if limit < 0 {
		return nil, errors.InvalidInput("limit must not be negative")
	}
	recs, err := s.records.List(ctx, taskID, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list records")
	}
	return recs, nil
}

// ActiveRecord returns the record the settings ask participants to start from
func (s *StudyService) ActiveRecord(ctx context.Context) (*models.Record, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.LoadRecord {
		return nil, errors.NotFound("active record")
	}
	rec, err := s.records.GetByName(ctx, settings.RecordName)
	if stderrors.Is(err, core.ErrNotFound) {
		return nil, errors.NotFound("record " + settings.RecordName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active record")
	}
	return rec, nil
}

// RecordReport renders a record's prior summary as an HTML page
func (s *StudyService) RecordReport(ctx context.Context, id string) ([]byte, error) {
	rec, err := s.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	page, err := report.HTML(rec)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return page, nil
}
