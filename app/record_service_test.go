package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorelicit/adapters/memory"
	"priorelicit/internal/errors"
	"priorelicit/models"
)

func newStudyService() *StudyService {
	return NewStudyService(memory.NewRecordStore(), memory.NewSettingsStore(), nil)
}

func TestStudyService_SettingsDefaultsAndSave(t *testing.T) {
	ctx := context.Background()
	svc := newStudyService()

	s, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStudySettings().TaskID, s.TaskID)

	_, err = svc.SaveSettings(ctx, &models.StudySettings{TaskID: "t", ElicitationSpace: "nowhere", FeedbackMode: models.FeedbackNone})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	saved, err := svc.SaveSettings(ctx, &models.StudySettings{
		TaskID: "task-2", ElicitationSpace: models.SpaceData, FeedbackMode: models.FeedbackNone,
	})
	require.NoError(t, err)
	assert.Equal(t, "task-2", saved.TaskID)
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestStudyService_Records(t *testing.T) {
	ctx := context.Background()
	svc := newStudyService()
	_, err := svc.SaveSettings(ctx, &models.StudySettings{
		TaskID: "task-9", ElicitationSpace: models.SpaceParameter, FeedbackMode: models.FeedbackDistributed,
	})
	require.NoError(t, err)

	created, err := svc.CreateRecord(ctx, &models.Record{
		Name:    "pilot",
		Payload: models.JSONPayload(`{"priors":{"intercept":{"name":"norm","params":{"loc":1,"scale":2}}}}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "task-9", created.TaskID)
	assert.Equal(t, models.SpaceParameter, created.Space)
	assert.Equal(t, models.FeedbackDistributed, created.Feedback)

	got, err := svc.Record(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pilot", got.Name)

	list, err := svc.Records(ctx, "task-9", 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	page, err := svc.RecordReport(ctx, created.ID)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<td>norm</td>")
}

func TestStudyService_RecordErrors(t *testing.T) {
	ctx := context.Background()
	svc := newStudyService()

	_, err := svc.CreateRecord(ctx, &models.Record{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Record(ctx, "not-a-uuid")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Record(ctx, "0190b4f0-0000-7000-8000-000000000001")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.Records(ctx, "", -1)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestStudyService_ActiveRecord(t *testing.T) {
	ctx := context.Background()
	svc := newStudyService()

	_, err := svc.ActiveRecord(ctx)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	_, err = svc.CreateRecord(ctx, &models.Record{Name: "baseline"})
	require.NoError(t, err)
	_, err = svc.SaveSettings(ctx, &models.StudySettings{
		TaskID: "t", ElicitationSpace: models.SpaceData, FeedbackMode: models.FeedbackNone,
		LoadRecord: true, RecordName: "baseline",
	})
	require.NoError(t, err)

	rec, err := svc.ActiveRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "baseline", rec.Name)
}
