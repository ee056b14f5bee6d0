package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorelicit/domain/core"
	apperrors "priorelicit/internal/errors"
	"priorelicit/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

var recordCols = []string{"id", "name", "task_id", "space", "feedback", "payload", "created_at"}

func TestRecordRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewRecordRepository(db)

	mock.ExpectExec(`INSERT INTO records`).
		WithArgs(sqlmock.AnyArg(), "pilot", "task-1", "parameter", "predictive", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rec, err := repo.Create(context.Background(), &models.Record{
		Name: "pilot", TaskID: "task-1", Space: "parameter", Feedback: "predictive",
		Payload: models.JSONPayload(`{"priors":{}}`),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CreateFailure(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO records`).WillReturnError(errors.New("connection reset"))

	_, err := NewRecordRepository(db).Create(context.Background(), &models.Record{Name: "pilot"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestRecordRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM records WHERE id = \$1`).
		WithArgs("rec-1").
		WillReturnRows(sqlmock.NewRows(recordCols).
			AddRow("rec-1", "pilot", "task-1", "parameter", "none", []byte(`{"a":1}`), created))

	rec, err := NewRecordRepository(db).Get(context.Background(), "rec-1")
	require.NoError(t, err)
	assert.Equal(t, "pilot", rec.Name)
	assert.Equal(t, `{"a":1}`, string(rec.Payload))
	assert.Equal(t, created, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM records WHERE id = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(recordCols))

	_, err := NewRecordRepository(db).Get(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrRecordNotFound)
}

func TestRecordRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	mock.ExpectQuery(`FROM records WHERE task_id = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("task-1", 5).
		WillReturnRows(sqlmock.NewRows(recordCols).
			AddRow("b", "second", "task-1", "data", "none", nil, now).
			AddRow("a", "first", "task-1", "data", "none", []byte(`{}`), now.Add(-time.Hour)))

	records, err := NewRecordRepository(db).List(context.Background(), "task-1", 5)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Name)
	assert.Nil(t, records[0].Payload)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListUnfiltered(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM records ORDER BY created_at DESC$`).
		WillReturnRows(sqlmock.NewRows(recordCols))

	records, err := NewRecordRepository(db).List(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepository_GetAndSave(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSettingsRepository(db)
	cols := []string{"task_id", "elicitation_space", "feedback_mode", "load_record", "record_name", "updated_at"}

	mock.ExpectQuery(`FROM study_settings WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows(cols))
	_, err := repo.Get(context.Background())
	assert.ErrorIs(t, err, core.ErrSettingsNotFound)

	s := models.DefaultStudySettings()
	mock.ExpectExec(`INSERT INTO study_settings`).
		WithArgs(s.TaskID, s.ElicitationSpace, s.FeedbackMode, s.LoadRecord, s.RecordName).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Save(context.Background(), &s))

	mock.ExpectQuery(`FROM study_settings WHERE id = 1`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("default", "parameter", "predictive", false, "", time.Now()))
	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "predictive", got.FeedbackMode)

	assert.NoError(t, mock.ExpectationsWereMet())
}
