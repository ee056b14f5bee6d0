package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strconv"
	"time"

	"priorelicit/domain/core"
	"priorelicit/internal/errors"
	"priorelicit/models"
	"priorelicit/ports"

	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, name, task_id, space, feedback, payload, created_at`

// RecordRepositoryImpl implements RecordRepository for PostgreSQL
type RecordRepositoryImpl struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new PostgreSQL record repository
func NewRecordRepository(db *sqlx.DB) ports.RecordRepository {
	return &RecordRepositoryImpl{db: db}
}

// Create inserts a record
func (r *RecordRepositoryImpl) Create(ctx context.Context, record *models.Record) (*models.Record, error) {
	stored := *record
	if stored.ID == "" {
		stored.ID = core.NewRecordID().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	// JSONPayload implements driver.Valuer, so it is sent as JSONB
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, stored.ID, stored.Name, stored.TaskID, stored.Space, stored.Feedback, stored.Payload, stored.CreatedAt)
	if err != nil {
		return nil, errors.DatabaseError("failed to insert record", err)
	}
	return &stored, nil
}

// Get retrieves a record by ID
func (r *RecordRepositoryImpl) Get(ctx context.Context, id string) (*models.Record, error) {
	var record models.Record
	err := r.db.GetContext(ctx, &record, `
		SELECT `+recordColumns+`
		FROM records
		WHERE id = $1
	`, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get record", err)
	}
	return &record, nil
}

// GetByName returns the newest record with the name
func (r *RecordRepositoryImpl) GetByName(ctx context.Context, name string) (*models.Record, error) {
	var record models.Record
	err := r.db.GetContext(ctx, &record, `
		SELECT `+recordColumns+`
		FROM records
		WHERE name = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrRecordNotFound
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get record by name", err)
	}
	return &record, nil
}

// List returns records newest first, optionally filtered by task and limited
func (r *RecordRepositoryImpl) List(ctx context.Context, taskID string, limit int) ([]*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	var args []interface{}
	if taskID != "" {
		args = append(args, taskID)
		query += ` WHERE task_id = $1`
	}
	query += ` ORDER BY created_at DESC`
	if limit > 0 {
		args = append(args, limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}

	records := []*models.Record{}
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, errors.DatabaseError("failed to list records", err)
	}
	return records, nil
}
