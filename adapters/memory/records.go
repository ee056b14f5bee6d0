// Package memory holds mutex-guarded stores used when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"priorelicit/domain/core"
	"priorelicit/models"
	"priorelicit/ports"
)

// RecordStore keeps records in process memory
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]*models.Record
}

var _ ports.RecordRepository = (*RecordStore)(nil)

// NewRecordStore creates an empty store
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[string]*models.Record)}
}

func clone(r *models.Record) *models.Record {
	c := *r
	c.Payload = append(models.JSONPayload(nil), r.Payload...)
	return &c
}

// Create stores a copy of the record
func (s *RecordStore) Create(ctx context.Context, record *models.Record) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := clone(record)
	if stored.ID == "" {
		stored.ID = core.NewRecordID().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[stored.ID] = stored
	return clone(stored), nil
}

// Get returns a copy of the record
func (s *RecordStore) Get(ctx context.Context, id string) (*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, core.ErrRecordNotFound
	}
	return clone(r), nil
}

// GetByName returns the newest record with the name
func (s *RecordStore) GetByName(ctx context.Context, name string) (*models.Record, error) {
	all, err := s.List(ctx, "", 0)
	if err != nil {
		return nil, err
	}
	for _, r := range all {
		if r.Name == name {
			return r, nil
		}
	}
	return nil, core.ErrRecordNotFound
}

// List returns copies newest first
func (s *RecordStore) List(ctx context.Context, taskID string, limit int) ([]*models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := make([]*models.Record, 0, len(s.records))
	for _, r := range s.records {
		if taskID == "" || r.TaskID == taskID {
			out = append(out, clone(r))
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
