package memory

import (
	"context"
	"sync"

	"github.com/osama-shakil/ppcode/internal/domain/history"
)

// HistoryRepository keeps the most recent generation records in memory,
// for deployments without a database (driver "none").
type HistoryRepository struct {
	mu       sync.Mutex
	records  []*history.Record
	capacity int
}

func NewHistoryRepository(capacity int) *HistoryRepository {
	if capacity <= 0 {
		capacity = 200
	}
	return &HistoryRepository{capacity: capacity}
}

func (r *HistoryRepository) Save(_ context.Context, rec *history.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > r.capacity {
		r.records = r.records[len(r.records)-r.capacity:]
	}
	return nil
}

func (r *HistoryRepository) Latest(_ context.Context, limit int) ([]*history.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*history.Record, 0, limit)
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
