package history

import "context"

// Repository port for persisting and querying generation records
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Latest(ctx context.Context, limit int) ([]*Record, error)
}
