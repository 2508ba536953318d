package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/osama-shakil/ppcode/internal/domain/history"
)

type HistoryRepository struct{ db *sql.DB }

func NewHistoryRepository(db *sql.DB) *HistoryRepository { return &HistoryRepository{db: db} }

// Save insert/update one generation record
func (r *HistoryRepository) Save(ctx context.Context, rec *history.Record) error {
	const q = `
INSERT INTO generation_history
(id, kind, gen_key, filename, status, message, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
 filename = EXCLUDED.filename,
 status = EXCLUDED.status,
 message = EXCLUDED.message,
 duration_ms = EXCLUDED.duration_ms;`

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		rec.ID, stringOrDash(rec.Kind), rec.Key, rec.Filename,
		stringOrDash(rec.Status), rec.Message, rec.DurationMS, created,
	)
	return err
}

// Latest generation records, newest first
func (r *HistoryRepository) Latest(ctx context.Context, limit int) ([]*history.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, kind, gen_key, filename, status, message, duration_ms, created_at
FROM generation_history
ORDER BY created_at DESC LIMIT $1;`

	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*history.Record
	for rows.Next() {
		var rec history.Record
		var message sql.NullString
		if err := rows.Scan(
			&rec.ID, &rec.Kind, &rec.Key, &rec.Filename,
			&rec.Status, &message, &rec.DurationMS, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		rec.Message = message.String
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func stringOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
