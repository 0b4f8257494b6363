package postgres

import (
	"context"
	"encoding/json"

	domain "eli5/backend/internal/domain/history"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// HistoryRepository persists history records in PostgreSQL.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository constructs a repository.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Insert stores a new record for the user and returns it with the
// database-assigned id and timestamp.
func (r *HistoryRepository) Insert(ctx context.Context, userID int64, data json.RawMessage) (*domain.Record, error) {
	const query = `
INSERT INTO history_records (user_id, data)
VALUES ($1, $2)
RETURNING id, user_id, timestamp, data
`
	row := r.pool.QueryRow(ctx, query, userID, data)
	return scanRecord(row)
}

// ListByUser returns the user's records, newest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*domain.Record, error) {
	const query = `
SELECT id, user_id, timestamp, data
FROM history_records
WHERE user_id = $1
ORDER BY timestamp DESC
OFFSET $2 LIMIT $3
`
	rows, err := r.pool.Query(ctx, query, userID, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*domain.Record, error) {
	var rec domain.Record
	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Timestamp,
		&rec.Data,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
