package history

import (
	"context"
	"encoding/json"
)

// RecordRepository defines persistence behaviours for history records.
type RecordRepository interface {
	Insert(ctx context.Context, userID int64, data json.RawMessage) (*Record, error)
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]*Record, error)
}
