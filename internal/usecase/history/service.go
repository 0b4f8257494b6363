package history

import (
	"context"
	"encoding/json"
	"errors"

	domain "eli5/backend/internal/domain/history"
	"eli5/backend/internal/infrastructure/token"
)

// DefaultListLimit caps history listings when the caller does not ask for a
// specific page size.
const DefaultListLimit = 100

// Service provides history record use cases. Ownership is enforced here, at
// the boundary, not in storage.
type Service struct {
	records domain.RecordRepository
}

// NewService constructs a history service around the provided repository.
func NewService(records domain.RecordRepository) *Service {
	return &Service{records: records}
}

// Add stores a record owned by the authenticated caller. The owner always
// comes from the verified identity, never from the request body.
func (s *Service) Add(ctx context.Context, ident token.Identity, payload json.RawMessage) (*domain.Record, error) {
	if len(payload) == 0 {
		return nil, errors.New("record payload is required")
	}
	return s.records.Insert(ctx, ident.UserID, payload)
}

// ListByUser returns records for targetUserID. Callers may only read their
// own history; the check does not reveal whether the target user exists.
func (s *Service) ListByUser(ctx context.Context, ident token.Identity, targetUserID int64, offset, limit int) ([]*domain.Record, error) {
	if ident.UserID != targetUserID {
		return nil, domain.ErrForbidden
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.records.ListByUser(ctx, targetUserID, offset, limit)
}

// RecordUserEvent stores a user lifecycle event delivered over the internal
// notification channel. Events are kept in the same history log, tagged with
// the event name.
func (s *Service) RecordUserEvent(ctx context.Context, userID int64, event string, data json.RawMessage) (*domain.Record, error) {
	if event == "" {
		return nil, errors.New("event name is required")
	}
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	payload, err := json.Marshal(struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}{Event: event, Data: data})
	if err != nil {
		return nil, err
	}
	return s.records.Insert(ctx, userID, payload)
}
