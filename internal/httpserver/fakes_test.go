package httpserver

import (
	"context"
	"encoding/json"
	"time"

	authdomain "eli5/backend/internal/domain/auth"
	historydomain "eli5/backend/internal/domain/history"
)

type memUserRepo struct {
	users  []*authdomain.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1}
}

func (r *memUserRepo) Create(_ context.Context, user *authdomain.User) error {
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*authdomain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, authdomain.ErrUserNotFound
}

func (r *memUserRepo) remove(email string) {
	kept := r.users[:0]
	for _, u := range r.users {
		if u.Email != email {
			kept = append(kept, u)
		}
	}
	r.users = kept
}

type memRecordRepo struct {
	records []*historydomain.Record
	nextID  int64
}

func newMemRecordRepo() *memRecordRepo {
	return &memRecordRepo{nextID: 1}
}

func (r *memRecordRepo) Insert(_ context.Context, userID int64, data json.RawMessage) (*historydomain.Record, error) {
	rec := &historydomain.Record{
		ID:        r.nextID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	r.nextID++
	r.records = append(r.records, rec)
	return rec, nil
}

func (r *memRecordRepo) ListByUser(_ context.Context, userID int64, offset, limit int) ([]*historydomain.Record, error) {
	var out []*historydomain.Record
	for _, rec := range r.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
