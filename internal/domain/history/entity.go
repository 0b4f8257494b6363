package history

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	// ErrForbidden indicates the authenticated caller is not the owner of
	// the requested history.
	ErrForbidden = errors.New("not authorized to access this history")
	// ErrNotFound indicates a history record could not be located.
	ErrNotFound = errors.New("history record not found")
)

// Record captures one logged activity for a user. Data carries an opaque
// JSON payload; the service never interprets it.
type Record struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}
