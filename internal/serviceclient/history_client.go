package serviceclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	domain "eli5/backend/internal/domain/auth"
)

// HistoryClient notifies the history service about user lifecycle events.
type HistoryClient struct {
	*Client
}

// NewHistoryClient constructs a client for the history service.
func NewHistoryClient(cfg Config, logger *slog.Logger) *HistoryClient {
	return &HistoryClient{Client: NewClient(cfg, logger)}
}

// NotifyUserCreated tells the history service a user was created. The caller
// treats failure as log-only; this method just reports it.
func (c *HistoryClient) NotifyUserCreated(ctx context.Context, user *domain.User) error {
	body, err := json.Marshal(map[string]any{
		"user_id": user.ID,
		"event":   "user_created",
		"data": map[string]any{
			"username": user.Username,
			"email":    user.Email,
		},
	})
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPost, "/history/user-events", nil, body)
	if err != nil {
		return err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("history service rejected notification: status %d", resp.StatusCode)
	}
	return nil
}
