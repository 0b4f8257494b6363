package serviceclient

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"eli5/backend/internal/infrastructure/token"
)

// RemoteUser is the identity projection returned by the auth service.
type RemoteUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// AuthClient verifies tokens by calling the auth service instead of holding
// the signing secret locally. It trades a network round trip for not needing
// the secret.
type AuthClient struct {
	*Client
}

// NewAuthClient constructs a client for the auth service.
func NewAuthClient(cfg Config, logger *slog.Logger) *AuthClient {
	return &AuthClient{Client: NewClient(cfg, logger)}
}

// ValidateToken forwards the bearer token to the auth service's identity
// endpoint. Any non-200 response is a verification failure.
func (c *AuthClient) ValidateToken(ctx context.Context, rawToken string) (*RemoteUser, error) {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+rawToken)

	resp, err := c.do(ctx, http.MethodGet, "/auth/me", header, nil)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTokenRejected, resp.StatusCode)
	}

	var user RemoteUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decoding auth service response: %w", err)
	}
	return &user, nil
}

// Verify adapts ValidateToken to the identity shape downstream handlers
// consume, making the network path interchangeable with the local one.
func (c *AuthClient) Verify(ctx context.Context, rawToken string) (token.Identity, error) {
	user, err := c.ValidateToken(ctx, rawToken)
	if err != nil {
		return token.Identity{}, err
	}
	return token.Identity{Email: user.Email, UserID: user.ID}, nil
}
