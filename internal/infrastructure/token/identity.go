package token

import (
	"encoding/json"
	"errors"
)

var (
	// ErrMissingSubject indicates the claim set carries no usable subject.
	ErrMissingSubject = errors.New("token missing subject claim")
	// ErrMissingUserID indicates the claim set carries no numeric user id.
	ErrMissingUserID = errors.New("token missing user_id claim")
)

// Identity is the caller identity embedded in an issued token.
type Identity struct {
	Email  string
	UserID int64
}

// IdentityFromClaims extracts the subject email and numeric user id from a
// decoded claim map. The codec itself is format-agnostic, so claim presence
// is checked here, at the caller level.
func IdentityFromClaims(claims map[string]any) (Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return Identity{}, ErrMissingSubject
	}

	userID, ok := numericClaim(claims["user_id"])
	if !ok {
		return Identity{}, ErrMissingUserID
	}

	return Identity{Email: sub, UserID: userID}, nil
}

// SubjectFromClaims extracts only the subject email, for callers that do not
// need the numeric id.
func SubjectFromClaims(claims map[string]any) (string, error) {
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// numericClaim normalises the representations a JSON round trip can produce
// for an integer claim value.
func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	default:
		return 0, false
	}
}
