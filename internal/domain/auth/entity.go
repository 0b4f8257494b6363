package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates a login failure. Nonexistent email and
	// wrong password deliberately map to the same error so callers cannot
	// probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailExists signals a duplicate email registration.
	ErrEmailExists = errors.New("email already registered")
	// ErrUsernameExists signals a duplicate username registration.
	ErrUsernameExists = errors.New("username already taken")
	// ErrTokenInvalid means a supplied token cannot be validated, including
	// the case where the token subject no longer exists.
	ErrTokenInvalid = errors.New("token invalid or expired")
	// ErrUserNotFound indicates missing user.
	ErrUserNotFound = errors.New("user not found")
)

// User models the credential record persisted in storage.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Credentials captures raw credential input for login.
type Credentials struct {
	Email    string
	Password string
}
