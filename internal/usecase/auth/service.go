package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	domain "eli5/backend/internal/domain/auth"
	"eli5/backend/internal/infrastructure/token"

	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers best-effort notifications about user lifecycle events to
// interested services. Failures are logged and never surfaced to the caller.
type Notifier interface {
	NotifyUserCreated(ctx context.Context, user *domain.User) error
}

// Service coordinates authentication workflows between domain and
// infrastructure.
type Service struct {
	users    domain.UserRepository
	codec    *token.Codec
	notifier Notifier
	logger   *slog.Logger
	nowFunc  func() time.Time
}

// NewService constructs an auth service. notifier may be nil when no
// downstream service should hear about signups.
func NewService(users domain.UserRepository, codec *token.Codec, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		users:    users,
		codec:    codec,
		notifier: notifier,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Signup creates a new user and returns the persisted entity without a
// password hash. The email check runs before the username check.
func (s *Service) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	password = strings.TrimSpace(password)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if email == "" {
		return nil, errors.New("email is required")
	}
	if password == "" {
		return nil, errors.New("password is required")
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, domain.ErrUsernameExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    s.nowFunc().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.dispatchUserCreated(user)

	return sanitizeUser(user), nil
}

// dispatchUserCreated notifies downstream services asynchronously once the
// user row is committed. The signup result never depends on the outcome.
func (s *Service) dispatchUserCreated(user *domain.User) {
	if s.notifier == nil {
		return
	}
	snapshot := *sanitizeUser(user)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.NotifyUserCreated(ctx, &snapshot); err != nil {
			s.logger.Warn("user created notification failed",
				"user_id", snapshot.ID, "error", err)
		}
	}()
}

// Login validates credentials and returns a signed token carrying the email
// as subject and the numeric user id.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (string, error) {
	email := strings.TrimSpace(strings.ToLower(creds.Email))
	password := strings.TrimSpace(creds.Password)
	if email == "" || password == "" {
		return "", domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", domain.ErrInvalidCredentials
	}

	return s.codec.Encode(map[string]any{
		"sub":     user.Email,
		"user_id": user.ID,
	})
}

// CurrentUser resolves a bearer token back to the stored user. Decode
// failures, a missing subject, and a subject that no longer exists all fold
// to ErrTokenInvalid.
func (s *Service) CurrentUser(ctx context.Context, rawToken string) (*domain.User, error) {
	claims, err := s.codec.Decode(rawToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	subject, err := token.SubjectFromClaims(claims)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	user, err := s.users.GetByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrTokenInvalid
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func sanitizeUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	copy := *u
	copy.PasswordHash = ""
	return &copy
}
