package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "eli5/backend/internal/domain/auth"
	"eli5/backend/internal/infrastructure/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	users  []*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	stored := *user
	r.users = append(r.users, &stored)
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copy := *u
			return &copy, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type fakeNotifier struct {
	notified chan *domain.User
	err      error
}

func (n *fakeNotifier) NotifyUserCreated(_ context.Context, user *domain.User) error {
	if n.notified != nil {
		n.notified <- user
	}
	return n.err
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *token.Codec) {
	t.Helper()
	repo := newFakeUserRepo()
	codec := token.NewCodec("test-secret", time.Minute)
	return NewService(repo, codec, nil, nil), repo, codec
}

func TestSignup(t *testing.T) {
	svc, repo, _ := newTestService(t)

	user, err := svc.Signup(context.Background(), "alice", "Alice@X.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@x.com", user.Email, "email is lowercased")
	assert.Empty(t, user.PasswordHash, "projection must not carry the hash")

	stored, err := repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PasswordHash)
	assert.NotEqual(t, "pw123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw123")))
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	// Same email with a fresh username: the email check runs first.
	_, err = svc.Signup(context.Background(), "alice2", "alice@x.com", "pw123")
	assert.ErrorIs(t, err, domain.ErrEmailExists)

	// Same email AND same username still reports the email first.
	_, err = svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	assert.ErrorIs(t, err, domain.ErrEmailExists)
}

func TestSignupDuplicateUsername(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), "alice", "other@x.com", "pw123")
	assert.ErrorIs(t, err, domain.ErrUsernameExists)
}

func TestSignupNotifies(t *testing.T) {
	repo := newFakeUserRepo()
	codec := token.NewCodec("test-secret", time.Minute)
	notifier := &fakeNotifier{notified: make(chan *domain.User, 1)}
	svc := NewService(repo, codec, notifier, nil)

	_, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	select {
	case user := <-notifier.notified:
		assert.Equal(t, int64(1), user.ID)
		assert.Empty(t, user.PasswordHash)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

func TestSignupNotifierFailureIsSwallowed(t *testing.T) {
	repo := newFakeUserRepo()
	codec := token.NewCodec("test-secret", time.Minute)
	notifier := &fakeNotifier{notified: make(chan *domain.User, 1), err: assert.AnError}
	svc := NewService(repo, codec, notifier, nil)

	user, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)
	require.NotNil(t, user)
	<-notifier.notified
}

func TestLogin(t *testing.T) {
	svc, _, codec := newTestService(t)

	user, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	tok, err := svc.Login(context.Background(), domain.Credentials{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	claims, err := codec.Decode(tok)
	require.NoError(t, err)
	ident, err := token.IdentityFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, "alice@x.com", ident.Email)
	assert.Equal(t, user.ID, ident.UserID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(context.Background(), domain.Credentials{Email: "alice@x.com", Password: "nope"})
	_, noSuchUser := svc.Login(context.Background(), domain.Credentials{Email: "ghost@x.com", Password: "pw123"})

	assert.ErrorIs(t, wrongPassword, domain.ErrInvalidCredentials)
	assert.ErrorIs(t, noSuchUser, domain.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword, noSuchUser)
}

func TestLoginEmptyCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Login(context.Background(), domain.Credentials{})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestCurrentUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	signed, err := svc.Signup(context.Background(), "alice", "alice@x.com", "pw123")
	require.NoError(t, err)

	tok, err := svc.Login(context.Background(), domain.Credentials{Email: "alice@x.com", Password: "pw123"})
	require.NoError(t, err)

	user, err := svc.CurrentUser(context.Background(), tok)
	require.NoError(t, err)
	assert.Equal(t, signed.ID, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.Empty(t, user.PasswordHash)
}

func TestCurrentUserBadToken(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.CurrentUser(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestCurrentUserStaleSubject(t *testing.T) {
	svc, _, codec := newTestService(t)

	// Token for a subject that was never stored (deleted-user case).
	tok, err := codec.Encode(map[string]any{"sub": "ghost@x.com", "user_id": int64(99)})
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestCurrentUserMissingSubject(t *testing.T) {
	svc, _, codec := newTestService(t)

	tok, err := codec.Encode(map[string]any{"user_id": int64(1)})
	require.NoError(t, err)

	_, err = svc.CurrentUser(context.Background(), tok)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}
