package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"eli5/backend/internal/infrastructure/token"
	"eli5/backend/internal/serviceclient"
	authusecase "eli5/backend/internal/usecase/auth"
	historyusecase "eli5/backend/internal/usecase/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRemoteVerification exercises the alternate path where the history
// service holds no signing secret and validates tokens by calling the auth
// service's identity endpoint.
func TestRemoteVerification(t *testing.T) {
	codec := token.NewCodec("issuer-only-secret", time.Minute)
	authSvc := authusecase.NewService(newMemUserRepo(), codec, nil, nil)
	authSrv := httptest.NewServer(NewAuthHandlers(authSvc).Router())
	defer authSrv.Close()

	verifier := serviceclient.NewAuthClient(serviceclient.Config{
		BaseURL:    authSrv.URL,
		MaxRetries: 1,
	}, nil)
	historySvc := historyusecase.NewService(newMemRecordRepo())
	historySrv := httptest.NewServer(NewHistoryHandlers(historySvc, verifier).Router())
	defer historySrv.Close()

	signup(t, authSrv, "alice", "alice@x.com", "pw123").Body.Close()
	resp, err := http.Post(authSrv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"alice@x.com","password":"pw123"}`))
	require.NoError(t, err)
	tok := decodeJSON[map[string]string](t, resp)["access_token"]

	resp = doRequest(t, http.MethodPost, historySrv.URL+"/history/", tok,
		`{"concept_details":{"topic":"magnets"}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doRequest(t, http.MethodPost, historySrv.URL+"/history/", "not-a-real-token",
		`{"concept_details":{"topic":"magnets"}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// TestRemoteVerificationUnavailable confirms an unreachable auth service
// surfaces as 503 rather than silently falling back to local verification.
func TestRemoteVerificationUnavailable(t *testing.T) {
	deadSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadSrv.Close()

	verifier := serviceclient.NewAuthClient(serviceclient.Config{
		BaseURL:    deadSrv.URL,
		MaxRetries: 2,
		Timeout:    time.Second,
	}, nil)
	historySvc := historyusecase.NewService(newMemRecordRepo())
	historySrv := httptest.NewServer(NewHistoryHandlers(historySvc, verifier).Router())
	defer historySrv.Close()

	resp := doRequest(t, http.MethodPost, historySrv.URL+"/history/", "some-token",
		`{"concept_details":{"topic":"magnets"}}`)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
