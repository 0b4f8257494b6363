package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	authdomain "eli5/backend/internal/domain/auth"
	"eli5/backend/internal/observability"
	authusecase "eli5/backend/internal/usecase/auth"
)

// AuthHandlers exposes the auth service's HTTP surface.
type AuthHandlers struct {
	auth *authusecase.Service
}

// NewAuthHandlers constructs the handler set.
func NewAuthHandlers(auth *authusecase.Service) *AuthHandlers {
	return &AuthHandlers{auth: auth}
}

// Router builds the auth service route table.
func (h *AuthHandlers) Router() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, observability.Middleware("auth", pattern, handler))
	}
	handle("/auth/signup", h.handleSignup)
	handle("/auth/login", h.handleLoginForm)
	handle("/api/auth/login", h.handleLoginJSON)
	handle("/auth/me", h.handleMe)
	handle("/auth/health", h.handleHealth)
	mux.Handle("/metrics", observability.Handler())
	return mux
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "auth"})
}

func (h *AuthHandlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	user, err := h.auth.Signup(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, authdomain.ErrEmailExists), errors.Is(err, authdomain.ErrUsernameExists):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

// handleLoginForm accepts form-encoded credentials. The username field is
// matched against the stored email, mirroring OAuth2 password-grant forms.
func (h *AuthHandlers) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	h.login(w, r, authdomain.Credentials{
		Email:    r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	})
}

// handleLoginJSON accepts a JSON body with explicit email and password
// fields. Both login variants produce an identical token shape.
func (h *AuthHandlers) handleLoginJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	h.login(w, r, authdomain.Credentials{
		Email:    payload.Email,
		Password: payload.Password,
	})
}

func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request, creds authdomain.Credentials) {
	token, err := h.auth.Login(r.Context(), creds)
	if err != nil {
		if errors.Is(err, authdomain.ErrInvalidCredentials) {
			writeUnauthenticated(w, "incorrect email or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *AuthHandlers) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	rawToken := extractBearerToken(r.Header.Get("Authorization"))
	if rawToken == "" {
		writeUnauthenticated(w, "could not validate credentials")
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), rawToken)
	if err != nil {
		// Bad token and stale subject fold to the same response.
		if errors.Is(err, authdomain.ErrTokenInvalid) {
			writeUnauthenticated(w, "could not validate credentials")
			return
		}
		writeError(w, http.StatusInternalServerError, "identity lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}
