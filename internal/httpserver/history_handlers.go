package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	historydomain "eli5/backend/internal/domain/history"
	"eli5/backend/internal/infrastructure/token"
	"eli5/backend/internal/observability"
	"eli5/backend/internal/serviceclient"
	historyusecase "eli5/backend/internal/usecase/history"
)

// TokenVerifier derives a caller identity from a raw bearer token. The local
// implementation decodes with the shared secret; the network implementation
// asks the auth service instead and needs no secret.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (token.Identity, error)
}

// HistoryHandlers exposes the history service's HTTP surface.
type HistoryHandlers struct {
	history  *historyusecase.Service
	verifier TokenVerifier
}

// NewHistoryHandlers constructs the handler set.
func NewHistoryHandlers(history *historyusecase.Service, verifier TokenVerifier) *HistoryHandlers {
	return &HistoryHandlers{history: history, verifier: verifier}
}

// Router builds the history service route table.
func (h *HistoryHandlers) Router() *http.ServeMux {
	mux := http.NewServeMux()
	handle := func(pattern string, handler http.HandlerFunc) {
		mux.Handle(pattern, observability.Middleware("history", pattern, handler))
	}
	handle("/history/user-events", h.handleUserEvent)
	handle("/history/health", h.handleHealth)
	handle("/history/", h.handleHistory)
	mux.Handle("/metrics", observability.Handler())
	return mux
}

func (h *HistoryHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "history"})
}

// handleHistory dispatches on the path remainder: POST /history/ creates a
// record, GET /history/{user_id} lists records for that user.
func (h *HistoryHandlers) handleHistory(w http.ResponseWriter, r *http.Request) {
	ident, ok := h.identify(w, r)
	if !ok {
		return
	}

	remainder := strings.Trim(strings.TrimPrefix(r.URL.Path, "/history/"), "/")

	switch r.Method {
	case http.MethodPost:
		if remainder != "" {
			writeError(w, http.StatusNotFound, "resource not found")
			return
		}
		h.createRecord(w, r, ident)
	case http.MethodGet:
		if remainder == "" {
			writeError(w, http.StatusBadRequest, "user id required")
			return
		}
		userID, err := strconv.ParseInt(remainder, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "user id must be an integer")
			return
		}
		h.listRecords(w, r, ident, userID)
	default:
		writeMethodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *HistoryHandlers) createRecord(w http.ResponseWriter, r *http.Request, ident token.Identity) {
	var payload struct {
		ConceptDetails json.RawMessage `json:"concept_details"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	record, err := h.history.Add(r.Context(), ident, payload.ConceptDetails)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h *HistoryHandlers) listRecords(w http.ResponseWriter, r *http.Request, ident token.Identity, userID int64) {
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", historyusecase.DefaultListLimit)

	records, err := h.history.ListByUser(r.Context(), ident, userID, offset, limit)
	if err != nil {
		if errors.Is(err, historydomain.ErrForbidden) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "listing history failed")
		return
	}
	if records == nil {
		records = []*historydomain.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleUserEvent is the sink for best-effort user lifecycle notifications
// from the auth service. It rides the trusted internal network and requires
// no token.
func (h *HistoryHandlers) handleUserEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w, http.MethodPost)
		return
	}

	var payload struct {
		UserID int64           `json:"user_id"`
		Event  string          `json:"event"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if payload.UserID == 0 {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	record, err := h.history.RecordUserEvent(r.Context(), payload.UserID, payload.Event, payload.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// identify re-derives the caller identity from the bearer token. Every
// verification failure answers the same 401; only an unreachable auth
// service (network path) is reported differently, as 503, and never falls
// back to local verification.
func (h *HistoryHandlers) identify(w http.ResponseWriter, r *http.Request) (token.Identity, bool) {
	rawToken := extractBearerToken(r.Header.Get("Authorization"))
	if rawToken == "" {
		writeUnauthenticated(w, "could not validate credentials")
		return token.Identity{}, false
	}

	ident, err := h.verifier.Verify(r.Context(), rawToken)
	if err != nil {
		if errors.Is(err, serviceclient.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "authentication service unavailable")
			return token.Identity{}, false
		}
		writeUnauthenticated(w, "could not validate credentials")
		return token.Identity{}, false
	}
	return ident, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
