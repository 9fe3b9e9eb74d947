// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/raspa/internal/domain/types"
)

// SessionDependencies defines the interface for session lookups.
type SessionDependencies interface {
	SessionState(ctx context.Context, token string) (types.SessionView, error)
	Logout(ctx context.Context, token string) error
}

// SessionHandler handles session state requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleSession handles GET and DELETE /session/{token} requests.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"

	// Extract path parameter after /session/
	token := strings.TrimPrefix(r.URL.Path, "/session/")
	if token == "" || strings.Contains(token, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	switch r.Method {
	case http.MethodGet:
		view, err := h.deps.SessionState(r.Context(), token)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	case http.MethodDelete:
		if err := h.deps.Logout(r.Context(), token); err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
	default:
		http.NotFound(w, r)
	}
}
