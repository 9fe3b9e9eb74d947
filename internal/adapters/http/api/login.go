// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/raspa/internal/app"
	"github.com/okian/raspa/internal/domain/types"
)

// LoginDependencies defines the interface for login operations.
type LoginDependencies interface {
	Login(ctx context.Context, username, agent string) (types.SessionView, error)
}

// LoginHandler handles login requests.
type LoginHandler struct {
	deps LoginDependencies
}

// NewLoginHandler creates a new login handler.
func NewLoginHandler(deps LoginDependencies) *LoginHandler {
	return &LoginHandler{deps: deps}
}

// loginRequest mirrors the wire schema for POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Agent    string `json:"agent"`
}

func (l loginRequest) validate() error {
	if strings.TrimSpace(l.Username) == "" {
		return errors.New("missing username")
	}
	return nil
}

// HandleLogin handles POST /login requests.
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	const op = "api.login"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Carry the caller's origin so eligibility can capture it.
	ctx := service.WithClientIP(r.Context(), clientIP(r))

	view, err := h.deps.Login(ctx, req.Username, req.Agent)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
