// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	service "github.com/okian/raspa/internal/app"
	"github.com/okian/raspa/internal/domain/eligibility"
	"github.com/okian/raspa/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Login resolves eligibility and opens a session.
	Login(ctx context.Context, username, agent string) (types.SessionView, error)

	// Scratch applies scratch samples and, on stroke end, checks the
	// reveal threshold.
	Scratch(ctx context.Context, token string, points []types.Point, endStroke bool) (types.SessionView, error)

	// SessionState returns the current view of a session.
	SessionState(ctx context.Context, token string) (types.SessionView, error)

	// Logout discards a session's in-memory state.
	Logout(ctx context.Context, token string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	loginHandler   *LoginHandler
	scratchHandler *ScratchHandler
	sessionHandler *SessionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		loginHandler:   NewLoginHandler(deps),
		scratchHandler: NewScratchHandler(deps),
		sessionHandler: NewSessionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/login", MetricsMiddleware(s.loginHandler.HandleLogin, "login"))
	mux.HandleFunc("/scratch", MetricsMiddleware(s.scratchHandler.HandleScratch, "scratch"))
	mux.HandleFunc("/session/", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// NewKind tags a sentinel error with the failing operation.
func NewKind(op string, kind error) error {
	return fmt.Errorf("%s: %w", op, kind)
}

// WrapKind tags a sentinel error with the failing operation and cause.
func WrapKind(op string, kind, cause error) error {
	return fmt.Errorf("%s: %w: %v", op, kind, cause)
}

// writeServiceError maps known service error kinds to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, eligibility.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, "invalid_username", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrLoginInProgress):
		writeError(w, http.StatusConflict, "login_in_progress", err)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// clientIP extracts the caller's network origin: the first hop in
// X-Forwarded-For when present, the peer address otherwise.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, ok := strings.Cut(fwd, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
