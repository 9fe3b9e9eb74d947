// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/raspa/internal/domain/types"
)

// ScratchDependencies defines the interface for scratch operations.
type ScratchDependencies interface {
	Scratch(ctx context.Context, token string, points []types.Point, endStroke bool) (types.SessionView, error)
}

// ScratchHandler handles scratch input requests.
type ScratchHandler struct {
	deps ScratchDependencies
}

// NewScratchHandler creates a new scratch handler.
func NewScratchHandler(deps ScratchDependencies) *ScratchHandler {
	return &ScratchHandler{deps: deps}
}

// scratchRequest mirrors the wire schema for POST /scratch.
type scratchRequest struct {
	Token  string        `json:"token"`
	Points []types.Point `json:"points"`
	End    bool          `json:"end"`
}

func (s scratchRequest) validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return errors.New("missing token")
	}
	return nil
}

// HandleScratch handles POST /scratch requests.
func (h *ScratchHandler) HandleScratch(w http.ResponseWriter, r *http.Request) {
	const op = "api.scratch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req scratchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	view, err := h.deps.Scratch(r.Context(), req.Token, req.Points, req.End)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
