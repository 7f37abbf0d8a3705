// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/omgplay/arcade/internal/domain/leaderboard"
	"github.com/omgplay/arcade/pkg/logger"
)

// TournamentDependencies defines the interface for tournament operations.
type TournamentDependencies interface {
	SubmitTournamentScore(ctx context.Context, tournamentIDHex, userIDHex, username string, score int64) (leaderboard.SubmitResult, error)
	TournamentSnapshot(ctx context.Context) (Snapshot, error)
}

// TournamentHandler handles tournament requests.
type TournamentHandler struct {
	deps TournamentDependencies
	log  logger.Logger
}

// NewTournamentHandler creates a new tournament handler.
func NewTournamentHandler(deps TournamentDependencies) *TournamentHandler {
	return &TournamentHandler{deps: deps, log: logger.Named("api")}
}

type submitScoreRequest struct {
	TournamentID string `json:"tournamentId"`
	UserID       string `json:"userId"`
	Username     string `json:"username"`
	Score        *int64 `json:"score"`
}

func (r submitScoreRequest) validate() error {
	switch {
	case strings.TrimSpace(r.TournamentID) == "":
		return NewKind("missing tournamentId", ErrBadRequest)
	case strings.TrimSpace(r.UserID) == "":
		return NewKind("missing userId", ErrBadRequest)
	case strings.TrimSpace(r.Username) == "":
		return NewKind("missing username", ErrBadRequest)
	case r.Score == nil:
		return NewKind("missing score", ErrBadRequest)
	case *r.Score < 0:
		return NewKind("score must be non-negative", ErrBadRequest)
	}
	return nil
}

// submitScoreResponse omits qualified for existing participants, where the
// flag carries no meaning.
type submitScoreResponse struct {
	Status    bool  `json:"status"`
	Qualified *bool `json:"qualified,omitempty"`
}

type tournamentDataResponse struct {
	Status bool     `json:"status"`
	Data   Snapshot `json:"data"`
}

// HandleSubmit handles POST /api/tournament/submit requests.
func (h *TournamentHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.tournament_submit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submitScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	res, err := h.deps.SubmitTournamentScore(r.Context(), req.TournamentID, req.UserID, strings.TrimSpace(req.Username), *req.Score)
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, submitScoreResponse{Status: res.Accepted, Qualified: res.Qualified})
}

// HandleData handles GET /api/tournament/data requests.
func (h *TournamentHandler) HandleData(w http.ResponseWriter, r *http.Request) {
	const op = "api.tournament_data"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	snap, err := h.deps.TournamentSnapshot(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, tournamentDataResponse{Status: true, Data: snap})
}
