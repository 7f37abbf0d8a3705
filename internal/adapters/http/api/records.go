// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/omgplay/arcade/pkg/logger"
)

// RecordDependencies defines the interface for world-record operations.
type RecordDependencies interface {
	SubmitWorldRecord(ctx context.Context, userIDHex string, gameID int, score int64) (bool, error)
	WorldRecords(ctx context.Context) ([]RecordView, error)
}

// RecordHandler handles world-record requests.
type RecordHandler struct {
	deps RecordDependencies
	log  logger.Logger
}

// NewRecordHandler creates a new world-record handler.
func NewRecordHandler(deps RecordDependencies) *RecordHandler {
	return &RecordHandler{deps: deps, log: logger.Named("api")}
}

type submitRecordRequest struct {
	UserID string `json:"userId"`
	GameID *int   `json:"gameId"`
	Score  *int64 `json:"score"`
}

func (r submitRecordRequest) validate() error {
	switch {
	case strings.TrimSpace(r.UserID) == "":
		return NewKind("missing userId", ErrBadRequest)
	case r.GameID == nil:
		return NewKind("missing gameId", ErrBadRequest)
	case r.Score == nil:
		return NewKind("missing score", ErrBadRequest)
	case *r.Score < 0:
		return NewKind("score must be non-negative", ErrBadRequest)
	}
	return nil
}

type submitRecordResponse struct {
	Status         bool `json:"status"`
	NewWorldRecord bool `json:"newWorldRecord"`
}

type recordsResponse struct {
	Status bool         `json:"status"`
	Data   []RecordView `json:"data"`
}

// HandleSubmit handles POST /api/world-record/submit requests.
func (h *RecordHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.world_record_submit"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req submitRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	isNew, err := h.deps.SubmitWorldRecord(r.Context(), req.UserID, *req.GameID, *req.Score)
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, submitRecordResponse{Status: true, NewWorldRecord: isNew})
}

// HandleList handles GET /api/world-records requests.
func (h *RecordHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.world_records"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records, err := h.deps.WorldRecords(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse{Status: true, Data: emptyIfNil(records)})
}
