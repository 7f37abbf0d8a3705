// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/omgplay/arcade/internal/adapters/repository"
	"github.com/omgplay/arcade/pkg/logger"
)

// StatsDependencies defines the interface for the stats endpoint.
type StatsDependencies interface {
	Stats(ctx context.Context) (repository.Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	deps StatsDependencies
	log  logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(deps StatsDependencies) *StatsHandler {
	return &StatsHandler{deps: deps, log: logger.Named("api")}
}

type statsResponse struct {
	Status bool             `json:"status"`
	Data   repository.Stats `json:"data"`
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.stats"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.deps.Stats(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Status: true, Data: stats})
}
