// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
)

// CatalogDependencies defines the interface for catalog reads.
type CatalogDependencies interface {
	GameDetails(ctx context.Context) ([]model.Category, []model.Bundle, []model.Game, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Games(ctx context.Context) ([]model.Game, error)
}

// CatalogHandler handles read-only catalog requests.
type CatalogHandler struct {
	deps CatalogDependencies
	log  logger.Logger
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps, log: logger.Named("api")}
}

type gameDetailsResponse struct {
	Status     bool             `json:"status"`
	Categories []model.Category `json:"categories"`
	Bundles    []model.Bundle   `json:"bundles"`
	Games      []model.Game     `json:"games"`
}

type categoriesResponse struct {
	Status bool             `json:"status"`
	Data   []model.Category `json:"data"`
}

// HandleGameDetails handles GET /api/get_game_details requests.
func (h *CatalogHandler) HandleGameDetails(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_game_details"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	categories, bundles, games, err := h.deps.GameDetails(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, gameDetailsResponse{
		Status:     true,
		Categories: emptyIfNil(categories),
		Bundles:    emptyIfNil(bundles),
		Games:      emptyIfNil(games),
	})
}

// HandleCategories handles GET /api/get_categories requests.
func (h *CatalogHandler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_categories"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	categories, err := h.deps.Categories(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Status: true, Data: emptyIfNil(categories)})
}

// HandleGames handles GET /api/games requests. The response is a bare
// array, unlike the enveloped endpoints.
func (h *CatalogHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.games"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	games, err := h.deps.Games(r.Context())
	if err != nil {
		respondError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(games))
}

// emptyIfNil keeps empty collections rendering as [] instead of null.
func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
