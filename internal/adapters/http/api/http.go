// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/omgplay/arcade/internal/adapters/repository"
	"github.com/omgplay/arcade/internal/domain/leaderboard"
	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	UserDependencies
	CatalogDependencies
	RecordDependencies
	TournamentDependencies
	StatsDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	userHandler       *UserHandler
	catalogHandler    *CatalogHandler
	recordHandler     *RecordHandler
	tournamentHandler *TournamentHandler
	statsHandler      *StatsHandler
	healthHandler     *HealthHandler

	verifier    TokenVerifier
	requireAuth bool
	log         logger.Logger
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithAuth enables the bearer-token middleware on mutating routes.
func WithAuth(verifier TokenVerifier) ServerOption {
	return func(s *Server) {
		if verifier != nil {
			s.verifier = verifier
			s.requireAuth = true
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) ServerOption {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		userHandler:       NewUserHandler(deps),
		catalogHandler:    NewCatalogHandler(deps),
		recordHandler:     NewRecordHandler(deps),
		tournamentHandler: NewTournamentHandler(deps),
		statsHandler:      NewStatsHandler(deps),
		healthHandler:     NewHealthHandler(),
		log:               logger.Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		if !s.requireAuth {
			return next
		}
		return AuthMiddleware(s.verifier, next)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/generate_guest", MetricsMiddleware(s.userHandler.HandleGenerateGuest, "generate_guest"))
	mux.HandleFunc("/api/user_details", MetricsMiddleware(s.userHandler.HandleUserDetails, "user_details"))
	mux.HandleFunc("/api/user/create", MetricsMiddleware(guard(s.userHandler.HandleCreateUser), "user_create"))

	mux.HandleFunc("/api/get_game_details", MetricsMiddleware(s.catalogHandler.HandleGameDetails, "get_game_details"))
	mux.HandleFunc("/api/get_categories", MetricsMiddleware(s.catalogHandler.HandleCategories, "get_categories"))
	mux.HandleFunc("/api/games", MetricsMiddleware(s.catalogHandler.HandleGames, "games"))

	mux.HandleFunc("/api/world-record/submit", MetricsMiddleware(guard(s.recordHandler.HandleSubmit), "world_record_submit"))
	mux.HandleFunc("/api/world-records", MetricsMiddleware(s.recordHandler.HandleList, "world_records"))

	mux.HandleFunc("/api/tournament/submit", MetricsMiddleware(guard(s.tournamentHandler.HandleSubmit), "tournament_submit"))
	mux.HandleFunc("/api/tournament/data", MetricsMiddleware(s.tournamentHandler.HandleData, "tournament_data"))
}

// Snapshot and view aliases keep handler signatures close to the engine.
type (
	Snapshot   = leaderboard.Snapshot
	RecordView = leaderboard.RecordView
	User       = model.User
)

type errorResponse struct {
	Status  bool   `json:"status"`
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
	writeJSON(w, status, errorResponse{Status: false, Code: code, Message: msg})
}

// respondError translates an operation error into the API error taxonomy:
// malformed input -> 400, missing referent -> 404, anything else -> 500
// with a generic message and the detail logged server-side only.
func respondError(w http.ResponseWriter, r *http.Request, log logger.Logger, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, leaderboard.ErrNegativeScore):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	default:
		log.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", NewKind(op, ErrInternal))
	}
}
