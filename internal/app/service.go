// Package app provides the core business service that implements the
// dependencies required by the HTTP API.
package app

import (
	"context"
	"time"

	"github.com/omgplay/arcade/internal/adapters/repository"
	"github.com/omgplay/arcade/internal/auth"
	"github.com/omgplay/arcade/internal/domain/leaderboard"
	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
	"github.com/omgplay/arcade/pkg/metrics"
)

// Service implements the API dependencies on top of the document store and
// the leaderboard engine.
type Service struct {
	store  repository.Store
	engine *leaderboard.Engine
	issuer *auth.Issuer

	capacity int
	log      logger.Logger
	now      func() time.Time
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// WithLeaderboardCapacity sets the per-tournament leaderboard capacity.
func WithLeaderboardCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithTokenIssuer sets the issuer minting guest tokens.
func WithTokenIssuer(i *auth.Issuer) Option {
	return func(s *Service) {
		if i != nil {
			s.issuer = i
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a Service backed by store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:    store,
		issuer:   auth.NewIssuer("your-secret-key"),
		capacity: 50,
		log:      logger.Named("app"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = leaderboard.New(store, store,
		leaderboard.WithCapacity(s.capacity),
		leaderboard.WithLogger(s.log),
		leaderboard.WithClock(s.now),
	)
	return s
}

// CreateGuest inserts a guest user and mints a bearer token for it.
func (s *Service) CreateGuest(ctx context.Context) (userID, token string, err error) {
	id, err := s.store.CreateUser(ctx, model.User{
		IsGuest:   true,
		Balance:   0,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", "", err
	}
	token, err = s.issuer.Mint(id.Hex())
	if err != nil {
		return "", "", err
	}
	metrics.RecordGuestUserCreated()
	s.log.Info(ctx, "guest user created", logger.String("user_id", id.Hex()))
	return id.Hex(), token, nil
}

// CreateUser inserts a named, non-guest user.
func (s *Service) CreateUser(ctx context.Context, username string) (string, error) {
	id, err := s.store.CreateUser(ctx, model.User{
		IsGuest:   false,
		Username:  username,
		Balance:   0,
		CreatedAt: s.now(),
	})
	if err != nil {
		return "", err
	}
	metrics.RecordNamedUserCreated()
	s.log.Info(ctx, "user created",
		logger.String("user_id", id.Hex()), logger.String("username", username))
	return id.Hex(), nil
}

// User fetches a user by its hex identifier.
func (s *Service) User(ctx context.Context, idHex string) (model.User, error) {
	id, err := repository.ParseID(idHex)
	if err != nil {
		return model.User{}, err
	}
	return s.store.User(ctx, id)
}

// GameDetails returns the full catalog projection.
func (s *Service) GameDetails(ctx context.Context) ([]model.Category, []model.Bundle, []model.Game, error) {
	categories, err := s.store.Categories(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	bundles, err := s.store.Bundles(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	games, err := s.store.Games(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return categories, bundles, games, nil
}

// Categories returns all categories.
func (s *Service) Categories(ctx context.Context) ([]model.Category, error) {
	return s.store.Categories(ctx)
}

// Games returns all games.
func (s *Service) Games(ctx context.Context) ([]model.Game, error) {
	return s.store.Games(ctx)
}

// SubmitWorldRecord validates the referenced user and runs the world-record
// rules for gameID.
func (s *Service) SubmitWorldRecord(ctx context.Context, userIDHex string, gameID int, score int64) (bool, error) {
	userID, err := repository.ParseID(userIDHex)
	if err != nil {
		return false, err
	}
	if _, err := s.store.User(ctx, userID); err != nil {
		return false, err
	}
	return s.engine.SubmitWorldRecord(ctx, gameID, userID, score)
}

// SubmitTournamentScore validates the referenced user and runs the
// tournament admission rules.
func (s *Service) SubmitTournamentScore(ctx context.Context, tournamentIDHex, userIDHex, username string, score int64) (leaderboard.SubmitResult, error) {
	tournamentID, err := repository.ParseID(tournamentIDHex)
	if err != nil {
		return leaderboard.SubmitResult{}, err
	}
	userID, err := repository.ParseID(userIDHex)
	if err != nil {
		return leaderboard.SubmitResult{}, err
	}
	if _, err := s.store.User(ctx, userID); err != nil {
		return leaderboard.SubmitResult{}, err
	}
	return s.engine.SubmitTournamentScore(ctx, tournamentID, userID, username, score)
}

// TournamentSnapshot returns the current/last tournament views.
func (s *Service) TournamentSnapshot(ctx context.Context) (leaderboard.Snapshot, error) {
	return s.engine.Snapshot(ctx)
}

// WorldRecords returns the public projection of all world records.
func (s *Service) WorldRecords(ctx context.Context) ([]leaderboard.RecordView, error) {
	return s.engine.Records(ctx)
}

// Stats reports store collection sizes.
func (s *Service) Stats(ctx context.Context) (repository.Stats, error) {
	return s.store.Counts(ctx)
}

// VerifyToken checks a bearer token and returns its user id. Exposed for
// the optional auth middleware.
func (s *Service) VerifyToken(token string) (string, error) {
	return s.issuer.Verify(token)
}
