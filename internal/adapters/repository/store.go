// Package repository defines the document store interface and its MongoDB
// implementation.
package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omgplay/arcade/internal/domain/model"
)

// Stats summarizes collection sizes for the stats endpoint.
type Stats struct {
	Users            int64 `json:"users"`
	Games            int64 `json:"games"`
	WorldRecords     int64 `json:"worldRecords"`
	Tournaments      int64 `json:"tournaments"`
	TournamentScores int64 `json:"tournamentScores"`
}

// Store provides access to every collection used by the service.
type Store interface {
	// Users.
	CreateUser(ctx context.Context, u model.User) (primitive.ObjectID, error)
	User(ctx context.Context, id primitive.ObjectID) (model.User, error)

	// Catalog (read-only).
	Games(ctx context.Context) ([]model.Game, error)
	Categories(ctx context.Context) ([]model.Category, error)
	Bundles(ctx context.Context) ([]model.Bundle, error)

	// World records.
	WorldRecord(ctx context.Context, gameID int) (model.WorldRecord, error)
	PutWorldRecordIfHigher(ctx context.Context, rec model.WorldRecord) (bool, error)
	WorldRecords(ctx context.Context) ([]model.WorldRecord, error)

	// Tournaments.
	Tournament(ctx context.Context, id primitive.ObjectID) (model.Tournament, error)
	Tournaments(ctx context.Context) ([]model.Tournament, error)
	TournamentScores(ctx context.Context, tournamentID primitive.ObjectID, limit int64) ([]model.TournamentScore, error)
	InsertTournamentScore(ctx context.Context, s model.TournamentScore) error
	UpdateTournamentScore(ctx context.Context, tournamentID, userID primitive.ObjectID, score int64) error
	TrimTournamentScores(ctx context.Context, tournamentID primitive.ObjectID, keep int64) (int64, error)

	// Operational.
	Counts(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// ParseID converts a client-supplied hex identifier into an ObjectID.
// Malformed input maps to ErrInvalidID so the API can reject it as a
// validation error without touching the store.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
