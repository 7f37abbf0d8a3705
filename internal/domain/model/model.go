// Package model defines the documents stored in the document store and the
// projections served to clients.
package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Week type values carried by tournament documents. Anything else is
// ignored by the snapshot read path.
const (
	WeekCurrent = "current"
	WeekLast    = "last"
)

// User is an identity record. Immutable after creation; there is no
// update endpoint.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"userId"`
	IsGuest   bool               `bson:"is_guest" json:"is_guest"`
	Username  string             `bson:"username,omitempty" json:"username,omitempty"`
	Balance   float64            `bson:"balance" json:"balance"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Game is read-only catalog metadata with an externally assigned id.
type Game struct {
	ID            int        `bson:"id" json:"id"`
	Name          string     `bson:"name" json:"name"`
	BundleURL     string     `bson:"bundle_url" json:"bundle_url"`
	CategoryNames []string   `bson:"category_names" json:"category_names"`
	ImageURL      string     `bson:"image_url" json:"image_url"`
	LastUpdate    *time.Time `bson:"last_update,omitempty" json:"LastUpdate,omitempty"`
}

// Category groups games in the catalog.
type Category struct {
	ID        int       `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// Bundle is an opaque catalog document served verbatim to clients.
type Bundle struct {
	ID   int    `bson:"id" json:"id"`
	Name string `bson:"name" json:"name"`
	URL  string `bson:"url" json:"url"`
}

// WorldRecord holds the single best score ever submitted for a game.
// At most one document exists per GameID; upsert semantics enforce it.
type WorldRecord struct {
	GameID    int                `bson:"game_id" json:"gameId"`
	UserID    primitive.ObjectID `bson:"user_id" json:"-"`
	Score     int64              `bson:"score" json:"score"`
	UpdatedAt time.Time          `bson:"updated_at" json:"-"`
}

// Tournament is a time-boxed competition tagged as this week or the last.
type Tournament struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"tournamentId"`
	Name     string             `bson:"name" json:"tournamentName"`
	GameName string             `bson:"game_name" json:"gameName"`
	Prizes   []string           `bson:"prizes" json:"prizes"`
	WeekType string             `bson:"week_type" json:"-"`
}

// TournamentScore is one participant's best score within a tournament.
// Username is denormalized at first submission and never refreshed.
type TournamentScore struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	TournamentID primitive.ObjectID `bson:"tournament_id" json:"-"`
	UserID       primitive.ObjectID `bson:"user_id" json:"-"`
	Username     string             `bson:"username" json:"username"`
	Score        int64              `bson:"score" json:"score"`
}
