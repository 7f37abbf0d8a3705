// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load() layers file/env.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// MongoURI is the document store connection string.
	MongoURI string `koanf:"mongo_uri"`

	// MongoDatabase names the database holding all collections.
	MongoDatabase string `koanf:"mongo_database"`

	// MongoConnectTimeout bounds the initial connect/ping.
	MongoConnectTimeout time.Duration `koanf:"mongo_connect_timeout"`

	// LeaderboardCapacity caps each tournament leaderboard.
	LeaderboardCapacity int `koanf:"leaderboard_capacity"`

	// TokenSecret signs guest bearer tokens.
	TokenSecret string `koanf:"token_secret"`

	// TokenTTL is the guest token lifetime.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// RequireAuth, when true, guards mutating routes with the bearer-token
	// middleware. Off by default: no listed route requires authentication.
	RequireAuth bool `koanf:"require_auth"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8000",
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "OMG",
		MongoConnectTimeout: 10 * time.Second,
		LeaderboardCapacity: 50,
		TokenSecret:         "your-secret-key",
		TokenTTL:            24 * time.Hour,
		RequireAuth:         false,
	}
}
