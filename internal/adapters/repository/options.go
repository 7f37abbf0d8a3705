package repository

import (
	"time"

	"github.com/omgplay/arcade/pkg/logger"
)

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(s *MongoStore) {
		if l != nil {
			s.log = l
		}
	}
}

// WithConnectTimeout bounds the initial connect and ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(s *MongoStore) {
		if d > 0 {
			s.connectTimeout = d
		}
	}
}
