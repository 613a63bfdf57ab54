package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// Option applies a configuration option to the MongoStore.
type Option func(*MongoStore)

// WithConnectTimeout bounds the initial connect and ping.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(s *MongoStore) {
		if timeout > 0 {
			s.connectTimeout = timeout
		}
	}
}

// WithDatabase uses an already connected database handle instead of dialing.
func WithDatabase(db *mongo.Database) Option {
	return func(s *MongoStore) {
		s.db = db
	}
}
