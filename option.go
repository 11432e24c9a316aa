package netsync

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/worldmesh/netsync/types"
)

// WorldOption is a type that can be passed to NewWorld to augment the
// creation of the world.
type WorldOption func(*World)

// WithRedisClient replaces the redis client built from environment
// configuration. Tests pass a client pointed at miniredis.
func WithRedisClient(client redis.Cmdable) WorldOption {
	return func(w *World) {
		w.redisClient = client
	}
}

// WithPeerID overrides the network identity this world acts as.
func WithPeerID(id types.NetID) WorldOption {
	return func(w *World) {
		w.peerID = id
	}
}

// WithLogger replaces the default global logger.
func WithLogger(logger zerolog.Logger) WorldOption {
	return func(w *World) {
		w.logger = logger
	}
}
