package netsync

import (
	"github.com/JeremyLoy/config"
	"github.com/rotisserie/eris"
)

// WorldConfig is populated from the environment. Field names map to
// SCREAMING_SNAKE environment variables (RedisAddress -> REDIS_ADDRESS).
type WorldConfig struct {
	RedisAddress  string
	RedisPassword string
	PeerID        uint64
	StatsdAddress string
}

// GetWorldConfig returns the world configuration with defaults applied for
// anything the environment leaves unset.
func GetWorldConfig() (WorldConfig, error) {
	cfg := WorldConfig{
		RedisAddress: "localhost:6379",
		PeerID:       1,
	}
	if err := config.FromEnv().To(&cfg); err != nil {
		return cfg, eris.Wrap(err, "failed to load world config")
	}
	return cfg, nil
}
