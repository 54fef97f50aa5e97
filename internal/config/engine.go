package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type EngineConfig struct {
	// InvariantCacheSize bounds the number of memoised D values.
	// Default: 4096
	InvariantCacheSize int

	// RateLimit is the per-client request refill rate (requests/second).
	// Default: 10
	RateLimit int

	// RateBurst is the per-client bucket size.
	// Default: 20
	RateBurst int
}

func (c *EngineConfig) Key() string {
	return ENGINE_CONFIG_KEY
}

func (c *EngineConfig) Load() error {
	c.InvariantCacheSize = common.GetEnvOrDefaultInt("ENGINE_INVARIANT_CACHE_SIZE", 4096)
	c.RateLimit = common.GetEnvOrDefaultInt("ENGINE_RATE_LIMIT", 10)
	c.RateBurst = common.GetEnvOrDefaultInt("ENGINE_RATE_BURST", 20)
	return c.Validate()
}

func (c *EngineConfig) Validate() error {
	if c.InvariantCacheSize < 1 {
		return errors.New("ENGINE_INVARIANT_CACHE_SIZE must be positive")
	}
	if c.RateLimit < 1 || c.RateBurst < c.RateLimit {
		return errors.New("invalid rate limit config")
	}
	return nil
}
