package config

import (
	"errors"

	"github.com/andrew-solarstorm/go-packages/common"
)

type PoolStoreConfig struct {
	// DBPath is the BoltDB file holding registered pool snapshots.
	// Default: "./data/pools.db"
	DBPath string

	// PersistenceEnabled controls whether pools survive a restart.
	// Default: true
	PersistenceEnabled bool

	// PersistInterval is how often dirty pools are batch-saved (in seconds).
	// Default: 30
	PersistInterval int
}

func (c *PoolStoreConfig) Key() string {
	return POOL_STORE_CONFIG_KEY
}

func (c *PoolStoreConfig) Load() error {
	c.DBPath = common.GetEnvOrDefault("POOL_DB_PATH", "./data/pools.db")
	c.PersistenceEnabled = common.GetEnvOrDefault("POOL_PERSISTENCE_ENABLED", "true") == "true"
	c.PersistInterval = common.GetEnvOrDefaultInt("POOL_PERSIST_INTERVAL", 30)
	return c.Validate()
}

func (c *PoolStoreConfig) Validate() error {
	if c.PersistenceEnabled && c.DBPath == "" {
		return errors.New("POOL_DB_PATH is required when persistence is enabled")
	}
	if c.PersistInterval < 1 {
		return errors.New("POOL_PERSIST_INTERVAL must be positive")
	}
	return nil
}
