package config

import (
	"errors"
	"strings"

	"github.com/andrew-solarstorm/go-packages/common"
	"github.com/rs/zerolog"
)

type ServerEnv = string

var (
	DevEnv     ServerEnv = "dev"
	StagingEnv ServerEnv = "staging"
	ProdEnv    ServerEnv = "prod"
)

const (
	GENERAL_CONFIG_KEY    = "general-config"
	ENGINE_CONFIG_KEY     = "engine-config"
	POOL_STORE_CONFIG_KEY = "pool-store-config"
)

type GeneralConfig struct {
	HTTPPort string
	HTTPHost string
	Env      string
	LogLevel string
}

func (gc *GeneralConfig) Key() string {
	return GENERAL_CONFIG_KEY
}

func (gc *GeneralConfig) Load() error {
	gc.HTTPPort = common.GetEnvOrDefault("HTTP_PORT", "8080")
	gc.HTTPHost = common.GetEnvOrDefault("HTTP_HOST", "localhost")
	gc.Env = common.GetEnvOrDefault("ENV", DevEnv)
	gc.LogLevel = common.GetEnvOrDefault("LOG_LEVEL", "INFO")
	return gc.Validate()
}

func (gc *GeneralConfig) Validate() error {
	if gc.HTTPPort == "" || gc.HTTPHost == "" || gc.Env == "" {
		return errors.New("invalid server config")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(gc.LogLevel)); err != nil {
		return errors.New("invalid log level: " + gc.LogLevel)
	}
	return nil
}

// ZerologLevel maps LOG_LEVEL onto a zerolog level, defaulting to info.
func (gc *GeneralConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(gc.LogLevel))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}
