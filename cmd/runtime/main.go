package main

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/stableswap-engine/internal/common"
	"github.com/hxuan190/stableswap-engine/internal/config"
	"github.com/hxuan190/stableswap-engine/internal/http"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/internal/services/market"
)

// @title StableSwap Engine API
// @version 1.0
// @description Deterministic StableSwap pricing for multi-asset pools of pegged assets.
// @description
// @description ## - Features
// @description - **Swaps**: out-given-in and in-given-out with the pool fee applied
// @description - **Liquidity**: shares for deposits, single-asset withdrawals and their inverses
// @description - **Amplification ramps**: linear interpolation between two blocks
// @description - **Pool registry**: register snapshots by id and quote against them
// @description
// @description ## - Usage Tips
// @description - Amounts are unsigned integers in the asset's smallest unit, sent as decimal strings
// @description - Reserves are normalised to 18 decimals internally
// @description - Fees are fractions with up to six decimal places, e.g. "0.0004"
// @description - Rate Limit: 10 requests/second per client (burst: 20) by default
// @BasePath /
// @schemes http https
// @tag.name swap
// @tag.description Stateless swap pricing against a reserve snapshot
// @tag.name liquidity
// @tag.description Share minting and single-asset withdrawals
// @tag.name engine
// @tag.description Amplification ramps and the invariant
// @tag.name pools
// @tag.description Registered pool snapshots

func main() {
	common.InitRuntime()

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("no .env file, using process environment")
	}

	general := &config.GeneralConfig{}
	conf := container.NewConf(
		general,
		&config.EngineConfig{},
		&config.PoolStoreConfig{},
	)

	dic, err := container.New(
		conf,

		&calculator.Service{},
		&market.Service{},

		&http.HTTPService{},
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to create di container")
		return
	}
	zerolog.SetGlobalLevel(general.ZerologLevel())

	// Run blocks until SIGINT/SIGTERM
	if err := dic.Run(); err != nil {
		log.Error().Err(err).Msg("failed to run di container")
		return
	}

	log.Info().Msg("Shutting down services...")
	if err := dic.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
	log.Info().Msg("Shutdown complete")
}
