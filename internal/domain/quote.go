package domain

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

type SwapMode string

const (
	ExactIn  SwapMode = "ExactIn"
	ExactOut SwapMode = "ExactOut"
)

type QuoteRequest struct {
	AssetIn  uint32
	AssetOut uint32
	Amount   *uint256.Int
	Mode     SwapMode
	// Block selects the point on the amplification ramp.
	Block *uint256.Int
}

type Quote struct {
	PoolID        string
	AssetIn       uint32
	AssetOut      uint32
	AmountIn      *uint256.Int
	AmountOut     *uint256.Int
	Mode          SwapMode
	Amplification *uint256.Int
	Fee           stableswap.Permill
}
