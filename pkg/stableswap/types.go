// Package stableswap implements the StableSwap invariant math for pools of
// assets with heterogeneous decimal precision.
//
// Every function is pure and safe for concurrent use. Amounts are unsigned
// 128-bit values carried in uint256.Int; intermediates use the full 256 bits
// and every step is overflow-checked. Nothing in this package uses floating
// point.
package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MaxDIterations bounds the invariant solver.
	MaxDIterations = 128
	// MaxYIterations bounds the reserve solver.
	MaxYIterations = 64
)

// AssetReserve is one asset's pool balance at its native precision.
type AssetReserve struct {
	Amount   *uint256.Int
	Decimals uint8
}

func NewAssetReserve(amount *uint256.Int, decimals uint8) AssetReserve {
	return AssetReserve{Amount: amount, Decimals: decimals}
}

// AssetAmount is an amount of the asset at position Index of a reserve set.
type AssetAmount struct {
	Index  int
	Amount *uint256.Int
}

func NewAssetAmount(index int, amount *uint256.Int) AssetAmount {
	return AssetAmount{Index: index, Amount: amount}
}

// validateReserves checks the shape shared by every pool operation.
func validateReserves(reserves []AssetReserve) error {
	if len(reserves) < 2 {
		return fmt.Errorf("%w: pool needs at least two reserves, got %d", ErrDegenerateInput, len(reserves))
	}
	for i, r := range reserves {
		if r.Amount == nil {
			return fmt.Errorf("%w: reserve %d has no amount", ErrDegenerateInput, i)
		}
		if !fitsU128(r.Amount) {
			return fmt.Errorf("%w: reserve %d exceeds 128 bits", ErrArithmeticOverflow, i)
		}
	}
	return nil
}

func validateIndex(reserves []AssetReserve, idx int) error {
	if idx < 0 || idx >= len(reserves) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, idx, len(reserves))
	}
	return nil
}

func validateAmount(name string, v *uint256.Int) error {
	if v == nil {
		return fmt.Errorf("%w: %s is missing", ErrDegenerateInput, name)
	}
	if !fitsU128(v) {
		return fmt.Errorf("%w: %s exceeds 128 bits", ErrArithmeticOverflow, name)
	}
	return nil
}
