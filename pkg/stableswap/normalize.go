package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// TargetPrecision is the number of fractional digits every reserve is scaled
// to before it enters the invariant.
const TargetPrecision uint8 = 18

type Rounding uint8

const (
	RoundDown Rounding = iota
	RoundUp
)

// 10^77 is the largest power of ten below 2^256.
const maxPow10Exponent = 77

var pow10Table [maxPow10Exponent + 1]uint256.Int

func init() {
	pow10Table[0].SetUint64(1)
	ten := uint256.NewInt(10)
	for i := 1; i <= maxPow10Exponent; i++ {
		pow10Table[i].Mul(&pow10Table[i-1], ten)
	}
}

// NormalizeValue rescales amount from `decimals` fractional digits to `target`.
// Widening multiplies and fails when the result leaves the 128-bit domain;
// narrowing divides and rounds as requested.
func NormalizeValue(amount *uint256.Int, decimals, target uint8, rounding Rounding) (*uint256.Int, error) {
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}
	if decimals == target {
		return amount.Clone(), nil
	}

	if target > decimals {
		exp := target - decimals
		if exp > maxPow10Exponent {
			if amount.IsZero() {
				return new(uint256.Int), nil
			}
			return nil, fmt.Errorf("%w: scaling by 10^%d", ErrArithmeticOverflow, exp)
		}
		z, overflow := new(uint256.Int).MulOverflow(amount, &pow10Table[exp])
		if overflow || !fitsU128(z) {
			return nil, fmt.Errorf("%w: scaling %s by 10^%d", ErrArithmeticOverflow, amount.Dec(), exp)
		}
		return z, nil
	}

	exp := decimals - target
	if exp > maxPow10Exponent {
		// any 128-bit amount is below 10^39
		if rounding == RoundUp && !amount.IsZero() {
			return uint256.NewInt(1), nil
		}
		return new(uint256.Int), nil
	}
	rem := new(uint256.Int)
	z, _ := new(uint256.Int).DivMod(amount, &pow10Table[exp], rem)
	if rounding == RoundUp && !rem.IsZero() {
		z.AddUint64(z, 1)
	}
	return z, nil
}

// Normalize scales an amount with the given decimals to TargetPrecision.
func Normalize(amount *uint256.Int, decimals uint8) (*uint256.Int, error) {
	return NormalizeValue(amount, decimals, TargetPrecision, RoundDown)
}

// Denormalize scales a TargetPrecision amount back to the given decimals.
func Denormalize(amount *uint256.Int, decimals uint8, rounding Rounding) (*uint256.Int, error) {
	return NormalizeValue(amount, TargetPrecision, decimals, rounding)
}

func normalizeReserves(reserves []AssetReserve) ([]*uint256.Int, error) {
	xp := make([]*uint256.Int, len(reserves))
	for i, r := range reserves {
		v, err := Normalize(r.Amount, r.Decimals)
		if err != nil {
			return nil, fmt.Errorf("reserve %d: %w", i, err)
		}
		xp[i] = v
	}
	return xp, nil
}
