package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

func validateSwap(reserves []AssetReserve, idxIn, idxOut int, amount, amplification *uint256.Int, fee Permill) error {
	if err := validateReserves(reserves); err != nil {
		return err
	}
	if err := validateIndex(reserves, idxIn); err != nil {
		return err
	}
	if err := validateIndex(reserves, idxOut); err != nil {
		return err
	}
	if idxIn == idxOut {
		return fmt.Errorf("%w: asset in and asset out are both %d", ErrInvalidIndex, idxIn)
	}
	if err := validateAmount("amount", amount); err != nil {
		return err
	}
	if err := validateAmount("amplification", amplification); err != nil {
		return err
	}
	return validateFee(fee)
}

// OutGivenIn returns how much of reserves[idxOut] a trader receives for
// amountIn of reserves[idxIn], after the fee. The result is floored and one
// unit lower than the exact curve value.
func OutGivenIn(reserves []AssetReserve, idxIn, idxOut int, amountIn, amplification *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateSwap(reserves, idxIn, idxOut, amountIn, amplification, fee); err != nil {
		return nil, err
	}
	if amountIn.IsZero() {
		return new(uint256.Int), nil
	}

	xp, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	in, err := Normalize(amountIn, reserves[idxIn].Decimals)
	if err != nil {
		return nil, err
	}
	d, err := calculateD(xp, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, fmt.Errorf("%w: empty pool", ErrInsufficientLiquidity)
	}

	var a arith
	updated := make([]*uint256.Int, 0, len(xp)-1)
	for i, x := range xp {
		switch i {
		case idxOut:
		case idxIn:
			updated = append(updated, a.u128(a.add(x, in), "reserve in"))
		default:
			updated = append(updated, x)
		}
	}
	if a.err != nil {
		return nil, a.err
	}

	y, err := calculateY(updated, d, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}
	if y.IsZero() {
		return nil, fmt.Errorf("%w: swap drains reserve %d", ErrInsufficientLiquidity, idxOut)
	}
	out := a.sub(xp[idxOut], y)
	if a.err != nil {
		return nil, a.err
	}

	gross, err := Denormalize(out, reserves[idxOut].Decimals, RoundDown)
	if err != nil {
		return nil, err
	}
	return FeeOnOutput(saturatingSub(gross, u256One), fee)
}

// InGivenOut returns how much of reserves[idxIn] a trader pays to receive
// exactly amountOut of reserves[idxOut] after the fee. The requested output
// is first grossed up by the fee; the result is rounded up and one unit
// higher than the exact curve value.
func InGivenOut(reserves []AssetReserve, idxIn, idxOut int, amountOut, amplification *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateSwap(reserves, idxIn, idxOut, amountOut, amplification, fee); err != nil {
		return nil, err
	}
	if amountOut.IsZero() {
		return new(uint256.Int), nil
	}

	gross, err := FeeOnInput(amountOut, fee)
	if err != nil {
		return nil, err
	}
	if !gross.Lt(reserves[idxOut].Amount) {
		return nil, fmt.Errorf("%w: requested %s of reserve %s", ErrInsufficientLiquidity, gross.Dec(), reserves[idxOut].Amount.Dec())
	}

	xp, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	out, err := NormalizeValue(gross, reserves[idxOut].Decimals, TargetPrecision, RoundUp)
	if err != nil {
		return nil, err
	}
	d, err := calculateD(xp, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	if d.IsZero() {
		return nil, fmt.Errorf("%w: empty pool", ErrInsufficientLiquidity)
	}

	var a arith
	updated := make([]*uint256.Int, 0, len(xp)-1)
	for i, x := range xp {
		switch i {
		case idxIn:
		case idxOut:
			updated = append(updated, a.sub(x, out))
		default:
			updated = append(updated, x)
		}
	}
	if a.err != nil {
		return nil, a.err
	}

	y, err := calculateY(updated, d, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}
	in := a.sub(y, xp[idxIn])
	if a.err != nil {
		return nil, a.err
	}

	amountIn, err := NormalizeValue(in, TargetPrecision, reserves[idxIn].Decimals, RoundUp)
	if err != nil {
		return nil, err
	}
	amountIn = a.u128(a.add(amountIn, u256One), "amount in")
	if a.err != nil {
		return nil, a.err
	}
	return amountIn, nil
}
