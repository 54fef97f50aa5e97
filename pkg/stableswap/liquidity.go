package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

func validateLiquidity(reserves []AssetReserve, amplification, issuance *uint256.Int, fee Permill) error {
	if err := validateReserves(reserves); err != nil {
		return err
	}
	if err := validateAmount("amplification", amplification); err != nil {
		return err
	}
	if err := validateAmount("share issuance", issuance); err != nil {
		return err
	}
	return validateFee(fee)
}

// applyImbalanceFee charges the imbalance fee on how far each updated reserve
// sits from where a perfectly balanced change to d1 would have put it.
func applyImbalanceFee(initial, updated []*uint256.Int, d0, d1 *uint256.Int, fee Permill) ([]*uint256.Int, error) {
	if fee.IsZero() {
		return updated, nil
	}
	var a arith
	adjusted := make([]*uint256.Int, len(updated))
	for i := range updated {
		ideal := a.mulDiv(d1, initial[i], d0)
		if a.err != nil {
			return nil, a.err
		}
		adjusted[i] = saturatingSub(updated[i], imbalanceFee(&a, absDiff(updated[i], ideal), fee, len(updated)))
	}
	if a.err != nil {
		return nil, a.err
	}
	return adjusted, nil
}

// CalculateShares returns the shares minted for depositing the given amounts.
// Shares are issuance * (D' - D) / D where D' is the invariant after the
// deposit, less the imbalance fee. The first deposit into an empty pool
// (zero issuance and zero invariant) mints D' shares.
func CalculateShares(reserves []AssetReserve, deposits []AssetAmount, amplification, issuance *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateLiquidity(reserves, amplification, issuance, fee); err != nil {
		return nil, err
	}
	if len(deposits) > len(reserves) {
		return nil, fmt.Errorf("%w: %d deposits for %d reserves", ErrDegenerateInput, len(deposits), len(reserves))
	}

	var a arith
	updatedReserves := make([]AssetReserve, len(reserves))
	copy(updatedReserves, reserves)
	seen := make([]bool, len(reserves))
	for _, dep := range deposits {
		if err := validateIndex(reserves, dep.Index); err != nil {
			return nil, err
		}
		if seen[dep.Index] {
			return nil, fmt.Errorf("%w: asset %d deposited twice", ErrDegenerateInput, dep.Index)
		}
		seen[dep.Index] = true
		if err := validateAmount("deposit", dep.Amount); err != nil {
			return nil, err
		}
		amount := a.u128(a.add(reserves[dep.Index].Amount, dep.Amount), "reserve after deposit")
		updatedReserves[dep.Index] = NewAssetReserve(amount, reserves[dep.Index].Decimals)
	}
	if a.err != nil {
		return nil, a.err
	}

	initial, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	updated, err := normalizeReserves(updatedReserves)
	if err != nil {
		return nil, err
	}
	d0, err := calculateD(initial, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	d1, err := calculateD(updated, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	if d1.Lt(d0) {
		return nil, fmt.Errorf("%w: invariant decreased on deposit", ErrArithmeticOverflow)
	}

	if issuance.IsZero() {
		if !d0.IsZero() {
			return nil, fmt.Errorf("%w: zero share issuance over a non-empty pool", ErrDegenerateInput)
		}
		return d1, nil
	}
	if d0.IsZero() {
		return nil, fmt.Errorf("%w: share issuance over an empty pool", ErrDegenerateInput)
	}

	adjusted, err := applyImbalanceFee(initial, updated, d0, d1, fee)
	if err != nil {
		return nil, err
	}
	dAdjusted, err := calculateD(adjusted, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}

	shares := a.u128(a.mulDiv(issuance, a.sub(dAdjusted, d0), d0), "shares")
	if a.err != nil {
		return nil, a.err
	}
	return shares, nil
}

// CalculateSharesForAmount returns the shares minted for depositing amount of
// a single asset.
func CalculateSharesForAmount(reserves []AssetReserve, idx int, amount, amplification, issuance *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateIndex(reserves, idx); err != nil {
		return nil, err
	}
	return CalculateShares(reserves, []AssetAmount{NewAssetAmount(idx, amount)}, amplification, issuance, fee)
}

// CalculateAddOneAsset returns the amount of reserves[idx] paid out for
// burning shares. The invariant shrinks to D * (issuance - shares) / issuance;
// the other reserves are charged the imbalance fee on their deviation from a
// proportional withdrawal before the asset's new balance is solved.
func CalculateAddOneAsset(reserves []AssetReserve, shares *uint256.Int, idx int, amplification, issuance *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateLiquidity(reserves, amplification, issuance, fee); err != nil {
		return nil, err
	}
	if err := validateIndex(reserves, idx); err != nil {
		return nil, err
	}
	if err := validateAmount("shares", shares); err != nil {
		return nil, err
	}
	if !shares.Lt(issuance) {
		return nil, fmt.Errorf("%w: burning %s of %s shares", ErrInsufficientLiquidity, shares.Dec(), issuance.Dec())
	}
	if shares.IsZero() {
		return new(uint256.Int), nil
	}

	xp, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	d0, err := calculateD(xp, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}

	var a arith
	d1 := a.mulDiv(d0, a.sub(issuance, shares), issuance)
	if a.err != nil {
		return nil, a.err
	}
	y, err := calculateY(without(xp, idx), d1, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}

	reduced := make([]*uint256.Int, len(xp))
	for i, x := range xp {
		ideal := a.mulDiv(x, d1, d0)
		next := x
		if i == idx {
			next = y
		}
		if a.err != nil {
			return nil, a.err
		}
		reduced[i] = a.sub(x, imbalanceFee(&a, absDiff(next, ideal), fee, len(xp)))
	}
	if a.err != nil {
		return nil, a.err
	}

	y1, err := calculateY(without(reduced, idx), d1, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}
	if !y1.Lt(reduced[idx]) {
		return nil, fmt.Errorf("%w: nothing left to withdraw after fees", ErrInsufficientLiquidity)
	}
	dy := new(uint256.Int).Sub(reduced[idx], y1)

	amount, err := Denormalize(dy, reserves[idx].Decimals, RoundDown)
	if err != nil {
		return nil, err
	}
	if !amount.Lt(reserves[idx].Amount) {
		return nil, fmt.Errorf("%w: withdrawal drains reserve %d", ErrInsufficientLiquidity, idx)
	}
	return amount, nil
}

// CalculateSharesForWithdrawal returns the shares that must be burned to
// withdraw exactly amount of reserves[idx]. Rounded up by one share.
func CalculateSharesForWithdrawal(reserves []AssetReserve, idx int, amount, amplification, issuance *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateLiquidity(reserves, amplification, issuance, fee); err != nil {
		return nil, err
	}
	if err := validateIndex(reserves, idx); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}
	if !amount.Lt(reserves[idx].Amount) {
		return nil, fmt.Errorf("%w: withdrawing %s of reserve %s", ErrInsufficientLiquidity, amount.Dec(), reserves[idx].Amount.Dec())
	}
	if issuance.IsZero() {
		return nil, fmt.Errorf("%w: zero share issuance", ErrDegenerateInput)
	}
	if amount.IsZero() {
		return new(uint256.Int), nil
	}

	updatedReserves := make([]AssetReserve, len(reserves))
	copy(updatedReserves, reserves)
	updatedReserves[idx] = NewAssetReserve(new(uint256.Int).Sub(reserves[idx].Amount, amount), reserves[idx].Decimals)

	initial, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	updated, err := normalizeReserves(updatedReserves)
	if err != nil {
		return nil, err
	}
	d0, err := calculateD(initial, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	d1, err := calculateD(updated, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}
	if d1.Gt(d0) {
		return nil, fmt.Errorf("%w: invariant increased on withdrawal", ErrArithmeticOverflow)
	}

	adjusted, err := applyImbalanceFee(initial, updated, d0, d1, fee)
	if err != nil {
		return nil, err
	}
	dAdjusted, err := calculateD(adjusted, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}

	var a arith
	shares := a.add(a.mulDiv(issuance, a.sub(d0, dAdjusted), d0), u256One)
	if a.err != nil {
		return nil, a.err
	}
	if shares.Gt(issuance) {
		return nil, fmt.Errorf("%w: withdrawal needs %s of %s shares", ErrInsufficientLiquidity, shares.Dec(), issuance.Dec())
	}
	return shares, nil
}

// CalculateAmountForShares returns how much of reserves[idx] must be
// deposited to mint exactly shares. The target invariant is rounded up, and
// the deposit covers the imbalance fee charged on every reserve.
func CalculateAmountForShares(reserves []AssetReserve, shares *uint256.Int, idx int, amplification, issuance *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateLiquidity(reserves, amplification, issuance, fee); err != nil {
		return nil, err
	}
	if err := validateIndex(reserves, idx); err != nil {
		return nil, err
	}
	if err := validateAmount("shares", shares); err != nil {
		return nil, err
	}
	if issuance.IsZero() {
		return nil, fmt.Errorf("%w: zero share issuance", ErrDegenerateInput)
	}
	if shares.IsZero() {
		return new(uint256.Int), nil
	}

	xp, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	d0, err := calculateD(xp, amplification, MaxDIterations)
	if err != nil {
		return nil, err
	}

	var a arith
	d1 := a.u128(a.divUp(a.mul(d0, a.add(issuance, shares)), issuance), "target invariant")
	if a.err != nil {
		return nil, a.err
	}
	y, err := calculateY(without(xp, idx), d1, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}

	reduced := make([]*uint256.Int, len(xp))
	var feeIn *uint256.Int
	for i, x := range xp {
		ideal := a.mulDiv(x, d1, d0)
		next := x
		if i == idx {
			next = y
		}
		if a.err != nil {
			return nil, a.err
		}
		charged := imbalanceFee(&a, absDiff(next, ideal), fee, len(xp))
		if i == idx {
			feeIn = charged
			reduced[i] = x
		} else {
			reduced[i] = a.sub(x, charged)
		}
	}
	if a.err != nil {
		return nil, a.err
	}

	y1, err := calculateY(without(reduced, idx), d1, amplification, MaxYIterations)
	if err != nil {
		return nil, err
	}
	needed := a.sub(a.add(y1, feeIn), xp[idx])
	if a.err != nil {
		return nil, a.err
	}

	amount, err := Denormalize(needed, reserves[idx].Decimals, RoundUp)
	if err != nil {
		return nil, err
	}
	return amount, nil
}
