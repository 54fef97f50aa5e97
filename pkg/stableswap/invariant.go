package stableswap

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
)

// CalculateD returns the StableSwap invariant of a reserve set.
func CalculateD(reserves []AssetReserve, amplification *uint256.Int) (*uint256.Int, error) {
	if err := validateReserves(reserves); err != nil {
		return nil, err
	}
	if err := validateAmount("amplification", amplification); err != nil {
		return nil, err
	}
	xp, err := normalizeReserves(reserves)
	if err != nil {
		return nil, err
	}
	return calculateD(xp, amplification, MaxDIterations)
}

// calculateAnn returns the leverage Ann = A * n. The amplification follows
// the Curve convention and already carries the n^(n-1) factor.
func calculateAnn(n int, amplification *uint256.Int) (*uint256.Int, error) {
	ann, overflow := new(uint256.Int).MulOverflow(amplification, uint256.NewInt(uint64(n)))
	if overflow {
		return nil, fmt.Errorf("%w: leverage", ErrArithmeticOverflow)
	}
	return ann, nil
}

// calculateD solves
//
//	Ann * S + D = Ann * D + D^(n+1) / (n^n * prod(x_i))
//
// by Newton iteration from D = S:
//
//	D' = (Ann*S + n*Dp) * D / ((Ann-1)*D + (n+1)*Dp) + 2,  Dp = D^(n+1) / (n^n * prod(x_i))
//
// The +2 keeps every iterate on the safe (high) side of the root.
// An all-zero pool has D = 0; a pool with some but not all reserves at zero
// has no meaningful invariant and is rejected.
func calculateD(xp []*uint256.Int, amplification *uint256.Int, maxIterations int) (*uint256.Int, error) {
	balances := make([]*uint256.Int, 0, len(xp))
	for _, x := range xp {
		if !x.IsZero() {
			balances = append(balances, x)
		}
	}
	if len(balances) == 0 {
		return new(uint256.Int), nil
	}
	if len(balances) != len(xp) {
		return nil, fmt.Errorf("%w: %d of %d reserves are zero", ErrDegenerateInput, len(xp)-len(balances), len(xp))
	}
	slices.SortFunc(balances, func(x, y *uint256.Int) int { return x.Cmp(y) })

	ann, err := calculateAnn(len(balances), amplification)
	if err != nil {
		return nil, err
	}
	if ann.IsZero() {
		return nil, fmt.Errorf("%w: zero amplification", ErrDegenerateInput)
	}

	var a arith
	n := uint256.NewInt(uint64(len(balances)))
	nPlusOne := uint256.NewInt(uint64(len(balances) + 1))
	annMinusOne := a.sub(ann, u256One)

	s := new(uint256.Int)
	for _, x := range balances {
		s = a.add(s, x)
	}
	annS := a.mul(ann, s)
	if a.err != nil {
		return nil, a.err
	}

	d := s.Clone()
	for i := 0; i < maxIterations; i++ {
		dp := d.Clone()
		for _, x := range balances {
			dp = a.mulDiv(dp, d, a.mul(x, n))
		}
		prev := d
		num := a.mul(a.add(annS, a.mul(dp, n)), d)
		den := a.add(a.mul(annMinusOne, d), a.mul(nPlusOne, dp))
		d = a.add(a.div(num, den), u256Two)
		if a.err != nil {
			return nil, a.err
		}
		if hasConverged(prev, d) {
			if !fitsU128(d) {
				return nil, fmt.Errorf("%w: invariant exceeds 128 bits", ErrArithmeticOverflow)
			}
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: invariant after %d iterations", ErrNonConvergence, maxIterations)
}
