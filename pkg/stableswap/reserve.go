package stableswap

import (
	"fmt"
	"slices"

	"github.com/holiman/uint256"
)

// CalculateY solves the normalized balance at position idx of xp that keeps
// the invariant at d, holding every other normalized balance fixed. The value
// currently at idx is ignored.
func CalculateY(xp []*uint256.Int, idx int, d, amplification *uint256.Int) (*uint256.Int, error) {
	if idx < 0 || idx >= len(xp) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, idx, len(xp))
	}
	for i, x := range xp {
		if i == idx {
			continue
		}
		if err := validateAmount(fmt.Sprintf("reserve %d", i), x); err != nil {
			return nil, err
		}
	}
	if err := validateAmount("invariant", d); err != nil {
		return nil, err
	}
	if err := validateAmount("amplification", amplification); err != nil {
		return nil, err
	}
	return calculateY(without(xp, idx), d, amplification, MaxYIterations)
}

// calculateY iterates
//
//	y' = (y^2 + c) / (2y + b - D) + 2
//	c  = D^(n+1) / (n^n * prod(x_j) * Ann),  b = S + D / Ann
//
// over the n-1 known balances, starting from y = D.
func calculateY(others []*uint256.Int, d, amplification *uint256.Int, maxIterations int) (*uint256.Int, error) {
	if len(others) == 0 {
		return nil, fmt.Errorf("%w: no known reserves", ErrDegenerateInput)
	}
	balances := slices.Clone(others)
	for _, x := range balances {
		if x.IsZero() {
			return nil, fmt.Errorf("%w: zero reserve", ErrDegenerateInput)
		}
	}
	slices.SortFunc(balances, func(x, y *uint256.Int) int { return x.Cmp(y) })

	ann, err := calculateAnn(len(balances)+1, amplification)
	if err != nil {
		return nil, err
	}
	if ann.IsZero() {
		return nil, fmt.Errorf("%w: zero amplification", ErrDegenerateInput)
	}

	var a arith
	n := uint256.NewInt(uint64(len(balances) + 1))

	s := new(uint256.Int)
	c := d.Clone()
	for _, x := range balances {
		s = a.add(s, x)
		c = a.mulDiv(c, d, a.mul(x, n))
	}
	c = a.mulDiv(c, d, a.mul(ann, n))
	b := a.add(s, a.div(d, ann))
	if a.err != nil {
		return nil, a.err
	}

	y := d.Clone()
	for i := 0; i < maxIterations; i++ {
		prev := y
		num := a.add(a.mul(y, y), c)
		den := a.sub(a.add(a.mul(u256Two, y), b), d)
		y = a.add(a.div(num, den), u256Two)
		if a.err != nil {
			return nil, a.err
		}
		if hasConverged(prev, y) {
			if !fitsU128(y) {
				return nil, fmt.Errorf("%w: reserve exceeds 128 bits", ErrArithmeticOverflow)
			}
			return y, nil
		}
	}
	return nil, fmt.Errorf("%w: reserve after %d iterations", ErrNonConvergence, maxIterations)
}
