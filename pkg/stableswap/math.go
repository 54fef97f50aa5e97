package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// Pre-computed constants
var (
	u256Zero = uint256.NewInt(0)
	u256One  = uint256.NewInt(1)
	u256Two  = uint256.NewInt(2)

	// maxU128 = 2^128 - 1
	maxU128 = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)

func fitsU128(v *uint256.Int) bool {
	return v.BitLen() <= 128
}

// arith carries the first failure through a chain of checked operations so
// the solvers read like the formulas they implement. Once err is set every
// further call returns zero and leaves err untouched.
type arith struct {
	err error
}

func (a *arith) fail(kind error, op string) {
	if a.err == nil {
		a.err = fmt.Errorf("%w: %s", kind, op)
	}
}

func (a *arith) add(x, y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if a.err != nil {
		return z
	}
	if _, overflow := z.AddOverflow(x, y); overflow {
		a.fail(ErrArithmeticOverflow, "add")
	}
	return z
}

// sub treats a negative result as overflow: no quantity here may go below zero.
func (a *arith) sub(x, y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if a.err != nil {
		return z
	}
	if _, underflow := z.SubOverflow(x, y); underflow {
		a.fail(ErrArithmeticOverflow, "sub")
	}
	return z
}

func (a *arith) mul(x, y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if a.err != nil {
		return z
	}
	if _, overflow := z.MulOverflow(x, y); overflow {
		a.fail(ErrArithmeticOverflow, "mul")
	}
	return z
}

func (a *arith) div(x, y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if a.err != nil {
		return z
	}
	if y.IsZero() {
		a.fail(ErrDegenerateInput, "division by zero")
		return z
	}
	return z.Div(x, y)
}

// divUp divides rounding toward positive infinity.
func (a *arith) divUp(x, y *uint256.Int) *uint256.Int {
	z := new(uint256.Int)
	if a.err != nil {
		return z
	}
	if y.IsZero() {
		a.fail(ErrDegenerateInput, "division by zero")
		return z
	}
	rem := new(uint256.Int)
	z.DivMod(x, y, rem)
	if !rem.IsZero() {
		z.AddUint64(z, 1)
	}
	return z
}

// mulDiv computes x * y / d with a 256-bit intermediate.
func (a *arith) mulDiv(x, y, d *uint256.Int) *uint256.Int {
	return a.div(a.mul(x, y), d)
}

// u128 checks that a final result fits the 128-bit domain.
func (a *arith) u128(v *uint256.Int, what string) *uint256.Int {
	if a.err == nil && !fitsU128(v) {
		a.fail(ErrArithmeticOverflow, what+" exceeds 128 bits")
	}
	return v
}

func absDiff(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int).Sub(y, x)
	}
	return new(uint256.Int).Sub(x, y)
}

func saturatingSub(x, y *uint256.Int) *uint256.Int {
	if x.Lt(y) {
		return new(uint256.Int)
	}
	return new(uint256.Int).Sub(x, y)
}

// hasConverged reports whether two successive iterates differ by at most one unit.
func hasConverged(prev, cur *uint256.Int) bool {
	return !absDiff(prev, cur).Gt(u256One)
}

// without returns a copy of xp with position idx removed.
func without(xp []*uint256.Int, idx int) []*uint256.Int {
	out := make([]*uint256.Int, 0, len(xp)-1)
	for i, v := range xp {
		if i != idx {
			out = append(out, v)
		}
	}
	return out
}
