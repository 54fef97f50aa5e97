package stableswap

import (
	"fmt"

	"github.com/holiman/uint256"
)

// PermillAccuracy is the denominator of a Permill fee.
const PermillAccuracy = 1_000_000

// Permill is a fee in parts per million.
type Permill uint32

func (p Permill) Valid() bool {
	return p <= PermillAccuracy
}

func (p Permill) IsZero() bool {
	return p == 0
}

func (p Permill) String() string {
	return fmt.Sprintf("%d/%d", uint32(p), PermillAccuracy)
}

var u256Accuracy = uint256.NewInt(PermillAccuracy)

func validateFee(fee Permill) error {
	if !fee.Valid() {
		return fmt.Errorf("%w: fee %d exceeds %d parts per million", ErrDegenerateInput, fee, PermillAccuracy)
	}
	return nil
}

// FeeAmount returns amount * fee / 1_000_000, rounded down.
func FeeAmount(amount *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateFee(fee); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}
	// amount < 2^128 and fee <= 10^6, the product always fits
	z := new(uint256.Int).Mul(amount, uint256.NewInt(uint64(fee)))
	return z.Div(z, u256Accuracy), nil
}

// FeeOnOutput deducts the fee from an amount paid out.
func FeeOnOutput(amount *uint256.Int, fee Permill) (*uint256.Int, error) {
	feeAmount, err := FeeAmount(amount, fee)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Sub(amount, feeAmount), nil
}

// FeeOnInput inflates amount to a gross g = amount + ceil(amount*fee/(1e6-fee)),
// so FeeOnOutput(g, fee) never leaves less than amount.
func FeeOnInput(amount *uint256.Int, fee Permill) (*uint256.Int, error) {
	if err := validateFee(fee); err != nil {
		return nil, err
	}
	if err := validateAmount("amount", amount); err != nil {
		return nil, err
	}
	if fee.IsZero() || amount.IsZero() {
		return amount.Clone(), nil
	}
	if fee == PermillAccuracy {
		return nil, fmt.Errorf("%w: a full fee leaves nothing to receive", ErrDegenerateInput)
	}

	var a arith
	extra := a.divUp(a.mul(amount, uint256.NewInt(uint64(fee))), uint256.NewInt(uint64(PermillAccuracy-fee)))
	gross := a.u128(a.add(amount, extra), "gross amount")
	if a.err != nil {
		return nil, a.err
	}
	return gross, nil
}

// imbalanceFee is the share of fee charged on a reserve's deviation from the
// balanced position: diff * fee * n / (4 * (n-1)).
func imbalanceFee(a *arith, diff *uint256.Int, fee Permill, n int) *uint256.Int {
	if fee.IsZero() || diff.IsZero() {
		return new(uint256.Int)
	}
	num := a.mul(a.mul(diff, uint256.NewInt(uint64(fee))), uint256.NewInt(uint64(n)))
	den := a.mul(u256Accuracy, uint256.NewInt(uint64(4*(n-1))))
	return a.div(num, den)
}
