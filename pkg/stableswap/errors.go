package stableswap

import "errors"

// Every failed calculation reports exactly one of these kinds. Callers match
// them with errors.Is; the wrapped message carries the failing step.
var (
	ErrInvalidIndex          = errors.New("invalid asset index")
	ErrArithmeticOverflow    = errors.New("arithmetic overflow")
	ErrNonConvergence        = errors.New("solver did not converge")
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	ErrDegenerateInput       = errors.New("degenerate input")
)

// Kind returns the taxonomy sentinel carried by err, or nil when err did not
// originate from this package.
func Kind(err error) error {
	for _, kind := range []error{
		ErrInvalidIndex,
		ErrArithmeticOverflow,
		ErrNonConvergence,
		ErrInsufficientLiquidity,
		ErrDegenerateInput,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
