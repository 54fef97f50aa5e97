package stableswap

import "github.com/holiman/uint256"

// CalculateAmplification interpolates the amplification linearly between
// initialBlock and finalBlock. Before the ramp starts it is the initial
// value, from finalBlock onward the final value, and an empty or inverted
// block range yields the final value at once. The per-block step is floored.
func CalculateAmplification(initialAmplification, finalAmplification, initialBlock, finalBlock, currentBlock *uint256.Int) *uint256.Int {
	if !finalBlock.Gt(initialBlock) || !currentBlock.Lt(finalBlock) {
		return finalAmplification.Clone()
	}
	if !currentBlock.Gt(initialBlock) {
		return initialAmplification.Clone()
	}

	// |final - initial| * elapsed < 2^128 * 2^128, no overflow possible
	elapsed := new(uint256.Int).Sub(currentBlock, initialBlock)
	span := new(uint256.Int).Sub(finalBlock, initialBlock)
	step := absDiff(finalAmplification, initialAmplification)
	step.Mul(step, elapsed)
	step.Div(step, span)

	if finalAmplification.Gt(initialAmplification) {
		return step.Add(initialAmplification, step)
	}
	return step.Sub(initialAmplification, step)
}
