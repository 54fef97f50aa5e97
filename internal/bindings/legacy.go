// Package bindings exposes the stableswap engine through string arguments and
// JSON pool snapshots, the shape used by mobile and scripting clients.
//
// The Calculate* functions return the result as a decimal string, or
// ErrorResult when anything goes wrong. The Parse* helpers return typed
// errors instead and are what the HTTP layer uses.
package bindings

import (
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

const ErrorResult = "-1"

func result(v *uint256.Int, err error) string {
	if err != nil {
		return ErrorResult
	}
	return v.Dec()
}

type swapArgs struct {
	reserves      Reserves
	idxIn, idxOut int
	amount        *uint256.Int
	amplification *uint256.Int
	fee           stableswap.Permill
}

func parseSwap(reserves string, assetIn, assetOut uint32, amount, amplification, fee string) (*swapArgs, error) {
	r, err := ParseReserves(reserves)
	if err != nil {
		return nil, err
	}
	args := &swapArgs{reserves: r}
	if args.idxIn, err = r.ResolveIndex(assetIn); err != nil {
		return nil, err
	}
	if args.idxOut, err = r.ResolveIndex(assetOut); err != nil {
		return nil, err
	}
	if args.amount, err = ParseU128(amount); err != nil {
		return nil, err
	}
	if args.amplification, err = ParseU128(amplification); err != nil {
		return nil, err
	}
	if args.fee, err = ParseFee(fee); err != nil {
		return nil, err
	}
	return args, nil
}

type liquidityArgs struct {
	reserves      Reserves
	amplification *uint256.Int
	issuance      *uint256.Int
	fee           stableswap.Permill
}

func parseLiquidity(reserves, amplification, issuance, fee string) (*liquidityArgs, error) {
	r, err := ParseReserves(reserves)
	if err != nil {
		return nil, err
	}
	args := &liquidityArgs{reserves: r}
	if args.amplification, err = ParseU128(amplification); err != nil {
		return nil, err
	}
	if args.issuance, err = ParseU128(issuance); err != nil {
		return nil, err
	}
	if args.fee, err = ParseFee(fee); err != nil {
		return nil, err
	}
	return args, nil
}

func CalculateOutGivenIn(reserves string, assetIn, assetOut uint32, amountIn, amplification, fee string) string {
	args, err := parseSwap(reserves, assetIn, assetOut, amountIn, amplification, fee)
	if err != nil {
		return ErrorResult
	}
	return result(stableswap.OutGivenIn(args.reserves.Assets, args.idxIn, args.idxOut, args.amount, args.amplification, args.fee))
}

func CalculateInGivenOut(reserves string, assetIn, assetOut uint32, amountOut, amplification, fee string) string {
	args, err := parseSwap(reserves, assetIn, assetOut, amountOut, amplification, fee)
	if err != nil {
		return ErrorResult
	}
	return result(stableswap.InGivenOut(args.reserves.Assets, args.idxIn, args.idxOut, args.amount, args.amplification, args.fee))
}

func CalculateAmplification(initialAmplification, finalAmplification, initialBlock, finalBlock, currentBlock string) string {
	values := make([]*uint256.Int, 0, 5)
	for _, s := range []string{initialAmplification, finalAmplification, initialBlock, finalBlock, currentBlock} {
		v, err := ParseU128(s)
		if err != nil {
			return ErrorResult
		}
		values = append(values, v)
	}
	return stableswap.CalculateAmplification(values[0], values[1], values[2], values[3], values[4]).Dec()
}

// CalculateShares takes the deposit as a JSON list of
// `{"asset_id":..,"amount":..}` entries.
func CalculateShares(reserves, assets, amplification, shareIssuance, fee string) string {
	args, err := parseLiquidity(reserves, amplification, shareIssuance, fee)
	if err != nil {
		return ErrorResult
	}
	deposits, err := ParseAssetAmounts(assets, args.reserves)
	if err != nil {
		return ErrorResult
	}
	return result(stableswap.CalculateShares(args.reserves.Assets, deposits, args.amplification, args.issuance, args.fee))
}

func CalculateSharesForAmount(reserves string, assetIn uint32, amount, amplification, shareIssuance, fee string) string {
	args, err := parseLiquidity(reserves, amplification, shareIssuance, fee)
	if err != nil {
		return ErrorResult
	}
	idx, err := args.reserves.ResolveIndex(assetIn)
	if err != nil {
		return ErrorResult
	}
	v, err := ParseU128(amount)
	if err != nil {
		return ErrorResult
	}
	return result(stableswap.CalculateSharesForAmount(args.reserves.Assets, idx, v, args.amplification, args.issuance, args.fee))
}

// CalculateAddOneAsset returns the amount of assetIn paid out for burning
// shares.
func CalculateAddOneAsset(reserves, shares string, assetIn uint32, amplification, shareIssuance, fee string) string {
	args, err := parseLiquidity(reserves, amplification, shareIssuance, fee)
	if err != nil {
		return ErrorResult
	}
	idx, err := args.reserves.ResolveIndex(assetIn)
	if err != nil {
		return ErrorResult
	}
	v, err := ParseU128(shares)
	if err != nil {
		return ErrorResult
	}
	return result(stableswap.CalculateAddOneAsset(args.reserves.Assets, v, idx, args.amplification, args.issuance, args.fee))
}
