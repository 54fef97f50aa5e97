package bindings

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"

	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

var ErrMalformedInput = errors.New("malformed input")

var feeScale = decimal.NewFromInt(stableswap.PermillAccuracy)

// Amount is an unsigned 128-bit integer that decodes from either a JSON
// string or a bare JSON number.
type Amount struct {
	*uint256.Int
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: amount %s", ErrMalformedInput, s)
		}
		s = unquoted
	}
	v, err := ParseU128(s)
	if err != nil {
		return err
	}
	a.Int = v
	return nil
}

// ReserveEntry is one element of a reserves JSON list.
type ReserveEntry struct {
	AssetID  uint32 `json:"asset_id"`
	Amount   Amount `json:"amount"`
	Decimals uint8  `json:"decimals"`
}

// AmountEntry is one element of a deposit JSON list.
type AmountEntry struct {
	AssetID uint32 `json:"asset_id"`
	Amount  Amount `json:"amount"`
}

// Reserves is a pool snapshot ordered by ascending asset id. Position i of
// Assets belongs to AssetIDs[i].
type Reserves struct {
	AssetIDs []uint32
	Assets   []stableswap.AssetReserve
}

// ResolveIndex returns the position of assetID within the snapshot.
func (r Reserves) ResolveIndex(assetID uint32) (int, error) {
	idx, found := slices.BinarySearch(r.AssetIDs, assetID)
	if !found {
		return -1, fmt.Errorf("%w: asset %d not in pool", stableswap.ErrInvalidIndex, assetID)
	}
	return idx, nil
}

// ParseReserves decodes `[{"asset_id":0,"amount":"100","decimals":12}, ...]`
// and sorts the entries by asset id.
func ParseReserves(data string) (Reserves, error) {
	var entries []ReserveEntry
	if err := sonic.UnmarshalString(data, &entries); err != nil {
		return Reserves{}, wrapDecode("reserves", err)
	}
	return NewReserves(entries)
}

// NewReserves sorts already decoded entries by asset id. entries is not
// modified.
func NewReserves(entries []ReserveEntry) (Reserves, error) {
	sorted := slices.Clone(entries)
	slices.SortFunc(sorted, func(a, b ReserveEntry) int {
		return cmp.Compare(a.AssetID, b.AssetID)
	})

	out := Reserves{
		AssetIDs: make([]uint32, len(sorted)),
		Assets:   make([]stableswap.AssetReserve, len(sorted)),
	}
	for i, e := range sorted {
		if e.Amount.Int == nil {
			return Reserves{}, fmt.Errorf("%w: asset %d has no amount", ErrMalformedInput, e.AssetID)
		}
		if i > 0 && sorted[i-1].AssetID == e.AssetID {
			return Reserves{}, fmt.Errorf("%w: asset %d listed twice", ErrMalformedInput, e.AssetID)
		}
		out.AssetIDs[i] = e.AssetID
		out.Assets[i] = stableswap.NewAssetReserve(e.Amount.Int, e.Decimals)
	}
	return out, nil
}

// ParseAssetAmounts decodes `[{"asset_id":1,"amount":"100"}, ...]` and
// resolves every asset id against reserves.
func ParseAssetAmounts(data string, reserves Reserves) ([]stableswap.AssetAmount, error) {
	var entries []AmountEntry
	if err := sonic.UnmarshalString(data, &entries); err != nil {
		return nil, wrapDecode("asset amounts", err)
	}
	return reserves.ResolveAmounts(entries)
}

func (r Reserves) ResolveAmounts(entries []AmountEntry) ([]stableswap.AssetAmount, error) {
	out := make([]stableswap.AssetAmount, 0, len(entries))
	for _, e := range entries {
		if e.Amount.Int == nil {
			return nil, fmt.Errorf("%w: asset %d has no amount", ErrMalformedInput, e.AssetID)
		}
		idx, err := r.ResolveIndex(e.AssetID)
		if err != nil {
			return nil, err
		}
		out = append(out, stableswap.NewAssetAmount(idx, e.Amount.Int))
	}
	return out, nil
}

// ParseU128 parses a base-10 unsigned integer that must fit in 128 bits.
func ParseU128(s string) (*uint256.Int, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty integer", ErrMalformedInput)
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not an unsigned integer", ErrMalformedInput, s)
	}
	if v.BitLen() > 128 {
		return nil, fmt.Errorf("%w: %q exceeds 128 bits", ErrMalformedInput, s)
	}
	return v, nil
}

// ParseFee converts a fractional fee such as "0.003" into parts per million.
// Digits past the sixth decimal place are truncated.
func ParseFee(s string) (stableswap.Permill, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: fee %q", ErrMalformedInput, s)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w: fee %q outside [0, 1]", ErrMalformedInput, s)
	}
	return stableswap.Permill(d.Mul(feeScale).Truncate(0).IntPart()), nil
}

func wrapDecode(what string, err error) error {
	if errors.Is(err, ErrMalformedInput) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", ErrMalformedInput, what, err)
}

// FormatFee renders a Permill as a decimal fraction, the inverse of ParseFee.
func FormatFee(fee stableswap.Permill) string {
	return decimal.New(int64(fee), -6).String()
}
