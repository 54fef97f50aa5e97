package stableswap

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRoundTrip(t *testing.T) {
	amounts := []string{"0", "1", "999", "1000000", "123456789012345678901234", "340282366920938463463"}
	for decimals := uint8(0); decimals <= TargetPrecision; decimals++ {
		scale := new(uint256.Int).Exp(n(10), n(uint64(TargetPrecision-decimals)))
		for _, a := range amounts {
			scaled, overflow := new(uint256.Int).MulOverflow(u(a), scale)
			normalized, err := Normalize(u(a), decimals)
			if overflow || scaled.BitLen() > 128 {
				requireKind(t, err, ErrArithmeticOverflow)
				continue
			}
			require.NoError(t, err)
			back, err := Denormalize(normalized, decimals, RoundDown)
			require.NoError(t, err)
			require.Equal(t, a, back.Dec(), "decimals %d", decimals)
		}
	}
}

func TestNormalizeNarrowing(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		decimals uint8
		rounding Rounding
		expected string
	}{
		{name: "exact", amount: "5000000", decimals: 24, rounding: RoundDown, expected: "5"},
		{name: "floor", amount: "5999999", decimals: 24, rounding: RoundDown, expected: "5"},
		{name: "ceil", amount: "5000001", decimals: 24, rounding: RoundUp, expected: "6"},
		{name: "ceil exact", amount: "5000000", decimals: 24, rounding: RoundUp, expected: "5"},
		{name: "beyond 10^77 floors to zero", amount: "12345", decimals: 255, rounding: RoundDown, expected: "0"},
		{name: "beyond 10^77 ceils to one", amount: "12345", decimals: 255, rounding: RoundUp, expected: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeValue(u(tt.amount), tt.decimals, TargetPrecision, tt.rounding)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got.Dec())
		})
	}
}

func TestNormalizeOverflow(t *testing.T) {
	_, err := Normalize(maxU128, 0)
	requireKind(t, err, ErrArithmeticOverflow)

	_, err = NormalizeValue(n(1), 0, 200, RoundDown)
	requireKind(t, err, ErrArithmeticOverflow)

	zero, err := NormalizeValue(n(0), 0, 200, RoundDown)
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	tooWide := u("340282366920938463463374607431768211456") // 2^128
	_, err = Normalize(tooWide, TargetPrecision)
	requireKind(t, err, ErrArithmeticOverflow)
}

func TestNormalizeDoesNotAliasInput(t *testing.T) {
	in := n(42)
	out, err := Normalize(in, TargetPrecision)
	require.NoError(t, err)
	out.AddUint64(out, 1)
	require.Equal(t, uint64(42), in.Uint64())
}
