package stableswap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeeAmount(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		fee      Permill
		expected uint64
	}{
		{name: "zero fee", amount: 1_000_000, fee: 0, expected: 0},
		{name: "0.3%", amount: 1_000_000, fee: 3000, expected: 3000},
		{name: "floors", amount: 999, fee: 3000, expected: 2},
		{name: "full fee", amount: 12345, fee: PermillAccuracy, expected: 12345},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FeeAmount(n(tt.amount), tt.fee)
			require.NoError(t, err)
			require.Equal(t, tt.expected, got.Uint64())
		})
	}
}

func TestFeeOnOutput(t *testing.T) {
	got, err := FeeOnOutput(n(1000), 3000)
	require.NoError(t, err)
	require.Equal(t, uint64(997), got.Uint64())

	got, err = FeeOnOutput(maxU128, PermillAccuracy)
	require.NoError(t, err)
	require.True(t, got.IsZero())
}

func TestFeeOnInput(t *testing.T) {
	got, err := FeeOnInput(n(997), 3000)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), got.Uint64())

	got, err = FeeOnInput(n(1000), 0)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), got.Uint64())

	_, err = FeeOnInput(n(1), PermillAccuracy)
	requireKind(t, err, ErrDegenerateInput)

	_, err = FeeOnInput(maxU128, 500_000)
	requireKind(t, err, ErrArithmeticOverflow)
}

func TestFeeOnInputCoversOutputFee(t *testing.T) {
	for _, fee := range []Permill{1, 30, 3000, 250_000, 999_999} {
		for _, amount := range []uint64{1, 7, 997, 1_000_000, 123_456_789_012} {
			gross, err := FeeOnInput(n(amount), fee)
			require.NoError(t, err)
			net, err := FeeOnOutput(gross, fee)
			require.NoError(t, err)
			require.GreaterOrEqual(t, net.Uint64(), amount, "fee %d amount %d", fee, amount)
		}
	}
}

func TestFeeRejectsOutOfRange(t *testing.T) {
	_, err := FeeAmount(n(1), PermillAccuracy+1)
	requireKind(t, err, ErrDegenerateInput)
	_, err = FeeOnOutput(n(1), PermillAccuracy+1)
	requireKind(t, err, ErrDegenerateInput)
	require.False(t, Permill(PermillAccuracy+1).Valid())
	require.True(t, Permill(PermillAccuracy).Valid())
}
