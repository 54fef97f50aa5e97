package stableswap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateAmplification(t *testing.T) {
	tests := []struct {
		name     string
		initial  uint64
		final    uint64
		start    uint64
		end      uint64
		current  uint64
		expected uint64
	}{
		{name: "before ramp", initial: 100, final: 200, start: 10, end: 20, current: 5, expected: 100},
		{name: "at start", initial: 100, final: 200, start: 10, end: 20, current: 10, expected: 100},
		{name: "at end", initial: 100, final: 200, start: 10, end: 20, current: 20, expected: 200},
		{name: "after end", initial: 100, final: 200, start: 10, end: 20, current: 1000, expected: 200},
		{name: "midpoint up", initial: 100, final: 200, start: 0, end: 100, current: 50, expected: 150},
		{name: "midpoint down", initial: 200, final: 100, start: 0, end: 100, current: 50, expected: 150},
		{name: "step floored up", initial: 100, final: 1000, start: 0, end: 3, current: 1, expected: 400},
		{name: "step floored down", initial: 1000, final: 100, start: 0, end: 3, current: 1, expected: 700},
		{name: "empty range", initial: 100, final: 200, start: 10, end: 10, current: 10, expected: 200},
		{name: "empty range before start", initial: 100, final: 200, start: 10, end: 10, current: 3, expected: 200},
		{name: "inverted range", initial: 100, final: 200, start: 20, end: 10, current: 15, expected: 200},
		{name: "flat ramp", initial: 300, final: 300, start: 0, end: 100, current: 40, expected: 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateAmplification(n(tt.initial), n(tt.final), n(tt.start), n(tt.end), n(tt.current))
			require.Equal(t, tt.expected, got.Uint64())
		})
	}
}

func TestCalculateAmplificationLargeValues(t *testing.T) {
	initial := u("340282366920938463463374607431768211455")
	got := CalculateAmplification(initial, n(0), n(0), maxU128, u("170141183460469231731687303715884105727"))
	require.True(t, got.Lt(initial))
	require.False(t, got.IsZero())
}

func TestCalculateAmplificationDoesNotAliasInputs(t *testing.T) {
	final := n(200)
	got := CalculateAmplification(n(100), final, n(0), n(10), n(20))
	got.AddUint64(got, 1)
	require.Equal(t, uint64(200), final.Uint64())
}
