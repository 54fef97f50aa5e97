package stableswap

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestCalculateYRecoversBalance(t *testing.T) {
	xp := []*uint256.Int{u("1000000000000000000"), u("1500000000000000000"), u("800000000000000000")}
	d, err := calculateD(xp, n(200), MaxDIterations)
	require.NoError(t, err)

	for idx := range xp {
		y, err := CalculateY(xp, idx, d, n(200))
		require.NoError(t, err)
		// the solver rounds up by a few units, never down
		require.False(t, y.Lt(xp[idx]), "index %d", idx)
		require.True(t, new(uint256.Int).Sub(y, xp[idx]).Lt(n(10)), "index %d: %s vs %s", idx, y.Dec(), xp[idx].Dec())
	}
}

func TestCalculateYIgnoresUnknownSlot(t *testing.T) {
	xp := []*uint256.Int{u("1000000000000000000"), u("1000000000000000000")}
	d, err := calculateD(xp, n(100), MaxDIterations)
	require.NoError(t, err)

	a, err := CalculateY(xp, 1, d, n(100))
	require.NoError(t, err)
	b, err := CalculateY([]*uint256.Int{xp[0], n(7)}, 1, d, n(100))
	require.NoError(t, err)
	require.Equal(t, a.Dec(), b.Dec())
}

func TestCalculateYFailures(t *testing.T) {
	xp := []*uint256.Int{u("1000000000000000000"), u("1000000000000000000")}
	d := u("2000000000000000002")

	_, err := CalculateY(xp, 2, d, n(100))
	requireKind(t, err, ErrInvalidIndex)

	_, err = CalculateY(xp, -1, d, n(100))
	requireKind(t, err, ErrInvalidIndex)

	_, err = CalculateY([]*uint256.Int{n(0), n(5)}, 1, d, n(100))
	requireKind(t, err, ErrDegenerateInput)

	_, err = CalculateY(xp, 1, d, n(0))
	requireKind(t, err, ErrDegenerateInput)

	_, err = CalculateY([]*uint256.Int{nil, xp[1]}, 1, d, n(100))
	requireKind(t, err, ErrDegenerateInput)

	_, err = CalculateY([]*uint256.Int{new(uint256.Int).Lsh(n(1), 130), xp[1]}, 1, d, n(100))
	requireKind(t, err, ErrArithmeticOverflow)

	// the slot being solved for may be left empty
	_, err = CalculateY([]*uint256.Int{xp[0], nil}, 1, d, n(100))
	require.NoError(t, err)

	_, err = calculateY(xp[:1], d, n(100), 1)
	requireKind(t, err, ErrNonConvergence)
}
