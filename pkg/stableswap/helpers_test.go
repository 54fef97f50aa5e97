package stableswap

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func u(s string) *uint256.Int {
	return uint256.MustFromDecimal(s)
}

func n(v uint64) *uint256.Int {
	return uint256.NewInt(v)
}

func reservesOf(decimals uint8, amounts ...string) []AssetReserve {
	out := make([]AssetReserve, len(amounts))
	for i, a := range amounts {
		out[i] = NewAssetReserve(u(a), decimals)
	}
	return out
}

func requireKind(t *testing.T, err error, kind error) {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	require.Equal(t, kind, Kind(err))
}
