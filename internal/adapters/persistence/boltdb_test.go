package persistence

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/stableswap-engine/internal/domain"
)

func samplePool(id string) *domain.Pool {
	return &domain.Pool{
		ID: id,
		Assets: []domain.PoolAsset{
			{AssetID: 0, Reserve: uint256.MustFromDecimal("340282366920938463463374607431768211455"), Decimals: 18},
			{AssetID: 1, Reserve: uint256.NewInt(1_000_000), Decimals: 6},
		},
		Amplification: domain.AmplificationRamp{
			Initial:      uint256.NewInt(100),
			Final:        uint256.NewInt(300),
			InitialBlock: uint256.NewInt(10),
			FinalBlock:   uint256.NewInt(20),
		},
		Fee:           500,
		ShareIssuance: uint256.NewInt(42),
		UpdatedAt:     time.UnixMilli(1_700_000_000_000),
	}
}

func TestStorageRoundTrip(t *testing.T) {
	s, err := NewStorage(filepath.Join(t.TempDir(), "pools.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.SavePool(samplePool("a")))
	require.NoError(t, s.SavePoolBatch([]*domain.Pool{samplePool("b"), samplePool("c")}))

	pools, err := s.LoadAllPools()
	require.NoError(t, err)
	require.Len(t, pools, 3)

	for _, p := range pools {
		want := samplePool(p.ID)
		require.Equal(t, want.Assets[0].Reserve.Dec(), p.Assets[0].Reserve.Dec())
		require.Equal(t, want.Amplification.Final.Dec(), p.Amplification.Final.Dec())
		require.Equal(t, want.Fee, p.Fee)
		require.Equal(t, want.ShareIssuance.Dec(), p.ShareIssuance.Dec())
		require.True(t, want.UpdatedAt.Equal(p.UpdatedAt))
	}
}

func TestStoredToPoolRejectsCorruptRecords(t *testing.T) {
	stored := poolToStored(samplePool("x"))
	stored.Assets[1].Reserve = "lots"
	_, err := storedToPool(stored)
	require.Error(t, err)

	stored = poolToStored(samplePool("x"))
	stored.Assets = stored.Assets[:1]
	_, err = storedToPool(stored)
	require.ErrorIs(t, err, domain.ErrInvalidPool)
}
