package market

import (
	"path/filepath"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/stableswap-engine/internal/adapters/persistence"
	"github.com/hxuan190/stableswap-engine/internal/domain"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

func pegPool(id string) *domain.Pool {
	return &domain.Pool{
		ID: id,
		Assets: []domain.PoolAsset{
			{AssetID: 20, Reserve: uint256.NewInt(1_000_000), Decimals: 6},
			{AssetID: 10, Reserve: uint256.NewInt(1_000_000), Decimals: 6},
		},
		Amplification: domain.AmplificationRamp{
			Initial:      uint256.NewInt(50),
			Final:        uint256.NewInt(100),
			InitialBlock: uint256.NewInt(0),
			FinalBlock:   uint256.NewInt(100),
		},
	}
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(calculator.NewService(32), nil)
}

func TestPutAndGetPool(t *testing.T) {
	svc := newTestService(t)
	stored, err := svc.PutPool(pegPool("usd"))
	require.NoError(t, err)
	require.Equal(t, uint32(10), stored.Assets[0].AssetID)
	require.False(t, stored.UpdatedAt.IsZero())

	got, err := svc.GetPool("usd")
	require.NoError(t, err)
	require.Equal(t, "1000000", got.Assets[1].Reserve.Dec())

	// the registry keeps its own copy
	got.Assets[1].Reserve.SetUint64(1)
	again, err := svc.GetPool("usd")
	require.NoError(t, err)
	require.Equal(t, "1000000", again.Assets[1].Reserve.Dec())

	_, err = svc.GetPool("eur")
	require.ErrorIs(t, err, ErrPoolNotFound)
}

func TestPutPoolRejectsUnusableSnapshot(t *testing.T) {
	svc := newTestService(t)

	p := pegPool("bad")
	p.Assets[0].Reserve = uint256.NewInt(0)
	_, err := svc.PutPool(p)
	require.ErrorIs(t, err, stableswap.ErrDegenerateInput)

	p = pegPool("bad")
	p.Assets = p.Assets[:1]
	_, err = svc.PutPool(p)
	require.ErrorIs(t, err, domain.ErrInvalidPool)
	require.Zero(t, svc.PoolCount())
}

func TestListPoolsSorted(t *testing.T) {
	svc := newTestService(t)
	for _, id := range []string{"c", "a", "b"} {
		_, err := svc.PutPool(pegPool(id))
		require.NoError(t, err)
	}
	pools := svc.ListPools()
	require.Len(t, pools, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{pools[0].ID, pools[1].ID, pools[2].ID})
}

func TestQuote(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PutPool(pegPool("usd"))
	require.NoError(t, err)

	q, err := svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(1000), Mode: domain.ExactIn})
	require.NoError(t, err)
	require.Equal(t, uint64(100), q.Amplification.Uint64())
	require.Equal(t, uint64(998), q.AmountOut.Uint64())

	q, err = svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(998), Mode: domain.ExactOut})
	require.NoError(t, err)
	require.Equal(t, uint64(1000), q.AmountIn.Uint64())

	// halfway up the ramp
	q, err = svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(1000), Mode: domain.ExactIn, Block: uint256.NewInt(50)})
	require.NoError(t, err)
	require.Equal(t, uint64(75), q.Amplification.Uint64())
}

func TestQuoteFailures(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PutPool(pegPool("usd"))
	require.NoError(t, err)

	_, err = svc.Quote("nope", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(1), Mode: domain.ExactIn})
	require.ErrorIs(t, err, ErrPoolNotFound)

	_, err = svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 30, Amount: uint256.NewInt(1), Mode: domain.ExactIn})
	require.ErrorIs(t, err, stableswap.ErrInvalidIndex)

	_, err = svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(1), Mode: "Sideways"})
	require.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Quote("usd", domain.QuoteRequest{AssetIn: 10, AssetOut: 20, Amount: uint256.NewInt(1_000_000), Mode: domain.ExactOut})
	require.ErrorIs(t, err, stableswap.ErrInsufficientLiquidity)
}

func TestInvariant(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.PutPool(pegPool("usd"))
	require.NoError(t, err)

	d, amp, err := svc.Invariant("usd", nil)
	require.NoError(t, err)
	require.Equal(t, uint64(100), amp.Uint64())
	require.Equal(t, "2000000000000000002", d.Dec())
}

func TestFlushPersistsDirtyPools(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pools.db")
	storage, err := persistence.NewStorage(path)
	require.NoError(t, err)

	svc := NewService(calculator.NewService(32), storage)
	_, err = svc.PutPool(pegPool("usd"))
	require.NoError(t, err)
	_, err = svc.PutPool(pegPool("eur"))
	require.NoError(t, err)
	require.NoError(t, svc.Flush())

	pools, err := storage.LoadAllPools()
	require.NoError(t, err)
	require.Len(t, pools, 2)
	require.NoError(t, svc.Stop())
}

func TestShardedPoolMap(t *testing.T) {
	m := NewShardedPoolMap()
	require.False(t, m.Set("a", pegPool("a")))
	require.True(t, m.Set("a", pegPool("a")))
	m.Set("b", pegPool("b"))
	require.Equal(t, 2, m.Len())

	p, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, "b", p.ID)

	seen := 0
	m.Range(func(string, *domain.Pool) bool {
		seen++
		return false
	})
	require.Equal(t, 1, seen)
	require.Len(t, m.GetAll(), 2)
}
