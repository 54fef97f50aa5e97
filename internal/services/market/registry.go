package market

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/holiman/uint256"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/stableswap-engine/internal/adapters/persistence"
	"github.com/hxuan190/stableswap-engine/internal/config"
	"github.com/hxuan190/stableswap-engine/internal/domain"
	"github.com/hxuan190/stableswap-engine/internal/metrics"
	"github.com/hxuan190/stableswap-engine/internal/services"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
)

const MARKET_SERVICE = "market-service"

var (
	ErrPoolNotFound   = errors.New("pool not found")
	ErrInvalidRequest = errors.New("invalid quote request")
)

// Service keeps named pool snapshots in memory and quotes swaps against them.
// Snapshots are replaced wholesale; the registry never moves reserves itself.
type Service struct {
	container.BaseDIInstance
	logger     *services.ServiceLogger
	config     *config.PoolStoreConfig
	calculator *calculator.Service
	storage    *persistence.Storage

	pools *ShardedPoolMap

	dirtyMu sync.Mutex
	dirty   map[string]struct{}

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewService builds a registry outside the container. storage may be nil.
func NewService(calc *calculator.Service, storage *persistence.Storage) *Service {
	svc := &Service{calculator: calc, storage: storage}
	svc.init()
	return svc
}

func (svc *Service) init() {
	svc.logger = services.NewServiceLogger(svc)
	svc.pools = NewShardedPoolMap()
	svc.dirty = make(map[string]struct{})
}

func (svc *Service) ID() string {
	return MARKET_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.init()
	svc.config = c.GetConfig(config.POOL_STORE_CONFIG_KEY).(*config.PoolStoreConfig)
	svc.calculator = c.Instance(calculator.CALCULATOR_SERVICE).(*calculator.Service)
	return nil
}

func (svc *Service) Start() error {
	if svc.config == nil || !svc.config.PersistenceEnabled {
		svc.logger.Info().Msg("pool persistence disabled")
		return nil
	}

	storage, err := persistence.NewStorage(svc.config.DBPath)
	if err != nil {
		return err
	}
	svc.storage = storage

	if err := svc.restore(); err != nil {
		svc.logger.Warn().Err(err).Msg("failed to restore pools, starting empty")
	}

	svc.stopCh = make(chan struct{})
	svc.wg.Add(1)
	go svc.persistLoop(time.Duration(svc.config.PersistInterval) * time.Second)
	return nil
}

func (svc *Service) Stop() error {
	if svc.stopCh != nil {
		close(svc.stopCh)
		svc.wg.Wait()
	}
	if svc.storage == nil {
		return nil
	}
	if err := svc.Flush(); err != nil {
		svc.logger.Error().Err(err).Msg("failed to flush pools on shutdown")
	}
	return svc.storage.Close()
}

func (svc *Service) restore() error {
	pools, err := svc.storage.LoadAllPools()
	if err != nil {
		return err
	}
	for _, p := range pools {
		svc.pools.Set(p.ID, p)
	}
	metrics.PoolCount.Set(float64(svc.pools.Len()))
	svc.logger.Info().Int("count", len(pools)).Msg("restored pools")
	return nil
}

func (svc *Service) persistLoop(interval time.Duration) {
	defer svc.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-svc.stopCh:
			return
		case <-ticker.C:
			if err := svc.Flush(); err != nil {
				svc.logger.Error().Err(err).Msg("periodic pool flush failed")
			}
		}
	}
}

// Flush writes every pool changed since the last flush in one batch. Pools
// that fail to save stay dirty.
func (svc *Service) Flush() error {
	if svc.storage == nil {
		return nil
	}

	svc.dirtyMu.Lock()
	ids := make([]string, 0, len(svc.dirty))
	for id := range svc.dirty {
		ids = append(ids, id)
	}
	svc.dirty = make(map[string]struct{})
	svc.dirtyMu.Unlock()

	batch := make([]*domain.Pool, 0, len(ids))
	for _, id := range ids {
		if p, ok := svc.pools.Get(id); ok {
			batch = append(batch, p)
		}
	}
	if err := svc.storage.SavePoolBatch(batch); err != nil {
		metrics.PoolPersistFailures.Inc()
		svc.markDirty(ids...)
		return err
	}
	return nil
}

func (svc *Service) markDirty(ids ...string) {
	svc.dirtyMu.Lock()
	for _, id := range ids {
		svc.dirty[id] = struct{}{}
	}
	svc.dirtyMu.Unlock()
}

// PutPool validates and registers a snapshot, replacing any pool with the
// same id. The stored copy is independent of pool.
func (svc *Service) PutPool(pool *domain.Pool) (*domain.Pool, error) {
	p := pool.Clone()
	if err := p.Prepare(); err != nil {
		return nil, err
	}
	if _, err := svc.calculator.Invariant(p.Reserves(), p.Amplification.Final); err != nil {
		return nil, fmt.Errorf("pool %s: %w", p.ID, err)
	}
	if _, err := svc.calculator.Invariant(p.Reserves(), p.Amplification.Initial); err != nil {
		return nil, fmt.Errorf("pool %s: %w", p.ID, err)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now()
	}

	svc.pools.Set(p.ID, p)
	svc.markDirty(p.ID)
	metrics.PoolUpdates.Inc()
	metrics.PoolCount.Set(float64(svc.pools.Len()))
	return p.Clone(), nil
}

func (svc *Service) GetPool(id string) (*domain.Pool, error) {
	p, ok := svc.pools.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return p.Clone(), nil
}

func (svc *Service) ListPools() []*domain.Pool {
	all := svc.pools.GetAll()
	out := make([]*domain.Pool, len(all))
	for i, p := range all {
		out[i] = p.Clone()
	}
	slices.SortFunc(out, func(a, b *domain.Pool) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

func (svc *Service) PoolCount() int {
	return svc.pools.Len()
}

// effectiveAmplification evaluates the ramp at block. A nil block means the
// ramp has completed.
func effectiveAmplification(p *domain.Pool, block *uint256.Int) *uint256.Int {
	if block == nil {
		block = p.Amplification.FinalBlock
	}
	return p.Amplification.At(block)
}

// Quote prices a swap against the registered snapshot of pool id.
func (svc *Service) Quote(id string, req domain.QuoteRequest) (*domain.Quote, error) {
	p, err := svc.GetPool(id)
	if err != nil {
		return nil, err
	}
	if req.Amount == nil {
		return nil, fmt.Errorf("%w: missing amount", ErrInvalidRequest)
	}
	idxIn, err := p.IndexOf(req.AssetIn)
	if err != nil {
		return nil, err
	}
	idxOut, err := p.IndexOf(req.AssetOut)
	if err != nil {
		return nil, err
	}

	amp := effectiveAmplification(p, req.Block)
	q := &domain.Quote{
		PoolID:        p.ID,
		AssetIn:       req.AssetIn,
		AssetOut:      req.AssetOut,
		Mode:          req.Mode,
		Amplification: amp,
		Fee:           p.Fee,
	}
	switch req.Mode {
	case domain.ExactIn:
		q.AmountIn = req.Amount.Clone()
		q.AmountOut, err = svc.calculator.OutGivenIn(p.Reserves(), idxIn, idxOut, req.Amount, amp, p.Fee)
	case domain.ExactOut:
		q.AmountOut = req.Amount.Clone()
		q.AmountIn, err = svc.calculator.InGivenOut(p.Reserves(), idxIn, idxOut, req.Amount, amp, p.Fee)
	default:
		return nil, fmt.Errorf("%w: swap mode %q", ErrInvalidRequest, req.Mode)
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Invariant returns D of pool id at block.
func (svc *Service) Invariant(id string, block *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	p, err := svc.GetPool(id)
	if err != nil {
		return nil, nil, err
	}
	amp := effectiveAmplification(p, block)
	d, err := svc.calculator.Invariant(p.Reserves(), amp)
	if err != nil {
		return nil, nil, err
	}
	return d, amp, nil
}
