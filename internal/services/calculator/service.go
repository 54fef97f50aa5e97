package calculator

import (
	"strconv"
	"strings"
	"time"

	"github.com/holiman/uint256"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/stableswap-engine/internal/config"
	"github.com/hxuan190/stableswap-engine/internal/metrics"
	"github.com/hxuan190/stableswap-engine/internal/services"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

const CALCULATOR_SERVICE = "calculator-service"

const (
	OpOutGivenIn          = "out_given_in"
	OpInGivenOut          = "in_given_out"
	OpAmplification       = "amplification"
	OpShares              = "shares"
	OpSharesForAmount     = "shares_for_amount"
	OpAddOneAsset         = "add_one_asset"
	OpSharesForWithdrawal = "shares_for_withdrawal"
	OpAmountForShares     = "amount_for_shares"
	OpInvariant           = "invariant"
)

var statusByKind = map[error]string{
	stableswap.ErrInvalidIndex:          "invalid_index",
	stableswap.ErrArithmeticOverflow:    "overflow",
	stableswap.ErrNonConvergence:        "non_convergence",
	stableswap.ErrInsufficientLiquidity: "insufficient_liquidity",
	stableswap.ErrDegenerateInput:       "degenerate_input",
}

// Service runs engine calculations with metrics and logging. It holds no
// pool state; every call is a pure function of its arguments.
type Service struct {
	container.BaseDIInstance
	logger     *services.ServiceLogger
	config     *config.EngineConfig
	invariants *BoundedLRUCache[string, *uint256.Int]
}

func NewService(cacheSize int) *Service {
	svc := &Service{}
	svc.init(cacheSize)
	return svc
}

func (svc *Service) init(cacheSize int) {
	svc.logger = services.NewServiceLogger(svc)
	svc.invariants = NewBoundedLRUCache[string, *uint256.Int](cacheSize)
}

func (svc *Service) ID() string {
	return CALCULATOR_SERVICE
}

func (svc *Service) Configure(c container.IContainer) error {
	svc.config = c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)
	svc.init(svc.config.InvariantCacheSize)
	return nil
}

func (svc *Service) Start() error {
	return nil
}

func (svc *Service) Stop() error {
	svc.invariants.Clear()
	metrics.InvariantCacheSize.Set(0)
	return nil
}

func (svc *Service) observe(op string, fn func() (*uint256.Int, error)) (*uint256.Int, error) {
	start := time.Now()
	v, err := fn()
	metrics.CalculationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	status := "ok"
	if err != nil {
		status = "error"
		if s, ok := statusByKind[stableswap.Kind(err)]; ok {
			status = s
		}
		svc.logger.Failure(op, err)
	}
	metrics.CalculationRequests.WithLabelValues(op, status).Inc()
	return v, err
}

func (svc *Service) OutGivenIn(reserves []stableswap.AssetReserve, idxIn, idxOut int, amountIn, amplification *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpOutGivenIn, func() (*uint256.Int, error) {
		return stableswap.OutGivenIn(reserves, idxIn, idxOut, amountIn, amplification, fee)
	})
}

func (svc *Service) InGivenOut(reserves []stableswap.AssetReserve, idxIn, idxOut int, amountOut, amplification *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpInGivenOut, func() (*uint256.Int, error) {
		return stableswap.InGivenOut(reserves, idxIn, idxOut, amountOut, amplification, fee)
	})
}

func (svc *Service) Amplification(initial, final, initialBlock, finalBlock, currentBlock *uint256.Int) *uint256.Int {
	v, _ := svc.observe(OpAmplification, func() (*uint256.Int, error) {
		return stableswap.CalculateAmplification(initial, final, initialBlock, finalBlock, currentBlock), nil
	})
	return v
}

func (svc *Service) Shares(reserves []stableswap.AssetReserve, deposits []stableswap.AssetAmount, amplification, issuance *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpShares, func() (*uint256.Int, error) {
		return stableswap.CalculateShares(reserves, deposits, amplification, issuance, fee)
	})
}

func (svc *Service) SharesForAmount(reserves []stableswap.AssetReserve, idx int, amount, amplification, issuance *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpSharesForAmount, func() (*uint256.Int, error) {
		return stableswap.CalculateSharesForAmount(reserves, idx, amount, amplification, issuance, fee)
	})
}

func (svc *Service) AddOneAsset(reserves []stableswap.AssetReserve, shares *uint256.Int, idx int, amplification, issuance *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpAddOneAsset, func() (*uint256.Int, error) {
		return stableswap.CalculateAddOneAsset(reserves, shares, idx, amplification, issuance, fee)
	})
}

func (svc *Service) SharesForWithdrawal(reserves []stableswap.AssetReserve, idx int, amount, amplification, issuance *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpSharesForWithdrawal, func() (*uint256.Int, error) {
		return stableswap.CalculateSharesForWithdrawal(reserves, idx, amount, amplification, issuance, fee)
	})
}

func (svc *Service) AmountForShares(reserves []stableswap.AssetReserve, shares *uint256.Int, idx int, amplification, issuance *uint256.Int, fee stableswap.Permill) (*uint256.Int, error) {
	return svc.observe(OpAmountForShares, func() (*uint256.Int, error) {
		return stableswap.CalculateAmountForShares(reserves, shares, idx, amplification, issuance, fee)
	})
}

// Invariant returns D for the snapshot, memoised on the exact reserves,
// decimals and amplification. The returned value is a copy.
func (svc *Service) Invariant(reserves []stableswap.AssetReserve, amplification *uint256.Int) (*uint256.Int, error) {
	return svc.observe(OpInvariant, func() (*uint256.Int, error) {
		key, ok := invariantKey(reserves, amplification)
		if ok {
			if d, hit := svc.invariants.Get(key); hit {
				metrics.InvariantCacheHits.Inc()
				return d.Clone(), nil
			}
			metrics.InvariantCacheMisses.Inc()
		}

		d, err := stableswap.CalculateD(reserves, amplification)
		if err != nil {
			return nil, err
		}
		if ok {
			svc.invariants.Set(key, d.Clone())
			metrics.InvariantCacheSize.Set(float64(svc.invariants.Len()))
		}
		return d, nil
	})
}

// invariantKey is false for inputs the engine is about to reject anyway.
func invariantKey(reserves []stableswap.AssetReserve, amplification *uint256.Int) (string, bool) {
	if amplification == nil {
		return "", false
	}
	var b strings.Builder
	b.WriteString(amplification.Dec())
	for _, r := range reserves {
		if r.Amount == nil {
			return "", false
		}
		b.WriteByte('|')
		b.WriteString(r.Amount.Dec())
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(int(r.Decimals)))
	}
	return b.String(), true
}

func (svc *Service) CachedInvariants() int {
	return svc.invariants.Len()
}
