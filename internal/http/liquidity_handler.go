package http

import (
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

type LiquidityHandler struct {
	calc *calculator.Service
}

func NewLiquidityHandler(calc *calculator.Service) *LiquidityHandler {
	return &LiquidityHandler{calc: calc}
}

func (h *LiquidityHandler) Root() string {
	return "/liquidity"
}

func (h *LiquidityHandler) SetRoutes(r *gin.RouterGroup) {
	r.POST("/shares", h.shares)
	r.POST("/shares-for-amount", h.sharesForAmount)
	r.POST("/add-one-asset", h.addOneAsset)
	r.POST("/shares-for-withdrawal", h.sharesForWithdrawal)
	r.POST("/amount-for-shares", h.amountForShares)
}

// LiquidityRequest is shared by every liquidity endpoint; each one reads the
// fields it needs.
type LiquidityRequest struct {
	Reserves      []bindings.ReserveEntry `json:"reserves"`
	Amplification bindings.Amount         `json:"amplification" swaggertype:"string" example:"100"`
	ShareIssuance bindings.Amount         `json:"share_issuance" swaggertype:"string" example:"2000000000000000000"`
	Fee           string                  `json:"fee" example:"0.0004"`

	// Multi-asset deposit (/shares)
	Assets []bindings.AmountEntry `json:"assets,omitempty"`

	// Single-asset operations
	AssetID uint32          `json:"asset_id" example:"0"`
	Amount  bindings.Amount `json:"amount,omitempty" swaggertype:"string" example:"100000000000000000"`
	Shares  bindings.Amount `json:"shares,omitempty" swaggertype:"string" example:"100000000000000000"`
}

type parsedLiquidity struct {
	reserves      bindings.Reserves
	amplification *uint256.Int
	issuance      *uint256.Int
	fee           stableswap.Permill
}

func parseLiquidityRequest(req *LiquidityRequest) (*parsedLiquidity, error) {
	reserves, err := bindings.NewReserves(req.Reserves)
	if err != nil {
		return nil, err
	}
	p := &parsedLiquidity{reserves: reserves, issuance: optional(req.ShareIssuance)}
	if p.amplification, err = required("amplification", req.Amplification); err != nil {
		return nil, err
	}
	if p.fee, err = parseFee(req.Fee); err != nil {
		return nil, err
	}
	return p, nil
}

// singleAsset resolves asset_id and the named amount field.
func singleAsset(c *gin.Context, name string, pick func(*LiquidityRequest) bindings.Amount) (*parsedLiquidity, int, *uint256.Int, bool) {
	var req LiquidityRequest
	if !bindJSON(c, &req) {
		return nil, 0, nil, false
	}
	p, err := parseLiquidityRequest(&req)
	if err != nil {
		respondError(c, err)
		return nil, 0, nil, false
	}
	idx, err := p.reserves.ResolveIndex(req.AssetID)
	if err != nil {
		respondError(c, err)
		return nil, 0, nil, false
	}
	v, err := required(name, pick(&req))
	if err != nil {
		respondError(c, err)
		return nil, 0, nil, false
	}
	return p, idx, v, true
}

func pickAmount(r *LiquidityRequest) bindings.Amount { return r.Amount }
func pickShares(r *LiquidityRequest) bindings.Amount { return r.Shares }

// shares godoc
// @Summary Shares minted for a multi-asset deposit
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body LiquidityRequest true "reserves, assets, amplification, share_issuance, fee"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/liquidity/shares [post]
func (h *LiquidityHandler) shares(c *gin.Context) {
	var req LiquidityRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := parseLiquidityRequest(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	deposits, err := p.reserves.ResolveAmounts(req.Assets)
	if err != nil {
		respondError(c, err)
		return
	}
	v, err := h.calc.Shares(p.reserves.Assets, deposits, p.amplification, p.issuance, p.fee)
	respondAmount(c, v, err)
}

// sharesForAmount godoc
// @Summary Shares minted for depositing one asset
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body LiquidityRequest true "reserves, asset_id, amount, amplification, share_issuance, fee"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/liquidity/shares-for-amount [post]
func (h *LiquidityHandler) sharesForAmount(c *gin.Context) {
	p, idx, amount, ok := singleAsset(c, "amount", pickAmount)
	if !ok {
		return
	}
	v, err := h.calc.SharesForAmount(p.reserves.Assets, idx, amount, p.amplification, p.issuance, p.fee)
	respondAmount(c, v, err)
}

// addOneAsset godoc
// @Summary Amount of one asset paid out for burning shares
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body LiquidityRequest true "reserves, asset_id, shares, amplification, share_issuance, fee"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/liquidity/add-one-asset [post]
func (h *LiquidityHandler) addOneAsset(c *gin.Context) {
	p, idx, shares, ok := singleAsset(c, "shares", pickShares)
	if !ok {
		return
	}
	v, err := h.calc.AddOneAsset(p.reserves.Assets, shares, idx, p.amplification, p.issuance, p.fee)
	respondAmount(c, v, err)
}

// sharesForWithdrawal godoc
// @Summary Shares burned to withdraw an exact amount of one asset
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body LiquidityRequest true "reserves, asset_id, amount, amplification, share_issuance, fee"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/liquidity/shares-for-withdrawal [post]
func (h *LiquidityHandler) sharesForWithdrawal(c *gin.Context) {
	p, idx, amount, ok := singleAsset(c, "amount", pickAmount)
	if !ok {
		return
	}
	v, err := h.calc.SharesForWithdrawal(p.reserves.Assets, idx, amount, p.amplification, p.issuance, p.fee)
	respondAmount(c, v, err)
}

// amountForShares godoc
// @Summary Amount of one asset to deposit for an exact share amount
// @Tags liquidity
// @Accept json
// @Produce json
// @Param request body LiquidityRequest true "reserves, asset_id, shares, amplification, share_issuance, fee"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/liquidity/amount-for-shares [post]
func (h *LiquidityHandler) amountForShares(c *gin.Context) {
	p, idx, shares, ok := singleAsset(c, "shares", pickShares)
	if !ok {
		return
	}
	v, err := h.calc.AmountForShares(p.reserves.Assets, shares, idx, p.amplification, p.issuance, p.fee)
	respondAmount(c, v, err)
}
