package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/domain"
	"github.com/hxuan190/stableswap-engine/internal/http/httputil"
	"github.com/hxuan190/stableswap-engine/internal/services/market"
)

type PoolHandler struct {
	market *market.Service
}

func NewPoolHandler(m *market.Service) *PoolHandler {
	return &PoolHandler{market: m}
}

func (h *PoolHandler) Root() string {
	return "/pools"
}

func (h *PoolHandler) SetRoutes(r *gin.RouterGroup) {
	r.GET("", h.listPools)
	r.GET("/:id", h.getPool)
	r.PUT("/:id", h.putPool)
	r.POST("/:id/quote", h.quote)
	r.GET("/:id/invariant", h.invariant)
}

type PoolAssetDTO struct {
	AssetID  uint32          `json:"asset_id" example:"0"`
	Reserve  bindings.Amount `json:"reserve" swaggertype:"string" example:"1000000000000000000"`
	Decimals uint8           `json:"decimals" example:"18"`
}

type AmplificationDTO struct {
	Initial      bindings.Amount `json:"initial" swaggertype:"string" example:"100"`
	Final        bindings.Amount `json:"final" swaggertype:"string" example:"100"`
	InitialBlock bindings.Amount `json:"initial_block,omitempty" swaggertype:"string" example:"0"`
	FinalBlock   bindings.Amount `json:"final_block,omitempty" swaggertype:"string" example:"0"`
}

type PutPoolRequest struct {
	Assets        []PoolAssetDTO   `json:"assets"`
	Amplification AmplificationDTO `json:"amplification"`
	Fee           string           `json:"fee" example:"0.0004"`
	ShareIssuance bindings.Amount  `json:"share_issuance,omitempty" swaggertype:"string" example:"2000000000000000000"`
}

type PoolAssetResponse struct {
	AssetID  uint32 `json:"asset_id"`
	Reserve  string `json:"reserve"`
	Decimals uint8  `json:"decimals"`
}

type AmplificationResponse struct {
	Initial      string `json:"initial"`
	Final        string `json:"final"`
	InitialBlock string `json:"initial_block"`
	FinalBlock   string `json:"final_block"`
}

type PoolResponse struct {
	ID            string                `json:"id"`
	Assets        []PoolAssetResponse   `json:"assets"`
	Amplification AmplificationResponse `json:"amplification"`
	Fee           string                `json:"fee"`
	ShareIssuance string                `json:"share_issuance"`
	UpdatedAt     int64                 `json:"updated_at"`
}

func toPoolResponse(p *domain.Pool) PoolResponse {
	assets := make([]PoolAssetResponse, len(p.Assets))
	for i, a := range p.Assets {
		assets[i] = PoolAssetResponse{AssetID: a.AssetID, Reserve: a.Reserve.Dec(), Decimals: a.Decimals}
	}
	return PoolResponse{
		ID:     p.ID,
		Assets: assets,
		Amplification: AmplificationResponse{
			Initial:      p.Amplification.Initial.Dec(),
			Final:        p.Amplification.Final.Dec(),
			InitialBlock: p.Amplification.InitialBlock.Dec(),
			FinalBlock:   p.Amplification.FinalBlock.Dec(),
		},
		Fee:           bindings.FormatFee(p.Fee),
		ShareIssuance: p.ShareIssuance.Dec(),
		UpdatedAt:     p.UpdatedAt.UnixMilli(),
	}
}

// listPools godoc
// @Summary List registered pools
// @Tags pools
// @Produce json
// @Success 200 {object} httputil.Response{data=[]PoolResponse}
// @Router /api/v1/pools [get]
func (h *PoolHandler) listPools(c *gin.Context) {
	pools := h.market.ListPools()
	out := make([]PoolResponse, len(pools))
	for i, p := range pools {
		out[i] = toPoolResponse(p)
	}
	httputil.Success(c, out)
}

// getPool godoc
// @Summary Get a registered pool
// @Tags pools
// @Produce json
// @Param id path string true "pool id"
// @Success 200 {object} httputil.Response{data=PoolResponse}
// @Failure 404 {object} httputil.Response
// @Router /api/v1/pools/{id} [get]
func (h *PoolHandler) getPool(c *gin.Context) {
	p, err := h.market.GetPool(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, toPoolResponse(p))
}

// putPool godoc
// @Summary Register or replace a pool snapshot
// @Tags pools
// @Accept json
// @Produce json
// @Param id path string true "pool id"
// @Param request body PutPoolRequest true "pool snapshot"
// @Success 200 {object} httputil.Response{data=PoolResponse}
// @Failure 400 {object} httputil.Response
// @Router /api/v1/pools/{id} [put]
func (h *PoolHandler) putPool(c *gin.Context) {
	var req PutPoolRequest
	if !bindJSON(c, &req) {
		return
	}
	fee, err := parseFee(req.Fee)
	if err != nil {
		respondError(c, err)
		return
	}
	pool := &domain.Pool{
		ID:  c.Param("id"),
		Fee: fee,
		Amplification: domain.AmplificationRamp{
			Initial:      req.Amplification.Initial.Int,
			Final:        req.Amplification.Final.Int,
			InitialBlock: req.Amplification.InitialBlock.Int,
			FinalBlock:   req.Amplification.FinalBlock.Int,
		},
		ShareIssuance: req.ShareIssuance.Int,
	}
	for _, a := range req.Assets {
		pool.Assets = append(pool.Assets, domain.PoolAsset{AssetID: a.AssetID, Reserve: a.Reserve.Int, Decimals: a.Decimals})
	}

	stored, err := h.market.PutPool(pool)
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, toPoolResponse(stored))
}

type QuoteRequestDTO struct {
	AssetIn  uint32          `json:"asset_in" example:"0"`
	AssetOut uint32          `json:"asset_out" example:"1"`
	Amount   bindings.Amount `json:"amount" swaggertype:"string" example:"1000000000"`
	// ExactIn (default) or ExactOut
	SwapMode string          `json:"swap_mode" example:"ExactIn"`
	Block    bindings.Amount `json:"block,omitempty" swaggertype:"string" example:"1500"`
}

type QuoteResponse struct {
	PoolID        string `json:"pool_id"`
	AssetIn       uint32 `json:"asset_in"`
	AssetOut      uint32 `json:"asset_out"`
	AmountIn      string `json:"amount_in"`
	AmountOut     string `json:"amount_out"`
	SwapMode      string `json:"swap_mode"`
	Amplification string `json:"amplification"`
	Fee           string `json:"fee"`
}

func parseSwapMode(s string) (domain.SwapMode, error) {
	switch s {
	case "", string(domain.ExactIn):
		return domain.ExactIn, nil
	case string(domain.ExactOut):
		return domain.ExactOut, nil
	}
	return "", fmt.Errorf("%w: swap mode %q", market.ErrInvalidRequest, s)
}

// quote godoc
// @Summary Quote a swap against a registered pool
// @Tags pools
// @Accept json
// @Produce json
// @Param id path string true "pool id"
// @Param request body QuoteRequestDTO true "asset_in, asset_out, amount, swap_mode, block"
// @Success 200 {object} httputil.Response{data=QuoteResponse}
// @Failure 404 {object} httputil.Response
// @Failure 422 {object} httputil.Response
// @Router /api/v1/pools/{id}/quote [post]
func (h *PoolHandler) quote(c *gin.Context) {
	var req QuoteRequestDTO
	if !bindJSON(c, &req) {
		return
	}
	mode, err := parseSwapMode(req.SwapMode)
	if err != nil {
		respondError(c, err)
		return
	}
	amount, err := required("amount", req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	q, err := h.market.Quote(c.Param("id"), domain.QuoteRequest{
		AssetIn:  req.AssetIn,
		AssetOut: req.AssetOut,
		Amount:   amount,
		Mode:     mode,
		Block:    req.Block.Int,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, QuoteResponse{
		PoolID:        q.PoolID,
		AssetIn:       q.AssetIn,
		AssetOut:      q.AssetOut,
		AmountIn:      q.AmountIn.Dec(),
		AmountOut:     q.AmountOut.Dec(),
		SwapMode:      string(q.Mode),
		Amplification: q.Amplification.Dec(),
		Fee:           bindings.FormatFee(q.Fee),
	})
}

type PoolInvariantResponse struct {
	Invariant     string `json:"invariant"`
	Amplification string `json:"amplification"`
}

// invariant godoc
// @Summary Invariant D of a registered pool
// @Tags pools
// @Produce json
// @Param id path string true "pool id"
// @Param block query string false "block on the amplification ramp; defaults to the ramp end"
// @Success 200 {object} httputil.Response{data=PoolInvariantResponse}
// @Router /api/v1/pools/{id}/invariant [get]
func (h *PoolHandler) invariant(c *gin.Context) {
	var block *uint256.Int
	if s := c.Query("block"); s != "" {
		b, err := bindings.ParseU128(s)
		if err != nil {
			respondError(c, err)
			return
		}
		block = b
	}
	d, amp, err := h.market.Invariant(c.Param("id"), block)
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, PoolInvariantResponse{Invariant: d.Dec(), Amplification: amp.Dec()})
}
