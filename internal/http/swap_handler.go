package http

import (
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

type SwapHandler struct {
	calc *calculator.Service
}

func NewSwapHandler(calc *calculator.Service) *SwapHandler {
	return &SwapHandler{calc: calc}
}

func (h *SwapHandler) Root() string {
	return "/swap"
}

func (h *SwapHandler) SetRoutes(r *gin.RouterGroup) {
	r.POST("/out-given-in", h.outGivenIn)
	r.POST("/in-given-out", h.inGivenOut)
}

// SwapRequest prices a trade against an explicit reserve snapshot.
type SwapRequest struct {
	// Pool reserves; order does not matter, entries are sorted by asset_id
	Reserves []bindings.ReserveEntry `json:"reserves"`

	AssetIn  uint32 `json:"asset_in" example:"0"`
	AssetOut uint32 `json:"asset_out" example:"1"`

	// Raw units of asset_in (out-given-in) or asset_out (in-given-out)
	Amount bindings.Amount `json:"amount" swaggertype:"string" example:"1000000000"`

	Amplification bindings.Amount `json:"amplification" swaggertype:"string" example:"100"`

	// Fraction in [0, 1]; at most six decimal places are used
	Fee string `json:"fee" example:"0.0004"`
}

type parsedSwap struct {
	reserves      []stableswap.AssetReserve
	idxIn, idxOut int
	amount        *uint256.Int
	amplification *uint256.Int
	fee           stableswap.Permill
}

func parseSwapRequest(req *SwapRequest) (*parsedSwap, error) {
	reserves, err := bindings.NewReserves(req.Reserves)
	if err != nil {
		return nil, err
	}
	p := &parsedSwap{reserves: reserves.Assets}
	if p.idxIn, err = reserves.ResolveIndex(req.AssetIn); err != nil {
		return nil, err
	}
	if p.idxOut, err = reserves.ResolveIndex(req.AssetOut); err != nil {
		return nil, err
	}
	if p.amount, err = required("amount", req.Amount); err != nil {
		return nil, err
	}
	if p.amplification, err = required("amplification", req.Amplification); err != nil {
		return nil, err
	}
	if p.fee, err = parseFee(req.Fee); err != nil {
		return nil, err
	}
	return p, nil
}

// outGivenIn godoc
// @Summary Output for an exact input
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapRequest true "swap"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/swap/out-given-in [post]
func (h *SwapHandler) outGivenIn(c *gin.Context) {
	var req SwapRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := parseSwapRequest(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.calc.OutGivenIn(p.reserves, p.idxIn, p.idxOut, p.amount, p.amplification, p.fee)
	respondAmount(c, out, err)
}

// inGivenOut godoc
// @Summary Input needed for an exact output
// @Tags swap
// @Accept json
// @Produce json
// @Param request body SwapRequest true "swap"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/swap/in-given-out [post]
func (h *SwapHandler) inGivenOut(c *gin.Context) {
	var req SwapRequest
	if !bindJSON(c, &req) {
		return
	}
	p, err := parseSwapRequest(&req)
	if err != nil {
		respondError(c, err)
		return
	}
	in, err := h.calc.InGivenOut(p.reserves, p.idxIn, p.idxOut, p.amount, p.amplification, p.fee)
	respondAmount(c, in, err)
}
