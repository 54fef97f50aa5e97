package http

import (
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/http/httputil"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
)

// EngineHandler serves the stateless helpers that are not tied to a trade.
type EngineHandler struct {
	calc *calculator.Service
}

func NewEngineHandler(calc *calculator.Service) *EngineHandler {
	return &EngineHandler{calc: calc}
}

func (h *EngineHandler) Root() string {
	return ""
}

func (h *EngineHandler) SetRoutes(r *gin.RouterGroup) {
	r.GET("/amplification", h.amplification)
	r.POST("/invariant", h.invariant)
}

type AmplificationRequest struct {
	Initial      string `form:"initial" binding:"required" example:"100"`
	Final        string `form:"final" binding:"required" example:"200"`
	InitialBlock string `form:"initial_block" binding:"required" example:"1000"`
	FinalBlock   string `form:"final_block" binding:"required" example:"2000"`
	CurrentBlock string `form:"current_block" binding:"required" example:"1500"`
}

// amplification godoc
// @Summary Amplification at a block on a linear ramp
// @Tags engine
// @Produce json
// @Param initial query string true "initial amplification"
// @Param final query string true "final amplification"
// @Param initial_block query string true "ramp start block"
// @Param final_block query string true "ramp end block"
// @Param current_block query string true "block to evaluate"
// @Success 200 {object} httputil.Response{data=AmountResponse}
// @Router /api/v1/amplification [get]
func (h *EngineHandler) amplification(c *gin.Context) {
	var req AmplificationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.BadRequest(c, "invalid query parameters: "+err.Error())
		return
	}
	values := make([]*uint256.Int, 0, 5)
	for _, s := range []string{req.Initial, req.Final, req.InitialBlock, req.FinalBlock, req.CurrentBlock} {
		v, err := bindings.ParseU128(s)
		if err != nil {
			respondError(c, err)
			return
		}
		values = append(values, v)
	}
	amp := h.calc.Amplification(values[0], values[1], values[2], values[3], values[4])
	httputil.Success(c, AmountResponse{Amount: amp.Dec()})
}

type InvariantRequest struct {
	Reserves      []bindings.ReserveEntry `json:"reserves"`
	Amplification bindings.Amount         `json:"amplification" swaggertype:"string" example:"100"`
}

type InvariantResponse struct {
	// D at 18-decimal precision
	Invariant string `json:"invariant" example:"2000000000000000002"`
}

// invariant godoc
// @Summary StableSwap invariant D of a reserve snapshot
// @Tags engine
// @Accept json
// @Produce json
// @Param request body InvariantRequest true "reserves, amplification"
// @Success 200 {object} httputil.Response{data=InvariantResponse}
// @Router /api/v1/invariant [post]
func (h *EngineHandler) invariant(c *gin.Context) {
	var req InvariantRequest
	if !bindJSON(c, &req) {
		return
	}
	reserves, err := bindings.NewReserves(req.Reserves)
	if err != nil {
		respondError(c, err)
		return
	}
	amp, err := required("amplification", req.Amplification)
	if err != nil {
		respondError(c, err)
		return
	}
	d, err := h.calc.Invariant(reserves.Assets, amp)
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, InvariantResponse{Invariant: d.Dec()})
}
