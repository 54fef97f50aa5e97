package http

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/common"
	"github.com/hxuan190/stableswap-engine/internal/http/httputil"
	"github.com/hxuan190/stableswap-engine/internal/services/market"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

// AmountResponse wraps a single integer result.
type AmountResponse struct {
	Amount string `json:"amount" example:"999500248"`
}

func required(name string, a bindings.Amount) (*uint256.Int, error) {
	if a.Int == nil {
		return nil, fmt.Errorf("%w: %s is required", bindings.ErrMalformedInput, name)
	}
	return a.Int, nil
}

func optional(a bindings.Amount) *uint256.Int {
	if a.Int == nil {
		return new(uint256.Int)
	}
	return a.Int
}

// parseFee treats an omitted fee as zero.
func parseFee(s string) (stableswap.Permill, error) {
	if s == "" {
		return 0, nil
	}
	return bindings.ParseFee(s)
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httputil.BadRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, market.ErrPoolNotFound):
		httputil.NotFound(c, err.Error())
	case errors.Is(err, market.ErrInvalidRequest):
		httputil.BadRequest(c, err.Error())
	default:
		httputil.HttpError(c, common.HTTPErrorFromCalculation(err))
	}
}

func respondAmount(c *gin.Context, v *uint256.Int, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	httputil.Success(c, AmountResponse{Amount: v.Dec()})
}
