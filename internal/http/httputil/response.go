package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hxuan190/stableswap-engine/internal/common"
)

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

func Error(c *gin.Context, status int, code, err string) {
	c.JSON(status, Response{
		Success: false,
		Code:    code,
		Error:   err,
	})
}

func BadRequest(c *gin.Context, err string) {
	Error(c, http.StatusBadRequest, "BAD_REQUEST", err)
}

func NotFound(c *gin.Context, err string) {
	Error(c, http.StatusNotFound, "NOT_FOUND", err)
}

func HttpError(c *gin.Context, err *common.HttpError) {
	Error(c, err.StatusCode, err.Code, err.Message)
}
