// Package common provides shared utilities used across all features
package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hxuan190/stableswap-engine/internal/bindings"
	"github.com/hxuan190/stableswap-engine/internal/domain"
	"github.com/hxuan190/stableswap-engine/pkg/stableswap"
)

// HttpError represents an HTTP error with status code and message
type HttpError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s %s", e.StatusCode, e.Code, e.Message)
}

func messageOrDefault(msg string, defaultMsg string) string {
	if msg != "" {
		return msg
	}
	return defaultMsg
}

// HTTP Error constructors

func HTTPErrorBadRequest(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusBadRequest,
		Code:       "BAD_REQUEST",
		Message:    messageOrDefault(msg, "Bad request"),
	}
}

func HTTPErrorNotFound(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusNotFound,
		Code:       "NOT_FOUND",
		Message:    messageOrDefault(msg, "Not found"),
	}
}

func HTTPErrorInternalError(msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusInternalServerError,
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    messageOrDefault(msg, "Internal server error"),
	}
}

func HTTPErrorUnprocessable(code, msg string) *HttpError {
	return &HttpError{
		StatusCode: http.StatusUnprocessableEntity,
		Code:       code,
		Message:    messageOrDefault(msg, "Unprocessable entity"),
	}
}

var calculationCodes = []struct {
	kind   error
	status int
	code   string
}{
	{stableswap.ErrInvalidIndex, http.StatusBadRequest, "INVALID_INDEX"},
	{stableswap.ErrDegenerateInput, http.StatusBadRequest, "DEGENERATE_INPUT"},
	{stableswap.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "ARITHMETIC_OVERFLOW"},
	{stableswap.ErrNonConvergence, http.StatusUnprocessableEntity, "NON_CONVERGENCE"},
	{stableswap.ErrInsufficientLiquidity, http.StatusUnprocessableEntity, "INSUFFICIENT_LIQUIDITY"},
}

// HTTPErrorFromCalculation maps an engine or input-parsing failure onto a
// stable error code. Anything unrecognised becomes a 500.
func HTTPErrorFromCalculation(err error) *HttpError {
	var httpErr *HttpError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	if errors.Is(err, bindings.ErrMalformedInput) {
		return HTTPErrorBadRequest(err.Error())
	}
	if errors.Is(err, domain.ErrInvalidPool) {
		return &HttpError{StatusCode: http.StatusBadRequest, Code: "INVALID_POOL", Message: err.Error()}
	}
	kind := stableswap.Kind(err)
	for _, c := range calculationCodes {
		if kind == c.kind {
			return &HttpError{StatusCode: c.status, Code: c.code, Message: err.Error()}
		}
	}
	return HTTPErrorInternalError("")
}
