package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxuan190/stableswap-engine/internal/config"
	"github.com/hxuan190/stableswap-engine/internal/http/middlewares"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/internal/services/market"
)

const pegReserves = `[
	{"asset_id": 1, "amount": "1000000000000", "decimals": 12},
	{"asset_id": 0, "amount": "1000000000000", "decimals": 12}
]`

type envelope struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"-"`
	Raw     interface{}            `json:"data"`
	Code    string                 `json:"code"`
	Error   string                 `json:"error"`
}

func newTestRouter(t *testing.T, rl *middlewares.RateLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	calc := calculator.NewService(64)
	svc := NewHTTPService(&config.GeneralConfig{HTTPHost: "localhost", HTTPPort: "0"}, calc, market.NewService(calc, nil), rl)
	return svc.buildRouter()
}

func do(t *testing.T, r *gin.Engine, method, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	env.Data, _ = env.Raw.(map[string]interface{})
	return w.Code, env
}

func TestSwapRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/swap/out-given-in",
		`{"reserves":`+pegReserves+`,"asset_in":0,"asset_out":1,"amount":"1000000000","amplification":"1","fee":"0"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "999500248", env.Data["amount"])

	code, env = do(t, r, http.MethodPost, "/api/v1/swap/out-given-in",
		`{"reserves":`+pegReserves+`,"asset_in":0,"asset_out":1,"amount":1000000000,"amplification":1,"fee":"0.003"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "996501748", env.Data["amount"])

	code, env = do(t, r, http.MethodPost, "/api/v1/swap/in-given-out",
		`{"reserves":`+pegReserves+`,"asset_in":0,"asset_out":1,"amount":"999500248","amplification":"1"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "1000000000", env.Data["amount"])
}

func TestSwapErrors(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{"unknown asset", "/api/v1/swap/out-given-in",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":7,"amount":"1000","amplification":"1"}`,
			http.StatusBadRequest, "INVALID_INDEX"},
		{"drains reserve", "/api/v1/swap/in-given-out",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":1,"amount":"2000000000000","amplification":"1"}`,
			http.StatusUnprocessableEntity, "INSUFFICIENT_LIQUIDITY"},
		{"zero amplification", "/api/v1/swap/out-given-in",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":1,"amount":"1000","amplification":"0"}`,
			http.StatusBadRequest, "DEGENERATE_INPUT"},
		{"fee out of range", "/api/v1/swap/out-given-in",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":1,"amount":"1000","amplification":"1","fee":"1.5"}`,
			http.StatusBadRequest, "BAD_REQUEST"},
		{"amount too wide", "/api/v1/swap/out-given-in",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":1,"amount":"340282366920938463463374607431768211456","amplification":"1"}`,
			http.StatusBadRequest, "BAD_REQUEST"},
		{"missing amplification", "/api/v1/swap/out-given-in",
			`{"reserves":` + pegReserves + `,"asset_in":0,"asset_out":1,"amount":"1000"}`,
			http.StatusBadRequest, "BAD_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, r, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.status, code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Code)
		})
	}
}

func TestLiquidityRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPost, "/api/v1/liquidity/shares", `{
		"reserves": [
			{"asset_id": 0, "amount": "90000000000", "decimals": 12},
			{"asset_id": 1, "amount": "5000000000000000000000", "decimals": 12}
		],
		"assets": [{"asset_id": 1, "amount": "43000000000000000000"}],
		"amplification": "1000",
		"share_issuance": "64839594451719860"
	}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "371541351762585", env.Data["amount"])

	code, env = do(t, r, http.MethodPost, "/api/v1/liquidity/shares-for-amount",
		`{"reserves":`+pegReserves+`,"asset_id":0,"amount":"1000000000","amplification":"1","share_issuance":"2000000000000"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "999875062", env.Data["amount"])

	code, env = do(t, r, http.MethodPost, "/api/v1/liquidity/add-one-asset",
		`{"reserves":`+pegReserves+`,"asset_id":1,"shares":"1000000000","amplification":"1","share_issuance":"2000000000000"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "999874968", env.Data["amount"])

	code, env = do(t, r, http.MethodPost, "/api/v1/liquidity/add-one-asset",
		`{"reserves":`+pegReserves+`,"asset_id":1,"amplification":"1","share_issuance":"2000000000000"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Code)
}

func TestEngineRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodGet, "/api/v1/amplification?initial=100&final=200&initial_block=0&final_block=100&current_block=50", "")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "150", env.Data["amount"])

	code, _ = do(t, r, http.MethodGet, "/api/v1/amplification?initial=100&final=200", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = do(t, r, http.MethodPost, "/api/v1/invariant", `{"reserves":`+pegReserves+`,"amplification":"1"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.True(t, strings.HasPrefix(env.Data["invariant"].(string), "200000000000000000"))
}

func TestPoolRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	code, env := do(t, r, http.MethodPut, "/api/v1/pools/usd", `{
		"assets": [
			{"asset_id": 1, "reserve": "1000000000000", "decimals": 12},
			{"asset_id": 0, "reserve": "1000000000000", "decimals": 12}
		],
		"amplification": {"initial": "1", "final": "1"},
		"fee": "0.003"
	}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "usd", env.Data["id"])
	assert.Equal(t, "0.003", env.Data["fee"])

	code, env = do(t, r, http.MethodGet, "/api/v1/pools/usd", "")
	require.Equal(t, http.StatusOK, code)
	assets := env.Data["assets"].([]interface{})
	require.Len(t, assets, 2)
	assert.EqualValues(t, 0, assets[0].(map[string]interface{})["asset_id"])

	code, env = do(t, r, http.MethodPost, "/api/v1/pools/usd/quote", `{"asset_in":0,"asset_out":1,"amount":"1000000000"}`)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "996501748", env.Data["amount_out"])
	assert.Equal(t, "1000000000", env.Data["amount_in"])
	assert.Equal(t, "ExactIn", env.Data["swap_mode"])

	code, env = do(t, r, http.MethodPost, "/api/v1/pools/usd/quote", `{"asset_in":0,"asset_out":1,"amount":"1","swap_mode":"Sideways"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "BAD_REQUEST", env.Code)

	code, env = do(t, r, http.MethodGet, "/api/v1/pools/usd/invariant", "")
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "1", env.Data["amplification"])

	code, env = do(t, r, http.MethodGet, "/api/v1/pools/eur", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Code)

	code, env = do(t, r, http.MethodPut, "/api/v1/pools/bad", `{"assets":[{"asset_id":0,"reserve":"1","decimals":12}],"amplification":{"initial":"1","final":"1"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_POOL", env.Code)
}

func TestRateLimitedRouter(t *testing.T) {
	r := newTestRouter(t, middlewares.NewRateLimiter(1, 1))

	code, env := do(t, r, http.MethodGet, "/api/v1/pools", "")
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, env.Raw)
	code, env = do(t, r, http.MethodGet, "/api/v1/pools", "")
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "RATE_LIMITED", env.Code)
}
