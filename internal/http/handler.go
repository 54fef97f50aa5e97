package http

import (
	"context"
	"errors"
	gohttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	container "github.com/thehyperflames/dicontainer-go"

	"github.com/hxuan190/stableswap-engine/internal/config"
	"github.com/hxuan190/stableswap-engine/internal/http/httputil"
	"github.com/hxuan190/stableswap-engine/internal/http/middlewares"
	"github.com/hxuan190/stableswap-engine/internal/services/calculator"
	"github.com/hxuan190/stableswap-engine/internal/services/market"
)

const (
	API_VERSION  = "v1"
	HTTP_SERVICE = "http-service"
)

type HTTPService struct {
	container.BaseDIInstance

	calculator  *calculator.Service
	market      *market.Service
	rateLimiter *middlewares.RateLimiter
	server      *gohttp.Server
	conf        *config.GeneralConfig

	handlers []httputil.IHttpHandler
}

// NewHTTPService wires the router without the container.
func NewHTTPService(conf *config.GeneralConfig, calc *calculator.Service, m *market.Service, rl *middlewares.RateLimiter) *HTTPService {
	svc := &HTTPService{conf: conf, calculator: calc, market: m, rateLimiter: rl}
	svc.initHandlers()
	return svc
}

func (svc *HTTPService) ID() string {
	return HTTP_SERVICE
}

func (svc *HTTPService) Configure(c container.IContainer) error {
	svc.conf = c.GetConfig(config.GENERAL_CONFIG_KEY).(*config.GeneralConfig)
	if svc.conf == nil {
		return errors.New("invalid server config")
	}
	engineConf := c.GetConfig(config.ENGINE_CONFIG_KEY).(*config.EngineConfig)

	svc.calculator = c.Instance(calculator.CALCULATOR_SERVICE).(*calculator.Service)
	svc.market = c.Instance(market.MARKET_SERVICE).(*market.Service)
	svc.rateLimiter = middlewares.NewRateLimiter(engineConf.RateLimit, engineConf.RateBurst)
	svc.initHandlers()
	return nil
}

func (svc *HTTPService) initHandlers() {
	svc.handlers = []httputil.IHttpHandler{
		NewSwapHandler(svc.calculator),
		NewLiquidityHandler(svc.calculator),
		NewEngineHandler(svc.calculator),
		NewPoolHandler(svc.market),
	}
}

func (svc *HTTPService) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	r.Use(cors.New(corsConf))

	r.Use(middlewares.MetricsMiddleware())
	if svc.rateLimiter != nil {
		r.Use(svc.rateLimiter.RateLimitMiddleware())
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(gohttp.StatusOK, gin.H{"status": "ok", "pools": svc.market.PoolCount()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("api").Group(API_VERSION)
	for _, h := range svc.handlers {
		h.SetRoutes(v1.Group(h.Root()))
	}
	return r
}

func (svc *HTTPService) Start() error {
	svc.server = &gohttp.Server{
		Addr:              svc.conf.HTTPHost + ":" + svc.conf.HTTPPort,
		Handler:           svc.buildRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("host", svc.conf.HTTPHost).Str("port", svc.conf.HTTPPort).Msg("http server started")

	if err := svc.server.ListenAndServe(); err != nil && err != gohttp.ErrServerClosed {
		return err
	}
	return nil
}

func (svc *HTTPService) Stop() error {
	if svc.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := svc.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to stop http server")
		return err
	}
	log.Info().Msg("http server stopped gracefully")
	return nil
}
