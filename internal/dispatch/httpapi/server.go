// Package httpapi is the HTTP half of the Dispatch Layer (spec.md §4.7):
// a gin router under /api/v1 that authenticates, validates framing, and
// forwards every request to the same Data/Trading Service methods the
// binary-RPC surface calls. No business logic lives here.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/ndrandal/quant-gateway/internal/adapter"
	"github.com/ndrandal/quant-gateway/internal/audit"
	"github.com/ndrandal/quant-gateway/internal/dataservice"
	"github.com/ndrandal/quant-gateway/internal/metrics"
	"github.com/ndrandal/quant-gateway/internal/streamendpoint"
	"github.com/ndrandal/quant-gateway/internal/subscription"
	"github.com/ndrandal/quant-gateway/internal/tradingservice"
)

// Deps bundles everything a route handler needs. Handlers never reach past
// this struct into config or lifecycle state.
type Deps struct {
	Data     *dataservice.Service
	Trading  *tradingservice.Service
	Adapter  adapter.Adapter
	Subs     *subscription.Manager
	Audit    *audit.Store // nil when audit logging is disabled
	Log      *zap.SugaredLogger
	StartAt  time.Time
}

// NewRouter builds the full HTTP surface: CORS, auth, health, data,
// trading, the streaming socket upgrade, and a /metrics scrape endpoint.
func NewRouter(deps Deps, tokens []string, allowedOrigins, allowedMethods []string) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(deps.Log))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	health := r.Group("/health")
	{
		health.GET("/", handleHealth(deps))
		health.GET("/ready", handleHealth(deps))
		health.GET("/live", handleHealth(deps))
	}

	r.GET("/ws/quote/:subscription_id", streamendpoint.Handler(deps.Subs, deps.Log))

	api := r.Group("/api/v1")
	api.Use(authMiddleware(tokens, deps.Audit, deps.Log))
	{
		data := api.Group("/data")
		data.POST("/market", handleMarketData(deps))
		data.POST("/financial", handleFinancial(deps))
		data.GET("/sectors", handleSectorList(deps))
		data.POST("/sector", handleSector(deps))
		data.POST("/sector/stock", handleAddStockToSector(deps))
		data.DELETE("/sector/stock", handleRemoveStockFromSector(deps))
		data.POST("/index-weight", handleIndexWeight(deps))
		data.GET("/trading-calendar/:year", handleTradingCalendar(deps))
		data.GET("/instrument/:code", handleInstrumentInfo(deps))
		data.POST("/subscription", handleSubscribe(deps))
		data.DELETE("/subscription/:id", handleUnsubscribe(deps))
		data.GET("/subscription/:id", handleDescribeSubscription(deps))
		data.GET("/subscriptions", handleListSubscriptions(deps))

		trading := api.Group("/trading")
		trading.POST("/connect", handleConnect(deps))
		trading.POST("/disconnect/:sid", handleDisconnect(deps))
		trading.GET("/account/:sid", handleAccountInfo(deps))
		trading.GET("/positions/:sid", handlePositions(deps))
		trading.GET("/asset/:sid", handleAsset(deps))
		trading.GET("/risk/:sid", handleRisk(deps))
		trading.GET("/orders/:sid", handleOrders(deps))
		trading.GET("/trades/:sid", handleTrades(deps))
		trading.POST("/order/:sid", handleSubmitOrder(deps))
		trading.POST("/cancel/:sid", handleCancelOrder(deps))
	}

	corsMW := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: allowedMethods,
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return corsMW.Handler(r)
}

func requestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		log.Debugw("http request",
			"method", c.Request.Method, "path", c.FullPath(),
			"status", status, "duration", time.Since(start))
		metrics.HTTPRequests.WithLabelValues(c.FullPath(), statusClass(status)).Inc()
	}
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
