// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"velo/internal/ai"
	"velo/internal/http/handlers"
	"velo/internal/http/middleware"
	"velo/internal/modules/pricing"
	"velo/internal/modules/supply"
	"velo/internal/modules/surge"
	"velo/internal/types"
)

type RouterDeps struct {
	Pricing    *pricing.Service
	Surge      *surge.Service
	Supply     *supply.Service
	Zones      *surge.ZoneStore
	Forecaster *surge.Forecaster
	Insights   ai.InsightProvider

	// DefaultArea is the market used when health queries omit coordinates.
	DefaultArea types.Point
}

func NewRouter(deps RouterDeps) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(middleware.Logging(), middleware.Recovery())

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing)
	r.POST("/api/quotes", quoteHandler.Create)
	r.POST("/api/shared-rides/split", quoteHandler.Split)

	surgeHandler := handlers.NewSurgeHandler(deps.Surge, deps.Zones)
	r.GET("/api/surge", surgeHandler.Get)

	providerHandler := handlers.NewProviderHandler(deps.Supply)
	r.PUT("/api/providers/:id/location", providerHandler.UpdateLocation)
	r.PUT("/api/providers/:id/status", providerHandler.UpdateStatus)
	r.DELETE("/api/providers/:id", providerHandler.Remove)
	r.GET("/api/providers/nearby", providerHandler.Nearby)

	healthHandler := handlers.NewHealthHandler(deps.Surge, deps.Forecaster, deps.Insights, deps.DefaultArea)
	r.GET("/api/health/metrics", healthHandler.Metrics)
	r.GET("/api/admin/forecast", healthHandler.Forecast)
	r.GET("/api/admin/market-summary", healthHandler.MarketSummary)
	r.GET("/api/admin/zones", surgeHandler.Zones)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return r
}
