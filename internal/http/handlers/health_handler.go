// README: Market health, forecast and AI summary handlers. Advisory surfaces.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velo/internal/ai"
	"velo/internal/modules/surge"
	"velo/internal/types"
)

type HealthHandler struct {
	surge      *surge.Service
	forecaster *surge.Forecaster
	insights   ai.InsightProvider

	// defaultArea answers area-less health queries with the main market.
	defaultArea types.Point
}

func NewHealthHandler(svc *surge.Service, forecaster *surge.Forecaster, insights ai.InsightProvider, defaultArea types.Point) *HealthHandler {
	return &HealthHandler{surge: svc, forecaster: forecaster, insights: insights, defaultArea: defaultArea}
}

// areaFromQuery reads optional lat/lng, falling back to the default market.
func (h *HealthHandler) areaFromQuery(c *gin.Context) (types.Point, bool) {
	if c.Query("lat") == "" && c.Query("lng") == "" {
		return h.defaultArea, true
	}
	return pointFromQuery(c)
}

func (h *HealthHandler) Metrics(c *gin.Context) {
	area, ok := h.areaFromQuery(c)
	if !ok {
		return
	}
	m, err := h.surge.HealthMetrics(c.Request.Context(), area)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, m)
}

func (h *HealthHandler) Forecast(c *gin.Context) {
	hours := 12
	if v := c.Query("hours"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "hours must be a positive integer")
			return
		}
		hours = parsed
	}
	writeJSON(c, http.StatusOK, gin.H{"forecast": h.forecaster.Forecast(time.Now(), hours)})
}

// MarketSummary feeds the current health snapshot and near-term forecast to
// the insight model. Slow and external; admin-only by route placement.
func (h *HealthHandler) MarketSummary(c *gin.Context) {
	if h.insights == nil {
		writeError(c, http.StatusServiceUnavailable, "insight provider not configured")
		return
	}
	area, ok := h.areaFromQuery(c)
	if !ok {
		return
	}

	m, err := h.surge.HealthMetrics(c.Request.Context(), area)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	lines := make([]string, 0, 6)
	for _, hf := range h.forecaster.Forecast(time.Now(), 6) {
		lines = append(lines, fmt.Sprintf("%s demand=%.1f surge=%.2f",
			hf.Hour.Format("15:04"), hf.ExpectedDemand, hf.RecommendedSurge))
	}

	summary, err := h.insights.GenerateMarketSummary(c.Request.Context(), ai.MarketSnapshot{
		Area:          fmt.Sprintf("%.4f,%.4f", area.Lat, area.Lng),
		Supply:        m.Supply,
		Demand:        m.Demand,
		AverageSurge:  m.AverageSurge,
		Stability:     m.Stability,
		ForecastLines: lines,
	})
	if err != nil {
		writeError(c, http.StatusBadGateway, "insight generation failed")
		return
	}
	writeJSON(c, http.StatusOK, summary)
}
