// README: Surge quote and zone surge handlers.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"velo/internal/modules/surge"
	"velo/internal/types"
)

type SurgeHandler struct {
	surge *surge.Service
	zones *surge.ZoneStore
}

func NewSurgeHandler(svc *surge.Service, zones *surge.ZoneStore) *SurgeHandler {
	return &SurgeHandler{surge: svc, zones: zones}
}

func (h *SurgeHandler) Get(c *gin.Context) {
	pickup, ok := pointFromQuery(c)
	if !ok {
		return
	}

	var at time.Time
	if v := c.Query("at"); v != "" {
		parsed, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(c, http.StatusBadRequest, "at must be RFC3339")
			return
		}
		at = parsed
	}

	q, err := h.surge.QuoteAt(c.Request.Context(), pickup, at)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"multiplier":             q.Multiplier,
		"demand_level":           q.DemandLevel,
		"supply":                 q.Supply,
		"demand":                 q.Demand,
		"factors":                q.Factors,
		"estimated_wait_minutes": q.EstimatedWaitMinutes,
	})
}

// Zones reports the last published zone multipliers. Backoffice surface; the
// wider-bounded zone model never feeds live quotes.
func (h *SurgeHandler) Zones(c *gin.Context) {
	if h.zones == nil {
		writeError(c, http.StatusServiceUnavailable, "zone surge store not configured")
		return
	}
	zones, err := h.zones.ReadAll(c.Request.Context())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"zones": zones})
}

// pointFromQuery parses lat/lng query params, writing a 400 on failure.
func pointFromQuery(c *gin.Context) (types.Point, bool) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lng, err2 := strconv.ParseFloat(c.Query("lng"), 64)
	if err1 != nil || err2 != nil {
		writeError(c, http.StatusBadRequest, "lat and lng query params are required")
		return types.Point{}, false
	}
	return types.Point{Lat: lat, Lng: lng}, true
}
