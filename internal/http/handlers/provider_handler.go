// README: Provider presence handlers — the HTTP face of the event ingress.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velo/internal/modules/supply"
	"velo/internal/types"
)

type ProviderHandler struct {
	supply *supply.Service
}

func NewProviderHandler(svc *supply.Service) *ProviderHandler {
	return &ProviderHandler{supply: svc}
}

type locationReq struct {
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	Heading   *float64 `json:"heading,omitempty"`
	Available *bool    `json:"available,omitempty"`
	TsMs      int64    `json:"ts_ms"`
}

func (h *ProviderHandler) UpdateLocation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing provider id")
		return
	}
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.supply.ApplyLocation(c.Request.Context(), supply.LocationEvent{
		ProviderID: id,
		Lat:        req.Lat,
		Lng:        req.Lng,
		Heading:    req.Heading,
		Available:  req.Available,
		TsMs:       req.TsMs,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type statusReq struct {
	Online    bool  `json:"online"`
	Available bool  `json:"available"`
	TsMs      int64 `json:"ts_ms"`
}

func (h *ProviderHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing provider id")
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	err := h.supply.ApplyStatus(c.Request.Context(), supply.StatusEvent{
		ProviderID: id,
		Online:     req.Online,
		Available:  req.Available,
		TsMs:       req.TsMs,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProviderHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "missing provider id")
		return
	}
	h.supply.Remove(c.Request.Context(), types.ID(id))
	c.Status(http.StatusNoContent)
}

// Nearby lists live providers around a point, closest first. Dispatch-facing.
func (h *ProviderHandler) Nearby(c *gin.Context) {
	center, ok := pointFromQuery(c)
	if !ok {
		return
	}
	radiusM := 3000.0
	if v := c.Query("radius_m"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			writeError(c, http.StatusBadRequest, "radius_m must be a positive number")
			return
		}
		radiusM = parsed
	}

	providers, err := h.supply.QueryNearby(c.Request.Context(), center, radiusM, true, true)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	out := make([]gin.H, 0, len(providers))
	for _, p := range providers {
		out = append(out, gin.H{
			"provider_id": p.ProviderID,
			"lat":         p.Point.Lat,
			"lng":         p.Point.Lng,
			"distance_m":  p.DistanceM,
			"updated_at":  p.UpdatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"providers": out, "count": len(out)})
}
