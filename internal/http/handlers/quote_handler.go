// README: Fare quote and shared-ride split handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velo/internal/modules/pricing"
	"velo/internal/types"
)

type QuoteHandler struct {
	pricing *pricing.Service
}

func NewQuoteHandler(svc *pricing.Service) *QuoteHandler {
	return &QuoteHandler{pricing: svc}
}

type quoteReq struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DropoffLat  float64 `json:"dropoff_lat"`
	DropoffLng  float64 `json:"dropoff_lng"`
	ServiceType string  `json:"service_type"`
	ScheduledAt string  `json:"scheduled_at,omitempty"` // RFC3339, optional
}

func (h *QuoteHandler) Create(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	var at time.Time
	if req.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledAt)
		if err != nil {
			writeError(c, http.StatusBadRequest, "scheduled_at must be RFC3339")
			return
		}
		at = parsed
	}

	q, err := h.pricing.Estimate(c.Request.Context(), pricing.QuoteRequest{
		Pickup:      types.Point{Lat: req.PickupLat, Lng: req.PickupLng},
		Dropoff:     types.Point{Lat: req.DropoffLat, Lng: req.DropoffLng},
		ServiceType: pricing.ServiceType(req.ServiceType),
		ScheduledAt: at,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

type splitReq struct {
	TotalCents int64  `json:"total_cents"`
	Currency   string `json:"currency"`
	Passengers int    `json:"passengers"`
}

func (h *QuoteHandler) Split(c *gin.Context) {
	var req splitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	per, err := pricing.SplitSharedRide(types.Money{Amount: req.TotalCents, Currency: req.Currency}, req.Passengers)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"per_passenger_cents": per.Amount,
		"currency":            per.Currency,
		"passengers":          req.Passengers,
	})
}
