// README: Service types, rate schedules and fare quote shapes.
package pricing

import (
	"errors"
	"time"

	"velo/internal/modules/surge"
	"velo/internal/types"
)

var (
	ErrUnknownServiceType    = errors.New("pricing: unknown service type")
	ErrInvalidPassengerCount = errors.New("pricing: passenger count must be positive")
)

type ServiceType string

const (
	ServiceEconomy ServiceType = "economy"
	ServiceComfort ServiceType = "comfort"
	ServicePremium ServiceType = "premium"
	ServiceXL      ServiceType = "xl"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceEconomy, ServiceComfort, ServicePremium, ServiceXL:
		return true
	}
	return false
}

// Rate is the pricing schedule for one service type. Amounts are in the
// currency's smallest unit (cents); the multiplier scales the metered
// components, never the service fee.
type Rate struct {
	ServiceType ServiceType
	BaseCents   int64
	PerKmCents  int64
	PerMinCents int64
	Multiplier  float64
}

// DefaultRates is the compiled-in schedule, used when the rates table is
// unavailable or empty so the estimator can always quote.
func DefaultRates() map[ServiceType]Rate {
	return map[ServiceType]Rate{
		ServiceEconomy: {ServiceType: ServiceEconomy, BaseCents: 250, PerKmCents: 120, PerMinCents: 35, Multiplier: 1.0},
		ServiceComfort: {ServiceType: ServiceComfort, BaseCents: 250, PerKmCents: 120, PerMinCents: 35, Multiplier: 1.3},
		ServicePremium: {ServiceType: ServicePremium, BaseCents: 250, PerKmCents: 120, PerMinCents: 35, Multiplier: 1.6},
		ServiceXL:      {ServiceType: ServiceXL, BaseCents: 250, PerKmCents: 120, PerMinCents: 35, Multiplier: 1.8},
	}
}

// QuoteRequest is one fare estimate request. ScheduledAt zero means "now".
type QuoteRequest struct {
	Pickup      types.Point
	Dropoff     types.Point
	ServiceType ServiceType
	ScheduledAt time.Time
}

// FareBreakdown itemizes a quote. Each component is individually rounded and
// the components sum exactly to the pre-floor total.
type FareBreakdown struct {
	BasePriceCents     int64 `json:"base_price_cents"`
	DistancePriceCents int64 `json:"distance_price_cents"`
	TimePriceCents     int64 `json:"time_price_cents"`
	SurgeAmountCents   int64 `json:"surge_amount_cents"`
	ServiceFeeCents    int64 `json:"service_fee_cents"`
}

func (b FareBreakdown) Sum() int64 {
	return b.BasePriceCents + b.DistancePriceCents + b.TimePriceCents + b.SurgeAmountCents + b.ServiceFeeCents
}

// Quote is the full fare estimate answer.
type Quote struct {
	Price              types.Money       `json:"price"`
	Breakdown          FareBreakdown     `json:"breakdown"`
	SurgeMultiplier    float64           `json:"surge_multiplier"`
	DemandLevel        surge.DemandLevel `json:"demand_level"`
	AvailableProviders int               `json:"available_providers"`
	Stability          string            `json:"stability"`
	DistanceMeters     float64           `json:"distance_meters"`
	DurationMinutes    float64           `json:"duration_minutes"`
}
