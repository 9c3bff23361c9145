// README: Health metrics — advisory market stability snapshot.
package surge

import (
	"context"
	"fmt"
	"time"

	"velo/internal/telemetry"
	"velo/internal/types"
)

const (
	StabilityStable   = "STABLE"
	StabilityUnstable = "UNSTABLE"
)

// Health is an advisory snapshot; it never blocks or fails a quote.
type Health struct {
	Supply          int      `json:"supply"`
	Demand          int      `json:"demand"`
	AverageSurge    float64  `json:"average_surge"`
	Stability       string   `json:"stability"`
	Recommendations []string `json:"recommendations"`
}

// Thresholds for the qualitative recommendations. Fixed by design; tune in
// one place, not per call site.
const (
	lowSupplyThreshold    = 5
	contentionRatio       = 1.5
	sustainedSurgeCeiling = 1.3
)

// HealthMetrics recomputes surge for a representative point of the area and
// derives qualitative recommendations from fixed thresholds.
func (s *Service) HealthMetrics(ctx context.Context, area types.Point) (Health, error) {
	if err := area.Validate(); err != nil {
		return Health{}, err
	}

	supply, err := s.supply.CountNearby(ctx, area, s.radiusM, true, true)
	if err != nil {
		return Health{}, err
	}
	demand, err := s.demand.CountNearby(ctx, area, s.radiusM, s.window)
	if err != nil {
		return Health{}, err
	}

	res := Compute(Inputs{Supply: supply, Demand: demand, At: time.Now()}, s.cfg)

	h := Health{
		Supply:       supply,
		Demand:       demand,
		AverageSurge: res.Multiplier,
		Stability:    StabilityStable,
	}

	if supply == 0 {
		h.Stability = StabilityUnstable
		h.Recommendations = append(h.Recommendations, "no provider availability in area")
	} else if supply < lowSupplyThreshold {
		h.Recommendations = append(h.Recommendations, fmt.Sprintf("low provider availability (%d online)", supply))
	}
	if supply > 0 && float64(demand)/float64(supply) >= contentionRatio {
		h.Stability = StabilityUnstable
		h.Recommendations = append(h.Recommendations, "demand outpacing supply in area")
	}
	if res.Multiplier > sustainedSurgeCeiling {
		h.Recommendations = append(h.Recommendations, "sustained surge pricing in effect")
	}

	s.recorder.RecordHealth(telemetry.HealthRecord{
		Supply:       supply,
		Demand:       demand,
		AverageSurge: res.Multiplier,
		Stable:       h.Stability == StabilityStable,
		At:           time.Now(),
	})
	return h, nil
}
