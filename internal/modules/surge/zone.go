// README: Zone-based surge variant for backoffice market analysis.
package surge

import (
	"context"
	"log"
	"time"

	"velo/internal/types"
)

// Zone is a configured market area. Zone surge uses the same factor model as
// the per-ride calculator but with the looser ceiling; it feeds dashboards
// and market analysis, never a live fare quote.
type Zone struct {
	ID      types.ID
	Name    string
	Center  types.Point
	RadiusM float64
}

// ComputeZone is the wide-bound variant of Compute. The floor stays shared;
// only the ceiling differs.
func ComputeZone(in Inputs, cfg Config, zoneMax float64) Result {
	res := Compute(in, cfg)
	if in.Supply <= 0 {
		return res
	}

	// Recover the unclamped product and re-clamp against the zone ceiling.
	raw := res.Factors.TimeOfDay * res.Factors.DayOfWeek * res.Factors.WaitTimePressure
	res.Multiplier = clamp(raw, cfg.MinMultiplier, zoneMax)
	return res
}

// RunZoneRefresher recomputes zone surge every interval and publishes the
// results for backoffice consumers until ctx is cancelled.
func (s *Service) RunZoneRefresher(ctx context.Context, interval time.Duration, zones []Zone) {
	if len(zones) == 0 || s.zones == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshZones(ctx, zones)
		}
	}
}

func (s *Service) refreshZones(ctx context.Context, zones []Zone) {
	now := time.Now()
	for _, z := range zones {
		supply, err := s.supply.CountNearby(ctx, z.Center, z.RadiusM, true, true)
		if err != nil {
			log.Printf("surge: zone %s supply lookup failed: %v", z.ID, err)
			continue
		}
		demand, err := s.demand.CountNearby(ctx, z.Center, z.RadiusM, s.window)
		if err != nil {
			log.Printf("surge: zone %s demand lookup failed: %v", z.ID, err)
			continue
		}
		res := ComputeZone(Inputs{Supply: supply, Demand: demand, At: now}, s.cfg, s.zoneMax)
		if err := s.zones.SaveZoneSurge(ctx, z.ID, res.Multiplier, now); err != nil {
			log.Printf("surge: zone %s publish failed: %v", z.ID, err)
		}
	}
}
