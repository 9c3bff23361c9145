// README: Surge service — live multiplier quotes from supply/demand snapshots.
package surge

import (
	"context"
	"log"
	"math"
	"time"

	"velo/internal/telemetry"
	"velo/internal/types"
)

// SupplySource and DemandSource are the strategy seams between the pure
// calculator and the live registries. Production wires the supply and demand
// services; tests wire fixed counts.
type SupplySource interface {
	CountNearby(ctx context.Context, center types.Point, radiusM float64, onlyOnline, onlyAvailable bool) (int, error)
}

type DemandSource interface {
	CountNearby(ctx context.Context, center types.Point, radiusM float64, window time.Duration) (int, error)
}

// Quote is the full answer to "what is surge here, right now".
type Quote struct {
	Multiplier           float64
	DemandLevel          DemandLevel
	Supply               int
	Demand               int
	Factors              Factors
	EstimatedWaitMinutes int
}

type Service struct {
	supply   SupplySource
	demand   DemandSource
	zones    *ZoneStore
	recorder telemetry.Recorder

	cfg     Config
	zoneMax float64
	radiusM float64
	window  time.Duration
}

type ServiceDeps struct {
	Supply   SupplySource
	Demand   DemandSource
	Zones    *ZoneStore
	Recorder telemetry.Recorder
}

func NewService(deps ServiceDeps, cfg Config, zoneMax, radiusM float64, window time.Duration) *Service {
	rec := deps.Recorder
	if rec == nil {
		rec = telemetry.Nop{}
	}
	return &Service{
		supply:   deps.Supply,
		demand:   deps.Demand,
		zones:    deps.Zones,
		recorder: rec,
		cfg:      cfg,
		zoneMax:  zoneMax,
		radiusM:  radiusM,
		window:   window,
	}
}

// QuoteAt computes the surge multiplier for the pickup area. Supply/demand
// lookup failures degrade to a neutral multiplier — pricing never hard-fails
// a quote over surge — while invalid coordinates are rejected up front.
func (s *Service) QuoteAt(ctx context.Context, pickup types.Point, at time.Time) (Quote, error) {
	if err := pickup.Validate(); err != nil {
		return Quote{}, err
	}
	if at.IsZero() {
		at = time.Now()
	}

	supply, err := s.supply.CountNearby(ctx, pickup, s.radiusM, true, true)
	if err != nil {
		log.Printf("surge: supply lookup failed, quoting neutral: %v", err)
		return neutralQuote(), nil
	}
	demand, err := s.demand.CountNearby(ctx, pickup, s.radiusM, s.window)
	if err != nil {
		log.Printf("surge: demand lookup failed, quoting neutral: %v", err)
		return neutralQuote(), nil
	}

	res := Compute(Inputs{Supply: supply, Demand: demand, At: at}, s.cfg)
	q := Quote{
		Multiplier:           res.Multiplier,
		DemandLevel:          res.DemandLevel,
		Supply:               supply,
		Demand:               demand,
		Factors:              res.Factors,
		EstimatedWaitMinutes: estimateWaitMinutes(supply, demand),
	}

	s.recorder.RecordSurge(telemetry.SurgeRecord{
		Lat:        pickup.Lat,
		Lng:        pickup.Lng,
		Multiplier: q.Multiplier,
		Supply:     supply,
		Demand:     demand,
		At:         at,
	})
	return q, nil
}

func neutralQuote() Quote {
	res := neutralResult()
	return Quote{
		Multiplier:           res.Multiplier,
		DemandLevel:          res.DemandLevel,
		Factors:              res.Factors,
		EstimatedWaitMinutes: defaultWaitMinutes,
	}
}

const (
	defaultWaitMinutes = 5
	maxWaitMinutes     = 20
)

// estimateWaitMinutes is a density heuristic, not a routing answer: a handful
// of nearby available providers means minutes, contention stretches it.
func estimateWaitMinutes(supply, demand int) int {
	if supply <= 0 {
		return maxWaitMinutes
	}
	wait := 2.0 + 6.0/float64(supply)
	if demand > 0 {
		wait += 2.0 * float64(demand) / float64(supply)
	}
	w := int(math.Round(wait))
	if w > maxWaitMinutes {
		return maxWaitMinutes
	}
	return w
}
