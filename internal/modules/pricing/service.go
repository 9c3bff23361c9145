// README: Fare estimator — quote pipeline from coordinates to an itemized price.
package pricing

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"velo/internal/maps"
	"velo/internal/modules/surge"
	"velo/internal/types"
)

// SurgeSource is the seam to the surge calculator. Production wires the surge
// service; tests wire fixed quotes.
type SurgeSource interface {
	QuoteAt(ctx context.Context, pickup types.Point, at time.Time) (surge.Quote, error)
}

// Config is the estimator's immutable parameter set.
type Config struct {
	MinFareCents    int64
	ServiceFeeCents int64
	Currency        string
	RoutingTimeout  time.Duration
}

func DefaultServiceConfig() Config {
	return Config{
		MinFareCents:    500,
		ServiceFeeCents: 75,
		Currency:        "USD",
		RoutingTimeout:  3 * time.Second,
	}
}

// surgeCacheTTL keeps repeated quotes for the same pickup cell from hammering
// the demand backlog, and makes back-to-back identical requests price alike.
const surgeCacheTTL = 15 * time.Second

type cachedSurge struct {
	quote   surge.Quote
	expires time.Time
}

type Service struct {
	estimator maps.TravelEstimator
	surge     SurgeSource
	rates     map[ServiceType]Rate
	cfg       Config

	mu    sync.Mutex
	cache map[string]cachedSurge
}

// NewService builds the estimator. A nil rates map falls back to the
// compiled-in schedule.
func NewService(estimator maps.TravelEstimator, surgeSrc SurgeSource, rates map[ServiceType]Rate, cfg Config) *Service {
	if len(rates) == 0 {
		rates = DefaultRates()
	}
	if cfg.RoutingTimeout <= 0 {
		cfg.RoutingTimeout = 3 * time.Second
	}
	return &Service{
		estimator: estimator,
		surge:     surgeSrc,
		rates:     rates,
		cfg:       cfg,
		cache:     make(map[string]cachedSurge),
	}
}

// Estimate prices a trip. Validation failures and routing timeouts are
// returned to the caller; surge degradation is handled inside the surge
// service and never fails a quote.
func (s *Service) Estimate(ctx context.Context, req QuoteRequest) (Quote, error) {
	if err := req.Pickup.Validate(); err != nil {
		return Quote{}, err
	}
	if err := req.Dropoff.Validate(); err != nil {
		return Quote{}, err
	}
	if !req.ServiceType.Valid() {
		return Quote{}, fmt.Errorf("%w: %q", ErrUnknownServiceType, req.ServiceType)
	}
	rate, ok := s.rates[req.ServiceType]
	if !ok {
		// A partially populated rates table must not price a known type at
		// zero; the compiled-in schedule covers every valid type.
		rate = DefaultRates()[req.ServiceType]
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.RoutingTimeout)
	defer cancel()
	travel, err := s.estimator.EstimateTravel(rctx, req.Pickup, req.Dropoff)
	if err != nil {
		// maps.ErrTimeout passes through so the caller can retry; a price
		// without distance is meaningless.
		return Quote{}, err
	}

	at := req.ScheduledAt
	if at.IsZero() {
		at = time.Now()
	}
	sq := s.surgeQuote(ctx, req.Pickup, at)

	km := travel.DistanceMeters / 1000.0
	b := FareBreakdown{
		BasePriceCents:     roundCents(float64(rate.BaseCents) * rate.Multiplier),
		DistancePriceCents: roundCents(float64(rate.PerKmCents) * km * rate.Multiplier),
		TimePriceCents:     roundCents(float64(rate.PerMinCents) * travel.DurationMinutes * rate.Multiplier),
		ServiceFeeCents:    s.cfg.ServiceFeeCents,
	}
	subtotal := b.BasePriceCents + b.DistancePriceCents + b.TimePriceCents
	b.SurgeAmountCents = roundCents(float64(subtotal) * (sq.Multiplier - 1.0))

	total := b.Sum()
	if total < s.cfg.MinFareCents {
		total = s.cfg.MinFareCents
	}

	stability := surge.StabilityStable
	if !ValidateStability(total, s.cfg.MinFareCents, plausibleCeiling(subtotal, s.cfg.ServiceFeeCents)) {
		stability = surge.StabilityUnstable
	}

	return Quote{
		Price:              types.Money{Amount: total, Currency: s.cfg.Currency},
		Breakdown:          b,
		SurgeMultiplier:    sq.Multiplier,
		DemandLevel:        sq.DemandLevel,
		AvailableProviders: sq.Supply,
		Stability:          stability,
		DistanceMeters:     travel.DistanceMeters,
		DurationMinutes:    travel.DurationMinutes,
	}, nil
}

// surgeQuote answers from a short-TTL per-cell cache before asking the surge
// service. Lookup failures degrade to a neutral multiplier.
func (s *Service) surgeQuote(ctx context.Context, pickup types.Point, at time.Time) surge.Quote {
	// ~110 m cells bucketed by hour: one multiplier covers the cell, and a
	// scheduled rush-hour quote never reuses an off-peak multiplier.
	key := fmt.Sprintf("%.3f,%.3f@%d", pickup.Lat, pickup.Lng, at.UTC().Truncate(time.Hour).Unix())

	now := time.Now()
	s.mu.Lock()
	if c, ok := s.cache[key]; ok {
		if now.Before(c.expires) {
			s.mu.Unlock()
			return c.quote
		}
		delete(s.cache, key)
	}
	s.mu.Unlock()

	q, err := s.surge.QuoteAt(ctx, pickup, at)
	if err != nil {
		log.Printf("pricing: surge quote failed, using neutral: %v", err)
		return surge.Quote{Multiplier: 1.0, DemandLevel: surge.DemandNone}
	}

	s.mu.Lock()
	// Sweep on insert so dead entries never accumulate in a long-running
	// process; live entries are bounded by the TTL.
	for k, c := range s.cache {
		if !now.Before(c.expires) {
			delete(s.cache, k)
		}
	}
	s.cache[key] = cachedSurge{quote: q, expires: now.Add(surgeCacheTTL)}
	s.mu.Unlock()
	return q
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}
