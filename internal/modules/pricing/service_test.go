package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"velo/internal/maps"
	"velo/internal/modules/surge"
	"velo/internal/types"
)

type fixedSurge struct {
	q     surge.Quote
	err   error
	calls int
}

func (f *fixedSurge) QuoteAt(ctx context.Context, pickup types.Point, at time.Time) (surge.Quote, error) {
	f.calls++
	return f.q, f.err
}

var (
	pickupA  = types.Point{Lat: 25.0340, Lng: 121.5645}
	dropoffA = types.Point{Lat: 25.0478, Lng: 121.5170}
)

// fixedTrip yields exactly 5 km and, at 20 km/h, 15 minutes.
func fixedTrip() maps.StaticEstimator {
	return maps.StaticEstimator{
		AvgSpeedKmH: 20,
		Distance:    func(a, b types.Point) float64 { return 5000 },
	}
}

func neutralSurge() *fixedSurge {
	return &fixedSurge{q: surge.Quote{Multiplier: 1.0, DemandLevel: surge.DemandNone, Supply: 8, Demand: 1}}
}

func TestEstimate_EconomyNeutralSurge(t *testing.T) {
	svc := NewService(fixedTrip(), neutralSurge(), nil, DefaultServiceConfig())

	q, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// base 250 + 5 km * 120 + 15 min * 35 + 0 surge + 75 fee.
	const want = 250 + 600 + 525 + 0 + 75
	if q.Price.Amount != want {
		t.Errorf("price = %d, want %d", q.Price.Amount, want)
	}
	if q.Price.Currency != "USD" {
		t.Errorf("currency = %s, want USD", q.Price.Currency)
	}
	if q.SurgeMultiplier != 1.0 {
		t.Errorf("surge = %f, want 1.0", q.SurgeMultiplier)
	}
	if q.AvailableProviders != 8 {
		t.Errorf("available providers = %d, want 8", q.AvailableProviders)
	}
	if q.Stability != surge.StabilityStable {
		t.Errorf("stability = %s, want stable", q.Stability)
	}
}

func TestEstimate_ServiceTypeMultipliers(t *testing.T) {
	tests := []struct {
		st   ServiceType
		want int64
	}{
		// Each metered component is scaled and rounded individually, then the
		// flat fee is added.
		{ServiceEconomy, 250 + 600 + 525 + 75},
		{ServiceComfort, 325 + 780 + 683 + 75},
		{ServicePremium, 400 + 960 + 840 + 75},
		{ServiceXL, 450 + 1080 + 945 + 75},
	}
	for _, tt := range tests {
		t.Run(string(tt.st), func(t *testing.T) {
			svc := NewService(fixedTrip(), neutralSurge(), nil, DefaultServiceConfig())
			q, err := svc.Estimate(context.Background(), QuoteRequest{
				Pickup: pickupA, Dropoff: dropoffA, ServiceType: tt.st,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Price.Amount != tt.want {
				t.Errorf("price = %d, want %d", q.Price.Amount, tt.want)
			}
		})
	}
}

func TestEstimate_NoSupplySurgeReflectedExactly(t *testing.T) {
	src := &fixedSurge{q: surge.Quote{Multiplier: 1.1, DemandLevel: surge.DemandHigh, Supply: 0, Demand: 12}}
	svc := NewService(fixedTrip(), src, nil, DefaultServiceConfig())

	q, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Subtotal 1375, surge amount round(1375 * 0.1) = 138.
	if q.Breakdown.SurgeAmountCents != 138 {
		t.Errorf("surge amount = %d, want 138", q.Breakdown.SurgeAmountCents)
	}
	if q.Price.Amount != 1375+138+75 {
		t.Errorf("price = %d, want %d", q.Price.Amount, 1375+138+75)
	}
	if q.AvailableProviders != 0 {
		t.Errorf("available providers = %d, want 0", q.AvailableProviders)
	}
}

func TestEstimate_BreakdownReconciles(t *testing.T) {
	for _, mult := range []float64{1.0, 1.1, 1.25, 1.5} {
		src := &fixedSurge{q: surge.Quote{Multiplier: mult}}
		svc := NewService(fixedTrip(), src, nil, DefaultServiceConfig())
		q, err := svc.Estimate(context.Background(), QuoteRequest{
			Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceComfort,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Price.Amount >= DefaultServiceConfig().MinFareCents && q.Breakdown.Sum() != q.Price.Amount {
			t.Errorf("surge %f: breakdown sums to %d, price is %d", mult, q.Breakdown.Sum(), q.Price.Amount)
		}
	}
}

func TestEstimate_MinimumFareFloor(t *testing.T) {
	short := maps.StaticEstimator{
		AvgSpeedKmH: 20,
		Distance:    func(a, b types.Point) float64 { return 500 },
	}
	svc := NewService(short, neutralSurge(), nil, DefaultServiceConfig())

	q, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price.Amount != DefaultServiceConfig().MinFareCents {
		t.Errorf("price = %d, want floor %d", q.Price.Amount, DefaultServiceConfig().MinFareCents)
	}
}

func TestEstimate_ValidationErrors(t *testing.T) {
	svc := NewService(fixedTrip(), neutralSurge(), nil, DefaultServiceConfig())

	_, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: types.Point{Lat: 95, Lng: 0}, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Errorf("bad pickup: got %v, want coordinate rejection", err)
	}

	_, err = svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: types.Point{Lat: 0, Lng: 200}, ServiceType: ServiceEconomy,
	})
	if !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Errorf("bad dropoff: got %v, want coordinate rejection", err)
	}

	_, err = svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: "helicopter",
	})
	if !errors.Is(err, ErrUnknownServiceType) {
		t.Errorf("bad service type: got %v, want ErrUnknownServiceType", err)
	}
}

func TestEstimate_RoutingTimeoutIsRetryable(t *testing.T) {
	slow := maps.StaticEstimator{
		AvgSpeedKmH: 20,
		Distance:    func(a, b types.Point) float64 { return 5000 },
		Latency:     200 * time.Millisecond,
	}
	cfg := DefaultServiceConfig()
	cfg.RoutingTimeout = 10 * time.Millisecond
	svc := NewService(slow, neutralSurge(), nil, cfg)

	_, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if !errors.Is(err, maps.ErrTimeout) {
		t.Errorf("got %v, want maps.ErrTimeout", err)
	}
}

func TestEstimate_IdempotentAndCachesSurge(t *testing.T) {
	src := neutralSurge()
	svc := NewService(fixedTrip(), src, nil, DefaultServiceConfig())
	req := QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
		ScheduledAt: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC),
	}

	first, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.Estimate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Price != second.Price {
		t.Errorf("identical inputs priced differently: %v then %v", first.Price, second.Price)
	}
	if src.calls != 1 {
		t.Errorf("surge source called %d times, want 1 (cached)", src.calls)
	}
}

func TestEstimate_SurgeFailureDegradesToNeutral(t *testing.T) {
	src := &fixedSurge{err: errors.New("surge down")}
	svc := NewService(fixedTrip(), src, nil, DefaultServiceConfig())

	q, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if err != nil {
		t.Fatalf("surge failure must not fail the quote: %v", err)
	}
	if q.SurgeMultiplier != 1.0 || q.Breakdown.SurgeAmountCents != 0 {
		t.Errorf("expected neutral surge, got mult=%f amount=%d", q.SurgeMultiplier, q.Breakdown.SurgeAmountCents)
	}
}

// hourSurge answers 1.25 during the morning rush window, 1.0 otherwise,
// keyed on the requested time rather than a fixed value.
type hourSurge struct {
	calls int
}

func (h *hourSurge) QuoteAt(_ context.Context, _ types.Point, at time.Time) (surge.Quote, error) {
	h.calls++
	m := 1.0
	if hr := at.Hour(); hr >= 7 && hr < 9 {
		m = 1.25
	}
	return surge.Quote{Multiplier: m}, nil
}

func TestEstimate_ScheduledTimeNotServedFromOffPeakCache(t *testing.T) {
	src := &hourSurge{}
	svc := NewService(fixedTrip(), src, nil, DefaultServiceConfig())

	base := QuoteRequest{Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy}
	offPeak := base
	offPeak.ScheduledAt = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	rush := base
	rush.ScheduledAt = time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	q, err := svc.Estimate(context.Background(), offPeak)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SurgeMultiplier != 1.0 {
		t.Fatalf("off-peak multiplier = %f, want 1.0", q.SurgeMultiplier)
	}

	// A scheduled rush-hour quote right behind it must not reuse the
	// off-peak multiplier.
	q, err = svc.Estimate(context.Background(), rush)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.SurgeMultiplier != 1.25 {
		t.Errorf("rush-hour multiplier = %f, want 1.25", q.SurgeMultiplier)
	}
	if src.calls != 2 {
		t.Errorf("surge source called %d times, want 2 (distinct time buckets)", src.calls)
	}

	// Same scheduled hour still hits the cache.
	if _, err := svc.Estimate(context.Background(), rush); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls != 2 {
		t.Errorf("surge source called %d times after repeat, want 2 (cached)", src.calls)
	}
}

func TestEstimate_ExpiredSurgeCacheEntriesEvicted(t *testing.T) {
	svc := NewService(fixedTrip(), neutralSurge(), nil, DefaultServiceConfig())

	svc.mu.Lock()
	for i := 0; i < 50; i++ {
		svc.cache[fmt.Sprintf("dead-%d", i)] = cachedSurge{expires: time.Now().Add(-time.Minute)}
	}
	svc.mu.Unlock()

	_, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceEconomy,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.mu.Lock()
	n := len(svc.cache)
	svc.mu.Unlock()
	if n != 1 {
		t.Errorf("cache holds %d entries, want 1 (expired entries swept on insert)", n)
	}
}

func TestEstimate_PartialRatesFallBackToDefaults(t *testing.T) {
	// Only economy loaded: a comfort quote must use the compiled-in comfort
	// schedule, not a zero rate floored to the minimum fare.
	partial := map[ServiceType]Rate{ServiceEconomy: DefaultRates()[ServiceEconomy]}
	svc := NewService(fixedTrip(), neutralSurge(), partial, DefaultServiceConfig())

	q, err := svc.Estimate(context.Background(), QuoteRequest{
		Pickup: pickupA, Dropoff: dropoffA, ServiceType: ServiceComfort,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	const want = 325 + 780 + 683 + 75
	if q.Price.Amount != want {
		t.Errorf("price = %d, want %d", q.Price.Amount, want)
	}
}

func TestValidateStability(t *testing.T) {
	if !ValidateStability(1450, 500, 2000) {
		t.Errorf("in-range price flagged unstable")
	}
	if ValidateStability(300, 500, 2000) {
		t.Errorf("below-floor price flagged stable")
	}
	if ValidateStability(9000, 500, 2000) {
		t.Errorf("above-ceiling price flagged stable")
	}
}
