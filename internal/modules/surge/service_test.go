package surge

import (
	"context"
	"errors"
	"testing"
	"time"

	"velo/internal/types"
)

type fixedSupply struct {
	n   int
	err error
}

func (f fixedSupply) CountNearby(ctx context.Context, center types.Point, radiusM float64, onlyOnline, onlyAvailable bool) (int, error) {
	return f.n, f.err
}

type fixedDemand struct {
	n   int
	err error
}

func (f fixedDemand) CountNearby(ctx context.Context, center types.Point, radiusM float64, window time.Duration) (int, error) {
	return f.n, f.err
}

func newTestService(supply, demand int) *Service {
	return NewService(ServiceDeps{
		Supply: fixedSupply{n: supply},
		Demand: fixedDemand{n: demand},
	}, DefaultConfig(), 5.0, 3000, 15*time.Minute)
}

var pickup = types.Point{Lat: 25.0340, Lng: 121.5645}

func TestQuoteAt_PopulatesCountsAndFactors(t *testing.T) {
	svc := newTestService(10, 15)
	q, err := svc.QuoteAt(context.Background(), pickup, offPeak)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Supply != 10 || q.Demand != 15 {
		t.Errorf("counts not reported: %+v", q)
	}
	if q.DemandLevel != DemandMedium {
		t.Errorf("expected medium demand, got %s", q.DemandLevel)
	}
	if q.Factors.DemandSupplyRatio != 1.5 {
		t.Errorf("ratio factor = %f, want 1.5", q.Factors.DemandSupplyRatio)
	}
	if q.EstimatedWaitMinutes <= 0 || q.EstimatedWaitMinutes > maxWaitMinutes {
		t.Errorf("wait estimate out of range: %d", q.EstimatedWaitMinutes)
	}
}

func TestQuoteAt_NoSupply(t *testing.T) {
	svc := newTestService(0, 7)
	q, err := svc.QuoteAt(context.Background(), pickup, offPeak)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Multiplier != DefaultConfig().NoSupplyMultiplier {
		t.Errorf("got %f, want no-supply multiplier", q.Multiplier)
	}
	if q.EstimatedWaitMinutes != maxWaitMinutes {
		t.Errorf("no supply should report the max wait, got %d", q.EstimatedWaitMinutes)
	}
}

func TestQuoteAt_RejectsInvalidPickup(t *testing.T) {
	svc := newTestService(5, 5)
	_, err := svc.QuoteAt(context.Background(), types.Point{Lat: 100, Lng: 0}, time.Time{})
	if !errors.Is(err, types.ErrInvalidCoordinate) {
		t.Errorf("expected coordinate rejection, got %v", err)
	}
}

func TestQuoteAt_SourceFailureDegradesToNeutral(t *testing.T) {
	boom := errors.New("registry down")

	svc := NewService(ServiceDeps{
		Supply: fixedSupply{err: boom},
		Demand: fixedDemand{n: 5},
	}, DefaultConfig(), 5.0, 3000, 15*time.Minute)

	q, err := svc.QuoteAt(context.Background(), pickup, offPeak)
	if err != nil {
		t.Fatalf("surge must not propagate source failures: %v", err)
	}
	if q.Multiplier != 1.0 {
		t.Errorf("expected neutral multiplier on failure, got %f", q.Multiplier)
	}

	svc = NewService(ServiceDeps{
		Supply: fixedSupply{n: 5},
		Demand: fixedDemand{err: boom},
	}, DefaultConfig(), 5.0, 3000, 15*time.Minute)

	q, err = svc.QuoteAt(context.Background(), pickup, offPeak)
	if err != nil || q.Multiplier != 1.0 {
		t.Errorf("expected neutral quote on demand failure, got %+v err=%v", q, err)
	}
}

func TestHealthMetrics_Recommendations(t *testing.T) {
	tests := []struct {
		name          string
		supply        int
		demand        int
		wantStability string
		wantRecCount  int
	}{
		{"healthy market", 20, 5, StabilityStable, 0},
		{"no providers", 0, 5, StabilityUnstable, 1},
		{"thin supply", 3, 1, StabilityStable, 1},
		{"contention", 10, 20, StabilityUnstable, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(tt.supply, tt.demand)
			h, err := svc.HealthMetrics(context.Background(), pickup)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if h.Stability != tt.wantStability {
				t.Errorf("stability = %s, want %s", h.Stability, tt.wantStability)
			}
			if len(h.Recommendations) < tt.wantRecCount {
				t.Errorf("recommendations = %v, want at least %d", h.Recommendations, tt.wantRecCount)
			}
			if h.Supply != tt.supply || h.Demand != tt.demand {
				t.Errorf("counts not reported: %+v", h)
			}
		})
	}
}

func TestEstimateWaitMinutes_MonotoneInSupply(t *testing.T) {
	prev := maxWaitMinutes + 1
	for _, supply := range []int{0, 1, 2, 5, 10, 50} {
		w := estimateWaitMinutes(supply, 5)
		if w > prev {
			t.Errorf("wait grew with more supply: supply=%d wait=%d prev=%d", supply, w, prev)
		}
		prev = w
	}
}
