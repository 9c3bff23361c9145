package pricing

import (
	"errors"
	"testing"

	"velo/internal/types"
)

func TestSplitSharedRide_DiscountCurve(t *testing.T) {
	total := types.Money{Amount: 10000, Currency: "USD"}

	tests := []struct {
		passengers int
		want       int64
	}{
		{1, 10000}, // no discount below two passengers
		{2, 4500},  // 10% off, split two ways
		{3, 2667},  // 20% off, split three ways
		{4, 1750},  // 30% off, split four ways
		{7, 1750},  // capped at four passengers
	}
	for _, tt := range tests {
		got, err := SplitSharedRide(total, tt.passengers)
		if err != nil {
			t.Fatalf("passengers=%d: unexpected error: %v", tt.passengers, err)
		}
		if got.Amount != tt.want {
			t.Errorf("passengers=%d: got %d, want %d", tt.passengers, got.Amount, tt.want)
		}
		if got.Currency != "USD" {
			t.Errorf("passengers=%d: currency not preserved: %s", tt.passengers, got.Currency)
		}
	}
}

func TestSplitSharedRide_MonotoneAndBounded(t *testing.T) {
	total := types.Money{Amount: 10000, Currency: "USD"}

	prev := int64(1 << 60)
	for n := 1; n <= maxSharedPassengers; n++ {
		got, err := SplitSharedRide(total, n)
		if err != nil {
			t.Fatalf("passengers=%d: unexpected error: %v", n, err)
		}
		if got.Amount > prev {
			t.Errorf("per-passenger price rose at %d passengers: %d > %d", n, got.Amount, prev)
		}
		if got.Amount > total.Amount/int64(n)+1 {
			t.Errorf("passengers=%d: %d exceeds undiscounted share %d", n, got.Amount, total.Amount/int64(n))
		}
		if got.Amount*int64(n) > total.Amount {
			t.Errorf("passengers=%d: group pays %d, more than total %d", n, got.Amount*int64(n), total.Amount)
		}
		prev = got.Amount
	}
}

func TestSplitSharedRide_RejectsNonPositiveCount(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := SplitSharedRide(types.Money{Amount: 10000}, n); !errors.Is(err, ErrInvalidPassengerCount) {
			t.Errorf("passengers=%d: got %v, want ErrInvalidPassengerCount", n, err)
		}
	}
}
