package surge

import (
	"testing"
	"time"
)

func TestForecast_HorizonLength(t *testing.T) {
	f := NewForecaster(DefaultConfig())

	if got := f.Forecast(offPeak, 0); got != nil {
		t.Errorf("zero hours must yield nil, got %d entries", len(got))
	}
	if got := f.Forecast(offPeak, -3); got != nil {
		t.Errorf("negative hours must yield nil, got %d entries", len(got))
	}
	if got := f.Forecast(offPeak, 6); len(got) != 6 {
		t.Errorf("got %d entries, want 6", len(got))
	}
	if got := f.Forecast(offPeak, 500); len(got) != maxForecastHours {
		t.Errorf("horizon not clamped: got %d entries, want %d", len(got), maxForecastHours)
	}
}

func TestForecast_HoursAreConsecutive(t *testing.T) {
	f := NewForecaster(DefaultConfig())
	out := f.Forecast(offPeak, 12)
	for i := 1; i < len(out); i++ {
		if out[i].Hour.Sub(out[i-1].Hour) != time.Hour {
			t.Fatalf("entries %d and %d are not one hour apart: %v %v",
				i-1, i, out[i-1].Hour, out[i].Hour)
		}
	}
}

func TestForecast_ValuesWithinBounds(t *testing.T) {
	cfg := DefaultConfig()
	f := NewForecaster(cfg)
	for _, from := range []time.Time{offPeak, rushHour, lateNight, weekend} {
		for i, hf := range f.Forecast(from, maxForecastHours) {
			if hf.ExpectedDemand < 0 {
				t.Errorf("hour %d: negative demand %f", i, hf.ExpectedDemand)
			}
			if hf.RecommendedSurge < cfg.MinMultiplier || hf.RecommendedSurge > cfg.MaxMultiplier {
				t.Errorf("hour %d: recommended surge %f out of [%f, %f]",
					i, hf.RecommendedSurge, cfg.MinMultiplier, cfg.MaxMultiplier)
			}
			if hf.Confidence < 0.3 || hf.Confidence > 0.9 {
				t.Errorf("hour %d: confidence %f out of [0.3, 0.9]", i, hf.Confidence)
			}
		}
	}
}

func TestForecast_ConfidenceDecays(t *testing.T) {
	f := NewForecaster(DefaultConfig())
	out := f.Forecast(offPeak, maxForecastHours)
	for i := 1; i < len(out); i++ {
		if out[i].Confidence > out[i-1].Confidence {
			t.Fatalf("confidence rose with distance at hour %d: %f > %f",
				i, out[i].Confidence, out[i-1].Confidence)
		}
	}
	if out[0].Confidence <= out[len(out)-1].Confidence {
		t.Errorf("confidence never decayed over the horizon")
	}
}

func TestForecast_PeakHoursCarryMoreDemand(t *testing.T) {
	f := NewForecaster(DefaultConfig())
	// Forecast from midnight so index == hour of day.
	midnight := time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC)
	out := f.Forecast(midnight, 24)

	if out[8].ExpectedDemand <= out[3].ExpectedDemand {
		t.Errorf("morning peak (%f) should exceed overnight (%f)",
			out[8].ExpectedDemand, out[3].ExpectedDemand)
	}
	if out[18].ExpectedDemand <= out[14].ExpectedDemand {
		t.Errorf("evening peak (%f) should exceed mid-afternoon (%f)",
			out[18].ExpectedDemand, out[14].ExpectedDemand)
	}
}
