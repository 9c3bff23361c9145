// README: Pure surge multiplier computation.
package surge

import (
	"log"
	"math"
	"time"
)

// Compute derives a bounded multiplier from a supply/demand snapshot. Pure:
// no I/O, no shared state. Any internal fault degrades to a neutral 1.0
// rather than propagating — a best-effort price beats no price.
func Compute(in Inputs, cfg Config) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("surge: computation recovered: %v", r)
			res = neutralResult()
		}
	}()

	// With nobody to serve the request, never amplify the price unboundedly;
	// a fixed conservative multiplier applies regardless of demand or time.
	if in.Supply <= 0 {
		level := DemandNone
		if in.Demand > 0 {
			level = DemandHigh
		}
		return Result{
			Multiplier:  cfg.NoSupplyMultiplier,
			DemandLevel: level,
			Factors: Factors{
				TimeOfDay:        1,
				DayOfWeek:        1,
				WeatherImpact:    1,
				EventImpact:      1,
				HistoricalTrend:  1,
				WaitTimePressure: cfg.NoSupplyMultiplier,
			},
		}
	}

	timeFactor, weekendFactor := 1.0, 1.0
	if in.Supply >= cfg.MinProvidersForTimeFactor {
		timeFactor, weekendFactor = primaryTimeFactor(in.At, cfg)
	}

	ratio := float64(in.Demand) / float64(in.Supply)
	demandFactor := 1.0
	if in.Demand >= cfg.MinDemandFloor {
		demandFactor = demandFactorFor(ratio, cfg)
	}

	m := timeFactor * weekendFactor * demandFactor
	if math.IsNaN(m) || math.IsInf(m, 0) {
		log.Printf("surge: non-finite multiplier from supply=%d demand=%d", in.Supply, in.Demand)
		return neutralResult()
	}
	m = clamp(m, cfg.MinMultiplier, cfg.MaxMultiplier)

	return Result{
		Multiplier:  m,
		DemandLevel: demandLevelFor(ratio, cfg),
		Factors: Factors{
			DemandSupplyRatio: ratio,
			TimeOfDay:         timeFactor,
			DayOfWeek:         weekendFactor,
			WeatherImpact:     1,
			EventImpact:       1,
			HistoricalTrend:   1,
			WaitTimePressure:  demandFactor,
		},
	}
}

// primaryTimeFactor picks at most one time-based contribution: rush hour,
// else late night, else (weekends only) a smaller weekend factor. Returned as
// (timeOfDay, dayOfWeek) so the factor breakdown stays attributable; at most
// one of the two differs from 1.
func primaryTimeFactor(at time.Time, cfg Config) (timeOfDay, dayOfWeek float64) {
	h := at.Hour()
	switch {
	case (h >= 7 && h < 9) || (h >= 17 && h < 19):
		return cfg.RushHourFactor, 1
	case h >= 23 || h < 5:
		return cfg.LateNightFactor, 1
	}
	if wd := at.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return 1, cfg.WeekendFactor
	}
	return 1, 1
}

func demandFactorFor(ratio float64, cfg Config) float64 {
	switch {
	case ratio >= cfg.HighRatio:
		return cfg.HighFactor
	case ratio >= cfg.MediumRatio:
		return cfg.MediumFactor
	case ratio >= cfg.LowRatio:
		return cfg.LowFactor
	default:
		return 1.0
	}
}

func demandLevelFor(ratio float64, cfg Config) DemandLevel {
	switch {
	case ratio >= cfg.HighRatio:
		return DemandHigh
	case ratio >= cfg.MediumRatio:
		return DemandMedium
	case ratio >= cfg.LowRatio:
		return DemandLow
	default:
		return DemandNone
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func neutralResult() Result {
	return Result{
		Multiplier:  1.0,
		DemandLevel: DemandNone,
		Factors: Factors{
			TimeOfDay:        1,
			DayOfWeek:        1,
			WeatherImpact:    1,
			EventImpact:      1,
			HistoricalTrend:  1,
			WaitTimePressure: 1,
		},
	}
}
