// README: Surge factors, thresholds and configuration.
package surge

import (
	"fmt"
	"time"
)

// DemandLevel buckets the demand/supply ratio for display and telemetry.
type DemandLevel string

const (
	DemandNone   DemandLevel = "none"
	DemandLow    DemandLevel = "low"
	DemandMedium DemandLevel = "medium"
	DemandHigh   DemandLevel = "high"
)

// Factors are the named numeric contributions behind one multiplier.
// Transient, computed per request, never persisted.
type Factors struct {
	DemandSupplyRatio float64 `json:"demand_supply_ratio"`
	TimeOfDay         float64 `json:"time_of_day"`
	DayOfWeek         float64 `json:"day_of_week"`
	WeatherImpact     float64 `json:"weather_impact"`
	EventImpact       float64 `json:"event_impact"`
	HistoricalTrend   float64 `json:"historical_trend"`
	WaitTimePressure  float64 `json:"wait_time_pressure"`
}

// Inputs is the snapshot a multiplier is computed from.
type Inputs struct {
	Supply int
	Demand int
	At     time.Time
}

// Result is one computed multiplier with its contributions.
type Result struct {
	Multiplier  float64
	DemandLevel DemandLevel
	Factors     Factors
}

// Config is an immutable parameter set. Construct with DefaultConfig and
// validate any derived copy before use; the caps are enforced here, not
// inline in the calculator.
type Config struct {
	MinMultiplier      float64
	MaxMultiplier      float64
	NoSupplyMultiplier float64

	// Primary time factor: exactly one of rush-hour, late-night or weekend
	// applies per computation; they never stack.
	RushHourFactor  float64
	LateNightFactor float64
	WeekendFactor   float64

	// Demand factor tiers keyed by demand/supply ratio.
	LowRatio     float64
	MediumRatio  float64
	HighRatio    float64
	LowFactor    float64
	MediumFactor float64
	HighFactor   float64

	// Guards.
	MinProvidersForTimeFactor int
	MinDemandFloor            int
}

func DefaultConfig() Config {
	return Config{
		MinMultiplier:      0.8,
		MaxMultiplier:      1.5,
		NoSupplyMultiplier: 1.1,

		RushHourFactor:  1.25,
		LateNightFactor: 1.15,
		WeekendFactor:   1.10,

		LowRatio:     1.2,
		MediumRatio:  1.5,
		HighRatio:    2.0,
		LowFactor:    1.10,
		MediumFactor: 1.25,
		HighFactor:   1.40,

		MinProvidersForTimeFactor: 3,
		MinDemandFloor:            3,
	}
}

// Validate rejects configurations that could amplify prices unboundedly or
// invert the tier ordering.
func (c Config) Validate() error {
	if c.MinMultiplier <= 0 || c.MaxMultiplier < c.MinMultiplier {
		return fmt.Errorf("surge bounds invalid: [%f, %f]", c.MinMultiplier, c.MaxMultiplier)
	}
	if c.NoSupplyMultiplier < c.MinMultiplier || c.NoSupplyMultiplier > c.MaxMultiplier {
		return fmt.Errorf("no-supply multiplier %f outside [%f, %f]", c.NoSupplyMultiplier, c.MinMultiplier, c.MaxMultiplier)
	}
	if !(c.LowRatio < c.MediumRatio && c.MediumRatio < c.HighRatio) {
		return fmt.Errorf("demand ratio tiers must ascend: %f %f %f", c.LowRatio, c.MediumRatio, c.HighRatio)
	}
	if c.LowFactor < 1 || c.MediumFactor < c.LowFactor || c.HighFactor < c.MediumFactor {
		return fmt.Errorf("demand factors must be >= 1 and ascend")
	}
	return nil
}
