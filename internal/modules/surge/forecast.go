// README: Short-horizon demand/surge projection from historical baselines.
package surge

import (
	"math"
	"time"
)

// HourForecast is one projected hour. Advisory only; the forecaster is never
// on the request-serving path.
type HourForecast struct {
	Hour             time.Time `json:"hour"`
	ExpectedDemand   float64   `json:"expected_demand"`
	RecommendedSurge float64   `json:"recommended_surge"`
	Confidence       float64   `json:"confidence"`
}

// Forecaster blends a per-hour/per-weekday historical baseline with weather
// and event modifiers (both heuristic placeholders until real feeds land) and
// reuses the calculator's factor tables for the recommended surge.
type Forecaster struct {
	cfg Config

	// nominalSupply anchors the projected demand/supply ratio; the live
	// supply level N hours out is unknowable.
	nominalSupply float64
}

func NewForecaster(cfg Config) *Forecaster {
	return &Forecaster{cfg: cfg, nominalSupply: 10}
}

// hourlyBaseline is requests per hour in a reference zone, shaped after the
// usual two-peak weekday curve.
var hourlyBaseline = [24]float64{
	2, 1, 1, 1, 1, 2, // 00-05 overnight trickle
	5, 12, 14, 8, 6, 7, // 06-11 morning peak
	9, 8, 6, 7, 10, 14, // 12-17 lunch bump into evening ramp
	15, 11, 8, 7, 6, 4, // 18-23 evening peak tapering off
}

// weekdayScale adjusts the baseline per weekday (Sunday = 0).
var weekdayScale = [7]float64{0.8, 1.0, 1.0, 1.0, 1.05, 1.2, 1.1}

const maxForecastHours = 48

// Forecast projects demand and a recommended surge for each of the next
// `hours` hours starting at from, clamped to a two-day horizon.
func (f *Forecaster) Forecast(from time.Time, hours int) []HourForecast {
	if hours <= 0 {
		return nil
	}
	if hours > maxForecastHours {
		hours = maxForecastHours
	}

	out := make([]HourForecast, 0, hours)
	for i := 0; i < hours; i++ {
		at := from.Add(time.Duration(i) * time.Hour).Truncate(time.Hour)

		demand := hourlyBaseline[at.Hour()] * weekdayScale[int(at.Weekday())]
		demand *= weatherModifier(at)
		demand *= eventModifier(at)

		ratio := demand / f.nominalSupply
		timeFactor, weekendFactor := primaryTimeFactor(at, f.cfg)
		recommended := clamp(timeFactor*weekendFactor*demandFactorFor(ratio, f.cfg),
			f.cfg.MinMultiplier, f.cfg.MaxMultiplier)

		out = append(out, HourForecast{
			Hour:             at,
			ExpectedDemand:   math.Round(demand*10) / 10,
			RecommendedSurge: recommended,
			Confidence:       confidenceAt(i),
		})
	}
	return out
}

// weatherModifier is a placeholder keyed on hour-of-day until a real weather
// feed is wired: late-evening hours carry a mild uplift.
func weatherModifier(at time.Time) float64 {
	if h := at.Hour(); h >= 20 || h < 2 {
		return 1.1
	}
	return 1.0
}

// eventModifier is a placeholder keyed on day-of-week: weekend evenings see
// event-driven demand.
func eventModifier(at time.Time) float64 {
	wd := at.Weekday()
	if (wd == time.Friday || wd == time.Saturday) && at.Hour() >= 18 {
		return 1.2
	}
	return 1.0
}

// confidenceAt decays with horizon distance: the baseline is trustworthy
// near-term, increasingly a guess beyond that. Modifier inputs are heuristic,
// so confidence starts below 1.
func confidenceAt(hoursOut int) float64 {
	c := 0.9 - 0.0125*float64(hoursOut)
	if c < 0.3 {
		return 0.3
	}
	return math.Round(c*100) / 100
}
