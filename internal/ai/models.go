package ai

// MarketSnapshot is the numeric state handed to the model: current counts,
// the live surge level and the projected next hours.
type MarketSnapshot struct {
	// Area is a human-readable label for the region the numbers describe.
	Area string `json:"area"`

	Supply       int     `json:"supply"`
	Demand       int     `json:"demand"`
	AverageSurge float64 `json:"average_surge"`
	Stability    string  `json:"stability"`

	// Forecast lines, one per projected hour: "15:00 demand=12.5 surge=1.25".
	ForecastLines []string `json:"forecast_lines,omitempty"`
}

// MarketSummary captures the structured output from the AI model.
type MarketSummary struct {
	// Headline is a one-sentence market state, e.g. "Supply is thin ahead of
	// the evening peak".
	Headline string `json:"headline"`

	// Assessment is a short paragraph expanding on the headline.
	Assessment string `json:"assessment"`

	// Actions are concrete operator suggestions, most important first.
	Actions []string `json:"actions"`

	// Risk is "low", "medium" or "high".
	Risk string `json:"risk"`
}
