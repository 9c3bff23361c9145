package ai

import (
	"context"
)

// InsightProvider defines the contract for the market analysis model.
// This interface allows for swapping different AI providers (Gemini, OpenAI, etc.) in the future.
type InsightProvider interface {
	// GenerateMarketSummary turns a numeric market snapshot into a short
	// operator-facing narrative with suggested actions. Advisory only; it is
	// never on the quote-serving path.
	GenerateMarketSummary(ctx context.Context, snapshot MarketSnapshot) (*MarketSummary, error)
}
