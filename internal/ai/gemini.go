package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider implements InsightProvider using Google's Gemini models.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiProvider initializes a new Gemini client.
// apiKey should be provided from environment variables.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	// Use Gemini 2.0 Flash for low latency and cost efficiency.
	model := client.GenerativeModel("gemini-2.0-flash")

	// Force JSON response for structured parsing.
	model.ResponseMIMEType = "application/json"

	// Low temperature: this is analysis, not prose.
	model.SetTemperature(0.2)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

// Close cleans up the Gemini client resources.
func (p *GeminiProvider) Close() {
	p.client.Close()
}

// GenerateMarketSummary asks the model for an operator-facing readout of the
// current market snapshot.
func (p *GeminiProvider) GenerateMarketSummary(ctx context.Context, snapshot MarketSnapshot) (*MarketSummary, error) {
	prompt := buildSummaryPrompt(snapshot)

	resp, err := p.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini generation error: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response candidates from Gemini")
	}

	// Extract text from the response parts.
	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			responseText.WriteString(string(txt))
		}
	}

	// Clean up potential markdown formatting (though json mode should handle this, safety first).
	cleanJSON := cleanJSONString(responseText.String())

	var result MarketSummary
	if err := json.Unmarshal([]byte(cleanJSON), &result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w. Raw: %s", err, cleanJSON)
	}

	return &result, nil
}

// buildSummaryPrompt constructs the instructions for the AI.
func buildSummaryPrompt(s MarketSnapshot) string {
	area := s.Area
	if area == "" {
		area = "the service area"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Role: You are a marketplace operations analyst for a ride-hail and delivery platform.

Current market snapshot for %s:
- Online available providers: %d
- Pending requests (demand window): %d
- Current surge multiplier: %.2f
- Stability flag: %s
`, area, s.Supply, s.Demand, s.AverageSurge, s.Stability)

	if len(s.ForecastLines) > 0 {
		b.WriteString("\nProjected next hours (local time, demand in requests/hour):\n")
		for _, line := range s.ForecastLines {
			fmt.Fprintf(&b, "- %s\n", line)
		}
	}

	b.WriteString(`
Task: Summarize the market state for a dispatch operator.

RULES:
1. Ground every statement in the numbers above. Do NOT invent data.
2. "actions" must be things an operator can actually do: provider incentives,
   repositioning nudges, communication to riders. 3 actions maximum.
3. "risk" is "low" when supply comfortably covers demand, "medium" when the
   ratio is tightening or surge is active, "high" when demand outpaces supply
   or no providers are online.
4. Plain operational English. No markdown in any field.

Output JSON Schema:
{
  "headline": "string (one sentence)",
  "assessment": "string (2-4 sentences)",
  "actions": ["string"],
  "risk": "low" | "medium" | "high"
}
`)
	return b.String()
}

// cleanJSONString removes markdown code blocks if present (e.g. ```json ... ```)
func cleanJSONString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, "```json")
	input = strings.TrimPrefix(input, "```")
	input = strings.TrimSuffix(input, "```")
	return strings.TrimSpace(input)
}
