package scorer

import (
	"context"
	"strings"
)

// Heuristic is the always-available local caption model: a keyword
// engine tuned for crypto-giveaway and pressure-language scams. It
// anchors the ensemble when remote models are unconfigured or down.
type Heuristic struct{}

// Name returns the model name.
func (Heuristic) Name() string { return "heuristic" }

// Classify scores a caption with fixed keyword rules. Baseline risk is
// 10%; crypto-giveaway terms raise it to 95%, urgency language adds 20
// points, capped at 100.
func (Heuristic) Classify(_ context.Context, text string) (Classification, error) {
	lower := strings.ToLower(text)

	score := 10
	var labels []string

	if strings.Contains(lower, "giveaway") || strings.Contains(lower, "btc") {
		score = 95
		labels = append(labels, "Crypto Scam")
	}

	if strings.Contains(lower, "urgent") {
		score += 20
		labels = append(labels, "Pressure Language")
	}

	if score > 100 {
		score = 100
	}

	return Classification{
		Probability: float64(score) / 100,
		Labels:      labels,
	}, nil
}
