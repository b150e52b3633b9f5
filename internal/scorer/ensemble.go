package scorer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
)

// Classification is one caption model's verdict.
type Classification struct {
	// Probability of the scam/positive class, in [0,1].
	Probability float64

	// Labels are optional human-readable tags ("Crypto Scam").
	Labels []string
}

// CaptionModel scores a caption for scam likelihood.
type CaptionModel interface {
	Name() string
	Classify(ctx context.Context, text string) (Classification, error)
}

// Member pairs a caption model with its fixed ensemble weight.
type Member struct {
	Model  CaptionModel
	Weight float64
}

// Ensemble combines a fixed, statically configured list of caption
// models into one weighted risk score.
type Ensemble struct {
	members []Member
}

// NewEnsemble creates an ensemble. The member list is resolved once at
// startup and never changes.
func NewEnsemble(members ...Member) *Ensemble {
	return &Ensemble{members: members}
}

// Score runs every member and returns the weighted-average risk as an
// integer percentage plus a label built from the members' tags. A
// member failure drops that member from the average; the call errors
// only when no member produced a probability.
func (e *Ensemble) Score(ctx context.Context, text string) (int, string, error) {
	var (
		weightedSum float64
		weightSum   float64
		labels      []string
	)

	for _, m := range e.members {
		c, err := m.Model.Classify(ctx, text)
		if err != nil {
			slog.Warn("caption model failed", "model", m.Model.Name(), "error", err)
			continue
		}

		weightedSum += clamp01(c.Probability) * m.Weight
		weightSum += m.Weight
		labels = append(labels, c.Labels...)
	}

	if weightSum == 0 {
		return 0, "", fmt.Errorf("no caption model produced a score for this text")
	}

	// Percentage rounded to one decimal place, then to the integer
	// risk score. Deterministic for identical text and weights.
	pct := math.Round(weightedSum/weightSum*1000) / 10
	risk := int(math.Round(pct))

	label := "Pending"
	if len(labels) > 0 {
		label = strings.Join(labels, ", ")
	}

	return risk, label, nil
}

// PositiveProbability converts a classifier's raw logit output into
// the probability of the positive class: softmax over two logits,
// sigmoid over a single logit.
func PositiveProbability(logits []float64) (float64, error) {
	switch len(logits) {
	case 1:
		return sigmoid(logits[0]), nil
	case 2:
		return softmaxPositive(logits[0], logits[1]), nil
	default:
		return 0, fmt.Errorf("expected 1 or 2 logits, got %d", len(logits))
	}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmaxPositive returns the softmax probability of the second
// (positive-class) logit, shifted by the max for numeric stability.
func softmaxPositive(negative, positive float64) float64 {
	m := math.Max(negative, positive)
	en := math.Exp(negative - m)
	ep := math.Exp(positive - m)
	return ep / (en + ep)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
