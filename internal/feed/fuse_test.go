package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuseRisk(t *testing.T) {
	tests := []struct {
		name        string
		captionRisk int
		aiProb      float64
		want        int
	}{
		{"image raises the floor", 10, 0.9, 90},
		{"caption stays when higher", 80, 0.3, 80},
		{"equal signals", 50, 0.5, 50},
		{"zero everything", 0, 0, 0},
		{"image rounds to nearest", 10, 0.856, 86},
		{"full image probability", 10, 1.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FuseRisk(tt.captionRisk, tt.aiProb))
		})
	}
}

func TestFuseRisk_NeverBelowCaption(t *testing.T) {
	// The image signal can only push risk up, never down.
	for _, prob := range []float64{0, 0.1, 0.5, 0.9, 1.0} {
		assert.GreaterOrEqual(t, FuseRisk(60, prob), 60)
	}
}

func TestAssignFlag_Boundaries(t *testing.T) {
	tests := []struct {
		name      string
		finalRisk int
		aiProb    float64
		want      string
	}{
		// combined = (75 + 75) / 2 = 75.0: strictly-greater test keeps
		// this Uncertain.
		{"exactly 75 is Uncertain", 75, 0.75, FlagUncertain},
		// combined = (75 + 75.2) / 2 = 75.1.
		{"just above 75 is Likely AI", 75, 0.752, FlagLikelyAI},
		// combined = (80 + 0) / 2 = 40.0.
		{"exactly 40 is Likely Human", 80, 0, FlagLikelyHuman},
		// combined = (81 + 0) / 2 = 40.5.
		{"just above 40 is Uncertain", 81, 0, FlagUncertain},
		{"zero is Likely Human", 0, 0, FlagLikelyHuman},
		{"maxed signals are Likely AI", 100, 1.0, FlagLikelyAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AssignFlag(tt.finalRisk, tt.aiProb))
		})
	}
}
