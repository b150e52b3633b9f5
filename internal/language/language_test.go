package language

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbablyEnglish(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"empty string passes", "", true},
		{"plain ascii", "Breaking news about the election", true},
		{"hashtags and mentions", "#crypto @someone giveaway", true},
		{"japanese rejected", "速報ニュース", false},
		{"korean rejected", "한국어 뉴스", false},
		{"chinese rejected", "中文新闻", false},
		{"single cjk char rejects", "breaking news 新", false},
		{"accents within threshold", "Beyonce show in Sao Paulo arena tour e", true},
		{"mostly non-ascii rejected", "éééééééééé", false},
		{"emoji pushes over threshold", "🚀🔴🚀🔴", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProbablyEnglish(tt.in))
		})
	}
}

func TestProbablyEnglish_Threshold(t *testing.T) {
	// Exactly 1 non-ASCII rune out of 10 sits on the 10% boundary and
	// passes; 2 out of 10 does not.
	assert.True(t, ProbablyEnglish("abcdefghié"))
	assert.False(t, ProbablyEnglish("abcdefghéé"))
}
