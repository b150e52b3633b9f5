// Package scorer wraps the caption-risk and image-AI classifiers
// behind one memoized, fail-open interface. Image scoring never raises
// and caption failures fall back to zero risk with a sentinel label,
// so scoring can never abort the pipeline.
package scorer

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/cache"
)

const defaultMemoTTL = time.Hour

type captionResult struct {
	risk  int
	label string
}

// Scorer produces the two independent per-post signals.
type Scorer struct {
	images   ImageClassifier
	ensemble *Ensemble

	imageCache   *cache.Cache[string, float64]
	captionCache *cache.Cache[string, captionResult]
}

// Config holds Scorer configuration. Images may be nil when no image
// model is configured; every image then scores 0.0.
type Config struct {
	Images   ImageClassifier
	Ensemble *Ensemble
	MemoTTL  time.Duration
}

// New creates a Scorer.
func New(cfg Config) *Scorer {
	ttl := cfg.MemoTTL
	if ttl <= 0 {
		ttl = defaultMemoTTL
	}

	ensemble := cfg.Ensemble
	if ensemble == nil {
		ensemble = NewEnsemble(Member{Model: Heuristic{}, Weight: 1})
	}

	return &Scorer{
		images:       cfg.Images,
		ensemble:     ensemble,
		imageCache:   cache.New[string, float64](ttl),
		captionCache: cache.New[string, captionResult](ttl),
	}
}

// ScoreImage returns the probability that the image at url is
// AI-generated, memoized per URL. Any failure (fetch, decode,
// classifier) yields 0.0 rather than an error; the zero result is
// cached like any other.
func (s *Scorer) ScoreImage(ctx context.Context, url string) float64 {
	if p, ok := s.imageCache.Get(url); ok {
		return p
	}

	p := s.classifyImage(ctx, url)
	s.imageCache.Set(url, p)
	return p
}

func (s *Scorer) classifyImage(ctx context.Context, url string) float64 {
	if s.images == nil || url == "" {
		return 0.0
	}

	labels, err := s.images.Labels(ctx, url)
	if err != nil {
		slog.Warn("image scoring failed", "url", url, "error", err)
		return 0.0
	}

	for _, ls := range labels {
		if isAILabel(ls.Label) {
			return clamp01(ls.Score)
		}
	}

	// No artificial/ai/generated label in the response.
	return 0.0
}

// ScoreCaption returns the caption's risk score (0-100) and a label,
// memoized per exact text. On ensemble failure it fails open to
// (0, "Pending").
func (s *Scorer) ScoreCaption(ctx context.Context, text string) (int, string) {
	if r, ok := s.captionCache.Get(text); ok {
		return r.risk, r.label
	}

	risk, label, err := s.ensemble.Score(ctx, text)
	if err != nil {
		slog.Warn("caption scoring failed", "error", err)
		risk, label = 0, "Pending"
	}
	if risk < 0 {
		risk = 0
	}
	if risk > 100 {
		risk = 100
	}

	s.captionCache.Set(text, captionResult{risk: risk, label: label})
	return risk, label
}

// isAILabel matches artificial/ai/generated label spellings. "ai" must
// be its own token so labels like "portrait" do not match.
func isAILabel(label string) bool {
	l := strings.ToLower(label)
	if strings.Contains(l, "artificial") || strings.Contains(l, "generated") {
		return true
	}
	for _, tok := range strings.FieldsFunc(l, func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if tok == "ai" {
			return true
		}
	}
	return false
}
