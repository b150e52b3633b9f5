package scorer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeImages scripts image classifier responses and counts calls.
type fakeImages struct {
	calls  atomic.Int32
	labels []LabelScore
	err    error
}

func (f *fakeImages) Labels(ctx context.Context, imageURL string) ([]LabelScore, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

func TestScorer_ScoreImage(t *testing.T) {
	ctx := context.Background()

	t.Run("extracts artificial label probability", func(t *testing.T) {
		images := &fakeImages{labels: []LabelScore{
			{Label: "human", Score: 0.05},
			{Label: "artificial", Score: 0.95},
		}}
		s := New(Config{Images: images})

		assert.InDelta(t, 0.95, s.ScoreImage(ctx, "https://img.example.com/a.jpg"), 1e-9)
	})

	t.Run("ai token label matches, portrait does not", func(t *testing.T) {
		s := New(Config{Images: &fakeImages{labels: []LabelScore{
			{Label: "portrait", Score: 0.9},
			{Label: "AI generated", Score: 0.4},
		}}})

		assert.InDelta(t, 0.4, s.ScoreImage(ctx, "https://img.example.com/b.jpg"), 1e-9)
	})

	t.Run("missing label yields zero", func(t *testing.T) {
		s := New(Config{Images: &fakeImages{labels: []LabelScore{
			{Label: "landscape", Score: 0.99},
		}}})

		assert.Zero(t, s.ScoreImage(ctx, "https://img.example.com/c.jpg"))
	})

	t.Run("classifier failure yields zero, never panics", func(t *testing.T) {
		s := New(Config{Images: &fakeImages{err: errors.New("decode failure")}})

		assert.NotPanics(t, func() {
			assert.Zero(t, s.ScoreImage(ctx, "https://img.example.com/d.jpg"))
		})
	})

	t.Run("nil classifier yields zero", func(t *testing.T) {
		s := New(Config{})
		assert.Zero(t, s.ScoreImage(ctx, "https://img.example.com/e.jpg"))
	})

	t.Run("memoized per url, failures included", func(t *testing.T) {
		images := &fakeImages{err: errors.New("down")}
		s := New(Config{Images: images})

		s.ScoreImage(ctx, "https://img.example.com/f.jpg")
		s.ScoreImage(ctx, "https://img.example.com/f.jpg")
		assert.Equal(t, int32(1), images.calls.Load())

		s.ScoreImage(ctx, "https://img.example.com/other.jpg")
		assert.Equal(t, int32(2), images.calls.Load())
	})

	t.Run("out of range score clamped", func(t *testing.T) {
		s := New(Config{Images: &fakeImages{labels: []LabelScore{
			{Label: "artificial", Score: 1.7},
		}}})

		assert.InDelta(t, 1.0, s.ScoreImage(ctx, "https://img.example.com/g.jpg"), 1e-9)
	})
}

// countingModel wraps the heuristic and counts classifications.
type countingModel struct {
	calls atomic.Int32
	inner CaptionModel
}

func (c *countingModel) Name() string { return "counting" }

func (c *countingModel) Classify(ctx context.Context, text string) (Classification, error) {
	c.calls.Add(1)
	return c.inner.Classify(ctx, text)
}

func TestScorer_ScoreCaption(t *testing.T) {
	ctx := context.Background()

	t.Run("scores through the ensemble", func(t *testing.T) {
		s := New(Config{})

		risk, label := s.ScoreCaption(ctx, "URGENT: Doubling all BTC sent to my wallet!")
		assert.Equal(t, 100, risk)
		assert.Equal(t, "Crypto Scam, Pressure Language", label)
	})

	t.Run("fails open to zero risk and Pending", func(t *testing.T) {
		s := New(Config{Ensemble: NewEnsemble(
			Member{Model: fixedModel{name: "broken", err: errors.New("down")}, Weight: 1},
		)})

		risk, label := s.ScoreCaption(ctx, "anything")
		assert.Equal(t, 0, risk)
		assert.Equal(t, "Pending", label)
	})

	t.Run("memoized per exact text", func(t *testing.T) {
		m := &countingModel{inner: Heuristic{}}
		s := New(Config{Ensemble: NewEnsemble(Member{Model: m, Weight: 1})})

		s.ScoreCaption(ctx, "free btc giveaway")
		s.ScoreCaption(ctx, "free btc giveaway")
		assert.Equal(t, int32(1), m.calls.Load())

		// Different text misses the memo.
		s.ScoreCaption(ctx, "free btc giveaway!")
		assert.Equal(t, int32(2), m.calls.Load())
	})

	t.Run("deterministic for identical input", func(t *testing.T) {
		s := New(Config{})
		r1, l1 := s.ScoreCaption(ctx, "breaking tech news")
		r2, l2 := s.ScoreCaption(ctx, "breaking tech news")
		require.Equal(t, r1, r2)
		require.Equal(t, l1, l2)
	})
}
