// Package feed orchestrates the pipeline: trending topics fan out into
// concurrent post searches, each unique post is scored on two
// independent signals, and the fused results assemble into one
// FeedResult in stable topic-then-hit order.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/search"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/trends"
)

const defaultTopicWorkers = 6

// TopicSource resolves a region into ranked trending topics.
type TopicSource interface {
	Topics(ctx context.Context, geo string, limit int) (*trends.Payload, error)
}

// PostSearcher finds media-bearing posts for a topic.
type PostSearcher interface {
	Search(ctx context.Context, topic string, limit int) ([]search.Hit, error)
}

// Scorer produces the two independent per-post signals. Both
// operations are fail-open and never abort a run.
type Scorer interface {
	ScoreImage(ctx context.Context, url string) float64
	ScoreCaption(ctx context.Context, text string) (int, string)
}

// Aggregator builds scored feeds.
type Aggregator struct {
	topics   TopicSource
	searcher PostSearcher
	scorer   Scorer
	workers  int
}

// Config holds Aggregator dependencies.
type Config struct {
	Topics   TopicSource
	Searcher PostSearcher
	Scorer   Scorer

	// TopicWorkers bounds concurrent topic searches. Defaults to 6 to
	// stay under upstream rate limits.
	TopicWorkers int
}

// New creates an Aggregator.
func New(cfg Config) *Aggregator {
	workers := cfg.TopicWorkers
	if workers <= 0 {
		workers = defaultTopicWorkers
	}

	return &Aggregator{
		topics:   cfg.Topics,
		searcher: cfg.Searcher,
		scorer:   cfg.Scorer,
		workers:  workers,
	}
}

// Build runs one aggregation: resolve up to topicCount topics for geo,
// search up to postsPerTopic posts per topic, score, dedup, assemble.
// Topic resolution failure fails the run; every failure below that
// degrades to fewer posts. A caller timeout on ctx returns whatever
// completed rather than an error.
func (a *Aggregator) Build(ctx context.Context, geo string, topicCount, postsPerTopic int) (*FeedResult, error) {
	if postsPerTopic < 0 {
		postsPerTopic = 0
	}

	payload, err := a.topics.Topics(ctx, geo, topicCount)
	if err != nil {
		return nil, fmt.Errorf("resolve topics for %q: %w", geo, err)
	}

	// Collected per topic, indexed by topic position, so final order
	// follows topic rank regardless of which worker finishes first.
	perTopic := make([][]Post, len(payload.Topics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, topic := range payload.Topics {
		i, topic := i, topic
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}

			hits, err := a.searcher.Search(gctx, topic.Title, postsPerTopic)
			if err != nil {
				// Fatal for this topic only: fewer posts, not no feed.
				slog.Warn("topic search failed, skipping",
					"topic", topic.Title,
					"error", err,
				)
				return nil
			}

			perTopic[i] = a.scoreHits(gctx, hits)
			return nil
		})
	}

	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	posts := make([]Post, 0, len(payload.Topics)*postsPerTopic)
	seen := make(map[string]struct{})
	for _, topicPosts := range perTopic {
		for _, p := range topicPosts {
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			posts = append(posts, p)
		}
	}

	slog.Info("feed assembled",
		"geo", payload.Geo,
		"topics", len(payload.Topics),
		"posts", len(posts),
	)

	return &FeedResult{
		Geo:     payload.Geo,
		Updated: payload.Updated,
		Count:   len(posts),
		Posts:   posts,
	}, nil
}

// scoreHits scores a topic's hits in hit order. Image and caption
// signals for one post are independent external calls and run
// concurrently.
func (a *Aggregator) scoreHits(ctx context.Context, hits []search.Hit) []Post {
	posts := make([]Post, len(hits))
	for i, hit := range hits {
		posts[i] = a.scorePost(ctx, hit)
	}
	return posts
}

// scorePost scores one post. Any panic while scoring marks the post
// risk_score = -1, flag Error, and keeps it in the feed.
func (a *Aggregator) scorePost(ctx context.Context, hit search.Hit) Post {
	post := Post{
		ID:       hit.ID,
		Username: hit.Username,
		ImageURL: hit.ImageURL,
		Caption:  hit.Caption,
		Likes:    hit.Likes,
		Flag:     FlagPending,
	}

	var (
		wg          sync.WaitGroup
		failed      atomic.Bool
		aiProb      float64
		captionRisk int
	)

	// Each signal runs on its own goroutine; panics do not cross
	// goroutine boundaries, so each one recovers for itself.
	score := func(fn func()) {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("post scoring panicked", "post_id", hit.ID, "panic", r)
				failed.Store(true)
			}
		}()
		fn()
	}

	wg.Add(2)
	go score(func() {
		aiProb = a.scorer.ScoreImage(ctx, hit.ImageURL)
	})
	go score(func() {
		captionRisk, _ = a.scorer.ScoreCaption(ctx, hit.Caption)
	})
	wg.Wait()

	if failed.Load() {
		post.RiskScore = -1
		post.AIImageProbability = 0
		post.Flag = FlagError
		return post
	}

	post.AIImageProbability = aiProb
	post.RiskScore = FuseRisk(captionRisk, aiProb)
	post.Flag = AssignFlag(post.RiskScore, aiProb)

	return post
}
