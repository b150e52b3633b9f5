// Package search finds real, media-bearing posts for a topic via a
// fallback chain of query variants, with a per-topic TTL cache and
// retry/backoff against the upstream search API.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/cache"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/language"
)

const (
	defaultTTL           = 20 * time.Minute
	defaultRetryInterval = 500 * time.Millisecond
	searchMaxAttempts    = 3
	searchPageSize       = 25
)

// Hit is one qualifying search result: a media-bearing, English-ish
// post, not yet scored.
type Hit struct {
	ID       string
	Username string
	ImageURL string
	Caption  string
	Likes    int
}

// Searcher executes query variants for a topic until one yields
// qualifying results.
type Searcher struct {
	client        *Client
	cache         *cache.Cache[string, []Hit]
	retryInterval time.Duration
}

// SearcherConfig holds Searcher configuration. A nil Client means no
// credential is configured; every search returns empty.
type SearcherConfig struct {
	Client        *Client
	TTL           time.Duration
	RetryInterval time.Duration
}

// NewSearcher creates a Searcher.
func NewSearcher(cfg SearcherConfig) *Searcher {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}

	return &Searcher{
		client:        cfg.Client,
		cache:         cache.New[string, []Hit](ttl),
		retryInterval: retryInterval,
	}
}

// Search returns up to limit media-bearing hits for topic. A fresh
// cache entry is served without any network call. A rate-limited
// upstream falls back to the last-good cached result, even if expired;
// with no fallback the rate-limit error propagates. Authorization
// failures propagate immediately. Zero hits across all variants is an
// empty result, not an error.
func (s *Searcher) Search(ctx context.Context, topic string, limit int) ([]Hit, error) {
	if s.client == nil {
		return nil, nil
	}
	if limit < 0 {
		limit = 0
	}

	if hits, ok := s.cache.Get(topic); ok && len(hits) > 0 {
		slog.Debug("search cache hit", "topic", topic, "count", len(hits))
		return truncate(hits, limit), nil
	}

	var lastErr error

	for _, query := range Variants(topic) {
		resp, err := s.searchVariant(ctx, query)
		if err != nil {
			if errors.Is(err, ErrRateLimited) {
				if stale, ok := s.cache.GetStale(topic); ok && len(stale) > 0 {
					slog.Warn("rate limited, serving stale cache", "topic", topic)
					return truncate(stale, limit), nil
				}
				return nil, fmt.Errorf("search %q: %w", topic, err)
			}
			if errors.Is(err, ErrUnauthorized) {
				return nil, fmt.Errorf("search %q: %w", topic, err)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			slog.Debug("query variant failed", "query", query, "error", err)
			lastErr = err
			continue
		}

		hits := s.extractHits(resp, topic, limit)
		if len(hits) > 0 {
			s.cache.Set(topic, hits)
			slog.Info("search produced hits", "topic", topic, "query", query, "count", len(hits))
			return hits, nil
		}
	}

	if stale, ok := s.cache.GetStale(topic); ok && len(stale) > 0 {
		return truncate(stale, limit), nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("search %q: %w", topic, lastErr)
	}

	slog.Debug("no qualifying results", "topic", topic)
	return nil, nil
}

// searchVariant issues one query with up to searchMaxAttempts tries.
// Rate-limit and authorization failures abort retrying immediately.
func (s *Searcher) searchVariant(ctx context.Context, query string) (*searchResponse, error) {
	var resp *searchResponse

	op := func() error {
		r, err := s.client.RecentSearch(ctx, query, searchPageSize)
		if err != nil {
			if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnauthorized) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryInterval), searchMaxAttempts-1),
		ctx,
	)
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}

	return resp, nil
}

// extractHits filters a search response down to qualifying hits:
// English-ish text, at least one attachment resolving to a usable media
// URL, photos preferred over other media types.
func (s *Searcher) extractHits(resp *searchResponse, topic string, limit int) []Hit {
	users := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		users[u.ID] = u.Username
	}

	media := make(map[string]apiMedia, len(resp.Includes.Media))
	for _, m := range resp.Includes.Media {
		if m.MediaKey != "" {
			media[m.MediaKey] = m
		}
	}

	hits := make([]Hit, 0, limit)
	for _, post := range resp.Data {
		text := strings.TrimSpace(post.Text)
		if text != "" && !language.ProbablyEnglish(text) {
			continue
		}

		if len(post.Attachments.MediaKeys) == 0 {
			continue
		}

		imageURL := representativeMediaURL(post.Attachments.MediaKeys, media)
		if imageURL == "" {
			continue
		}

		username := users[post.AuthorID]
		if username == "" {
			username = "unknown"
		}

		caption := text
		if caption == "" {
			caption = topic
		}

		hits = append(hits, Hit{
			ID:       post.ID,
			Username: username,
			ImageURL: imageURL,
			Caption:  caption,
			Likes:    post.PublicMetrics.LikeCount,
		})
		if len(hits) >= limit {
			break
		}
	}

	return hits
}

// representativeMediaURL picks exactly one media URL for a post,
// preferring a photo over any other media type.
func representativeMediaURL(keys []string, media map[string]apiMedia) string {
	for _, key := range keys {
		m := media[key]
		if strings.EqualFold(m.Type, "photo") && m.URL != "" {
			return m.URL
		}
	}
	for _, key := range keys {
		m := media[key]
		if m.URL != "" {
			return m.URL
		}
		if m.PreviewImageURL != "" {
			return m.PreviewImageURL
		}
	}
	return ""
}

func truncate(hits []Hit, limit int) []Hit {
	if limit >= 0 && len(hits) > limit {
		return hits[:limit]
	}
	return hits
}
