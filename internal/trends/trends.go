// Package trends resolves a region code into the current ranked list
// of trending topics from a Google-Trends-style RSS feed.
package trends

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/cache"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/language"
)

const (
	defaultFeedURL   = "https://trends.google.com/trending/rss"
	defaultUserAgent = "HackNC-State2026/1.0 (contact: you@example.com)"
	defaultTTL       = 10 * time.Minute
	defaultLimit     = 20
	fetchTimeout     = 15 * time.Second
)

// ErrUnavailable indicates the upstream trends feed could not be
// fetched or parsed. Fatal for the requested geo, not the process.
var ErrUnavailable = errors.New("trends feed unavailable")

// Topic is one trending subject in upstream rank order.
type Topic struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published,omitempty"`
}

// Payload is the per-geo topics response. Count always equals
// len(Topics).
type Payload struct {
	Geo     string  `json:"geo"`
	Updated string  `json:"updated,omitempty"`
	Count   int     `json:"count"`
	Topics  []Topic `json:"trends"`
}

// Source fetches and caches trending topics per region.
type Source struct {
	feedURL    string
	userAgent  string
	httpClient *http.Client
	cache      *cache.Cache[string, *Payload]
}

// Config holds Source configuration.
type Config struct {
	FeedURL    string
	UserAgent  string
	TTL        time.Duration
	HTTPClient *http.Client
}

// New creates a trend source.
func New(cfg Config) *Source {
	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = defaultFeedURL
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: fetchTimeout}
	}

	return &Source{
		feedURL:    feedURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		cache:      cache.New[string, *Payload](ttl),
	}
}

// Topics returns up to limit trending topics for a 2-letter region
// code. Within the TTL window repeated calls return the cached payload
// unchanged, including its Updated timestamp.
func (s *Source) Topics(ctx context.Context, geo string, limit int) (*Payload, error) {
	geo = strings.ToUpper(strings.TrimSpace(geo))
	if limit < 1 {
		limit = defaultLimit
	}

	if payload, ok := s.cache.Get(geo); ok {
		slog.Debug("trends cache hit", "geo", geo, "count", payload.Count)
		return payload, nil
	}

	feed, err := s.fetch(ctx, geo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	updated := strings.TrimSpace(feed.Updated)
	if updated == "" {
		updated = strings.TrimSpace(feed.Published)
	}

	topics := make([]Topic, 0, limit)
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" || !language.ProbablyEnglish(title) {
			continue
		}

		topics = append(topics, Topic{
			Title:     title,
			Link:      strings.TrimSpace(item.Link),
			Published: strings.TrimSpace(item.Published),
		})
		if len(topics) >= limit {
			break
		}
	}

	payload := &Payload{
		Geo:     geo,
		Updated: updated,
		Count:   len(topics),
		Topics:  topics,
	}
	s.cache.Set(geo, payload)

	slog.Info("fetched trends", "geo", geo, "count", payload.Count)
	return payload, nil
}

func (s *Source) fetch(ctx context.Context, geo string) (*gofeed.Feed, error) {
	u, err := url.Parse(s.feedURL)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}

	q := u.Query()
	q.Set("geo", geo)
	q.Set("hl", "en-US")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/xml, text/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trends feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	// gofeed parsers are not safe for concurrent reuse.
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return feed, nil
}
