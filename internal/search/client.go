package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultSearchURL = "https://api.twitter.com/2/tweets/search/recent"
	searchTimeout    = 30 * time.Second
)

// Error taxonomy for the search upstream. Rate limiting is recoverable
// through the stale cache; an authorization failure is a configuration
// fault and never retried.
var (
	ErrRateLimited  = errors.New("search rate limited")
	ErrUnauthorized = errors.New("search unauthorized")
)

// Client calls a recent-post search API with a bearer credential.
type Client struct {
	baseURL    string
	bearer     string
	userAgent  string
	httpClient *http.Client
}

// ClientConfig holds search client configuration.
type ClientConfig struct {
	BaseURL    string
	Bearer     string
	UserAgent  string
	HTTPClient *http.Client
}

// NewClient creates a search API client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultSearchURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: searchTimeout}
	}

	return &Client{
		baseURL:    baseURL,
		bearer:     cfg.Bearer,
		userAgent:  cfg.UserAgent,
		httpClient: httpClient,
	}
}

// searchResponse mirrors the recent-search API payload.
type searchResponse struct {
	Data     []apiPost `json:"data"`
	Includes struct {
		Users []apiUser  `json:"users"`
		Media []apiMedia `json:"media"`
	} `json:"includes"`
}

type apiPost struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	AuthorID    string `json:"author_id"`
	Attachments struct {
		MediaKeys []string `json:"media_keys"`
	} `json:"attachments"`
	PublicMetrics struct {
		LikeCount int `json:"like_count"`
	} `json:"public_metrics"`
}

type apiUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type apiMedia struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url"`
	PreviewImageURL string `json:"preview_image_url"`
}

// RecentSearch runs one query against the search API.
func (c *Client) RecentSearch(ctx context.Context, query string, maxResults int) (*searchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("expansions", "attachments.media_keys,author_id")
	params.Set("tweet.fields", "public_metrics,attachments,lang")
	params.Set("user.fields", "username")
	params.Set("media.fields", "url,preview_image_url,type,media_key")

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w (status 429)", ErrRateLimited)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w (status %d): %s", ErrUnauthorized, resp.StatusCode, body)
	default:
		return nil, fmt.Errorf("search API error (status %d): %s", resp.StatusCode, body)
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &sr, nil
}
