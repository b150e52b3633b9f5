// Package geo resolves coordinates to a supported trends region using
// the US Census geocoder. The geocoder only covers the United States,
// which is exactly the question the feed needs answered.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultGeocoderURL = "https://geocoding.geo.census.gov/geocoder/geographies/coordinates"

// Resolver answers whether a coordinate pair falls inside the US.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithBaseURL overrides the geocoder endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(r *Resolver) { r.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(r *Resolver) { r.httpClient = c }
}

// NewResolver creates a Resolver.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		baseURL:    defaultGeocoderURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

type geocodeResponse struct {
	Result struct {
		Geographies struct {
			States []json.RawMessage `json:"States"`
		} `json:"geographies"`
	} `json:"result"`
}

// InUS reports whether the coordinates resolve to a US state. Any
// failure, network, HTTP or decode, counts as not verified and
// returns false.
func (r *Resolver) InUS(ctx context.Context, lat, lon float64) bool {
	params := url.Values{}
	params.Set("x", fmt.Sprintf("%g", lon))
	params.Set("y", fmt.Sprintf("%g", lat))
	params.Set("benchmark", "Public_AR_Current")
	params.Set("vintage", "Current_Current")
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return false
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Debug("geocoder request failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("geocoder returned non-200", "status", resp.StatusCode)
		return false
	}

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		slog.Debug("geocoder response malformed", "error", err)
		return false
	}

	return len(decoded.Result.Geographies.States) > 0
}
