package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DatabasePath string

	// HTTP server
	ListenAddr string

	// Trends
	TrendsFeedURL string
	TrendsTTL     time.Duration

	// Post search
	SearchURL    string
	SearchTTL    time.Duration
	XBearerToken string
	UserAgent    string

	// Scoring models
	HFToken         string
	ImageModelURL   string
	TextModelURL    string
	TextModelWeight float64
	HeuristicWeight float64
	ScoreTTL        time.Duration

	// Geocoding
	GeocoderURL string

	// Feed build
	TopicWorkers int
	FeedTimeout  time.Duration

	// Background scanning. A zero interval disables the scanner.
	ScanInterval time.Duration
	ScanGeos     []string

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables.
// It automatically loads .env file if present.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath:  getEnv("DATABASE_PATH", "data/slopchop.db"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		TrendsFeedURL: getEnv("TRENDS_FEED_URL", "https://trends.google.com/trending/rss"),
		SearchURL:     getEnv("SEARCH_URL", "https://api.twitter.com/2/tweets/search/recent"),
		XBearerToken:  getEnv("X_BEARER_TOKEN", getEnv("BEARER_TOKEN", "")),
		UserAgent:     getEnv("USER_AGENT", "SlopChop/1.0"),
		HFToken:       getEnv("HF_TOKEN", ""),
		ImageModelURL: getEnv("IMAGE_MODEL_URL", ""),
		TextModelURL:  getEnv("TEXT_MODEL_URL", ""),
		GeocoderURL:   getEnv("GEOCODER_URL", "https://geocoding.geo.census.gov/geocoder/geographies/coordinates"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	// Parse durations
	var err error
	cfg.TrendsTTL, err = time.ParseDuration(getEnv("TRENDS_TTL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("invalid TRENDS_TTL: %w", err)
	}

	cfg.SearchTTL, err = time.ParseDuration(getEnv("SEARCH_TTL", "20m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SEARCH_TTL: %w", err)
	}

	cfg.ScoreTTL, err = time.ParseDuration(getEnv("SCORE_TTL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCORE_TTL: %w", err)
	}

	cfg.FeedTimeout, err = time.ParseDuration(getEnv("FEED_TIMEOUT", "90s"))
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_TIMEOUT: %w", err)
	}

	cfg.ScanInterval, err = time.ParseDuration(getEnv("SCAN_INTERVAL", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCAN_INTERVAL: %w", err)
	}

	for _, geo := range strings.Split(getEnv("SCAN_GEOS", "US"), ",") {
		if geo = strings.TrimSpace(geo); geo != "" {
			cfg.ScanGeos = append(cfg.ScanGeos, geo)
		}
	}

	// Parse numbers
	cfg.TopicWorkers, err = strconv.Atoi(getEnv("TOPIC_WORKERS", "6"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOPIC_WORKERS: %w", err)
	}

	cfg.TextModelWeight, err = strconv.ParseFloat(getEnv("TEXT_MODEL_WEIGHT", "3"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TEXT_MODEL_WEIGHT: %w", err)
	}

	cfg.HeuristicWeight, err = strconv.ParseFloat(getEnv("HEURISTIC_WEIGHT", "1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid HEURISTIC_WEIGHT: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	return nil
}

// ValidateForSearch checks configuration needed for live post search.
func (c *Config) ValidateForSearch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.XBearerToken == "" {
		return fmt.Errorf("X_BEARER_TOKEN is required for live search")
	}
	return nil
}

// ValidateForScoring checks configuration needed for remote model
// scoring. The local heuristic needs nothing, so remote model URLs are
// only required when one is configured without its token.
func (c *Config) ValidateForScoring() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if (c.ImageModelURL != "" || c.TextModelURL != "") && c.HFToken == "" {
		return fmt.Errorf("HF_TOKEN is required when a remote model URL is set")
	}
	if c.HeuristicWeight <= 0 && c.TextModelURL == "" {
		return fmt.Errorf("HEURISTIC_WEIGHT must be positive when no remote text model is set")
	}
	return nil
}

// ValidateForServe checks all configuration needed for serve mode.
// Live search stays optional so the server can run in mock mode.
func (c *Config) ValidateForServe() error {
	if err := c.ValidateForScoring(); err != nil {
		return err
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
