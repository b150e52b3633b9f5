// Package server exposes the scored feed over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/search"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/store"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/trends"
)

const (
	defaultTopicCount    = 5
	defaultPostsPerTopic = 10
	maxTrendLimit        = 50

	defaultRequestTimeout = 90 * time.Second
)

// FeedBuilder assembles scored feeds.
type FeedBuilder interface {
	Build(ctx context.Context, geo string, topicCount, postsPerTopic int) (*feed.FeedResult, error)
	BuildMock(ctx context.Context) *feed.FeedResult
}

// TopicSource resolves a region into trending topics.
type TopicSource interface {
	Topics(ctx context.Context, geo string, limit int) (*trends.Payload, error)
}

// LocationResolver answers whether coordinates are inside the US.
type LocationResolver interface {
	InUS(ctx context.Context, lat, lon float64) bool
}

// HistoryStore persists and recalls feed runs. May be nil; history
// endpoints then return 404.
type HistoryStore interface {
	SaveRun(ctx context.Context, source string, result *feed.FeedResult) (int64, error)
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
	RunPosts(ctx context.Context, runID int64) ([]feed.Post, error)
}

// Server is the HTTP front end.
type Server struct {
	fiber   *fiber.App
	builder FeedBuilder
	topics  TopicSource
	geo     LocationResolver
	history HistoryStore
	health  *Health
	timeout time.Duration
}

// Config holds Server dependencies.
type Config struct {
	Builder FeedBuilder
	Topics  TopicSource
	Geo     LocationResolver
	History HistoryStore
	Timeout time.Duration
}

// New creates a Server with its routes registered.
func New(cfg Config) *Server {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	s := &Server{
		builder: cfg.Builder,
		topics:  cfg.Topics,
		geo:     cfg.Geo,
		history: cfg.History,
		health:  NewHealth(),
		timeout: timeout,
	}

	app := fiber.New(fiber.Config{
		AppName:               "SlopChop",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/trends", s.handleTrends)
	api.Get("/feed", s.handleFeed)
	api.Post("/location", s.handleLocation)
	api.Get("/history", s.handleHistory)
	api.Get("/history/:id", s.handleHistoryRun)

	s.fiber = app
	return s
}

// Listen serves HTTP on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	slog.Info("http server listening", "addr", addr)
	return s.fiber.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.fiber.Shutdown()
}

// Health returns the health tracker so other components can report
// into the same /api/health view.
func (s *Server) Health() *Health {
	return s.health
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     statusWord(s.health.Overall()),
		"components": s.health.Snapshot(),
	})
}

func statusWord(healthy bool) string {
	if healthy {
		return "ok"
	}
	return "degraded"
}

func (s *Server) handleTrends(c *fiber.Ctx) error {
	geo := c.Query("geo", "US")
	limit := clampLimit(c.QueryInt("limit", 20))

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	payload, err := s.topics.Topics(ctx, geo, limit)
	if err != nil {
		s.health.SetUnhealthy("trends", err)
		return s.fail(c, err)
	}
	s.health.SetHealthy("trends", "last fetch ok")

	return c.JSON(payload)
}

func (s *Server) handleFeed(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	if c.QueryBool("mock", false) {
		result := s.builder.BuildMock(ctx)
		s.saveRun(ctx, "mock", result)
		return c.JSON(result)
	}

	geo := c.Query("geo", "US")
	topicCount := c.QueryInt("topics", defaultTopicCount)
	perTopic := c.QueryInt("per_topic", defaultPostsPerTopic)

	result, err := s.builder.Build(ctx, geo, topicCount, perTopic)
	if err != nil {
		s.health.SetUnhealthy("feed", err)
		return s.fail(c, err)
	}
	s.health.SetHealthy("feed", "last build ok")

	s.saveRun(ctx, "live", result)
	return c.JSON(result)
}

// saveRun records the feed when a store is configured. Persistence
// failures are logged, never surfaced to the caller.
func (s *Server) saveRun(ctx context.Context, source string, result *feed.FeedResult) {
	if s.history == nil {
		return
	}
	if _, err := s.history.SaveRun(ctx, source, result); err != nil {
		slog.Warn("save run failed", "source", source, "error", err)
	}
}

type locationRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// handleLocation resolves coordinates to a region and returns a scored
// feed for it. Only US coordinates resolve; the geocoder covers
// nothing else.
func (s *Server) handleLocation(c *fiber.Ctx) error {
	var req locationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "body must be JSON with numeric latitude and longitude",
		})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()

	if !s.geo.InUS(ctx, req.Latitude, req.Longitude) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "coordinates appear to be outside the US (or could not be verified)",
		})
	}

	result, err := s.builder.Build(ctx, "US", defaultTopicCount, defaultPostsPerTopic)
	if err != nil {
		s.health.SetUnhealthy("feed", err)
		return s.fail(c, err)
	}
	s.health.SetHealthy("feed", "last build ok")

	s.saveRun(ctx, "location", result)
	return c.JSON(result)
}

func (s *Server) handleHistory(c *fiber.Ctx) error {
	if s.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "history is not configured",
		})
	}

	limit := clampLimit(c.QueryInt("limit", 20))

	runs, err := s.history.RecentRuns(c.UserContext(), limit)
	if err != nil {
		return s.fail(c, err)
	}
	if runs == nil {
		runs = []store.Run{}
	}

	return c.JSON(fiber.Map{"runs": runs})
}

func (s *Server) handleHistoryRun(c *fiber.Ctx) error {
	if s.history == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "history is not configured",
		})
	}

	runID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "run id must be an integer",
		})
	}

	posts, err := s.history.RunPosts(c.UserContext(), int64(runID))
	if errors.Is(err, store.ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"detail": "run not found",
		})
	}
	if err != nil {
		return s.fail(c, err)
	}
	if posts == nil {
		posts = []feed.Post{}
	}

	return c.JSON(fiber.Map{"run_id": runID, "posts": posts})
}

// fail maps pipeline errors onto HTTP statuses.
func (s *Server) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, trends.ErrUnavailable):
		status = fiber.StatusBadGateway
	case errors.Is(err, search.ErrUnauthorized):
		status = fiber.StatusBadGateway
	case errors.Is(err, search.ErrRateLimited):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusGatewayTimeout
	}

	slog.Error("request failed", "path", c.Path(), "status", status, "error", err)
	return c.Status(status).JSON(fiber.Map{"detail": err.Error()})
}

func clampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > maxTrendLimit {
		return maxTrendLimit
	}
	return limit
}
