// Package scan runs periodic background feed builds so history
// accumulates without anyone hitting the API.
package scan

import (
	"context"
	"log/slog"
	"time"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
)

// Builder assembles a scored feed for one region.
type Builder interface {
	Build(ctx context.Context, geo string, topicCount, postsPerTopic int) (*feed.FeedResult, error)
}

// Recorder persists completed runs.
type Recorder interface {
	SaveRun(ctx context.Context, source string, result *feed.FeedResult) (int64, error)
}

// StatusSink receives per-cycle health updates.
type StatusSink interface {
	SetHealthy(component, message string)
	SetUnhealthy(component string, err error)
}

// Scanner periodically builds and records feeds for a set of regions.
type Scanner struct {
	builder  Builder
	recorder Recorder
	status   StatusSink

	geos       []string
	interval   time.Duration
	topicCount int
	perTopic   int
}

// Config holds scanner configuration.
type Config struct {
	Builder  Builder
	Recorder Recorder
	Status   StatusSink

	Geos       []string
	Interval   time.Duration
	TopicCount int
	PerTopic   int
}

// New creates a Scanner.
func New(cfg Config) *Scanner {
	geos := cfg.Geos
	if len(geos) == 0 {
		geos = []string{"US"}
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	topicCount := cfg.TopicCount
	if topicCount <= 0 {
		topicCount = 5
	}
	perTopic := cfg.PerTopic
	if perTopic <= 0 {
		perTopic = 10
	}

	return &Scanner{
		builder:    cfg.Builder,
		recorder:   cfg.Recorder,
		status:     cfg.Status,
		geos:       geos,
		interval:   interval,
		topicCount: topicCount,
		perTopic:   perTopic,
	}
}

// Run starts the scan loop. It performs one cycle immediately, then
// one per interval, until the context is cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("starting background scanner",
		"interval", s.interval,
		"geos", s.geos,
	)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle builds and records one feed per configured region. A
// failing region does not stop the others.
func (s *Scanner) runCycle(ctx context.Context) {
	slog.Debug("running scan cycle")

	for _, geo := range s.geos {
		if ctx.Err() != nil {
			return
		}

		result, err := s.builder.Build(ctx, geo, s.topicCount, s.perTopic)
		if err != nil {
			s.setUnhealthy(err)
			slog.Error("scan cycle failed", "geo", geo, "error", err)
			continue
		}

		if s.recorder != nil {
			if _, err := s.recorder.SaveRun(ctx, "scan", result); err != nil {
				slog.Warn("failed to record scan run", "geo", geo, "error", err)
			}
		}

		s.setHealthy()
		slog.Info("scan cycle complete", "geo", geo, "posts", result.Count)
	}
}

func (s *Scanner) setHealthy() {
	if s.status != nil {
		s.status.SetHealthy("scanner", "last cycle ok")
	}
}

func (s *Scanner) setUnhealthy(err error) {
	if s.status != nil {
		s.status.SetUnhealthy("scanner", err)
	}
}
