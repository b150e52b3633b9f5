package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/app"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
)

var (
	feedGeo      string
	feedTopics   int
	feedPerTopic int
	feedMock     bool
	feedNoSave   bool
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Build and print a scored feed",
	Long: `Build a scored feed for a region and print it as JSON.

Example:
  slopchop feed --geo US --topics 5 --per-topic 10
  slopchop feed --mock`,
	RunE: runFeed,
}

func init() {
	feedCmd.Flags().StringVar(&feedGeo, "geo", "US", "country code for trending topics")
	feedCmd.Flags().IntVar(&feedTopics, "topics", 5, "number of trending topics to search")
	feedCmd.Flags().IntVar(&feedPerTopic, "per-topic", 10, "posts to keep per topic")
	feedCmd.Flags().BoolVar(&feedMock, "mock", false, "score the built-in demo dataset instead of live data")
	feedCmd.Flags().BoolVar(&feedNoSave, "no-save", false, "skip recording the run in history")
	rootCmd.AddCommand(feedCmd)
}

func runFeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForScoring(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if !feedMock {
		if err := cfg.ValidateForSearch(); err != nil {
			return fmt.Errorf("validate config: %w", err)
		}
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(ctx, cfg.FeedTimeout)
	defer cancel()

	var result *feed.FeedResult
	source := "live"
	if feedMock {
		source = "mock"
		result = a.Aggregator.BuildMock(ctx)
	} else {
		result, err = a.Aggregator.Build(ctx, feedGeo, feedTopics, feedPerTopic)
		if err != nil {
			return fmt.Errorf("build feed: %w", err)
		}
	}

	if !feedNoSave {
		runID, err := a.Store.SaveRun(ctx, source, result)
		if err != nil {
			slog.Warn("save run failed", "error", err)
		} else {
			slog.Info("run recorded", "run_id", runID, "posts", result.Count)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
