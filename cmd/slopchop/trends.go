package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/trends"
)

var (
	trendsGeo   string
	trendsLimit int
)

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "List trending topics for a region",
	Long: `List the current trending topics for a country code.

Example:
  slopchop trends --geo GB --limit 10`,
	RunE: runTrends,
}

func init() {
	trendsCmd.Flags().StringVar(&trendsGeo, "geo", "US", "country code")
	trendsCmd.Flags().IntVar(&trendsLimit, "limit", 20, "number of topics to show")
	rootCmd.AddCommand(trendsCmd)
}

func runTrends(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	src := trends.New(trends.Config{
		FeedURL:   cfg.TrendsFeedURL,
		UserAgent: cfg.UserAgent,
		TTL:       cfg.TrendsTTL,
	})

	payload, err := src.Topics(context.Background(), trendsGeo, trendsLimit)
	if err != nil {
		return fmt.Errorf("fetch trends: %w", err)
	}

	fmt.Printf("=== Trending in %s ===\n", payload.Geo)
	if payload.Updated != "" {
		fmt.Printf("Updated: %s\n", payload.Updated)
	}
	fmt.Println()

	for i, topic := range payload.Topics {
		fmt.Printf("%2d. %s\n", i+1, topic.Title)
		if topic.Link != "" {
			fmt.Printf("    %s\n", topic.Link)
		}
	}

	return nil
}
