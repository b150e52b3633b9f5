package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/feed"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/scorer"
)

var scoreImageURL string

var scoreCmd = &cobra.Command{
	Use:   "score [caption]",
	Short: "Score a single caption",
	Long: `Score a caption (and optionally an image URL) with the configured
models and print the fused result.

Example:
  slopchop score "URGENT: free BTC giveaway, link in bio"
  slopchop score "sunset over the bay" --image https://example.com/pic.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreImageURL, "image", "", "image URL to classify alongside the caption")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	caption := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForScoring(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	members := []scorer.Member{
		{Model: scorer.Heuristic{}, Weight: cfg.HeuristicWeight},
	}
	if cfg.TextModelURL != "" {
		members = append(members, scorer.Member{
			Model: scorer.NewRemoteTextModel(scorer.RemoteTextConfig{
				Endpoint: cfg.TextModelURL,
				Token:    cfg.HFToken,
			}),
			Weight: cfg.TextModelWeight,
		})
	}

	var images scorer.ImageClassifier
	if cfg.ImageModelURL != "" {
		images = scorer.NewRemoteImageModel(scorer.RemoteImageConfig{
			Endpoint: cfg.ImageModelURL,
			Token:    cfg.HFToken,
		})
	}

	sc := scorer.New(scorer.Config{
		Images:   images,
		Ensemble: scorer.NewEnsemble(members...),
		MemoTTL:  cfg.ScoreTTL,
	})

	captionRisk, label := sc.ScoreCaption(ctx, caption)
	aiProb := 0.0
	if scoreImageURL != "" {
		aiProb = sc.ScoreImage(ctx, scoreImageURL)
	}

	finalRisk := feed.FuseRisk(captionRisk, aiProb)
	flag := feed.AssignFlag(finalRisk, aiProb)

	fmt.Println("=== Score ===")
	fmt.Printf("Caption risk:  %d\n", captionRisk)
	fmt.Printf("Caption label: %s\n", label)
	if scoreImageURL != "" {
		fmt.Printf("AI image prob: %.2f\n", aiProb)
	}
	fmt.Printf("Final risk:    %d\n", finalRisk)
	fmt.Printf("Flag:          %s\n", flag)

	return nil
}
