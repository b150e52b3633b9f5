package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/store"
)

var (
	historyLimit int
	historyRun   int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded feed runs",
	Long: `Show recent feed runs, or the scored posts of one run.

Example:
  slopchop history --limit 10
  slopchop history --run 3`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "show the posts of this run id")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	st, err := store.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if historyRun > 0 {
		return printRun(ctx, st, historyRun)
	}

	runs, err := st.RecentRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	fmt.Println("=== Feed Runs ===")
	for _, r := range runs {
		fmt.Printf("%4d  %-4s %-5s %3d posts  %s\n",
			r.ID, r.Geo, r.Source, r.PostCount, r.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func printRun(ctx context.Context, st *store.Store, runID int64) error {
	posts, err := st.RunPosts(ctx, runID)
	if err != nil {
		return fmt.Errorf("load run %d: %w", runID, err)
	}

	fmt.Printf("=== Run %d ===\n", runID)
	for _, p := range posts {
		fmt.Printf("%-20s risk=%3d ai=%.2f %-14s %s\n",
			p.Username, p.RiskScore, p.AIImageProbability, p.Flag, truncate(p.Caption, 60))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
