package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/app"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/config"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/scan"
	"github.com/VazirYaNazir/Hack-NCState2026-SlopChop/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the SlopChop API server that exposes trending topics,
the scored feed, location resolution, and scan history over HTTP.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize app: %w", err)
	}
	defer a.Close()

	if cfg.XBearerToken == "" {
		slog.Warn("no search credential configured, live feeds will be empty")
	}

	srv := server.New(server.Config{
		Builder: a.Aggregator,
		Topics:  a.Trends,
		Geo:     a.Geo,
		History: a.Store,
		Timeout: cfg.FeedTimeout,
	})

	// Run server in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.ListenAddr)
	}()

	// Optional background scanner
	if cfg.ScanInterval > 0 {
		scanner := scan.New(scan.Config{
			Builder:  a.Aggregator,
			Recorder: a.Store,
			Status:   srv.Health(),
			Geos:     cfg.ScanGeos,
			Interval: cfg.ScanInterval,
		})
		go func() {
			if err := scanner.Run(ctx); err != nil && err != context.Canceled {
				slog.Error("scanner stopped", "error", err)
			}
		}()
	}

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down...")
	if err := srv.Shutdown(); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
