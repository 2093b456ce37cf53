// Package main is the entrypoint for the periodic log importer.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bytefusion/loganalyzer/internal/ai"
	"github.com/bytefusion/loganalyzer/internal/config"
	"github.com/bytefusion/loganalyzer/internal/elastic"
	"github.com/bytefusion/loganalyzer/internal/importer"
	"github.com/bytefusion/loganalyzer/internal/notify"
	"github.com/bytefusion/loganalyzer/internal/pipeline"
	"github.com/bytefusion/loganalyzer/internal/store"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("importer failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"index_pattern", cfg.Elastic.IndexPattern,
		"interval", cfg.Elastic.ImportInterval.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	search := elastic.NewHTTPClient(
		cfg.Elastic.BaseURL,
		cfg.Elastic.IndexPattern,
		cfg.Elastic.Username,
		cfg.Elastic.Password,
		cfg.Elastic.Timeout,
	)
	if err := search.Ping(ctx); err != nil {
		return fmt.Errorf("ping search index: %w", err)
	}
	slog.Info("search index connected")

	provider, err := ai.NewProvider(cfg.AI)
	if err != nil {
		return fmt.Errorf("create AI provider: %w", err)
	}
	slog.Info("AI provider initialized", "provider", provider.Name())

	pgStore := store.NewPostgresStore(pool)
	notifier := notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout)
	svc := pipeline.NewService(provider, pgStore, notifier, cfg.AI.CompletionTimeout)

	importJob := importer.NewJob(search, pgStore,
		cfg.Elastic.ImportWindow, cfg.Elastic.ImportLimit)
	analyzeJob := importer.NewAnalyzeJob(pgStore, svc, cfg.Elastic.ImportLimit)

	runPass := func() {
		if err := importJob.Run(ctx); err != nil {
			slog.Error("import pass failed", "error", err)
		}
		if err := analyzeJob.Run(ctx); err != nil {
			slog.Error("analyze pass failed", "error", err)
		}
	}

	// First pass immediately, then on the ticker.
	runPass()

	ticker := time.NewTicker(cfg.Elastic.ImportInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("importer stopped")
			return nil
		case <-ticker.C:
			runPass()
		}
	}
}
