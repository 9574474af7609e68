package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deusflow/trenddigest/internal/app"
	"github.com/deusflow/trenddigest/internal/config"
	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/retry"
	"github.com/deusflow/trenddigest/internal/rss"
	"github.com/deusflow/trenddigest/internal/source"
	"github.com/deusflow/trenddigest/internal/storage"
	"github.com/deusflow/trenddigest/internal/summarize"
	"github.com/deusflow/trenddigest/internal/telegram"
)

// buildRunner assembles the pipeline from cfg. The returned cleanup closes
// provider clients and the database.
func buildRunner(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app.Runner, func(), error) {
	platforms, err := source.LoadPlatforms(cfg.PlatformsConfigPath, cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	rc := retry.RetryConfig{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	loader := &source.MultiLoader{
		Platforms: platforms,
		Files:     &source.FileLoader{MaxItems: cfg.MaxItemsPerPlatform, Logger: log},
		Feeds: &source.FeedLoader{
			Fetcher:  rss.NewFetcher(cfg.RequestTimeout, rc, log),
			MaxItems: cfg.MaxItemsPerPlatform,
		},
		Logger: log,
	}

	pipeline, err := summarize.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("summarizers: %w", err)
	}
	cleanup := []func(){pipeline.Close}
	closeAll := func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}

	files, err := storage.NewFileStore(cfg.DataDir, cfg.DigestFile, cfg.ArchiveDir, cfg.MinStories, log)
	if err != nil {
		closeAll()
		return nil, nil, err
	}
	writer := &app.MultiWriter{Primary: files, Logger: log}

	if cfg.DatabaseURL != "" {
		db, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL, log)
		if err != nil {
			log.Warn("database unavailable, writing files only", "error", err)
		} else {
			cleanup = append(cleanup, func() {
				if err := db.Close(); err != nil {
					log.Warn("error closing database", "error", err)
				}
			})
			writer.Secondaries = append(writer.Secondaries, app.NamedWriter{Name: "postgres", Writer: db})
		}
	}

	runner := &app.Runner{
		Loader: loader,
		Assembler: &digest.Assembler{
			Summarizer: pipeline.Summarizer,
			Logger:     log,
		},
		Writer: writer,
		Logger: log,
	}

	if cfg.TelegramEnabled() {
		runner.Notifier = &app.TelegramNotifier{
			Sender: telegram.NewClient(cfg.TelegramToken, cfg.TelegramChatID, log),
			Logger: log,
		}
	}

	log.Info("pipeline ready",
		"platforms", len(platforms),
		"summary_provider", cfg.SummaryProvider,
		"postgres", len(writer.Secondaries) > 0,
		"telegram", runner.Notifier != nil,
	)
	return runner, closeAll, nil
}
