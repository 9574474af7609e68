package source

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/deusflow/trenddigest/internal/metrics"
	"github.com/deusflow/trenddigest/internal/news"
)

// PlatformLoader loads one platform's ranked list.
type PlatformLoader interface {
	LoadPlatform(ctx context.Context, p Platform) ([]news.Item, error)
}

// Loader produces the full item pool for a run.
type Loader interface {
	Load(ctx context.Context) ([]news.Item, error)
}

// MultiLoader loads all platforms concurrently and concatenates them in
// configured order. A failing platform only reduces coverage.
type MultiLoader struct {
	Platforms []Platform
	Files     PlatformLoader
	Feeds     PlatformLoader
	Logger    *slog.Logger
}

func (m *MultiLoader) Load(ctx context.Context) ([]news.Item, error) {
	log := m.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "source")

	results := make([][]news.Item, len(m.Platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range m.Platforms {
		loader := m.loaderFor(p)
		if loader == nil {
			log.Warn("no loader for platform", "platform", p.ID, "kind", p.Kind)
			continue
		}
		g.Go(func() error {
			items, err := loader.LoadPlatform(gctx, p)
			if err != nil {
				log.Warn("platform unavailable", "platform", p.ID, "error", err)
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pool []news.Item
	covered := 0
	for i, items := range results {
		metrics.Global.AddItemsLoaded(m.Platforms[i].ID, len(items))
		if len(items) > 0 {
			covered++
		}
		pool = append(pool, items...)
	}
	log.Info("snapshots loaded", "items", len(pool), "platforms", covered, "configured", len(m.Platforms))
	return pool, nil
}

func (m *MultiLoader) loaderFor(p Platform) PlatformLoader {
	switch p.Kind {
	case KindFeed:
		return m.Feeds
	case KindFile, "":
		return m.Files
	}
	return nil
}
