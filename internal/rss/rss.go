package rss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/trenddigest/internal/retry"
)

// Fetcher downloads and parses RSS/Atom feeds.
type Fetcher struct {
	parser *gofeed.Parser
	retry  retry.RetryConfig
	log    *slog.Logger
}

// NewFetcher builds a fetcher with the given HTTP timeout and retry policy.
func NewFetcher(timeout time.Duration, rc retry.RetryConfig, log *slog.Logger) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = "trenddigest/1.0"
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{parser: parser, retry: rc, log: log.With("component", "rss")}
}

// Fetch returns the items of one feed in publication order.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]*gofeed.Item, error) {
	var feed *gofeed.Feed
	err := retry.WithRetry(ctx, f.retry, func() error {
		var err error
		feed, err = f.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			var httpErr gofeed.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
				return retry.Permanent(err)
			}
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", url, err)
	}

	f.log.Debug("feed loaded", "url", url, "items", len(feed.Items))
	return feed.Items, nil
}
