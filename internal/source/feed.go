package source

import (
	"context"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/trenddigest/internal/news"
)

// FeedFetcher is satisfied by rss.Fetcher.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) ([]*gofeed.Item, error)
}

// FeedLoader turns an RSS feed into a ranked platform list.
type FeedLoader struct {
	Fetcher  FeedFetcher
	MaxItems int
}

// LoadPlatform ranks feed entries by their position in the feed.
func (l *FeedLoader) LoadPlatform(ctx context.Context, p Platform) ([]news.Item, error) {
	entries, err := l.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return nil, err
	}
	if l.MaxItems > 0 && len(entries) > l.MaxItems {
		entries = entries[:l.MaxItems]
	}

	out := make([]news.Item, 0, len(entries))
	for idx, e := range entries {
		if e == nil {
			continue
		}
		it := news.Item{
			Platform: p.ID,
			Rank:     idx + 1,
			Title:    strings.TrimSpace(e.Title),
			URL:      e.Link,
			Extra: news.Extra{
				Description: strings.TrimSpace(e.Description),
			},
		}
		if len(e.Categories) > 0 {
			it.Extra.Category = e.Categories[0]
		}
		if !it.Usable() {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}
