package scraper

import (
	"context"
	"log/slog"

	"github.com/deusflow/trenddigest/internal/digest"
)

// ArticleFetcher is satisfied by *Fetcher.
type ArticleFetcher interface {
	ExtractFullArticle(ctx context.Context, url string) (*ArticleContent, error)
}

// ContentSummarizer adds the text of one member article to the request
// before handing it to Next.
type ContentSummarizer struct {
	Next    digest.Summarizer
	Fetcher ArticleFetcher
	// MaxURLs is how many member links are tried; one good article is enough.
	MaxURLs int
	Logger  *slog.Logger
}

func (c *ContentSummarizer) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	limit := c.MaxURLs
	if limit <= 0 {
		limit = 2
	}

	tried := 0
	for _, url := range req.URLs {
		if tried >= limit {
			break
		}
		if SkipURL(url) {
			continue
		}
		tried++

		article, err := c.Fetcher.ExtractFullArticle(ctx, url)
		if err != nil {
			c.logger().Debug("article fetch failed", "url", url, "error", err)
			continue
		}

		descriptions := make([]string, 0, len(req.Descriptions)+1)
		descriptions = append(descriptions, req.Descriptions...)
		req.Descriptions = append(descriptions, "Article content:\n"+article.Content)
		c.logger().Debug("article fetched", "url", url, "runes", len([]rune(article.Content)))
		break
	}

	return c.Next.Summarize(ctx, req)
}

func (c *ContentSummarizer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
