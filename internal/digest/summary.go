package digest

import (
	"context"
	"fmt"

	"github.com/deusflow/trenddigest/internal/news"
)

// Request carries what a summarizer may use to describe one story.
type Request struct {
	Titles        []string
	Descriptions  []string
	URLs          []string
	Category      string
	PlatformCount int
	EnglishTitle  string
}

// Summary is a bilingual story summary. The zero value means "none".
type Summary struct {
	English string
	Chinese string
}

// Empty reports whether either language is missing.
func (s Summary) Empty() bool {
	return s.English == "" || s.Chinese == ""
}

// Summarizer produces a bilingual summary for a story. Implementations
// return an empty Summary when they have nothing to offer.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (Summary, error)
}

// SummarizerFunc adapts a function to Summarizer.
type SummarizerFunc func(ctx context.Context, req Request) (Summary, error)

func (f SummarizerFunc) Summarize(ctx context.Context, req Request) (Summary, error) {
	return f(ctx, req)
}

// FallbackSummary is the templated summary used when no summarizer answers.
func FallbackSummary(platformCount int, category string) Summary {
	zh, ok := news.CategoryNamesZH[category]
	if !ok {
		zh = news.CategoryNamesZH[news.General]
	}
	return Summary{
		English: fmt.Sprintf("This story is trending on %d platforms with high engagement. It appears to be related to %s news.", platformCount, category),
		Chinese: fmt.Sprintf("此新闻在%d个平台上热门，属于%s类新闻。", platformCount, zh),
	}
}
