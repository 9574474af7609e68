package translate

import (
	"context"
	"fmt"

	"github.com/deusflow/trenddigest/internal/digest"
)

// Translator translates a short text between two languages.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

// HeadlineSummarizer builds a templated summary around the translated lead
// headline of a story.
type HeadlineSummarizer struct {
	Translator Translator
}

func (h *HeadlineSummarizer) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	headline := req.EnglishTitle
	if headline == "" && len(req.Titles) > 0 && h.Translator != nil {
		translated, err := h.Translator.Translate(ctx, req.Titles[0], "zh-CN", "en")
		if err != nil {
			return digest.Summary{}, err
		}
		headline = translated
	}
	if headline == "" {
		return digest.Summary{}, nil
	}

	return digest.Summary{
		English: fmt.Sprintf("This story about '%s' is trending across %d major Chinese platforms. "+
			"The high cross-platform coverage suggests significant public interest in this %s news story.",
			headline, req.PlatformCount, req.Category),
		Chinese: fmt.Sprintf("此新闻在%d个主要平台上热门。跨平台的高覆盖率表明公众对这条%s新闻高度关注。",
			req.PlatformCount, req.Category),
	}, nil
}
