package summarize

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/trenddigest/internal/cache"
	"github.com/deusflow/trenddigest/internal/config"
	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/logger"
	"github.com/deusflow/trenddigest/internal/news"
	"github.com/deusflow/trenddigest/internal/ratelimit"
	"github.com/deusflow/trenddigest/internal/scraper"
)

type countingSummarizer struct {
	calls int
	out   digest.Summary
	err   error
}

func (c *countingSummarizer) Summarize(context.Context, digest.Request) (digest.Summary, error) {
	c.calls++
	return c.out, c.err
}

func TestChain(t *testing.T) {
	full := digest.Summary{English: "E", Chinese: "中"}

	t.Run("first complete answer wins", func(t *testing.T) {
		failing := &countingSummarizer{err: errors.New("down")}
		partial := &countingSummarizer{out: digest.Summary{English: "only"}}
		good := &countingSummarizer{out: full}
		unused := &countingSummarizer{out: full}

		c := &Chain{Providers: []Provider{
			{Name: "gemini", Summarizer: failing},
			{Name: "openai", Summarizer: partial},
			{Name: "headline", Summarizer: good},
			{Name: "spare", Summarizer: unused},
		}, Logger: logger.New(io.Discard, false)}

		s, err := c.Summarize(context.Background(), digest.Request{})
		require.NoError(t, err)
		assert.Equal(t, full, s)
		assert.Equal(t, 0, unused.calls)
		assert.Equal(t, []string{"gemini", "openai", "headline", "spare"}, c.Names())
	})

	t.Run("all fail returns last error", func(t *testing.T) {
		boom := errors.New("boom")
		c := &Chain{Providers: []Provider{
			{Name: "a", Summarizer: &countingSummarizer{}},
			{Name: "b", Summarizer: &countingSummarizer{err: boom}},
		}, Logger: logger.New(io.Discard, false)}
		s, err := c.Summarize(context.Background(), digest.Request{})
		assert.ErrorIs(t, err, boom)
		assert.True(t, s.Empty())
	})

	t.Run("empty chain", func(t *testing.T) {
		s, err := (&Chain{}).Summarize(context.Background(), digest.Request{})
		require.NoError(t, err)
		assert.True(t, s.Empty())
	})
}

func TestBudgeted(t *testing.T) {
	full := digest.Summary{English: "E", Chinese: "中"}
	next := &countingSummarizer{out: full}
	budget := ratelimit.NewBudget(nil, 2, time.Hour)
	b := &Budgeted{Name: "openai", Next: next, Budget: budget, Cache: cache.NewWithCleanup(0)}

	for _, title := range []string{"甲", "乙", "丙"} {
		_, err := b.Summarize(context.Background(), digest.Request{Titles: []string{title}})
		require.NoError(t, err)
	}
	assert.Equal(t, 2, next.calls, "third request is over budget")

	s, err := b.Summarize(context.Background(), digest.Request{Titles: []string{"甲"}})
	require.NoError(t, err)
	assert.Equal(t, full, s, "cached story served without budget")
	assert.Equal(t, 2, next.calls)
	assert.Equal(t, 1, budget.GetStats()["cache_hits"])

	s, err = b.Summarize(context.Background(), digest.Request{Titles: []string{"丁"}})
	require.NoError(t, err)
	assert.True(t, s.Empty())
}

func TestBudgeted_ErrorNotCached(t *testing.T) {
	next := &countingSummarizer{err: errors.New("down")}
	c := cache.NewWithCleanup(0)
	b := &Budgeted{Name: "gemini", Next: next, Budget: ratelimit.NewBudget(nil, 0, time.Hour), Cache: c}

	_, err := b.Summarize(context.Background(), digest.Request{Titles: []string{"甲"}})
	assert.Error(t, err)
	assert.Equal(t, 0, c.Len())
}

func testConfig(provider string) *config.Config {
	return &config.Config{
		SummaryProvider:    provider,
		OpenAIModel:        "gpt-4o-mini",
		MaxSummaryRequests: 5,
		SummaryRPM:         30,
		RequestTimeout:     time.Second,
		RetryAttempts:      1,
	}
}

func TestBuild(t *testing.T) {
	log := logger.New(io.Discard, false)

	t.Run("none", func(t *testing.T) {
		p, err := Build(context.Background(), testConfig(config.ProviderNone), log)
		require.NoError(t, err)
		defer p.Close()
		assert.Nil(t, p.Summarizer)
	})

	t.Run("auto without keys falls back", func(t *testing.T) {
		p, err := Build(context.Background(), testConfig(config.ProviderAuto), log)
		require.NoError(t, err)
		defer p.Close()
		assert.Nil(t, p.Summarizer)
		assert.Nil(t, p.Chain)

		pool := []news.Item{
			{Platform: "baidu_top", Rank: 1, Title: "王健林被限制高消费", Translation: "Wang Jianlin restricted"},
			{Platform: "weibo_hot", Rank: 2, Title: "王健林被限制高消费"},
		}
		a := &digest.Assembler{Summarizer: p.Summarizer, Logger: log}
		d, err := a.Assemble(context.Background(), digest.Morning, news.Analyze(pool))
		require.NoError(t, err)
		require.Len(t, d.TopStories, 1)

		story := d.TopStories[0]
		want := digest.FallbackSummary(2, story.Category)
		assert.Equal(t, want.English, story.Summary)
		assert.Equal(t, want.Chinese, story.SummaryZH)
		assert.Contains(t, story.Summary, "trending on 2 platforms with high engagement")
	})

	t.Run("explicit headline without keys", func(t *testing.T) {
		p, err := Build(context.Background(), testConfig(config.ProviderHeadline), log)
		require.NoError(t, err)
		defer p.Close()
		assert.Equal(t, []string{"headline"}, p.Chain.Names())
	})

	t.Run("auto with openai key", func(t *testing.T) {
		cfg := testConfig(config.ProviderAuto)
		cfg.OpenAIAPIKey = "sk-test"
		p, err := Build(context.Background(), cfg, log)
		require.NoError(t, err)
		defer p.Close()
		assert.Equal(t, []string{"openai", "headline"}, p.Chain.Names())
		assert.Same(t, p.Chain, p.Summarizer)
	})

	t.Run("openai without key", func(t *testing.T) {
		_, err := Build(context.Background(), testConfig(config.ProviderOpenAI), log)
		assert.Error(t, err)
	})

	t.Run("article fetching wraps the chain", func(t *testing.T) {
		cfg := testConfig(config.ProviderHeadline)
		cfg.FetchArticles = true
		p, err := Build(context.Background(), cfg, log)
		require.NoError(t, err)
		defer p.Close()
		cs, ok := p.Summarizer.(*scraper.ContentSummarizer)
		require.True(t, ok)
		assert.Same(t, p.Chain, cs.Next)
	})
}
