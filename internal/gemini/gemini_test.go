package gemini

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/logger"
	"github.com/deusflow/trenddigest/internal/retry"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     digest.Summary
	}{
		{
			name:     "plain labels",
			response: "ENGLISH: Wang Jianlin's company sold assets.\n\n中文: 王健林旗下公司出售资产。",
			want:     digest.Summary{English: "Wang Jianlin's company sold assets.", Chinese: "王健林旗下公司出售资产。"},
		},
		{
			name:     "continuation lines",
			response: "ENGLISH: First sentence.\nSecond sentence.\n中文：第一句。\n第二句。",
			want:     digest.Summary{English: "First sentence. Second sentence.", Chinese: "第一句。第二句。"},
		},
		{
			name:     "markdown bold labels",
			response: "**English**: Floods hit the south.\n**中文**: 南方遭遇洪水。",
			want:     digest.Summary{English: "Floods hit the south.", Chinese: "南方遭遇洪水。"},
		},
		{
			name:     "preamble ignored",
			response: "Sure, here it is.\nENGLISH: Text.\n中文: 文本。",
			want:     digest.Summary{English: "Text.", Chinese: "文本。"},
		},
		{
			name:     "missing chinese",
			response: "ENGLISH: Only English.",
			want:     digest.Summary{English: "Only English."},
		},
		{
			name:     "no labels",
			response: "Just some text",
			want:     digest.Summary{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseResponse(tt.response))
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := buildPrompt(digest.Request{
		Titles:        []string{"王健林卖掉万达", "万达出售资产"},
		Descriptions:  []string{"描述一", "", "正文内容"},
		Category:      "business",
		PlatformCount: 2,
	})

	assert.Contains(t, p, "Category: business")
	assert.Contains(t, p, "Trending on 2 platforms")
	assert.Contains(t, p, "English headline: (none)")
	assert.Contains(t, p, "- 王健林卖掉万达\n  描述一\n- 万达出售资产\n正文内容")
	assert.Contains(t, p, "ENGLISH:")
	assert.Contains(t, p, "中文:")
}

func TestBuildPrompt_Truncates(t *testing.T) {
	p := buildPrompt(digest.Request{Titles: []string{"t"}, Descriptions: []string{strings.Repeat("字", 7000)}})
	assert.Contains(t, p, "[TRUNCATED]")
	assert.Less(t, strings.Count(p, "字"), 7000)
}

func TestSummarize(t *testing.T) {
	rc := retry.RetryConfig{MaxAttempts: 2, Delay: time.Millisecond}

	t.Run("parsed reply", func(t *testing.T) {
		c := &Client{retry: rc, log: testLogger()}
		c.generate = func(context.Context, string) (string, error) {
			return "ENGLISH: E.\n中文: 中。", nil
		}
		s, err := c.Summarize(context.Background(), digest.Request{Titles: []string{"x"}})
		require.NoError(t, err)
		assert.Equal(t, digest.Summary{English: "E.", Chinese: "中。"}, s)
	})

	t.Run("unparseable reply is empty", func(t *testing.T) {
		c := &Client{retry: rc, log: testLogger()}
		c.generate = func(context.Context, string) (string, error) { return "nonsense", nil }
		s, err := c.Summarize(context.Background(), digest.Request{})
		require.NoError(t, err)
		assert.True(t, s.Empty())
	})

	t.Run("transient error is retried", func(t *testing.T) {
		calls := 0
		c := &Client{retry: rc, log: testLogger()}
		c.generate = func(context.Context, string) (string, error) {
			calls++
			if calls == 1 {
				return "", errors.New("503")
			}
			return "ENGLISH: E.\n中文: 中。", nil
		}
		_, err := c.Summarize(context.Background(), digest.Request{})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent error surfaces", func(t *testing.T) {
		c := &Client{retry: rc, log: testLogger()}
		c.generate = func(context.Context, string) (string, error) { return "", errors.New("quota") }
		_, err := c.Summarize(context.Background(), digest.Request{})
		assert.Error(t, err)
	})
}

func testLogger() *slog.Logger {
	return logger.New(io.Discard, false)
}
