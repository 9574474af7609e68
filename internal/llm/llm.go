// Package llm summarizes stories through any OpenAI-compatible chat endpoint.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/retry"
)

// Config selects the endpoint and request pacing.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	RPM     int
}

// Summarizer asks a chat model for a JSON summary of one story.
type Summarizer struct {
	chatModel model.BaseChatModel
	limiter   *rate.Limiter
	retry     retry.RetryConfig
	log       *slog.Logger
}

type reply struct {
	Summary   string `json:"summary"`
	SummaryZH string `json:"summary_zh"`
}

func New(ctx context.Context, cfg Config, rc retry.RetryConfig, log *slog.Logger) (*Summarizer, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return NewWithModel(chatModel, cfg.RPM, rc, log), nil
}

// NewWithModel wraps an existing chat model. rpm <= 0 disables pacing.
func NewWithModel(cm model.BaseChatModel, rpm int, rc retry.RetryConfig, log *slog.Logger) *Summarizer {
	limit := rate.Inf
	if rpm > 0 {
		limit = rate.Limit(float64(rpm) / 60.0)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Summarizer{
		chatModel: cm,
		limiter:   rate.NewLimiter(limit, 1),
		retry:     rc,
		log:       log.With("component", "llm"),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	messages := []*schema.Message{
		{Role: schema.System, Content: "You are a JSON generator. Output only a JSON object."},
		{Role: schema.User, Content: buildPrompt(req)},
	}

	var out reply
	err := retry.WithRetry(ctx, s.retry, func() error {
		if err := s.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		resp, err := s.chatModel.Generate(ctx, messages)
		if err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(stripFences(resp.Content)), &out); err != nil {
			s.log.Debug("reply is not JSON", "error", err)
			return fmt.Errorf("json unmarshal: %w", err)
		}
		return nil
	})
	if err != nil {
		return digest.Summary{}, err
	}

	return digest.Summary{
		English: strings.TrimSpace(out.Summary),
		Chinese: strings.TrimSpace(out.SummaryZH),
	}, nil
}

func buildPrompt(req digest.Request) string {
	var sb strings.Builder
	sb.WriteString("Trending Chinese news story.\n")
	fmt.Fprintf(&sb, "Category: %s\nPlatforms: %d\n", req.Category, req.PlatformCount)
	if req.EnglishTitle != "" {
		fmt.Fprintf(&sb, "English headline: %s\n", req.EnglishTitle)
	}
	sb.WriteString("Headlines:\n")
	for _, t := range req.Titles {
		fmt.Fprintf(&sb, "- %s\n", t)
	}
	if len(req.Descriptions) > 0 {
		sb.WriteString("Context:\n")
		for _, d := range req.Descriptions {
			if d != "" {
				fmt.Fprintf(&sb, "- %s\n", d)
			}
		}
	}
	sb.WriteString(`
Write a 2-3 sentence factual summary in English and the same in Simplified Chinese.
Return JSON in this shape:
{"summary": "English summary", "summary_zh": "中文摘要"}`)
	return sb.String()
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
