package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/retry"
)

const DefaultModel = "gemini-1.5-flash"

// maxPromptChars bounds the context block sent with each request.
const maxPromptChars = 6000

// Client summarizes stories with Gemini.
type Client struct {
	client   *genai.Client
	model    string
	retry    retry.RetryConfig
	log      *slog.Logger
	generate func(ctx context.Context, prompt string) (string, error)
}

func NewClient(ctx context.Context, apiKey, model string, rc retry.RetryConfig, log *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	if log == nil {
		log = slog.Default()
	}

	c := &Client{client: client, model: model, retry: rc, log: log.With("component", "gemini")}
	c.generate = c.generateContent
	return c, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Summarize asks for an English and a Chinese summary of the story. A reply
// missing either section is treated as no answer.
func (c *Client) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	prompt := buildPrompt(req)

	var response string
	err := retry.WithRetry(ctx, c.retry, func() error {
		var err error
		response, err = c.generate(ctx, prompt)
		return err
	})
	if err != nil {
		return digest.Summary{}, err
	}

	s := parseResponse(response)
	if s.Empty() {
		c.log.Warn("could not parse Gemini response", "english", s.English != "", "chinese", s.Chinese != "")
		return digest.Summary{}, nil
	}
	return s, nil
}

func (c *Client) generateContent(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String(), nil
}

func buildPrompt(req digest.Request) string {
	var ctxBlock strings.Builder
	for i, t := range req.Titles {
		fmt.Fprintf(&ctxBlock, "- %s\n", t)
		if i < len(req.Descriptions) && req.Descriptions[i] != "" {
			fmt.Fprintf(&ctxBlock, "  %s\n", req.Descriptions[i])
		}
	}
	for i := len(req.Titles); i < len(req.Descriptions); i++ {
		if req.Descriptions[i] != "" {
			fmt.Fprintf(&ctxBlock, "%s\n", req.Descriptions[i])
		}
	}

	content := strings.ReplaceAll(ctxBlock.String(), "\r", "")
	if utf8.RuneCountInString(content) > maxPromptChars {
		content = string([]rune(content)[:maxPromptChars]) + "\n[TRUNCATED]"
	}

	headline := req.EnglishTitle
	if headline == "" {
		headline = "(none)"
	}

	return fmt.Sprintf(`Summarize this trending Chinese news story for a bilingual digest.

STORY:
Category: %s
Trending on %d platforms
English headline: %s
Headlines and context:
%s
REQUIREMENTS:

Write 2-3 factual sentences in English and the same content in Simplified Chinese.

Do not invent facts that are not in the headlines or context.

Reply strictly in the format below.

ENGLISH: <English summary>

中文: <中文摘要>
`, req.Category, req.PlatformCount, headline, content)
}

var labelPatterns = []struct {
	name  string
	regex *regexp.Regexp
}{
	{"english", regexp.MustCompile(`(?i)^\**(ENGLISH|EN)\**\s*[:：]\s*`)},
	{"chinese", regexp.MustCompile(`(?i)^\**(中文|CHINESE|ZH)\**\s*[:：]\s*`)},
}

// parseResponse reads the labelled sections; unlabelled lines continue the
// section above them.
func parseResponse(response string) digest.Summary {
	sections := map[string]*strings.Builder{
		"english": {},
		"chinese": {},
	}
	current := ""

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		for _, lp := range labelPatterns {
			if lp.regex.MatchString(line) {
				current = lp.name
				line = strings.TrimSpace(lp.regex.ReplaceAllString(line, ""))
				break
			}
		}
		if current == "" || line == "" {
			continue
		}

		b := sections[current]
		// Chinese text joins without spaces.
		if b.Len() > 0 && current == "english" {
			b.WriteString(" ")
		}
		b.WriteString(line)
	}

	return digest.Summary{
		English: strings.TrimSpace(sections["english"].String()),
		Chinese: strings.TrimSpace(sections["chinese"].String()),
	}
}
