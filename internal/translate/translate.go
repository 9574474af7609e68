package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/deusflow/trenddigest/internal/cache"
)

// DefaultGoogleURL is the public gtx endpoint.
const DefaultGoogleURL = "https://translate.googleapis.com/translate_a/single"

// maxTextBytes limits what is sent to either service.
const maxTextBytes = 4000

// Options configures a Client.
type Options struct {
	HTTP          *http.Client
	GoogleURL     string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	Cache         *cache.Cache
	CacheTTL      time.Duration
	Logger        *slog.Logger
}

// Client translates short texts, trying Google Translate first and an OpenAI
// chat completion second. Results are cached by text and language pair.
type Client struct {
	http        *http.Client
	googleURL   string
	openai      *openai.Client
	openaiModel string
	cache       *cache.Cache
	cacheTTL    time.Duration
	log         *slog.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		http:        opts.HTTP,
		googleURL:   opts.GoogleURL,
		openaiModel: opts.OpenAIModel,
		cache:       opts.Cache,
		cacheTTL:    opts.CacheTTL,
		log:         opts.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
	}
	if c.googleURL == "" {
		c.googleURL = DefaultGoogleURL
	}
	if c.openaiModel == "" {
		c.openaiModel = openai.GPT4oMini
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = 24 * time.Hour
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	c.log = c.log.With("component", "translate")

	if opts.OpenAIKey != "" {
		cfg := openai.DefaultConfig(opts.OpenAIKey)
		if opts.OpenAIBaseURL != "" {
			cfg.BaseURL = opts.OpenAIBaseURL
		}
		cfg.HTTPClient = c.http
		c.openai = openai.NewClientWithConfig(cfg)
	}
	return c
}

// Translate translates text with the best available service. An error means
// every service failed.
func (c *Client) Translate(ctx context.Context, text, from, to string) (string, error) {
	text = cleanTextForTranslation(text)
	if text == "" {
		return "", nil
	}
	if len(text) > maxTextBytes {
		text = truncateBytes(text, maxTextBytes)
	}

	key := cache.GenerateKey("translate", from, to, text)
	if c.cache != nil {
		if cached, ok := c.cache.GetString(key); ok {
			return cached, nil
		}
	}

	result, err := c.translateWithGoogle(ctx, text, from, to)
	if err == nil && result != "" && result != text {
		c.store(key, result)
		return result, nil
	}
	c.log.Warn("Google Translate failed", "from", from, "to", to, "error", err)

	if c.openai == nil {
		return "", fmt.Errorf("google translate %s->%s: %w", from, to, orEmpty(err))
	}

	result, err = c.translateWithOpenAI(ctx, text, from, to)
	if err != nil {
		return "", fmt.Errorf("openai translate %s->%s: %w", from, to, err)
	}
	result = SanitizeAIText(result)
	if result == "" {
		return "", errors.New("openai translate: empty result")
	}
	c.store(key, result)
	return result, nil
}

func (c *Client) store(key, value string) {
	if c.cache != nil {
		c.cache.Set(key, value, c.cacheTTL)
	}
}

func (c *Client) translateWithGoogle(ctx context.Context, text, from, to string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", from)
	params.Set("tl", to)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.googleURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP error: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.Debug("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google Translate API returned status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response: %w", err)
	}
	return parseGoogleTranslateResponse(body)
}

// parseGoogleTranslateResponse joins the translated segments of a gtx reply,
// which is an array whose first element lists [translated, original, ...].
func parseGoogleTranslateResponse(body []byte) (string, error) {
	var response []interface{}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response) == 0 {
		return "", errors.New("empty response from Google Translate")
	}

	translations, ok := response[0].([]interface{})
	if !ok {
		return "", errors.New("unexpected response format")
	}

	var result strings.Builder
	for _, translation := range translations {
		if parts, ok := translation.([]interface{}); ok && len(parts) > 0 {
			if s, ok := parts[0].(string); ok {
				result.WriteString(s)
			}
		}
	}
	return strings.TrimSpace(result.String()), nil
}

var languageNames = map[string]string{
	"zh":    "Chinese",
	"zh-CN": "Chinese",
	"en":    "English",
}

func (c *Client) translateWithOpenAI(ctx context.Context, text, from, to string) (string, error) {
	prompt := fmt.Sprintf(`Translate the following %s news headline to %s.
Keep names of people and organizations accurate.
Reply with the translation only, without additional comments.

Text to translate:
%s`, languageName(from), languageName(to), text)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	resp, err := c.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.openaiModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 300,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func languageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return code
}

// cleanTextForTranslation collapses whitespace and blank lines.
func cleanTextForTranslation(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// truncateBytes cuts s to at most n bytes on a rune boundary.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func orEmpty(err error) error {
	if err == nil {
		return errors.New("empty result")
	}
	return err
}
