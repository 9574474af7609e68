package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/deusflow/trenddigest/internal/retry"
)

// DefaultBaseURL is the Bot API root.
const DefaultBaseURL = "https://api.telegram.org"

// Client sends HTML messages to one chat.
type Client struct {
	Token   string
	ChatID  string
	HTTP    *http.Client
	BaseURL string
	Retry   retry.RetryConfig
	Logger  *slog.Logger
}

// NewClient returns a client with a 30s timeout and 3 attempts.
func NewClient(token, chatID string, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		Token:   token,
		ChatID:  chatID,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: DefaultBaseURL,
		Retry:   retry.RetryConfig{MaxAttempts: 3, Delay: 2 * time.Second, Backoff: true},
		Logger:  log.With("component", "telegram"),
	}
}

// SendMessage sends text with parse_mode HTML and link previews disabled.
// Client errors other than 429 are not retried.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	attempt := 0
	err := retry.WithRetry(ctx, c.Retry, func() error {
		attempt++
		err := c.sendMessageOnce(ctx, text)
		if err != nil {
			c.logger().Warn("error sending to Telegram", "attempt", attempt, "error", err)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("can't send message: %w", err)
	}
	c.logger().Info("message sent to Telegram", "attempt", attempt)
	return nil
}

// sendMessageOnce does one try to send message
func (c *Client) sendMessageOnce(ctx context.Context, text string) error {
	base := strings.TrimRight(c.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", base, c.Token)

	payload := map[string]interface{}{
		"chat_id":                  c.ChatID,
		"text":                     text,
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return retry.Permanent(fmt.Errorf("error make JSON: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error HTTP request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger().Debug("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("telegram API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return retry.Permanent(err)
		}
		return err
	}
	return nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
