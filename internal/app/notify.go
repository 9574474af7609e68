package app

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/metrics"
	"github.com/deusflow/trenddigest/internal/news"
)

// maxMessageRunes keeps messages under Telegram's 4096 limit.
const maxMessageRunes = 4000

// Notifier announces a written digest.
type Notifier interface {
	Notify(ctx context.Context, d *digest.Digest) error
}

// MessageSender is satisfied by *telegram.Client.
type MessageSender interface {
	SendMessage(ctx context.Context, text string) error
}

// TelegramNotifier posts the digest to a Telegram chat.
type TelegramNotifier struct {
	Sender MessageSender
	Logger *slog.Logger
}

func (t *TelegramNotifier) Notify(ctx context.Context, d *digest.Digest) error {
	msg := FormatDigest(d)
	if err := t.Sender.SendMessage(ctx, msg); err != nil {
		return err
	}
	metrics.Global.IncrementNotificationsSent()
	if t.Logger != nil {
		t.Logger.Info("digest sent to Telegram", "type", d.DigestType, "runes", utf8.RuneCountInString(msg))
	}
	return nil
}

// FormatDigest renders d as Telegram HTML. Stories that would push the
// message past the limit are left out.
func FormatDigest(d *digest.Digest) string {
	var head strings.Builder
	fmt.Fprintf(&head, "📰 <b>%s</b> | %s %s (Beijing)\n", html.EscapeString(d.TimeLabel), d.Date, d.BeijingTime)
	head.WriteString("━━━━━━━━━━━━━━━━━━━━\n\n")

	var foot strings.Builder
	fmt.Fprintf(&foot, "\n📊 %d stories analyzed across %d platforms, %d cross-platform",
		d.Metrics.TotalStoriesAnalyzed, d.Metrics.PlatformsCovered, d.Metrics.CrossPlatformStories)

	budget := maxMessageRunes - utf8.RuneCountInString(head.String()) - utf8.RuneCountInString(foot.String())

	var body strings.Builder
	if len(d.TopStories) == 0 {
		body.WriteString("No cross-platform stories this time.\n")
	}
	for _, s := range d.TopStories {
		block := formatStory(s)
		if utf8.RuneCountInString(body.String())+utf8.RuneCountInString(block) > budget {
			break
		}
		body.WriteString(block)
	}

	if ex := formatExclusives(d.PlatformExclusives); ex != "" &&
		utf8.RuneCountInString(body.String())+utf8.RuneCountInString(ex) <= budget {
		body.WriteString(ex)
	}

	msg := head.String() + body.String() + foot.String()
	return truncateRunes(msg, maxMessageRunes-1)
}

func formatStory(s digest.Story) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%d. %s</b>\n", s.Rank, html.EscapeString(s.PrimaryTitle))
	if s.EnglishTitle != "" && s.EnglishTitle != digest.UntranslatedTitle {
		fmt.Fprintf(&b, "🇬🇧 <i>%s</i>\n", html.EscapeString(s.EnglishTitle))
	}
	fmt.Fprintf(&b, "🏷 %s | %s\n", html.EscapeString(s.Category), html.EscapeString(strings.Join(platformNames(s.Platforms), ", ")))
	if s.Summary != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(s.Summary))
	}
	if s.SummaryZH != "" {
		fmt.Fprintf(&b, "%s\n", html.EscapeString(s.SummaryZH))
	}
	b.WriteString("\n")
	return b.String()
}

func formatExclusives(ex map[string]digest.Exclusive) string {
	if len(ex) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("🔎 <b>Platform exclusives</b>\n")
	for _, p := range news.Platforms {
		e, ok := ex[p.ID]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "• %s: %s\n", html.EscapeString(p.Name), html.EscapeString(e.Title))
	}
	return b.String()
}

func platformNames(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name := id
		for _, p := range news.Platforms {
			if p.ID == id {
				name = p.Name
				break
			}
		}
		out = append(out, name)
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
