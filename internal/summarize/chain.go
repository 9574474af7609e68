// Package summarize composes the configured summary providers.
package summarize

import (
	"context"
	"log/slog"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/metrics"
)

// Provider is a named summarizer.
type Provider struct {
	Name       string
	Summarizer digest.Summarizer
}

// Chain tries providers in order until one returns a complete summary.
type Chain struct {
	Providers []Provider
	Logger    *slog.Logger
}

func (c *Chain) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	var lastErr error
	for _, p := range c.Providers {
		if err := ctx.Err(); err != nil {
			return digest.Summary{}, err
		}

		s, err := p.Summarizer.Summarize(ctx, req)
		switch {
		case err != nil:
			metrics.RecordSummary(p.Name, "error")
			c.logger().Warn("summarizer failed", "provider", p.Name, "error", err)
			lastErr = err
		case s.Empty():
			metrics.RecordSummary(p.Name, "empty")
		default:
			metrics.RecordSummary(p.Name, "ok")
			return s, nil
		}
	}
	return digest.Summary{}, lastErr
}

// Names lists the providers in the order they are tried.
func (c *Chain) Names() []string {
	out := make([]string, 0, len(c.Providers))
	for _, p := range c.Providers {
		out = append(out, p.Name)
	}
	return out
}

func (c *Chain) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
