package summarize

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/deusflow/trenddigest/internal/cache"
	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/ratelimit"
)

// estimatedTokens is what one summary request costs on average.
const estimatedTokens = 600

// Budgeted charges each call to Next against a request budget and serves
// repeated stories from the cache.
type Budgeted struct {
	Name     string
	Next     digest.Summarizer
	Budget   *ratelimit.Budget
	Cache    *cache.Cache
	CacheTTL time.Duration
}

func (b *Budgeted) Summarize(ctx context.Context, req digest.Request) (digest.Summary, error) {
	key := cache.GenerateKey("summary", b.Name, strings.Join(req.Titles, "\n"))
	if b.Cache != nil {
		if v, ok := b.Cache.Get(key); ok {
			if s, ok := v.(digest.Summary); ok {
				b.Budget.RecordCacheHit(estimatedTokens)
				return s, nil
			}
		}
	}

	if err := b.Budget.Use(b.Name); err != nil {
		if errors.Is(err, ratelimit.ErrBudgetExceeded) {
			return digest.Summary{}, nil
		}
		return digest.Summary{}, err
	}

	s, err := b.Next.Summarize(ctx, req)
	if err != nil {
		return digest.Summary{}, err
	}
	if !s.Empty() && b.Cache != nil {
		ttl := b.CacheTTL
		if ttl <= 0 {
			ttl = 6 * time.Hour
		}
		b.Cache.Set(key, s, ttl)
	}
	return s, nil
}
