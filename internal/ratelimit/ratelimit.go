package ratelimit

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// ErrBudgetExceeded is returned by Use once a cap is reached.
var ErrBudgetExceeded = errors.New("summary request budget exceeded")

// Budget caps summary requests per provider and in total. Counters reset
// after the reset window passes.
type Budget struct {
	mu          sync.Mutex
	counts      map[string]int
	limits      map[string]int
	totalCount  int
	maxTotal    int
	window      time.Duration
	resetTime   time.Time
	tokensSaved int
	cacheHits   int
	cacheMisses int
	now         func() time.Time
	log         *slog.Logger
}

// NewBudget creates a budget. A zero or missing limit means unlimited.
func NewBudget(limits map[string]int, maxTotal int, window time.Duration) *Budget {
	if window <= 0 {
		window = 24 * time.Hour
	}
	l := make(map[string]int, len(limits))
	for k, v := range limits {
		l[k] = v
	}
	b := &Budget{
		counts:   make(map[string]int),
		limits:   l,
		maxTotal: maxTotal,
		window:   window,
		now:      time.Now,
		log:      slog.Default().With("component", "ratelimit"),
	}
	b.resetTime = b.now().Add(window)
	return b
}

// Allow reports whether provider may make another request.
func (b *Budget) Allow(provider string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.check(provider) == nil
}

// Use records one request for provider or returns ErrBudgetExceeded.
func (b *Budget) Use(provider string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	if err := b.check(provider); err != nil {
		b.log.Warn("summary budget reached", "provider", provider, "error", err)
		return err
	}

	b.counts[provider]++
	b.totalCount++
	b.cacheMisses++

	b.log.Debug("summary usage", "provider", provider,
		"used", b.counts[provider], "limit", b.limits[provider],
		"total", b.totalCount, "total_limit", b.maxTotal)
	return nil
}

func (b *Budget) check(provider string) error {
	if limit := b.limits[provider]; limit > 0 && b.counts[provider] >= limit {
		return fmt.Errorf("%s: %w (%d/%d)", provider, ErrBudgetExceeded, b.counts[provider], limit)
	}
	if b.maxTotal > 0 && b.totalCount >= b.maxTotal {
		return fmt.Errorf("total: %w (%d/%d)", ErrBudgetExceeded, b.totalCount, b.maxTotal)
	}
	return nil
}

// RecordCacheHit records a summary served from cache.
func (b *Budget) RecordCacheHit(estimatedTokens int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.cacheHits++
	b.tokensSaved += estimatedTokens
}

// GetCacheHitRate returns cache hit rate percentage
func (b *Budget) GetCacheHitRate() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hitRate()
}

func (b *Budget) hitRate() float64 {
	total := b.cacheHits + b.cacheMisses
	if total == 0 {
		return 0
	}
	return float64(b.cacheHits) / float64(total) * 100
}

// GetStats returns current usage statistics
func (b *Budget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":     b.totalCount,
		"total_limit":    b.maxTotal,
		"cache_hits":     b.cacheHits,
		"cache_misses":   b.cacheMisses,
		"cache_hit_rate": b.hitRate(),
		"tokens_saved":   b.tokensSaved,
		"reset_time":     b.resetTime,
	}
	for _, p := range b.providers() {
		stats[p+"_used"] = b.counts[p]
		stats[p+"_limit"] = b.limits[p]
	}
	return stats
}

func (b *Budget) providers() []string {
	seen := make(map[string]struct{})
	for p := range b.limits {
		seen[p] = struct{}{}
	}
	for p := range b.counts {
		seen[p] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// checkReset resets counters if reset time has passed
func (b *Budget) checkReset() {
	if !b.now().After(b.resetTime) {
		return
	}
	b.log.Info("resetting summary budget", "total_used", b.totalCount, "cache_hits", b.cacheHits)

	b.counts = make(map[string]int)
	b.totalCount = 0
	b.cacheHits = 0
	b.cacheMisses = 0
	b.tokensSaved = 0
	b.resetTime = b.now().Add(b.window)
}
