package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget_ProviderLimit(t *testing.T) {
	b := NewBudget(map[string]int{"gemini": 2}, 0, time.Hour)

	require.NoError(t, b.Use("gemini"))
	require.NoError(t, b.Use("gemini"))
	assert.False(t, b.Allow("gemini"))
	assert.ErrorIs(t, b.Use("gemini"), ErrBudgetExceeded)

	assert.True(t, b.Allow("openai"), "providers without a limit are unlimited")
	require.NoError(t, b.Use("openai"))
}

func TestBudget_TotalLimit(t *testing.T) {
	b := NewBudget(nil, 2, time.Hour)
	require.NoError(t, b.Use("gemini"))
	require.NoError(t, b.Use("openai"))
	assert.ErrorIs(t, b.Use("headline"), ErrBudgetExceeded)

	stats := b.GetStats()
	assert.Equal(t, 2, stats["total_used"])
	assert.Equal(t, 1, stats["gemini_used"])
	assert.Equal(t, 1, stats["openai_used"])
}

func TestBudget_Reset(t *testing.T) {
	now := time.Date(2025, 10, 1, 7, 0, 0, 0, time.UTC)
	b := NewBudget(map[string]int{"gemini": 1}, 0, time.Hour)
	b.now = func() time.Time { return now }
	b.resetTime = now.Add(time.Hour)

	require.NoError(t, b.Use("gemini"))
	assert.False(t, b.Allow("gemini"))

	now = now.Add(2 * time.Hour)
	assert.True(t, b.Allow("gemini"))
	assert.Equal(t, 0, b.GetStats()["total_used"])
}

func TestBudget_CacheHitRate(t *testing.T) {
	b := NewBudget(nil, 0, 0)
	assert.Zero(t, b.GetCacheHitRate())

	require.NoError(t, b.Use("headline"))
	b.RecordCacheHit(100)
	assert.InDelta(t, 50.0, b.GetCacheHitRate(), 1e-9)
	assert.Equal(t, 100, b.GetStats()["tokens_saved"])
}
