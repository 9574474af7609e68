package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"DATA_DIR", "DIGEST_FILE", "ARCHIVE_DIR", "PLATFORMS_CONFIG_PATH", "MAX_ITEMS_PER_PLATFORM",
	"SUMMARY_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL", "OPENAI_API_KEY", "OPENAI_BASE_URL",
	"OPENAI_MODEL", "MAX_SUMMARY_REQUESTS", "SUMMARY_RPM", "FETCH_ARTICLES", "DATABASE_URL",
	"TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "MIN_STORIES", "DEBUG", "REQUEST_TIMEOUT",
	"RETRY_ATTEMPTS", "RETRY_DELAY", "SERVE_INTERVAL", "ENABLE_HTTP_MONITORING", "MONITORING_PORT",
}

// isolate clears the process env for the keys Load reads and runs in an
// empty directory so no stray .env file is picked up.
func isolate(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "docs/data", cfg.DataDir)
	assert.Equal(t, "docs/data/daily_digest.json", cfg.DigestPath())
	assert.Equal(t, "digest_archive", cfg.ArchiveDir)
	assert.Equal(t, 20, cfg.MaxItemsPerPlatform)
	assert.Equal(t, ProviderAuto, cfg.SummaryProvider)
	assert.Equal(t, 5, cfg.MaxSummaryRequests)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Minute, cfg.ServeInterval)
	assert.Equal(t, "8080", cfg.MonitoringPort)
	assert.False(t, cfg.FetchArticles)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	isolate(t)
	t.Setenv("DATA_DIR", "/srv/data")
	t.Setenv("SUMMARY_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("FETCH_ARTICLES", "true")
	t.Setenv("SERVE_INTERVAL", "5m")
	t.Setenv("MAX_ITEMS_PER_PLATFORM", "bogus")
	t.Setenv("TELEGRAM_TOKEN", "t")
	t.Setenv("TELEGRAM_CHAT_ID", "c")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", cfg.DataDir)
	assert.Equal(t, ProviderGemini, cfg.SummaryProvider)
	assert.True(t, cfg.FetchArticles)
	assert.Equal(t, 5*time.Minute, cfg.ServeInterval)
	assert.Equal(t, 20, cfg.MaxItemsPerPlatform)
	assert.True(t, cfg.TelegramEnabled())
}

func TestLoad_DotEnv(t *testing.T) {
	isolate(t)
	require.NoError(t, os.WriteFile(".env", []byte("SUMMARY_PROVIDER=none\nMIN_STORIES=2\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("SUMMARY_PROVIDER")
		_ = os.Unsetenv("MIN_STORIES")
	})
	// godotenv never overrides variables that are already set, even to "".
	require.NoError(t, os.Unsetenv("SUMMARY_PROVIDER"))
	require.NoError(t, os.Unsetenv("MIN_STORIES"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderNone, cfg.SummaryProvider)
	assert.Equal(t, 2, cfg.MinStories)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataDir:             "docs/data",
			MaxItemsPerPlatform: 20,
			SummaryProvider:     ProviderAuto,
			SummaryRPM:          30,
			RetryAttempts:       3,
			ServeInterval:       time.Minute,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.SummaryProvider = "claude" }, true},
		{"gemini without key", func(c *Config) { c.SummaryProvider = ProviderGemini }, true},
		{"gemini with key", func(c *Config) { c.SummaryProvider = ProviderGemini; c.GeminiAPIKey = "k" }, false},
		{"openai without key", func(c *Config) { c.SummaryProvider = ProviderOpenAI }, true},
		{"telegram token without chat", func(c *Config) { c.TelegramToken = "t" }, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"zero items", func(c *Config) { c.MaxItemsPerPlatform = 0 }, true},
		{"zero rpm", func(c *Config) { c.SummaryRPM = 0 }, true},
		{"negative budget", func(c *Config) { c.MaxSummaryRequests = -1 }, true},
		{"zero retries", func(c *Config) { c.RetryAttempts = 0 }, true},
		{"zero interval", func(c *Config) { c.ServeInterval = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
