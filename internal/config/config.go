// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Summary providers accepted by SUMMARY_PROVIDER.
const (
	ProviderAuto     = "auto"
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderHeadline = "headline"
	ProviderNone     = "none"
)

type Config struct {
	// Paths
	DataDir             string // allow-listed write root, also holds platform snapshots
	DigestFile          string // latest digest, relative to DataDir
	ArchiveDir          string // dated archive, relative to DataDir
	PlatformsConfigPath string
	MaxItemsPerPlatform int

	// Summaries
	SummaryProvider    string
	GeminiAPIKey       string
	GeminiModel        string
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenAIModel        string
	MaxSummaryRequests int // per run, 0 = unlimited
	SummaryRPM         int
	FetchArticles      bool

	// Outputs
	DatabaseURL    string
	TelegramToken  string
	TelegramChatID string
	MinStories     int // skip writing digests with fewer top stories

	// App settings
	Debug                bool
	RequestTimeout       time.Duration
	RetryAttempts        int
	RetryDelay           time.Duration
	ServeInterval        time.Duration
	EnableHTTPMonitoring bool
	MonitoringPort       string
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Default values
		DataDir:             "docs/data",
		DigestFile:          "daily_digest.json",
		ArchiveDir:          "digest_archive",
		PlatformsConfigPath: "configs/platforms.yaml",
		MaxItemsPerPlatform: 20,
		SummaryProvider:     ProviderAuto,
		GeminiModel:         "gemini-1.5-flash",
		OpenAIModel:         "gpt-4o-mini",
		MaxSummaryRequests:  5,
		SummaryRPM:          30,
		RequestTimeout:      30 * time.Second,
		RetryAttempts:       3,
		RetryDelay:          2 * time.Second,
		ServeInterval:       15 * time.Minute,
		MonitoringPort:      "8080",
	}

	cfg.DataDir = getEnvOrDefault("DATA_DIR", cfg.DataDir)
	cfg.DigestFile = getEnvOrDefault("DIGEST_FILE", cfg.DigestFile)
	cfg.ArchiveDir = getEnvOrDefault("ARCHIVE_DIR", cfg.ArchiveDir)
	cfg.PlatformsConfigPath = getEnvOrDefault("PLATFORMS_CONFIG_PATH", cfg.PlatformsConfigPath)
	cfg.MaxItemsPerPlatform = getEnvIntOrDefault("MAX_ITEMS_PER_PLATFORM", cfg.MaxItemsPerPlatform)

	cfg.SummaryProvider = getEnvOrDefault("SUMMARY_PROVIDER", cfg.SummaryProvider)
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	cfg.OpenAIModel = getEnvOrDefault("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.MaxSummaryRequests = getEnvIntOrDefault("MAX_SUMMARY_REQUESTS", cfg.MaxSummaryRequests)
	cfg.SummaryRPM = getEnvIntOrDefault("SUMMARY_RPM", cfg.SummaryRPM)
	cfg.FetchArticles = getEnvBool("FETCH_ARTICLES")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	cfg.TelegramChatID = os.Getenv("TELEGRAM_CHAT_ID")
	cfg.MinStories = getEnvIntOrDefault("MIN_STORIES", cfg.MinStories)

	cfg.Debug = getEnvBool("DEBUG")
	cfg.RequestTimeout = getEnvDurationOrDefault("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)
	cfg.RetryDelay = getEnvDurationOrDefault("RETRY_DELAY", cfg.RetryDelay)
	cfg.ServeInterval = getEnvDurationOrDefault("SERVE_INTERVAL", cfg.ServeInterval)
	cfg.EnableHTTPMonitoring = getEnvBool("ENABLE_HTTP_MONITORING")
	cfg.MonitoringPort = getEnvOrDefault("MONITORING_PORT", cfg.MonitoringPort)

	return cfg, cfg.Validate()
}

// DigestPath is the full path of the latest digest file.
func (c *Config) DigestPath() string {
	return filepath.Join(c.DataDir, c.DigestFile)
}

// TelegramEnabled reports whether digest notifications are configured.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

func (c *Config) Validate() error {
	switch c.SummaryProvider {
	case ProviderAuto, ProviderHeadline, ProviderNone:
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when SUMMARY_PROVIDER=gemini")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when SUMMARY_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("SUMMARY_PROVIDER must be one of auto, gemini, openai, headline, none")
	}
	if c.TelegramToken != "" && c.TelegramChatID == "" {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	if c.DataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if c.MaxItemsPerPlatform <= 0 {
		return fmt.Errorf("MAX_ITEMS_PER_PLATFORM must be positive")
	}
	if c.SummaryRPM <= 0 {
		return fmt.Errorf("SUMMARY_RPM must be positive")
	}
	if c.MaxSummaryRequests < 0 {
		return fmt.Errorf("MAX_SUMMARY_REQUESTS must not be negative")
	}
	if c.RetryAttempts <= 0 {
		return fmt.Errorf("RETRY_ATTEMPTS must be positive")
	}
	if c.ServeInterval <= 0 {
		return fmt.Errorf("SERVE_INTERVAL must be positive")
	}
	return nil
}
