// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP settings
	Port            string
	ShutdownTimeout time.Duration

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	GeminiEndpoint    string
	MaxGeminiRequests int // per 24h window (0 = unlimited)

	// AI pacing
	AIRequestsPerSecond float64
	AIBurst             int
	AIBatchPause        time.Duration
	SummaryCacheTTL     time.Duration // 0 disables the summary cache

	// RSS settings
	FeedsConfigPath   string
	FeedTimeout       time.Duration
	FeedRetryAttempts int

	// Pipeline settings
	MaxArticles      int
	SummaryBatchSize int

	// App settings
	Debug     bool
	LogFormat string
}

// LoadDotEnv reads .env into the environment when present. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:                "8080",
		ShutdownTimeout:     10 * time.Second,
		GeminiModel:         "gemini-1.5-flash-latest",
		AIRequestsPerSecond: 3.33, // one call per ~300ms
		AIBurst:             1,
		AIBatchPause:        1200 * time.Millisecond,
		SummaryCacheTTL:     6 * time.Hour,
		FeedsConfigPath:     "configs/feeds.yaml",
		FeedTimeout:         15 * time.Second,
		FeedRetryAttempts:   1,
		MaxArticles:         150,
		SummaryBatchSize:    8,
		LogFormat:           "text",
	}

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.GeminiAPIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.GeminiEndpoint = os.Getenv("GEMINI_ENDPOINT")
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)

	var err error
	if cfg.MaxGeminiRequests, err = getEnvInt("MAX_GEMINI_REQUESTS", 0); err != nil {
		return nil, err
	}
	if cfg.AIBurst, err = getEnvInt("AI_BURST", cfg.AIBurst); err != nil {
		return nil, err
	}
	if cfg.FeedRetryAttempts, err = getEnvInt("FEED_RETRY_ATTEMPTS", cfg.FeedRetryAttempts); err != nil {
		return nil, err
	}
	if cfg.MaxArticles, err = getEnvInt("MAX_ARTICLES", cfg.MaxArticles); err != nil {
		return nil, err
	}
	if cfg.SummaryBatchSize, err = getEnvInt("SUMMARY_BATCH_SIZE", cfg.SummaryBatchSize); err != nil {
		return nil, err
	}
	if cfg.FeedTimeout, err = getEnvDuration("FEED_TIMEOUT", cfg.FeedTimeout); err != nil {
		return nil, err
	}
	if cfg.AIBatchPause, err = getEnvDuration("AI_BATCH_PAUSE", cfg.AIBatchPause); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheTTL, err = getEnvDuration("SUMMARY_CACHE_TTL", cfg.SummaryCacheTTL); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout); err != nil {
		return nil, err
	}

	if v := os.Getenv("AI_REQUESTS_PER_SECOND"); v != "" {
		val, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("AI_REQUESTS_PER_SECOND: %w", err)
		}
		cfg.AIRequestsPerSecond = val
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.SummaryBatchSize <= 0 {
		return fmt.Errorf("SUMMARY_BATCH_SIZE must be positive")
	}
	if c.FeedTimeout <= 0 {
		return fmt.Errorf("FEED_TIMEOUT must be positive")
	}
	if c.FeedRetryAttempts <= 0 {
		return fmt.Errorf("FEED_RETRY_ATTEMPTS must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.AIBatchPause < 0 {
		return fmt.Errorf("AI_BATCH_PAUSE must not be negative")
	}
	if c.SummaryCacheTTL < 0 {
		return fmt.Errorf("SUMMARY_CACHE_TTL must not be negative")
	}
	if c.AIRequestsPerSecond < 0 {
		return fmt.Errorf("AI_REQUESTS_PER_SECOND must not be negative")
	}
	if c.AIBurst <= 0 {
		return fmt.Errorf("AI_BURST must be positive")
	}
	if c.MaxGeminiRequests < 0 {
		return fmt.Errorf("MAX_GEMINI_REQUESTS must not be negative")
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("LOG_FORMAT must be 'text' or 'json'")
	}
	return nil
}
