package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Data layout
	DataDir       string
	WindowMinutes int

	// Provider credentials
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	XBearerToken       string
	YouTubeAPIKey      string

	// Chat companion
	GeminiAPIKey string
	GeminiModel  string

	// Optional archive of tagging outputs to Azure Blob
	ArchiveAccount   string
	ArchiveContainer string

	// Optional topic digest after a tagging run
	DigestWebhookURL string
	DigestEmail      string
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string

	// Optional scheduled provider pull while serving
	PullProvider string
	PullSchedule string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "7070"),
		Debug: getBoolEnv("DEBUG", false),

		DataDir:       getEnv("DATA_DIR", "data"),
		WindowMinutes: getIntEnv("WINDOW_MINUTES", 30),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		RedditUsername:     getEnv("REDDIT_USERNAME", ""),
		RedditPassword:     getEnv("REDDIT_PASSWORD", ""),
		XBearerToken:       getEnv("X_BEARER_TOKEN", ""),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		ArchiveAccount:   getEnv("ARCHIVE_STORAGE_ACCOUNT", ""),
		ArchiveContainer: getEnv("ARCHIVE_STORAGE_CONTAINER", "feedpulse"),

		DigestWebhookURL: getEnv("DIGEST_WEBHOOK_URL", ""),
		DigestEmail:      getEnv("DIGEST_EMAIL", ""),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getIntEnv("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		PullProvider: getEnv("PULL_PROVIDER", ""),
		PullSchedule: getEnv("PULL_SCHEDULE", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.WindowMinutes <= 0 {
		return fmt.Errorf("WINDOW_MINUTES must be positive")
	}

	if c.DigestEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when DIGEST_EMAIL is set")
		}
	}

	if c.PullSchedule != "" && c.PullProvider == "" {
		return fmt.Errorf("PULL_PROVIDER is required when PULL_SCHEDULE is set")
	}

	return nil
}

// File names inside DataDir. The raw log is the sole durable source of
// truth; everything else is a derived, replaceable snapshot.
const (
	RawLogFile    = "session_raw.jsonl"
	WindowFile    = "session_last30.json"
	FeaturesFile  = "session_topics.json"
	AggregateFile = "piechart.json"
)

// RawLogPath returns the absolute path of the append-only post log.
func (c *Config) RawLogPath() string {
	return filepath.Join(c.DataDir, RawLogFile)
}

// WindowDuration returns the rolling window length.
func (c *Config) WindowDuration() time.Duration {
	return time.Duration(c.WindowMinutes) * time.Minute
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
