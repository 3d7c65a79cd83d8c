// Package config loads application settings from the environment.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	GitHubToken string
	SlackMode   bool
	DebugMode   bool
	LogLevel    string
	LogPretty   bool

	CacheFile string
	NoCache   bool

	HTTPTimeout      time.Duration
	RateLimitRetries int

	// TranslateURL is the LibreTranslate endpoint. Empty disables translation.
	TranslateURL string

	// MetricsFile, when set, receives a Prometheus textfile after each run.
	MetricsFile string
}

// FromEnvironment creates a Config from environment variables.
func FromEnvironment() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", "true")
	v.SetDefault("CACHE_FILE", "/tmp/gh-search-cache.gob")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("RATE_LIMIT_RETRIES", 5)
	v.SetDefault("TRANSLATE_URL", "https://libretranslate.de/translate")

	cfg := Config{
		GitHubToken:      v.GetString("GITHUB_TOKEN"),
		SlackMode:        isTrue(v.GetString("SLACK_MODE")),
		DebugMode:        isTrue(v.GetString("DEBUG")),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogPretty:        isTrue(v.GetString("LOG_PRETTY")),
		CacheFile:        v.GetString("CACHE_FILE"),
		NoCache:          isTrue(v.GetString("NO_CACHE")),
		HTTPTimeout:      v.GetDuration("HTTP_TIMEOUT"),
		RateLimitRetries: v.GetInt("RATE_LIMIT_RETRIES"),
		TranslateURL:     v.GetString("TRANSLATE_URL"),
		MetricsFile:      v.GetString("METRICS_FILE"),
	}
	if cfg.DebugMode {
		cfg.LogLevel = "debug"
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return cfg
}

// isTrue treats anything but "", "0" and "false" as enabled.
func isTrue(val string) bool {
	return val != "" && val != "0" && strings.ToLower(val) != "false"
}
