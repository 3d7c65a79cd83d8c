package config

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GITHUB_TOKEN", "SLACK_MODE", "DEBUG", "LOG_LEVEL", "LOG_PRETTY",
		"CACHE_FILE", "NO_CACHE", "HTTP_TIMEOUT", "RATE_LIMIT_RETRIES",
		"TRANSLATE_URL", "METRICS_FILE",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvironment_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := FromEnvironment()
	if cfg.GitHubToken != "" {
		t.Errorf("expected empty token, got %q", cfg.GitHubToken)
	}
	if cfg.SlackMode {
		t.Error("expected SlackMode false by default")
	}
	if cfg.DebugMode {
		t.Error("expected DebugMode false by default")
	}
	if cfg.NoCache {
		t.Error("expected NoCache false by default")
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
}

func TestFromEnvironment_ExplicitValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GITHUB_TOKEN", "ghp_test123")
	t.Setenv("CACHE_FILE", "/var/tmp/c.gob")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RETRIES", "2")
	t.Setenv("TRANSLATE_URL", "http://localhost:5000/translate")
	t.Setenv("METRICS_FILE", "/tmp/m.prom")

	cfg := FromEnvironment()
	if cfg.GitHubToken != "ghp_test123" {
		t.Errorf("got %q, want ghp_test123", cfg.GitHubToken)
	}
	if cfg.CacheFile != "/var/tmp/c.gob" {
		t.Errorf("CacheFile = %q", cfg.CacheFile)
	}
	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("HTTPTimeout = %v, want 5s", cfg.HTTPTimeout)
	}
	if cfg.RateLimitRetries != 2 {
		t.Errorf("RateLimitRetries = %d, want 2", cfg.RateLimitRetries)
	}
	if cfg.TranslateURL != "http://localhost:5000/translate" {
		t.Errorf("TranslateURL = %q", cfg.TranslateURL)
	}
	if cfg.MetricsFile != "/tmp/m.prom" {
		t.Errorf("MetricsFile = %q", cfg.MetricsFile)
	}
}

func TestFromEnvironment_SlackMode(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("SLACK_MODE="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SLACK_MODE", tt.val)
			cfg := FromEnvironment()
			if cfg.SlackMode != tt.want {
				t.Errorf("SLACK_MODE=%q → SlackMode=%v, want %v", tt.val, cfg.SlackMode, tt.want)
			}
		})
	}
}

func TestFromEnvironment_DebugForcesDebugLevel(t *testing.T) {
	tests := []struct {
		val       string
		wantDebug bool
	}{
		{"true", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run("DEBUG="+tt.val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEBUG", tt.val)
			t.Setenv("LOG_LEVEL", "warn")
			cfg := FromEnvironment()
			if cfg.DebugMode != tt.wantDebug {
				t.Errorf("DEBUG=%q → DebugMode=%v, want %v", tt.val, cfg.DebugMode, tt.wantDebug)
			}
			wantLevel := "warn"
			if tt.wantDebug {
				wantLevel = "debug"
			}
			if cfg.LogLevel != wantLevel {
				t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, wantLevel)
			}
		})
	}
}
