package config

import (
	"os"
	"testing"
	"time"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
		{"uses default for non-positive", "TEST_INT_4", "-3", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestLoad_AppliesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/studymate")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("YOUTUBE_API_KEY", "youtube-key")
	t.Setenv("PORT", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("JWT_ACCESS_TTL_MINUTES", "")
	t.Setenv("GEMINI_TIMEOUT_SECONDS", "")
	t.Setenv("YOUTUBE_MAX_RESULTS", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Expected default port 8080, got %q", cfg.Port)
	}
	if cfg.RedisURL != "" {
		t.Errorf("Expected empty redis URL, got %q", cfg.RedisURL)
	}
	if cfg.JWTAccessTTL != 15*time.Minute {
		t.Errorf("Expected 15m token TTL, got %s", cfg.JWTAccessTTL)
	}
	if cfg.GeminiTimeout != 60*time.Second {
		t.Errorf("Expected 60s Gemini timeout, got %s", cfg.GeminiTimeout)
	}
	if cfg.YouTubeMaxResults != 5 {
		t.Errorf("Expected 5 video results, got %d", cfg.YouTubeMaxResults)
	}
	if cfg.IsProduction() {
		t.Errorf("Expected development environment by default")
	}
}

func TestLoad_PanicsWithoutYouTubeKey(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/studymate")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("YOUTUBE_API_KEY", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when YOUTUBE_API_KEY is missing")
		}
	}()

	Load()
}
