package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis (optional: token revocation and realtime progress)
	RedisURL string

	// JWT
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	GeminiTimeout        time.Duration

	// YouTube
	YouTubeAPIKey     string
	YouTubeMaxResults int
	YouTubeTimeout    time.Duration

	// Auth routes
	AuthRateLimitPerMinute int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "8080"),
		Env:                    getEnvOrDefault("ENV", "development"),
		DatabaseURL:            mustGetEnv("DATABASE_URL"),
		MigrationsDir:          getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:               getEnvOrDefault("REDIS_URL", ""),
		JWTSecret:              mustGetEnv("JWT_SECRET"),
		JWTAccessTTL:           time.Duration(getEnvAsIntOrDefault("JWT_ACCESS_TTL_MINUTES", 15)) * time.Minute,
		GeminiAPIKey:           mustGetEnv("GEMINI_API_KEY"),
		GeminiModel:            getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiConcurrentReqs:   getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		GeminiTimeout:          time.Duration(getEnvAsIntOrDefault("GEMINI_TIMEOUT_SECONDS", 60)) * time.Second,
		YouTubeAPIKey:          mustGetEnv("YOUTUBE_API_KEY"),
		YouTubeMaxResults:      getEnvAsIntOrDefault("YOUTUBE_MAX_RESULTS", 5),
		YouTubeTimeout:         time.Duration(getEnvAsIntOrDefault("YOUTUBE_TIMEOUT_SECONDS", 10)) * time.Second,
		AuthRateLimitPerMinute: getEnvAsIntOrDefault("AUTH_RATE_LIMIT_PER_MINUTE", 10),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", "http://localhost:5173"),
	}

	return cfg
}

// IsProduction reports whether the process runs with ENV=production (or prod).
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
