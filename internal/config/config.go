package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Upstream  UpstreamConfig
	History   HistoryConfig
	Portfolio PortfolioConfig
	LogLevel  string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// UpstreamConfig configures the dividend data provider.
type UpstreamConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// HistoryConfig configures retrieval and refresh of dividend history.
type HistoryConfig struct {
	CacheTTL         time.Duration
	FetchConcurrency int
	SeedPath         string // optional bundled history imported on first start
	RefreshSchedule  string // cron spec with seconds, UTC; empty disables scheduled refresh
}

// PortfolioConfig locates the static portfolio and pins the reference date.
type PortfolioConfig struct {
	Path          string
	ReferenceDate string // YYYY-MM-DD; empty means the server clock
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	timeout, err := getDuration("UPSTREAM_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	rateLimit, err := getFloat("UPSTREAM_RATE_LIMIT", 4)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := getDuration("CACHE_TTL", 30*time.Minute)
	if err != nil {
		return nil, err
	}
	concurrency, err := getInt("FETCH_CONCURRENCY", 4)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		return nil, fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", concurrency)
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "3001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/dividends.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getList("CORS_ALLOWED_ORIGINS", []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://localhost",
			}),
		},
		Upstream: UpstreamConfig{
			BaseURL:   getEnv("UPSTREAM_BASE_URL", "https://www.wantgoo.com"),
			Timeout:   timeout,
			RateLimit: rateLimit,
		},
		History: HistoryConfig{
			CacheTTL:         cacheTTL,
			FetchConcurrency: concurrency,
			SeedPath:         getEnv("SEED_PATH", ""),
			RefreshSchedule:  getEnv("REFRESH_SCHEDULE", "0 30 10 * * 1-5"),
		},
		Portfolio: PortfolioConfig{
			Path:          getEnv("PORTFOLIO_PATH", "./portfolio.toml"),
			ReferenceDate: getEnv("REFERENCE_DATE", ""),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return f, nil
}

// getList splits a comma-separated variable, dropping empty items.
func getList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
