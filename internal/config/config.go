// Package config reads the service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTP      HTTPConfig
	Cafe      CafeConfig
	Journal   JournalConfig
	Redis     RedisConfig
	Telemetry TelemetryConfig
}

type HTTPConfig struct {
	Addr string
}

type CafeConfig struct {
	// MenuFile is a YAML menu; empty selects the built-in menu.
	MenuFile          string
	Location          *time.Location
	LowStockThreshold int
}

type JournalConfig struct {
	// Path of the SQLite journal; empty disables the journal.
	Path string
}

type RedisConfig struct {
	// Addr empty disables idempotent order submission.
	Addr           string
	IdempotencyTTL time.Duration
}

type TelemetryConfig struct {
	ServiceName  string
	OTLPEndpoint string
	LogLevel     string
}

// Load reads a .env file when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc, err := time.LoadLocation(getEnv("CAFE_TIMEZONE", "Asia/Seoul"))
	if err != nil {
		return nil, fmt.Errorf("config: CAFE_TIMEZONE: %w", err)
	}

	lowStock, err := strconv.Atoi(getEnv("LOW_STOCK_THRESHOLD", "5"))
	if err != nil || lowStock < 0 {
		return nil, fmt.Errorf("config: LOW_STOCK_THRESHOLD must be a non-negative integer, got %q", os.Getenv("LOW_STOCK_THRESHOLD"))
	}

	ttl, err := time.ParseDuration(getEnv("IDEMPOTENCY_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("config: IDEMPOTENCY_TTL must be a positive duration, got %q", os.Getenv("IDEMPOTENCY_TTL"))
	}

	return &Config{
		HTTP: HTTPConfig{
			Addr: getEnv("HTTP_ADDR", ":8080"),
		},
		Cafe: CafeConfig{
			MenuFile:          os.Getenv("MENU_FILE"),
			Location:          loc,
			LowStockThreshold: lowStock,
		},
		Journal: JournalConfig{
			Path: os.Getenv("JOURNAL_PATH"),
		},
		Redis: RedisConfig{
			Addr:           os.Getenv("REDIS_ADDR"),
			IdempotencyTTL: ttl,
		},
		Telemetry: TelemetryConfig{
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "cafe-api"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
