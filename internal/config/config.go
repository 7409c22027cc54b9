package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppEnv string

	// HTTP
	HTTPAddr        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	// Storage. DatabaseURL selects the backend: "memory", a *.json file,
	// a SQLite path or URL, or a postgres:// URL.
	DatabaseURL string
	DBMaxConns  int

	// Logging. An empty LogLevel means debug in development, info otherwise.
	LogLevel  string
	LogFormat string
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	// A missing .env is fine.
	_ = godotenv.Load()

	return &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		RequestTimeout:  getDurationEnv("REQUEST_TIMEOUT", 2*time.Second),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 10*time.Second),
		DatabaseURL:     getEnv("DATABASE_URL", "tasks.db"),
		DBMaxConns:      getIntEnv("DB_MAX_CONNS", 10),
		LogLevel:        getEnv("LOG_LEVEL", ""),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
