package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{
		"APP_ENV", "HTTP_ADDR", "REQUEST_TIMEOUT", "SHUTDOWN_TIMEOUT",
		"DATABASE_URL", "DB_MAX_CONNS", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, &Config{
		AppEnv:          "development",
		HTTPAddr:        ":8080",
		RequestTimeout:  2 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		DatabaseURL:     "tasks.db",
		DBMaxConns:      10,
		LogLevel:        "",
		LogFormat:       "text",
	}, cfg)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("REQUEST_TIMEOUT", "500ms")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/tasks")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 500*time.Millisecond, cfg.RequestTimeout)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "postgres://u:p@localhost/tasks", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.DBMaxConns)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_BadNumbersFallBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DB_MAX_CONNS", "many")
	t.Setenv("REQUEST_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
}
