package main

import (
	"log/slog"
	"testing"

	"task-manager/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel("WARN"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("loud"))
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want slog.Level
	}{
		{"development default", config.Config{AppEnv: "development"}, slog.LevelDebug},
		{"production default", config.Config{AppEnv: "production"}, slog.LevelInfo},
		{"explicit level wins in development", config.Config{AppEnv: "development", LogLevel: "warn"}, slog.LevelWarn},
		{"explicit level in production", config.Config{AppEnv: "production", LogLevel: "error"}, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logLevel(&tt.cfg))
		})
	}
}

func TestNewLogger_HonoursLogLevelInDevelopment(t *testing.T) {
	logger := newLogger(&config.Config{AppEnv: "development", LogLevel: "error", LogFormat: "json"})
	assert.False(t, logger.Enabled(t.Context(), slog.LevelDebug))
	assert.True(t, logger.Enabled(t.Context(), slog.LevelError))

	logger = newLogger(&config.Config{AppEnv: "development"})
	assert.True(t, logger.Enabled(t.Context(), slog.LevelDebug))
}

func TestRootCommand(t *testing.T) {
	root := newRootCmd()
	assert.NotNil(t, root.PersistentFlags().Lookup("addr"))
	assert.NotNil(t, root.PersistentFlags().Lookup("database-url"))

	migrate, _, err := root.Find([]string{"migrate"})
	assert.NoError(t, err)
	assert.Equal(t, "migrate", migrate.Name())
}
