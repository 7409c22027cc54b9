package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"task-manager/internal/app"
	"task-manager/internal/config"

	"github.com/spf13/cobra"
)

// Здесь только:
// - сборка дерева команд;
// - сигналы остановки.
// Связывание зависимостей живёт в internal/app.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		addr        string
		databaseURL string
	)

	// loadConfig: флаги перекрывают переменные окружения.
	loadConfig := func() (*config.Config, *slog.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, nil, err
		}
		if addr != "" {
			cfg.HTTPAddr = addr
		}
		if databaseURL != "" {
			cfg.DatabaseURL = databaseURL
		}
		return cfg, newLogger(cfg), nil
	}

	root := &cobra.Command{
		Use:          "task-server",
		Short:        "Task management HTTP API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := app.Run(cmd.Context(), cfg, logger); err != nil {
				logger.Error("server stopped", "error", err)
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "task store: memory, *.json, sqlite path or postgres:// URL (overrides DATABASE_URL)")

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return app.Migrate(cmd.Context(), cfg, logger)
		},
	})

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevel(cfg)}

	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// logLevel: явный LOG_LEVEL важнее; без него в development пишем debug.
func logLevel(cfg *config.Config) slog.Level {
	switch {
	case cfg.LogLevel != "":
		return parseLevel(cfg.LogLevel)
	case cfg.IsDevelopment():
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		fmt.Fprintf(os.Stderr, "unknown LOG_LEVEL %q, using info\n", s)
		return slog.LevelInfo
	}
	return level
}
