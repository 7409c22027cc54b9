// Package app связывает конфигурацию, хранилище и HTTP-сервер.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/database"
	"task-manager/internal/middleware"
	"task-manager/internal/tasks"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// OpenRepository создаёт хранилище по cfg.DatabaseURL. Возвращаемая
// функция закрывает соединение.
func OpenRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (tasks.Repository, func(), error) {
	driver := database.DetectDriver(cfg.DatabaseURL)
	logger.Info("opening task store", "driver", driver.String())

	switch driver {
	case database.DriverMemory:
		store, err := tasks.NewFileStore(ctx, "")
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case database.DriverJSON:
		store, err := tasks.NewFileStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil

	case database.DriverSQLite:
		db, err := database.OpenSQLite(ctx, database.SQLitePath(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		return tasks.NewSQLiteStore(db), func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}, nil

	case database.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			return nil, nil, err
		}
		return tasks.NewPostgresStore(pool), pool.Close, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// NewRouter собирает роуты сервиса и общие middleware.
func NewRouter(svc *tasks.Service, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)

	r.With(middleware.JSONHeaderMiddleware).Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}` + "\n"))
	})

	r.Mount("/", tasks.NewHandler(svc, cfg.RequestTimeout).Router())
	return r
}

// Run открывает хранилище, обслуживает HTTP на cfg.HTTPAddr и корректно
// останавливается после отмены ctx.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repo, closeRepo, err := OpenRepository(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open task store: %w", err)
	}
	defer closeRepo()

	svc := tasks.NewService(repo, tasks.WithLogger(logger))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(svc, cfg, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// Migrate применяет схему SQL-хранилища и завершается.
func Migrate(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	driver := database.DetectDriver(cfg.DatabaseURL)
	switch driver {
	case database.DriverSQLite, database.DriverPostgres:
		// Открытие SQL-хранилища применяет схему.
		_, closeRepo, err := OpenRepository(ctx, cfg, logger)
		if err != nil {
			return err
		}
		closeRepo()
		logger.Info("schema applied", "driver", driver.String())
		return nil
	default:
		logger.Info("nothing to migrate", "driver", driver.String())
		return nil
	}
}
