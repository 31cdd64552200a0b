// Command todo-api serves the multi-user todo HTTP API.
//
// Configuration comes from the environment (and an optional .env file); see
// package config for the variables. On start the schema is migrated unless
// DB_AUTO_MIGRATE=false.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Skryldev/todo-api/api"
	"github.com/Skryldev/todo-api/auth"
	"github.com/Skryldev/todo-api/config"
	"github.com/Skryldev/todo-api/db"
	"github.com/Skryldev/todo-api/migrations"
	"github.com/Skryldev/todo-api/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("todo-api: fatal", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// ── Database ──────────────────────────────────────────────────────────
	database, err := db.Open(db.Config{
		DSN:             cfg.DatabaseURL,
		DriverName:      cfg.DBDriver,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		DefaultTimeout:  cfg.QueryTimeout,
		Hooks: []db.Hook{
			db.NewLogHook(db.LogHookConfig{
				Logger:             logger,
				SlowQueryThreshold: cfg.SlowQuery,
				LogArgs:            cfg.LogQueryArgs,
			}),
		},
	})
	if err != nil {
		return err
	}
	defer database.Close()

	if cfg.AutoMigrate {
		if err := migrate(database, cfg.DatabaseURL, logger); err != nil {
			return err
		}
	}

	// ── HTTP ──────────────────────────────────────────────────────────────
	hasher := auth.NewHasher(cfg.BcryptCost)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	server := api.NewServer(
		store.NewTodos(database),
		store.NewUsers(database, hasher),
		tokens,
		api.Options{CORSOrigins: cfg.CORSOrigins, Logger: logger, Pool: database},
	)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("todo-api: listening", "addr", cfg.Addr, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("todo-api: serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("todo-api: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("todo-api: shutdown: %w", err)
	}
	return nil
}

// migrate brings the schema up to date. SQLite runs over the open pool so
// that in-memory databases work; PostgreSQL goes through its own connection.
func migrate(database *db.DB, dsn string, logger *slog.Logger) error {
	drv := database.Driver()
	if drv.Dialect() == "sqlite3" {
		return migrations.UpWithInstance(database.Raw(), drv.Dialect())
	}
	url, err := drv.MigrateURL(dsn)
	if err != nil {
		return err
	}
	return migrations.Up(url, drv.Dialect(), logger)
}
