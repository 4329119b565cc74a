package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/jc230285/s42-dashboard/internal/auth"
	"github.com/jc230285/s42-dashboard/internal/calendar"
	"github.com/jc230285/s42-dashboard/internal/config"
	httpserver "github.com/jc230285/s42-dashboard/internal/http"
	"github.com/jc230285/s42-dashboard/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "err", err)
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelInfo,
		}),
	))

	slog.Info("starting s42 dashboard server")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		slog.Error("failed to create db pool", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := store.ApplyMigrations(ctx, pool); err != nil {
		slog.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}

	stor := store.New(pool)
	sessionManager := auth.NewSessionManager(cfg)
	authService, err := auth.NewService(ctx, cfg, stor, sessionManager)
	if err != nil {
		slog.Error("failed to initialize auth service", "err", err)
		os.Exit(1)
	}

	feedCache := calendar.NewCache(cfg.Calendar.CacheTTL)
	aggregator := calendar.NewAggregator(feedCache)

	r := httpserver.NewRouter(cfg, stor, authService, aggregator)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("graceful shutdown failed", "err", err)
	}
}
