package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/podcastgen/internal/api"
	"github.com/nikhilbhutani/podcastgen/internal/api/handlers"
	"github.com/nikhilbhutani/podcastgen/internal/app"
	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/database"
	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/voices"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var checks []handlers.Check

	// Postgres is optional; it only backs generation logs.
	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, running without DB", "error", err)
		} else {
			defer db.Close()
			if err := database.RunMigrations(ctx, db, database.MigrationSource(cfg.Database.MigrationsPath)); err != nil {
				slog.Warn("migrations failed", "error", err)
			}
			checks = append(checks, handlers.Check{Name: "database", Ping: func(ctx context.Context) error {
				return database.Ping(ctx, db)
			}})
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable at startup", "error", err)
	}
	redisCache := cache.NewCache(rdb, "podcastgen:")
	checks = append(checks, handlers.Check{Name: "redis", Ping: redisCache.Ping})

	queueClient := queue.NewClient(cfg.Redis, cfg.Worker)
	defer queueClient.Close()

	var lister voices.Lister
	if mm := app.NewMiniMax(cfg.MiniMax); mm != nil {
		lister = mm.Voice
	}

	router := api.NewRouter(cfg, api.Deps{
		Jobs:    jobs.NewStore(redisCache, cfg.Worker.JobTTL, nil),
		Queue:   queueClient,
		Catalog: voices.NewCatalog(lister, redisCache, voices.WithTTL(cfg.MiniMax.VoiceTTL)),
		Checks:  checks,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
