package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/podcastgen/internal/app"
	"github.com/nikhilbhutani/podcastgen/internal/cache"
	"github.com/nikhilbhutani/podcastgen/internal/config"
	"github.com/nikhilbhutani/podcastgen/internal/database"
	"github.com/nikhilbhutani/podcastgen/internal/jobs"
	"github.com/nikhilbhutani/podcastgen/internal/queue"
	"github.com/nikhilbhutani/podcastgen/internal/queue/workers"
	"github.com/nikhilbhutani/podcastgen/internal/storage"
	"github.com/nikhilbhutani/podcastgen/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var db *pgxpool.Pool
	if cfg.Database.URL != "" {
		db, err = database.NewPool(ctx, cfg.Database)
		if err != nil {
			slog.Warn("database unavailable, generation logs and webhook history go to files only", "error", err)
		} else {
			defer db.Close()
		}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	store := jobs.NewStore(cache.NewCache(rdb, "podcastgen:"), cfg.Worker.JobTTL, nil)

	pipeline, err := app.BuildPipeline(cfg, app.NewMiniMax(cfg.MiniMax), db, app.Options{})
	if err != nil {
		slog.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to init storage", "error", err)
		os.Exit(1)
	}
	runner := workers.NewPublisher(pipeline, objects)

	queueClient := queue.NewClient(cfg.Redis, cfg.Worker)
	defer queueClient.Close()

	srv := asynq.NewServer(
		queue.RedisOpt(cfg.Redis),
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues:      queue.Priorities,
			Logger:      queue.NewLogger(logger),
		},
	)

	registry := queue.NewHandlersRegistry(logger)

	podcastWorker := workers.NewPodcastWorker(runner, store, queueClient)
	batchWorker := workers.NewBatchWorker(runner, store, queueClient, cfg.Podcast.OutputDir, cfg.Podcast.Concurrency)
	webhookWorker := workers.NewWebhookWorker(webhook.NewDispatcher(db, cfg.Webhook.Secret, cfg.Webhook.Timeout))

	registry.Register(queue.TypePodcastGenerate, asynq.HandlerFunc(podcastWorker.ProcessTask))
	registry.Register(queue.TypePodcastBatch, asynq.HandlerFunc(batchWorker.ProcessTask))
	registry.Register(queue.TypeWebhookDeliver, asynq.HandlerFunc(webhookWorker.ProcessTask))

	slog.Info("starting worker", "concurrency", cfg.Worker.Concurrency)
	if err := srv.Run(registry.Mux()); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
