package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/saferound/saferound/internal/app"
	"github.com/saferound/saferound/internal/groups"
	jobmetrics "github.com/saferound/saferound/internal/jobs"
	"github.com/saferound/saferound/internal/platform/cache"
	"github.com/saferound/saferound/internal/platform/db"
	"github.com/saferound/saferound/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := jobmetrics.NewMetrics(nil)

	codeStore := groups.NewCodeStore(redisClient, cfg.GroupCodeTTL)
	groupsRepo := groups.NewRepository(pool)
	// The worker performs the fan-out itself; no dispatcher, or notification
	// tasks would loop back into the queue.
	groupsService := groups.NewService(groupsRepo, codeStore, nil)

	notifyJob := jobs.NewGuardianNotifyJob(groupsService, logger, metrics)
	archiveJob := jobs.NewDrinkArchiveJob(pool, logger, metrics)

	archiveTask, err := jobs.NewDrinkArchiveTask(cfg.ArchiveRetentionDays)
	if err != nil {
		logger.Error("build archive task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskGuardianNotify, Handler: notifyJob.Handle},
			{Type: jobs.TaskDrinkArchive, Handler: archiveJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ArchiveCronSpec, Task: archiveTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("saferound worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("saferound worker stopped")
}
