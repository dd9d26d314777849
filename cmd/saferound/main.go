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

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/saferound/saferound/internal/app"
	"github.com/saferound/saferound/internal/drinks"
	"github.com/saferound/saferound/internal/groups"
	"github.com/saferound/saferound/internal/observability"
	"github.com/saferound/saferound/internal/platform/cache"
	"github.com/saferound/saferound/internal/platform/db"
	"github.com/saferound/saferound/internal/sobriety"
	"github.com/saferound/saferound/internal/users"
	"github.com/saferound/saferound/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
		logger.Error("connect postgres", slog.Any("error", err))
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

	metrics := observability.NewMetrics()

	jobClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	drinksRepo := drinks.NewRepository(pool)
	drinksService := drinks.NewService(drinks.ServiceConfig{
		Logger:   logger,
		Profiles: usersService,
		Repo:     drinksRepo,
		Notifier: jobClient,
		Metrics:  metrics,
		Cooldown: cfg.DrinkCooldown,
	})
	drinksHandler := drinks.NewHandler(logger, drinksService)

	assessor := sobriety.NewAssessor(logger, cfg.GeminiAPIKey, cfg.SobrietyTimeout, metrics)
	sobrietyHandler := sobriety.NewHandler(logger, assessor, jobClient)

	codeStore := groups.NewCodeStore(redisClient, cfg.GroupCodeTTL)
	groupsRepo := groups.NewRepository(pool)
	groupsService := groups.NewService(groupsRepo, codeStore, jobClient)
	groupsHandler := groups.NewHandler(logger, groupsService)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		UsersHandler:    usersHandler,
		DrinksHandler:   drinksHandler,
		SobrietyHandler: sobrietyHandler,
		GroupsHandler:   groupsHandler,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("saferound api listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("saferound api stopped")
}
