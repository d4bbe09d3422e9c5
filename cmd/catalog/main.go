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

	"github.com/igourd/igourd-pos/internal/app"
	"github.com/igourd/igourd-pos/internal/catalog"
	cataloghttp "github.com/igourd/igourd-pos/internal/catalog/http"
	jobmetrics "github.com/igourd/igourd-pos/internal/jobs"
	"github.com/igourd/igourd-pos/internal/observability"
	"github.com/igourd/igourd-pos/jobs"
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

	storage, err := app.OpenStorage(cfg, logger)
	if err != nil {
		logger.Error("open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := storage.Close(); err != nil {
			logger.Warn("storage close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	store := catalog.NewStore(storage.Repository,
		catalog.WithLogger(logger),
		catalog.WithRecorder(metrics),
	)
	origin := store.Initialize(ctx)
	logger.Info("catalog ready", slog.String("origin", string(origin)), slog.Int("products", store.Len()))

	catalogHandler := cataloghttp.NewHandler(logger, store, cataloghttp.Options{
		MaxCombinations: cfg.CatalogMaxCombinations,
		Observer:        metrics,
	})

	var (
		worker     *jobs.Worker
		jobHandler *jobs.Handler
	)
	if cfg.CatalogJobsEnabled {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		catalogJobs := jobs.NewCatalogJobs(store, logger, jobmetrics.NewMetrics(metrics.Registerer()), cfg.CatalogMaxCombinations)

		var cron []jobs.CronRegistration
		if cfg.CatalogResetCron != "" {
			cron = append(cron, jobs.CronRegistration{Spec: cfg.CatalogResetCron, Task: jobs.NewCatalogResetTask()})
		}
		worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts: redisOpts,
			Logger:    logger,
			Handlers:  catalogJobs.Handlers(),
			Cron:      cron,
		})
		if err != nil {
			logger.Error("init worker", slog.Any("error", err))
			os.Exit(1)
		}

		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		CatalogHandler: catalogHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if worker != nil {
		group.Go(func() error {
			logger.Info("starting job worker")
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("catalog server", slog.Any("error", err))
		os.Exit(1)
	}
}
