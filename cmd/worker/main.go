package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/medipos-erp/medipos/internal/app"
	"github.com/medipos-erp/medipos/internal/backup"
	"github.com/medipos-erp/medipos/internal/ledger"
	"github.com/medipos-erp/medipos/internal/observability"
	"github.com/medipos-erp/medipos/internal/platform/cache"
	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	var statementCache *ledger.Cache
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, statement cache invalidation disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		statementCache = ledger.NewCache(redisClient, cfg.StatementCacheTTL)
	}

	jobsRepo := jobs.NewRepository(pool)
	driftScanner := jobs.NewDriftScanner(ledger.NewRepository(pool), jobsRepo, statementCache, metrics, logger)
	stockScanner := jobs.NewStockScanner(jobsRepo, metrics, logger)
	backupService := backup.NewService(backup.NewRepository(pool))

	worker, err := newWorker(cfg, logger, driftScanner, stockScanner, backupService)
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}

func newWorker(cfg *app.Config, logger *slog.Logger, drift *jobs.DriftScanner, stock *jobs.StockScanner, backupService *backup.Service) (*jobs.Worker, error) {
	now := time.Now().UTC()
	driftTask, err := jobs.NewLedgerDriftScanTask(now)
	if err != nil {
		return nil, err
	}
	stockTask, err := jobs.NewStockIntegrityScanTask(now)
	if err != nil {
		return nil, err
	}
	backupTask, err := jobs.NewBackupSnapshotTask(now)
	if err != nil {
		return nil, err
	}

	return jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerDriftScan, Handler: drift.Handler()},
			{Type: jobs.TaskStockIntegrityScan, Handler: stock.Handler()},
			{Type: jobs.TaskBackupSnapshot, Handler: jobs.BackupSnapshotHandler(backupService, cfg.BackupDir, logger)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 1 * * *", Task: driftTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 1 * * *", Task: stockTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 2 * * *", Task: backupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
}
