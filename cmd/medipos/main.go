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

	"github.com/medipos-erp/medipos/internal/app"
	"github.com/medipos-erp/medipos/internal/backup"
	"github.com/medipos-erp/medipos/internal/billing"
	"github.com/medipos-erp/medipos/internal/ledger"
	"github.com/medipos-erp/medipos/internal/masterdata/companies"
	"github.com/medipos-erp/medipos/internal/masterdata/gstrates"
	"github.com/medipos-erp/medipos/internal/masterdata/products"
	"github.com/medipos-erp/medipos/internal/masterdata/salesmen"
	"github.com/medipos-erp/medipos/internal/observability"
	"github.com/medipos-erp/medipos/internal/partners"
	"github.com/medipos-erp/medipos/internal/payments"
	"github.com/medipos-erp/medipos/internal/platform/cache"
	"github.com/medipos-erp/medipos/internal/platform/db"
	"github.com/medipos-erp/medipos/internal/procurement"
	"github.com/medipos-erp/medipos/internal/reports"
	"github.com/medipos-erp/medipos/internal/settings"
	"github.com/medipos-erp/medipos/internal/shared"
	"github.com/medipos-erp/medipos/jobs"
)

func main() {
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

	// The API stays up without Redis: statement caching and manual job
	// triggers degrade, everything else keeps working.
	var statementCache *ledger.Cache
	var jobsHandler *jobs.Handler
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, statement cache and job triggers disabled", slog.Any("error", err))
		jobsHandler = jobs.NewHandler(nil, nil, logger)
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		statementCache = ledger.NewCache(redisClient, cfg.StatementCacheTTL)

		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		jobsClient, err := jobs.NewClient(redisOpts)
		if err != nil {
			logger.Error("init job client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := jobsClient.Close(); err != nil {
				logger.Warn("job client close", slog.Any("error", err))
			}
		}()
		jobsHandler = jobs.NewHandler(asynq.NewInspector(redisOpts), jobsClient, logger)
	}

	settingsRepo := settings.NewRepository(pool)
	sysConfig, err := settingsRepo.GetConfig(ctx)
	if err != nil {
		logger.Error("load system config", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(pool)

	partnersSvc := partners.NewService(partners.NewRepository(pool))

	billingSvc := billing.NewService(billing.NewRepository(pool), statementCache, sysConfig.BillPrefix)
	procurementSvc := procurement.NewService(procurement.NewRepository(pool), statementCache)
	paymentsSvc := payments.NewService(payments.NewRepository(pool), statementCache)
	ledgerSvc := ledger.NewService(ledger.NewRepository(pool), statementCache)
	reportsSvc := reports.NewService(reports.NewRepository(pool), settingsRepo)
	backupSvc := backup.NewService(backup.NewRepository(pool))

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,

		Products:    products.NewHandler(logger, products.NewService(products.NewRepository(pool))),
		GstRates:    gstrates.NewHandler(logger, gstrates.NewService(gstrates.NewRepository(pool))),
		Companies:   companies.NewHandler(logger, companies.NewRepository(pool)),
		Salesmen:    salesmen.NewHandler(logger, salesmen.NewRepository(pool)),
		Settings:    settings.NewHandler(logger, settingsRepo),
		Customers:   partners.NewHandler(logger, partnersSvc, partners.KindCustomer),
		Suppliers:   partners.NewHandler(logger, partnersSvc, partners.KindSupplier),
		Billing:     billing.NewHandler(logger, billingSvc).WithAudit(auditLogger),
		Procurement: procurement.NewHandler(logger, procurementSvc).WithAudit(auditLogger),
		Payments:    payments.NewHandler(logger, paymentsSvc),
		Ledger:      ledger.NewHandler(logger, ledgerSvc),
		Reports:     reports.NewHandler(logger, reportsSvc),
		Backup:      backup.NewHandler(logger, backupSvc),
		Jobs:        jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("shut down cleanly")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
