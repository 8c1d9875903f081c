package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vetro-erp/vetro-erp/internal/app"
	"github.com/vetro-erp/vetro-erp/internal/catalog"
	"github.com/vetro-erp/vetro-erp/internal/customers"
	"github.com/vetro-erp/vetro-erp/internal/invoicing"
	"github.com/vetro-erp/vetro-erp/internal/observability"
	"github.com/vetro-erp/vetro-erp/internal/platform/cache"
	"github.com/vetro-erp/vetro-erp/internal/platform/db"
	"github.com/vetro-erp/vetro-erp/internal/rates"
	"github.com/vetro-erp/vetro-erp/jobs"
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
		logger.Warn("redis unavailable, rate table caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	customersRepo := customers.NewRepository(pool)
	customersService := customers.NewService(customersRepo, cfg.Currency)
	customersHandler := customers.NewHandler(logger, customersService)

	catalogRepo := catalog.NewRepository(pool)
	catalogService := catalog.NewService(catalogRepo, cfg.Currency)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	tableCache := rates.NewTableCache(redisClient, cfg.RateCacheTTL)
	ratesRepo := rates.NewRepository(pool)
	ratesService := rates.NewService(ratesRepo, tableCache, cfg.RateFallback(), cfg.Currency)
	ratesHandler := rates.NewHandler(logger, ratesService)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	notifier := jobs.NewNotifier(jobClient, logger)

	invoicingRepo := invoicing.NewRepository(pool)
	invoicingService := invoicing.NewService(logger, invoicingRepo, catalogService, ratesService, notifier, cfg.Currency)
	invoicingHandler := invoicing.NewHandler(logger, invoicingService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CustomersHandler: customersHandler,
		CatalogHandler:   catalogHandler,
		RatesHandler:     ratesHandler,
		InvoicingHandler: invoicingHandler,
		JobHandler:       jobHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
