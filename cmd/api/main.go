package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/inventory-reorder/api/routes"
	"github.com/angelmondragon/inventory-reorder/internal/confirmations"
	"github.com/angelmondragon/inventory-reorder/internal/demand"
	"github.com/angelmondragon/inventory-reorder/internal/events"
	"github.com/angelmondragon/inventory-reorder/internal/items"
	"github.com/angelmondragon/inventory-reorder/internal/monitor"
	"github.com/angelmondragon/inventory-reorder/internal/reorder"
	"github.com/angelmondragon/inventory-reorder/internal/seed"
	"github.com/angelmondragon/inventory-reorder/internal/supplierorders"
	"github.com/angelmondragon/inventory-reorder/pkg/auth"
	"github.com/angelmondragon/inventory-reorder/pkg/config"
	"github.com/angelmondragon/inventory-reorder/pkg/db"
	"github.com/angelmondragon/inventory-reorder/pkg/logger"
	"github.com/angelmondragon/inventory-reorder/pkg/metrics"
	"github.com/angelmondragon/inventory-reorder/pkg/migrate"
	"github.com/angelmondragon/inventory-reorder/pkg/redis"
	"github.com/angelmondragon/inventory-reorder/pkg/supplier"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	if cfg.FeatureFlags.SeedData && cfg.App.IsDev() {
		if _, err := seed.Run(context.Background(), seed.Params{DB: dbClient.DB(), Logger: logg}); err != nil {
			logg.Error(context.Background(), "failed to seed sample data", err)
			os.Exit(1)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reorderMetrics := metrics.NewReorderMetrics(registry)

	bus, err := events.NewBus(events.BusParams{Logger: logg, Metrics: metrics.NewEventBusMetrics(registry)})
	if err != nil {
		logg.Error(context.Background(), "failed to create event bus", err)
		os.Exit(1)
	}

	itemRepo := items.NewRepository(dbClient.DB())
	orderRepo := supplierorders.NewRepository(dbClient.DB())

	ledger, err := demand.NewLedger(demand.LedgerParams{
		Repo:       demand.NewRepository(dbClient.DB()),
		Items:      itemRepo,
		Logger:     logg,
		WindowDays: cfg.Reorder.WindowDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create demand ledger", err)
		os.Exit(1)
	}

	calculator, err := reorder.NewCalculator(reorder.CalculatorParams{
		Items:   itemRepo,
		Demand:  ledger,
		Logger:  logg,
		Metrics: reorderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reorder calculator", err)
		os.Exit(1)
	}

	coordinator, err := reorder.NewCoordinator(reorder.CoordinatorParams{
		DB:          dbClient,
		Items:       itemRepo,
		Orders:      orderRepo,
		Publisher:   bus,
		Logger:      logg,
		Metrics:     reorderMetrics,
		MinQuantity: cfg.Reorder.MinQuantity,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reorder coordinator", err)
		os.Exit(1)
	}
	if _, err := coordinator.Register(bus); err != nil {
		logg.Error(context.Background(), "failed to subscribe reorder coordinator", err)
		os.Exit(1)
	}

	itemService, err := items.NewService(items.ServiceParams{
		Repo:       itemRepo,
		Calculator: calculator,
		Publisher:  bus,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	orderService, err := supplierorders.NewService(supplierorders.ServiceParams{
		DB:        dbClient,
		Repo:      orderRepo,
		Items:     itemRepo,
		Publisher: bus,
		Logger:    logg,
		Metrics:   reorderMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier order service", err)
		os.Exit(1)
	}

	signer := auth.NewWebhookSigner(cfg.Supplier.WebhookSecret, cfg.Supplier.WebhookIssuer, 0)
	supplierClient, err := supplier.NewClient(
		cfg.Supplier.WebhookURL,
		supplier.WithSigner(signer),
		supplier.WithHTTPClient(&http.Client{Timeout: cfg.Supplier.RequestTimeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier client", err)
		os.Exit(1)
	}

	queue, err := confirmations.NewQueue(confirmations.QueueParams{
		Logger:    logg,
		Confirmer: supplierClient,
		Metrics:   metrics.NewConfirmationMetrics(registry),
		Delay:     cfg.Supplier.ConfirmDelay,
		Workers:   cfg.Supplier.ConfirmWorkers,
		Capacity:  cfg.Supplier.ConfirmQueueSize,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create confirmation queue", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queue.Start(ctx)
	if _, err := queue.Register(bus, cfg.Supplier.ConfirmAutomatic); err != nil {
		logg.Error(ctx, "failed to subscribe confirmation queue", err)
		os.Exit(1)
	}

	monitorDone := make(chan struct{})
	if cfg.Monitor.Enabled {
		stockMonitor, err := monitor.NewService(monitor.ServiceParams{
			Logger:      logg,
			Items:       itemRepo,
			Publisher:   bus,
			Metrics:     metrics.NewMonitorMetrics(registry),
			Interval:    cfg.Monitor.Interval,
			BackoffBase: cfg.Monitor.BackoffBase,
			BackoffMax:  cfg.Monitor.BackoffMax,
		})
		if err != nil {
			logg.Error(ctx, "failed to create low-stock monitor", err)
			os.Exit(1)
		}
		go func() {
			defer close(monitorDone)
			if err := stockMonitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "low-stock monitor stopped unexpectedly", err)
			}
		}()
	} else {
		close(monitorDone)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	srvCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
			signer,
			routes.Services{
				Items:          itemService,
				Recomputer:     calculator,
				Demand:         ledger,
				SupplierOrders: orderService,
				HTTPMetrics:    metrics.NewHTTPMetrics(registry),
			},
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(srvCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logg.Error(srvCtx, "api server stopped unexpectedly", err)
		}
		stop()
	}

	logg.Info(srvCtx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(srvCtx, "http shutdown failed", err)
	}
	if err := queue.Shutdown(shutdownCtx); err != nil {
		logg.Error(srvCtx, "confirmation queue shutdown failed", err)
	}
	<-monitorDone
	logg.Info(srvCtx, "api server stopped")
}
