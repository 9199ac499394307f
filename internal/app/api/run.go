package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"

	ordersserver "github.com/Apurer/go-gin-orders-api/go"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/idgen"
	ordersmemory "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/memory"
	ordersrabbitmq "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/messaging/rabbitmq"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/postgres"
	ordersredis "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/persistence/redis"
	ordersworkflows "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformpostgres "github.com/Apurer/go-gin-orders-api/internal/platform/postgres"
	platformredis "github.com/Apurer/go-gin-orders-api/internal/platform/redis"
	platformtemporal "github.com/Apurer/go-gin-orders-api/internal/platform/temporal"
)

const serviceName = "orders-api"

// Run boots the orders HTTP API and blocks until ctx is cancelled or the server fails.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo, err := BuildOrderRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanupRepo()

	ids := idgen.NewUUID()
	if cfg.SeedFile != "" {
		n, err := SeedOrders(ctx, cfg.SeedFile, repo, ids)
		if err != nil {
			return fmt.Errorf("failed to seed orders: %w", err)
		}
		logger.Info("orders seeded", slog.String("file", cfg.SeedFile), slog.Int("count", n))
	}

	serviceOpts := []ordersapp.Option{ordersapp.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		publisher, err := ordersrabbitmq.Dial(cfg.AMQPURL, cfg.OrdersExchange, logger)
		if err != nil {
			logger.Warn("order events disabled, rabbitmq unavailable", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			serviceOpts = append(serviceOpts, ordersapp.WithEventPublisher(publisher))
			logger.Info("order events enabled", slog.String("exchange", cfg.OrdersExchange))
		}
	}
	orderService := ordersobs.New(
		ordersapp.NewService(repo, ids, serviceOpts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)

	orderWorkflows, cleanupWorkflows := BuildOrderWorkflows(cfg, orderService, logger, func() (client.Client, error) {
		return platformtemporal.Dial(platformtemporal.Options{
			Address:   cfg.TemporalAddress,
			Namespace: cfg.TemporalNamespace,
			Logger:    logger,
			Tracer:    instruments.Tracer("temporal-client"),
		})
	})
	defer cleanupWorkflows()

	engine := gin.New()
	engine.Use(otelgin.Middleware(serviceName), ordersserver.RequestLogger(logger), gin.Recovery())
	router := ordersserver.NewRouterWithGinEngine(engine, ordersserver.ApiHandleFunctions{
		OrdersAPI: ordersserver.NewOrdersAPI(orderService, orderWorkflows),
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("orders API listening", slog.String("addr", server.Addr), slog.String("store", string(cfg.Store)))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("orders API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down orders API")
		return server.Shutdown(shutdownCtx)
	}
}

// BuildOrderWorkflows picks how creates are placed. Temporal needs a store the
// worker shares with the API, so the in-memory store always places inline.
// The returned cleanup closes any Temporal client.
func BuildOrderWorkflows(cfg Config, service ordersports.Service, logger *slog.Logger, dial func() (client.Client, error)) (ordersports.WorkflowOrchestrator, func()) {
	inline := ordersworkflows.NewInlineOrderWorkflows(service)
	switch {
	case cfg.TemporalDisabled:
		logger.Info("Temporal disabled, placing orders inline")
		return inline, func() {}
	case cfg.Store == StoreMemory:
		logger.Info("in-memory store is process local, placing orders inline")
		return inline, func() {}
	}
	temporalClient, err := dial()
	if err != nil {
		logger.Warn("Temporal workflows unavailable, placing orders inline", slog.String("error", err.Error()))
		return inline, func() {}
	}
	logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	return ordersworkflows.NewTemporalOrderWorkflows(temporalClient), temporalClient.Close
}

// BuildOrderRepository opens the store selected by cfg.Store. The returned
// cleanup releases any connection.
func BuildOrderRepository(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.Repository, func(), error) {
	switch cfg.Store {
	case StorePostgres:
		db, closeDB, err := platformpostgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("order repository configured with postgres")
		return orderspostgres.NewRepository(db), closeDB, nil
	case StoreRedis:
		client, err := platformredis.Connect(ctx, platformredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		logger.Info("order repository configured with redis", slog.String("addr", cfg.RedisAddr))
		return ordersredis.NewRepository(client, ordersredis.DefaultKeyPrefix), func() { _ = client.Close() }, nil
	default:
		logger.Info("order repository configured in memory")
		return ordersmemory.NewRepository(), func() {}, nil
	}
}
