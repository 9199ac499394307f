package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-orders-api/internal/app/api"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/idgen"
	ordersrabbitmq "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/messaging/rabbitmq"
	ordersobs "github.com/Apurer/go-gin-orders-api/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/go-gin-orders-api/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-gin-orders-api/internal/platform/temporal"
)

func main() {
	ctx := context.Background()
	const serviceName = "orders-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repo, cleanupRepo, err := api.BuildOrderRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open order repository", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupRepo()
	if cfg.Store == api.StoreMemory {
		logger.Warn("worker is using an in-memory store; orders it places are not visible to the API")
	}

	serviceOpts := []ordersapp.Option{ordersapp.WithLogger(logger)}
	if cfg.AMQPURL != "" {
		publisher, err := ordersrabbitmq.Dial(cfg.AMQPURL, cfg.OrdersExchange, logger)
		if err != nil {
			logger.Warn("order events disabled, rabbitmq unavailable", slog.String("error", err.Error()))
		} else {
			defer publisher.Close()
			serviceOpts = append(serviceOpts, ordersapp.WithEventPublisher(publisher))
		}
	}
	orderService := ordersobs.New(
		ordersapp.NewService(repo, idgen.NewUUID(), serviceOpts...),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
	activities := orderactivities.NewActivities(orderService)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
		Tracer:    instruments.Tracer("temporal-worker"),
	})
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.PlaceOrderTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.PlaceOrderWorkflow, workflow.RegisterOptions{Name: orderworkflows.PlaceOrderWorkflowName})
	w.RegisterActivityWithOptions(activities.PlaceOrder, activity.RegisterOptions{Name: orderactivities.PlaceOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.PlaceOrderTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
