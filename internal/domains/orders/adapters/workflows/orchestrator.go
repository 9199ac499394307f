package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/durable/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-gin-orders-api/internal/durable/temporal/workflows/orders"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalOrderWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineOrderWorkflows)(nil)
)

// TemporalOrderWorkflows starts order workflows on a Temporal cluster.
type TemporalOrderWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalOrderWorkflows wires a Temporal client into the orchestrator.
func NewTemporalOrderWorkflows(c client.Client) *TemporalOrderWorkflows {
	return &TemporalOrderWorkflows{client: c, taskQueue: orderworkflows.PlaceOrderTaskQueue}
}

// PlaceOrder starts the placement workflow and waits for the stored order.
func (o *TemporalOrderWorkflows) PlaceOrder(ctx context.Context, input ports.OrderInput) (*orderdomain.Order, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal order workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := fmt.Sprintf("order-placement-%s", traceComponent)
	run, err := o.client.ExecuteWorkflow(
		ctx,
		client.StartWorkflowOptions{ID: workflowID, TaskQueue: o.taskQueue},
		orderworkflows.PlaceOrderWorkflowName,
		orderworkflows.PlaceOrderWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			return nil, fmt.Errorf("order placement %s already running: %w", workflowID, err)
		}
		return nil, err
	}
	var order orderdomain.Order
	if err := run.Get(ctx, &order); err != nil {
		return nil, unwrapWorkflowError(err)
	}
	return &order, nil
}

// InlineOrderWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineOrderWorkflows struct {
	service ports.Service
}

func NewInlineOrderWorkflows(service ports.Service) *InlineOrderWorkflows {
	return &InlineOrderWorkflows{service: service}
}

// PlaceOrder delegates to the application service without durable orchestration.
func (o *InlineOrderWorkflows) PlaceOrder(ctx context.Context, input ports.OrderInput) (*orderdomain.Order, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline order workflows not configured")
	}
	return o.service.Create(ctx, input)
}

// unwrapWorkflowError turns a non-retryable validation failure back into
// ErrInvalidInput wrapping the domain error the activity reported.
func unwrapWorkflowError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) || appErr.Type() != orderactivities.InvalidInputErrorType {
		return err
	}
	var failure orderactivities.InputFailure
	if appErr.HasDetails() && appErr.Details(&failure) == nil {
		if domainErr := failure.Err(); domainErr != nil {
			return fmt.Errorf("%w: %w", orderapp.ErrInvalidInput, domainErr)
		}
	}
	return fmt.Errorf("%w: %s", orderapp.ErrInvalidInput, appErr.Message())
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	spanCtx := oteltrace.SpanFromContext(ctx).SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	return spanCtx.TraceID().String()
}
