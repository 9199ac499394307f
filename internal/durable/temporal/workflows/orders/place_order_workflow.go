package orders

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-orders-api/internal/durable/temporal/activities/orders"
)

const (
	// PlaceOrderWorkflowName is the public identifier for registering the workflow.
	PlaceOrderWorkflowName = "orders.workflows.PlaceOrder"
	// PlaceOrderTaskQueue is the queue consumed by the worker processing order workflows.
	PlaceOrderTaskQueue = "ORDER_PLACEMENT"
)

// PlaceOrderWorkflowInput captures the payload required to place an order.
type PlaceOrderWorkflowInput struct {
	Command orderports.OrderInput
	TraceID string
}

// PlaceOrderWorkflow runs the placement activity with retries.
func PlaceOrderWorkflow(ctx workflow.Context, input PlaceOrderWorkflowInput) (*orderdomain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("PlaceOrderWorkflow started", withTraceID(input.TraceID, "dishes", len(input.Command.Dishes))...)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        2 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{orderactivities.InvalidInputErrorType},
		},
	})

	var order orderdomain.Order
	if err := workflow.ExecuteActivity(ctx, orderactivities.PlaceOrderActivityName, input.Command).Get(ctx, &order); err != nil {
		logger.Error("PlaceOrderWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	logger.Info("PlaceOrderWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return &order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
