package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	orderapp "github.com/Apurer/go-gin-orders-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

const (
	// PlaceOrderActivityName persists a new order through the application service.
	PlaceOrderActivityName = "orders.activities.PlaceOrder"
	// InvalidInputErrorType marks failures that retrying cannot fix.
	InvalidInputErrorType = "orders.InvalidInput"
)

// InputFailure rides as the details of an InvalidInputErrorType error so the
// caller can rebuild the domain error on its side of the workflow.
type InputFailure struct {
	Reason    string `json:"reason"`
	DishIndex int    `json:"dishIndex,omitempty"`
}

const dishQuantityReason = "dish_quantity"

var inputReasons = []struct {
	reason string
	err    error
}{
	{"missing_id", orderdomain.ErrMissingID},
	{"missing_deliver_to", orderdomain.ErrMissingDeliverTo},
	{"missing_mobile_number", orderdomain.ErrMissingMobileNumber},
	{"no_dishes", orderdomain.ErrNoDishes},
	{"invalid_quantity", orderdomain.ErrInvalidQuantity},
	{"invalid_status", orderdomain.ErrInvalidStatus},
	{"status_not_updatable", orderdomain.ErrStatusNotUpdatable},
}

// DescribeInputFailure names the domain error behind err. The zero value
// means no known domain error was found.
func DescribeInputFailure(err error) InputFailure {
	var qtyErr orderdomain.DishQuantityError
	if errors.As(err, &qtyErr) {
		return InputFailure{Reason: dishQuantityReason, DishIndex: qtyErr.Index}
	}
	for _, known := range inputReasons {
		if errors.Is(err, known.err) {
			return InputFailure{Reason: known.reason}
		}
	}
	return InputFailure{}
}

// Err returns the domain error named by f, or nil for an unknown reason.
func (f InputFailure) Err() error {
	if f.Reason == dishQuantityReason {
		return orderdomain.DishQuantityError{Index: f.DishIndex}
	}
	for _, known := range inputReasons {
		if known.reason == f.Reason {
			return known.err
		}
	}
	return nil
}

// Activities groups activities that operate on the orders bounded context.
type Activities struct {
	service orderports.Service
}

func NewActivities(service orderports.Service) *Activities {
	return &Activities{service: service}
}

// PlaceOrder creates the order. Validation failures are returned as non-retryable.
func (a *Activities) PlaceOrder(ctx context.Context, input orderports.OrderInput) (*orderdomain.Order, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("place order activity not initialized")
		return nil, errors.New("place order activity not initialized")
	}
	logger.Info("PlaceOrder activity started", "dishes", len(input.Dishes))
	order, err := a.service.Create(ctx, input)
	if err != nil {
		logger.Error("PlaceOrder activity failed", "error", err)
		if errors.Is(err, orderapp.ErrInvalidInput) {
			return nil, temporal.NewNonRetryableApplicationError(err.Error(), InvalidInputErrorType, err, DescribeInputFailure(err))
		}
		return nil, err
	}
	logger.Info("PlaceOrder activity completed", "orderId", order.ID)
	return order, nil
}
