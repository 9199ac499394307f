package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// WorkflowOrchestrator places orders, optionally through a durable workflow engine.
type WorkflowOrchestrator interface {
	PlaceOrder(ctx context.Context, input OrderInput) (*domain.Order, error)
}
