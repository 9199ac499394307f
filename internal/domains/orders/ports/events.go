package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// EventType names an order lifecycle transition.
type EventType string

const (
	EventOrderCreated EventType = "order.created"
	EventOrderUpdated EventType = "order.updated"
	EventOrderDeleted EventType = "order.deleted"
)

// OrderEvent is emitted after a successful mutation.
type OrderEvent struct {
	Type  EventType
	Order *domain.Order
}

// EventPublisher fans order events out to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}
