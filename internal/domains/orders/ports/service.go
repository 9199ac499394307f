package ports

import (
	"context"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

// OrderInput carries the client-supplied order fields for create and update.
type OrderInput struct {
	DeliverTo    string
	MobileNumber string
	Status       domain.Status
	Dishes       []domain.Dish
}

// Service exposes order use cases to adapters.
type Service interface {
	List(ctx context.Context) ([]*domain.Order, error)
	Create(ctx context.Context, input OrderInput) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, id string, input OrderInput) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}
