package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
)

var ErrNotFound = errors.New("order not found")

// NotFoundError names the order id that could not be found. It matches ErrNotFound.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrNotFound, e.ID)
}

func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// Repository is the ordered order collection. List returns orders in insertion order.
type Repository interface {
	Append(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*domain.Order, error)
}
