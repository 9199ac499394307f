package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrDuplicateID is returned when appending an order whose id is already stored.
var ErrDuplicateID = errors.New("order id already exists")

// Repository is an in-memory, insertion-ordered order store.
type Repository struct {
	mu     sync.RWMutex
	orders []*domain.Order
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Append(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(order.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, order.ID)
	}
	r.orders = append(r.orders, order.Clone())
	return order.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.indexOf(id)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	return r.orders[i].Clone(), nil
}

func (r *Repository) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(order.ID)
	if i < 0 {
		return nil, ports.ErrNotFound
	}
	r.orders[i] = order.Clone()
	return order.Clone(), nil
}

// Delete removes the order by position, keeping the order of the rest.
func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return ports.ErrNotFound
	}
	r.orders = append(r.orders[:i], r.orders[i+1:]...)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		list = append(list, order.Clone())
	}
	return list, nil
}

// Len reports the number of stored orders.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.orders)
}

// indexOf is a linear scan; callers hold the lock.
func (r *Repository) indexOf(id string) int {
	for i, order := range r.orders {
		if order.ID == id {
			return i
		}
	}
	return -1
}
