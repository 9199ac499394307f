package application

import (
	"context"
	"log/slog"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

// Service orchestrates order use cases.
type Service struct {
	repo      ports.Repository
	ids       ports.IDGenerator
	publisher ports.EventPublisher
	logger    *slog.Logger
}

type Option func(*Service)

// WithEventPublisher emits lifecycle events after successful mutations.
func WithEventPublisher(p ports.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(repo ports.Repository, ids ports.IDGenerator, opts ...Option) *Service {
	s := &Service{repo: repo, ids: ids}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

func (s *Service) Create(ctx context.Context, input ports.OrderInput) (*domain.Order, error) {
	order, err := domain.NewOrder(s.ids.Next(), input.DeliverTo, input.MobileNumber, input.Status, input.Dishes)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Append(ctx, order)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ports.EventOrderCreated, saved)
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, withOrderID(id, err)
	}
	return order, nil
}

func (s *Service) Update(ctx context.Context, id string, input ports.OrderInput) (*domain.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, withOrderID(id, err)
	}
	if err := order.Revise(input.DeliverTo, input.MobileNumber, input.Status, input.Dishes); err != nil {
		return nil, mapError(err)
	}
	updated, err := s.repo.Update(ctx, order)
	if err != nil {
		return nil, withOrderID(id, err)
	}
	s.publish(ctx, ports.EventOrderUpdated, updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return withOrderID(id, err)
	}
	if err := order.EnsureDeletable(); err != nil {
		return mapError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return withOrderID(id, err)
	}
	s.publish(ctx, ports.EventOrderDeleted, order)
	return nil
}

// publish never fails the caller; the mutation already happened.
func (s *Service) publish(ctx context.Context, eventType ports.EventType, order *domain.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, ports.OrderEvent{Type: eventType, Order: order}); err != nil && s.logger != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "failed to publish order event",
			slog.String("event", string(eventType)),
			slog.String("order.id", order.ID),
			slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
