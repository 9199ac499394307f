package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

type fakeOrderRepo struct {
	orders []*domain.Order
}

func (f *fakeOrderRepo) Append(_ context.Context, order *domain.Order) (*domain.Order, error) {
	f.orders = append(f.orders, order.Clone())
	return order.Clone(), nil
}

func (f *fakeOrderRepo) GetByID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) Update(_ context.Context, order *domain.Order) (*domain.Order, error) {
	for i, o := range f.orders {
		if o.ID == order.ID {
			f.orders[i] = order.Clone()
			return order.Clone(), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (f *fakeOrderRepo) Delete(_ context.Context, id string) error {
	for i, o := range f.orders {
		if o.ID == id {
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return ports.ErrNotFound
}

func (f *fakeOrderRepo) List(_ context.Context) ([]*domain.Order, error) {
	list := make([]*domain.Order, 0, len(f.orders))
	for _, o := range f.orders {
		list = append(list, o.Clone())
	}
	return list, nil
}

type sequenceIDs struct {
	n int
}

func (s *sequenceIDs) Next() string {
	s.n++
	return fmt.Sprintf("order-%d", s.n)
}

type recordingPublisher struct {
	events []ports.OrderEvent
	err    error
}

func (r *recordingPublisher) Publish(_ context.Context, event ports.OrderEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func validInput() ports.OrderInput {
	return ports.OrderInput{
		DeliverTo:    "308 Negra Arroyo Lane",
		MobileNumber: "(505) 143-3369",
		Dishes:       []domain.Dish{{Quantity: 2}},
	}
}

func TestCreate_AssignsDistinctIDsAndAppends(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo, &sequenceIDs{})

	first, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, domain.StatusPending, first.Status)
	assert.Len(t, repo.orders, 2)
}

func TestCreate_InvalidInput(t *testing.T) {
	svc := NewService(&fakeOrderRepo{}, &sequenceIDs{})
	input := validInput()
	input.Dishes = []domain.Dish{{Quantity: 1}, {Quantity: 0}}

	_, err := svc.Create(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidQuantity)
}

func TestUpdate_KeepsIDAndOverwritesFields(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo, &sequenceIDs{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, ports.OrderInput{
		DeliverTo:    "1600 Pennsylvania Avenue NW",
		MobileNumber: "(202) 456-1111",
		Status:       domain.StatusOutForDelivery,
		Dishes:       []domain.Dish{{Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, domain.StatusOutForDelivery, updated.Status)

	stored, err := repo.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1600 Pennsylvania Avenue NW", stored.DeliverTo)
}

func TestUpdate_RejectsDeliveredStatus(t *testing.T) {
	svc := NewService(&fakeOrderRepo{}, &sequenceIDs{})
	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.Status = domain.StatusDelivered
	_, err = svc.Update(context.Background(), created.ID, input)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdate_UnknownOrder(t *testing.T) {
	svc := NewService(&fakeOrderRepo{}, &sequenceIDs{})
	_, err := svc.Update(context.Background(), "missing", validInput())
	require.ErrorIs(t, err, ports.ErrNotFound)
	var missing ports.NotFoundError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "missing", missing.ID)

	_, err = svc.Get(context.Background(), "gone")
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "gone", missing.ID)
}

func TestDelete_OnlyPending(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo, &sequenceIDs{})
	input := validInput()
	input.Status = domain.StatusPreparing
	preparing, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	pending, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), preparing.ID), ErrNotPending)
	require.NoError(t, svc.Delete(context.Background(), pending.ID))
	err = svc.Delete(context.Background(), pending.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
	assert.EqualError(t, err, "order not found: "+pending.ID)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, preparing.ID, list[0].ID)
}

func TestMutationsPublishEvents(t *testing.T) {
	publisher := &recordingPublisher{}
	svc := NewService(&fakeOrderRepo{}, &sequenceIDs{}, WithEventPublisher(publisher))

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	input := validInput()
	input.Status = domain.StatusPending
	_, err = svc.Update(context.Background(), created.ID, input)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(context.Background(), created.ID))

	require.Len(t, publisher.events, 3)
	assert.Equal(t, ports.EventOrderCreated, publisher.events[0].Type)
	assert.Equal(t, ports.EventOrderUpdated, publisher.events[1].Type)
	assert.Equal(t, ports.EventOrderDeleted, publisher.events[2].Type)
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := NewService(&fakeOrderRepo{}, &sequenceIDs{}, WithEventPublisher(publisher))

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	assert.Len(t, publisher.events, 1)
}
