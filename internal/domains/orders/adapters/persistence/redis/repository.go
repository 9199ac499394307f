package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrDuplicateID is returned when appending an order whose id is already stored.
var ErrDuplicateID = errors.New("order id already exists")

const DefaultKeyPrefix = "orders:"

// appendScript stores the document and records its position atomically.
var appendScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
redis.call('RPUSH', KEYS[2], ARGV[2])
return 1
`)

// updateScript overwrites an existing document only.
var updateScript = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return 0
end
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// deleteScript removes the document and its position.
var deleteScript = goredis.NewScript(`
local removed = redis.call('DEL', KEYS[1])
if removed == 0 then
	return 0
end
redis.call('LREM', KEYS[2], 1, ARGV[1])
return 1
`)

// Repository keeps each order as a JSON document and their ids in a list
// that preserves insertion order.
type Repository struct {
	client goredis.UniversalClient
	prefix string
}

func NewRepository(client goredis.UniversalClient, prefix string) *Repository {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Repository{client: client, prefix: prefix}
}

type orderDocument struct {
	ID           string           `json:"id"`
	DeliverTo    string           `json:"deliverTo"`
	MobileNumber string           `json:"mobileNumber"`
	Status       string           `json:"status"`
	Dishes       []map[string]any `json:"dishes"`
}

func (r *Repository) Append(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	body, err := encode(order)
	if err != nil {
		return nil, err
	}
	ok, err := appendScript.Run(ctx, r.client, []string{r.orderKey(order.ID), r.idsKey()}, body, order.ID).Int()
	if err != nil {
		return nil, err
	}
	if ok == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, order.ID)
	}
	return order.Clone(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	body, err := r.client.Get(ctx, r.orderKey(id)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(body)
}

func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	body, err := encode(order)
	if err != nil {
		return nil, err
	}
	ok, err := updateScript.Run(ctx, r.client, []string{r.orderKey(order.ID)}, body).Int()
	if err != nil {
		return nil, err
	}
	if ok == 0 {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureClient(); err != nil {
		return err
	}
	ok, err := deleteScript.Run(ctx, r.client, []string{r.orderKey(id), r.idsKey()}, id).Int()
	if err != nil {
		return err
	}
	if ok == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureClient(); err != nil {
		return nil, err
	}
	ids, err := r.client.LRange(ctx, r.idsKey(), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*domain.Order{}, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, r.orderKey(id))
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(values))
	for _, value := range values {
		s, ok := value.(string)
		if !ok {
			// deleted between LRANGE and MGET
			continue
		}
		order, err := decode([]byte(s))
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (r *Repository) ensureClient() error {
	if r == nil || r.client == nil {
		return errors.New("redis order repository not configured")
	}
	return nil
}

func (r *Repository) idsKey() string { return r.prefix + "ids" }

func (r *Repository) orderKey(id string) string { return r.prefix + "order:" + id }

func encode(order *domain.Order) ([]byte, error) {
	doc := orderDocument{
		ID:           order.ID,
		DeliverTo:    order.DeliverTo,
		MobileNumber: order.MobileNumber,
		Status:       string(order.Status),
		Dishes:       make([]map[string]any, 0, len(order.Dishes)),
	}
	for _, dish := range order.Dishes {
		m := maps.Clone(dish.Attributes)
		if m == nil {
			m = map[string]any{}
		}
		m["quantity"] = dish.Quantity
		doc.Dishes = append(doc.Dishes, m)
	}
	return json.Marshal(doc)
}

func decode(body []byte) (*domain.Order, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc orderDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode stored order: %w", err)
	}
	order := &domain.Order{
		ID:           doc.ID,
		DeliverTo:    doc.DeliverTo,
		MobileNumber: doc.MobileNumber,
		Status:       domain.Status(doc.Status),
		Dishes:       make([]domain.Dish, 0, len(doc.Dishes)),
	}
	for _, m := range doc.Dishes {
		quantity := 0
		if n, ok := m["quantity"].(json.Number); ok {
			q, err := n.Int64()
			if err != nil {
				return nil, fmt.Errorf("decode stored order %s: %w", doc.ID, err)
			}
			quantity = int(q)
		}
		delete(m, "quantity")
		order.Dishes = append(order.Dishes, domain.Dish{Quantity: quantity, Attributes: m})
	}
	return order, nil
}
