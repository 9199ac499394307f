package postgres

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-orders-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// ErrDuplicateID is returned when appending an order whose id is already stored.
var ErrDuplicateID = errors.New("order id already exists")

// Repository persists orders in PostgreSQL using GORM. The schema is owned by
// the migrations package; duplicate ids are detected through gorm.Config.TranslateError.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// orderRecord maps the order aggregate to the orders table. Seq preserves
// insertion order for List.
type orderRecord struct {
	ID           string           `gorm:"primaryKey;column:id;size:64"`
	Seq          int64            `gorm:"column:seq;autoCreateTime:nano;index"`
	DeliverTo    string           `gorm:"column:deliver_to"`
	MobileNumber string           `gorm:"column:mobile_number"`
	Status       string           `gorm:"column:status;type:varchar(32);index"`
	Dishes       []map[string]any `gorm:"column:dishes;type:jsonb;serializer:json"`
	DishIDs      pq.StringArray   `gorm:"column:dish_ids;type:text[]"`
}

func (orderRecord) TableName() string { return "orders" }

func (r *Repository) Append(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, order.ID)
		}
		return nil, err
	}
	return r.GetByID(ctx, order.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Update rewrites every mutable column; seq is left alone so the order keeps its position.
func (r *Repository) Update(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	record := toRecord(order)
	result := r.db.WithContext(ctx).
		Model(&orderRecord{}).
		Where("id = ?", order.ID).
		Select("deliver_to", "mobile_number", "status", "dishes", "dish_ids").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, order.ID)
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Delete(&orderRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	rec := orderRecord{
		ID:           order.ID,
		DeliverTo:    order.DeliverTo,
		MobileNumber: order.MobileNumber,
		Status:       string(order.Status),
		Dishes:       make([]map[string]any, 0, len(order.Dishes)),
		DishIDs:      pq.StringArray{},
	}
	for _, dish := range order.Dishes {
		doc := maps.Clone(dish.Attributes)
		if doc == nil {
			doc = map[string]any{}
		}
		doc["quantity"] = dish.Quantity
		rec.Dishes = append(rec.Dishes, doc)
		if id, ok := dish.Attributes["id"].(string); ok && id != "" {
			rec.DishIDs = append(rec.DishIDs, id)
		}
	}
	return rec
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		ID:           r.ID,
		DeliverTo:    r.DeliverTo,
		MobileNumber: r.MobileNumber,
		Status:       domain.Status(r.Status),
		Dishes:       make([]domain.Dish, 0, len(r.Dishes)),
	}
	for _, doc := range r.Dishes {
		attrs := maps.Clone(doc)
		quantity := 0
		if q, ok := attrs["quantity"].(float64); ok {
			quantity = int(q)
		}
		delete(attrs, "quantity")
		order.Dishes = append(order.Dishes, domain.Dish{Quantity: quantity, Attributes: attrs})
	}
	return order
}
