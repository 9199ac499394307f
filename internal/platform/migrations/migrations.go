package migrations

import (
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the orders schema.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(&orderRecord{})
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	ID           string           `gorm:"primaryKey;column:id;size:64"`
	Seq          int64            `gorm:"column:seq;index"`
	DeliverTo    string           `gorm:"column:deliver_to"`
	MobileNumber string           `gorm:"column:mobile_number"`
	Status       string           `gorm:"column:status;type:varchar(32);index"`
	Dishes       []map[string]any `gorm:"column:dishes;type:jsonb;serializer:json"`
	DishIDs      pq.StringArray   `gorm:"column:dish_ids;type:text[]"`
}

func (orderRecord) TableName() string { return "orders" }
