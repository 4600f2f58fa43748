package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem freezes one catalog item's title and price at checkout time.
type OrderItem struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;not null"`
	Title      string    `gorm:"column:title;not null"`
	PriceCents int64     `gorm:"column:price_cents;not null"`
}

func (o *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
