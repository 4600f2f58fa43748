package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartEntry stages one catalog item in a user's cart. The composite unique
// index is what keeps double-click races from producing duplicate rows.
type CartEntry struct {
	ID        uuid.UUID    `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID    `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_entries_user_item"`
	ItemID    uuid.UUID    `gorm:"column:item_id;type:uuid;not null;uniqueIndex:idx_cart_entries_user_item"`
	Item      *CatalogItem `gorm:"foreignKey:ItemID"`
	CreatedAt time.Time    `gorm:"column:created_at;autoCreateTime"`
}

func (c *CartEntry) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
