package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

// CatalogItem is a purchasable cheat sheet. Its price is captured into orders
// at checkout time; edits here never reach existing orders.
type CatalogItem struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID       uuid.UUID            `gorm:"column:seller_id;type:uuid;not null;index"`
	Title          string               `gorm:"column:title;not null"`
	CourseCode     string               `gorm:"column:course_code;not null;index"`
	Description    string               `gorm:"column:description"`
	PriceCents     int64                `gorm:"column:price_cents;not null;check:price_cents >= 0"`
	Active         bool                 `gorm:"column:active;not null;default:true"`
	ApprovalStatus enums.ApprovalStatus `gorm:"column:approval_status;type:text;not null;default:'pending'"`
	Tags           pq.StringArray       `gorm:"column:tags;type:text[]"`
	FileKey        string               `gorm:"column:file_key;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Purchasable reports whether the item may appear in carts and listings.
func (c *CatalogItem) Purchasable() bool {
	return c.Active && c.ApprovalStatus == enums.ApprovalStatusApproved
}
