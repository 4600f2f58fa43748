package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentRequest is the out-of-band transfer instruction for an order. The
// unique order_id index keeps it one-to-one; the amount is frozen from the
// order and must never diverge from it.
type PaymentRequest struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Reference   string    `gorm:"column:reference;not null;uniqueIndex"`
	AmountCents int64     `gorm:"column:amount_cents;not null"`
	Code        string    `gorm:"column:code;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (p *PaymentRequest) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
