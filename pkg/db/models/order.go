package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

// Order is the immutable financial record produced by checkout. Only the
// reconciliation state machine touches payment_status after creation, and
// orders are never deleted.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	SubtotalCents   int64               `gorm:"column:subtotal_cents;not null"`
	DiscountKind    enums.DiscountKind  `gorm:"column:discount_kind;type:text;not null;default:'none'"`
	DiscountCents   int64               `gorm:"column:discount_cents;not null;default:0"`
	TotalCents      int64               `gorm:"column:total_cents;not null"`
	PaymentStatus   enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	RejectionReason *string             `gorm:"column:rejection_reason"`
	ReviewedBy      *uuid.UUID          `gorm:"column:reviewed_by;type:uuid"`
	ReviewedAt      *time.Time          `gorm:"column:reviewed_at"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaymentRequest  *PaymentRequest     `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsBundle reports whether the order carries two or more items.
func (o *Order) IsBundle() bool {
	return len(o.Items) >= 2
}
