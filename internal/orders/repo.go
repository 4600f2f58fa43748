package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

// ReviewStamp captures who settled an order and why, for rejections.
type ReviewStamp struct {
	ReviewedBy uuid.UUID
	ReviewedAt time.Time
	Reason     *string
}

// Repository exposes order persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.PaymentStatus) ([]models.Order, error)
	SettleIfPending(ctx context.Context, id uuid.UUID, to enums.PaymentStatus, stamp ReviewStamp) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("PaymentRequest").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("PaymentRequest").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.PaymentStatus) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("PaymentRequest").
		Where("payment_status = ?", status).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SettleIfPending flips payment_status from pending to the target status in a
// single guarded update. A false return means the order was no longer pending
// when the update ran.
func (r *repository) SettleIfPending(ctx context.Context, id uuid.UUID, to enums.PaymentStatus, stamp ReviewStamp) (bool, error) {
	updates := map[string]any{
		"payment_status": to,
		"reviewed_by":    stamp.ReviewedBy,
		"reviewed_at":    stamp.ReviewedAt,
	}
	if stamp.Reason != nil {
		updates["rejection_reason"] = *stamp.Reason
	}

	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, enums.PaymentStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
