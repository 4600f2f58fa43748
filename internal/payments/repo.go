package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
)

// Repository exposes payment request persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.PaymentRequest) (*models.PaymentRequest, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payment requests repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.PaymentRequest) (*models.PaymentRequest, error) {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		return nil, err
	}
	return request, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.PaymentRequest, error) {
	var request models.PaymentRequest
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}
