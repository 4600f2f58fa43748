package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
)

// Repository exposes cart persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.CartEntry) (*models.CartEntry, error)
	FindByUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartEntry, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (int64, error)
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.CartEntry) (*models.CartEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) FindByUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (*models.CartEntry, error) {
	var entry models.CartEntry
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ? AND item_id = ?", userID, itemID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByUser returns entries in insertion order.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartEntry, error) {
	var rows []models.CartEntry
	err := r.db.WithContext(ctx).
		Preload("Item").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CartEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *repository) DeleteByUserAndItem(ctx context.Context, userID, itemID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Delete(&models.CartEntry{})
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartEntry{})
	return result.RowsAffected, result.Error
}
