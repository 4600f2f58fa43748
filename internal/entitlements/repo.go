package entitlements

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
)

// Repository exposes purchase persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateIgnoringDuplicates(ctx context.Context, purchases []models.Purchase) error
	HasPurchase(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	PurchasedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a purchases repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// CreateIgnoringDuplicates inserts purchases, silently skipping rows that
// would collide on (user_id, item_id). Approvals that overlap an earlier
// order therefore never double-grant.
func (r *repository) CreateIgnoringDuplicates(ctx context.Context, purchases []models.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
			DoNothing: true,
		}).
		Create(&purchases).Error
}

func (r *repository) HasPurchase(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) PurchasedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("user_id = ? AND item_id IN ?", userID, itemIDs).
		Pluck("item_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
