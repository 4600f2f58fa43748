package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	CourseCode string
	Search     string
	Limit      int
	Offset     int
}

// Repository exposes catalog item persistence operations.
type Repository interface {
	Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error)
	Update(ctx context.Context, item *models.CatalogItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	ListPublic(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.CatalogItem, error)
	UpdateApproval(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) Update(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) ListPublic(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error) {
	query := r.db.WithContext(ctx).Model(&models.CatalogItem{}).
		Where("active = ?", true).
		Where("approval_status = ?", enums.ApprovalStatusApproved)

	if filter.CourseCode != "" {
		query = query.Where("course_code = ?", filter.CourseCode)
	}
	if filter.Search != "" {
		query = query.Where("title LIKE ?", "%"+filter.Search+"%")
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	query = query.Order("created_at DESC").Limit(limit).Offset(filter.Offset)

	var rows []models.CatalogItem
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.CatalogItem, error) {
	var rows []models.CatalogItem
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateApproval(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ?", id).
		Update("approval_status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
