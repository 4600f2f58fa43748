package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

// CreateItemInput holds the fields a seller submits for a new sheet.
type CreateItemInput struct {
	Title       string
	CourseCode  string
	Description string
	PriceCents  int64
	Tags        []string
	FileKey     string
}

// UpdateItemInput holds the mutable fields of an existing sheet. Nil pointers
// leave the current value untouched.
type UpdateItemInput struct {
	Title       *string
	Description *string
	PriceCents  *int64
	Tags        []string
	Active      *bool
}

// ModerationDecision is an admin verdict on a submitted sheet.
type ModerationDecision string

const (
	ModerationApprove    ModerationDecision = "approve"
	ModerationReject     ModerationDecision = "reject"
	ModerationDeactivate ModerationDecision = "deactivate"
)

// Service exposes catalog browsing, seller item management, and moderation.
type Service interface {
	ListPublic(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error)
	GetPublicItem(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error)
	CreateItem(ctx context.Context, sellerID uuid.UUID, input CreateItemInput) (*models.CatalogItem, error)
	UpdateItem(ctx context.Context, sellerID, itemID uuid.UUID, input UpdateItemInput) (*models.CatalogItem, error)
	ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.CatalogItem, error)
	Moderate(ctx context.Context, itemID uuid.UUID, decision ModerationDecision) (*models.CatalogItem, error)
}

type service struct {
	repo Repository
}

// NewService builds a catalog service backed by the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListPublic(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error) {
	rows, err := s.repo.ListPublic(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list catalog")
	}
	return rows, nil
}

func (s *service) GetPublicItem(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if !item.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return item, nil
}

func (s *service) CreateItem(ctx context.Context, sellerID uuid.UUID, input CreateItemInput) (*models.CatalogItem, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(input.CourseCode) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "course_code is required")
	}
	if input.PriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
	}
	if strings.TrimSpace(input.FileKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_key is required")
	}

	item := &models.CatalogItem{
		SellerID:       sellerID,
		Title:          strings.TrimSpace(input.Title),
		CourseCode:     strings.ToUpper(strings.TrimSpace(input.CourseCode)),
		Description:    strings.TrimSpace(input.Description),
		PriceCents:     input.PriceCents,
		Active:         true,
		ApprovalStatus: enums.ApprovalStatusPending,
		Tags:           pq.StringArray(normalizeTags(input.Tags)),
		FileKey:        input.FileKey,
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create catalog item")
	}
	return created, nil
}

func (s *service) UpdateItem(ctx context.Context, sellerID, itemID uuid.UUID, input UpdateItemInput) (*models.CatalogItem, error) {
	if sellerID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller and item id are required")
	}

	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item belongs to another seller")
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		item.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		item.Description = strings.TrimSpace(*input.Description)
	}
	if input.PriceCents != nil {
		if *input.PriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents cannot be negative")
		}
		item.PriceCents = *input.PriceCents
	}
	if input.Tags != nil {
		item.Tags = pq.StringArray(normalizeTags(input.Tags))
	}
	if input.Active != nil {
		item.Active = *input.Active
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update catalog item")
	}
	return item, nil
}

func (s *service) ListSellerItems(ctx context.Context, sellerID uuid.UUID) ([]models.CatalogItem, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller identity missing")
	}
	rows, err := s.repo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller items")
	}
	return rows, nil
}

func (s *service) Moderate(ctx context.Context, itemID uuid.UUID, decision ModerationDecision) (*models.CatalogItem, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}

	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	switch decision {
	case ModerationApprove, ModerationReject:
		if item.ApprovalStatus != enums.ApprovalStatusPending {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item already moderated")
		}
		status := enums.ApprovalStatusApproved
		if decision == ModerationReject {
			status = enums.ApprovalStatusRejected
		}
		if err := s.repo.UpdateApproval(ctx, itemID, status); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update approval status")
		}
		item.ApprovalStatus = status

	case ModerationDeactivate:
		if !item.Active {
			return item, nil
		}
		item.Active = false
		if err := s.repo.Update(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate item")
		}

	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve, reject or deactivate")
	}

	return item, nil
}

func (s *service) findItem(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}
	return item, nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
