package entitlements

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type itemLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
}

type urlSigner interface {
	SignedURL(fileKey string) (string, error)
}

// Access is the resolved entitlement for one user and item.
type Access struct {
	Reason enums.AccessReason `json:"reason"`
}

// Granted reports whether the access reason allows a download.
func (a Access) Granted() bool {
	return a.Reason.Grants()
}

// Service resolves who may download or review an item.
type Service interface {
	Resolve(ctx context.Context, userID, itemID uuid.UUID) (Access, error)
	DownloadURL(ctx context.Context, userID, itemID uuid.UUID) (string, error)
	CanReview(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	OwnedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error)
	ListPurchases(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error)
}

type service struct {
	repo   Repository
	items  itemLoader
	signer urlSigner
}

// NewService builds an entitlements service from the purchases repository,
// the catalog loader, and the download link signer.
func NewService(repo Repository, items itemLoader, signer urlSigner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item loader required")
	}
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	return &service{repo: repo, items: items, signer: signer}, nil
}

// Resolve returns the strongest access reason that applies. Ownership beats
// purchase, purchase beats free.
func (s *service) Resolve(ctx context.Context, userID, itemID uuid.UUID) (Access, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return Access{}, pkgerrors.New(pkgerrors.CodeValidation, "user and item id are required")
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Access{}, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return Access{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}

	if item.SellerID == userID {
		return Access{Reason: enums.AccessReasonOwner}, nil
	}

	purchased, err := s.repo.HasPurchase(ctx, userID, itemID)
	if err != nil {
		return Access{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup purchase")
	}
	if purchased {
		return Access{Reason: enums.AccessReasonPurchased}, nil
	}

	if item.PriceCents == 0 && item.Purchasable() {
		return Access{Reason: enums.AccessReasonFree}, nil
	}

	return Access{Reason: enums.AccessReasonNone}, nil
}

// DownloadURL returns a signed link when access is granted.
func (s *service) DownloadURL(ctx context.Context, userID, itemID uuid.UUID) (string, error) {
	access, err := s.Resolve(ctx, userID, itemID)
	if err != nil {
		return "", err
	}
	if !access.Granted() {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "no access to this item")
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}

	url, err := s.signer.SignedURL(item.FileKey)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sign download url")
	}
	return url, nil
}

// CanReview allows reviews from buyers and free downloaders, never from the
// item's own seller.
func (s *service) CanReview(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	access, err := s.Resolve(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	switch access.Reason {
	case enums.AccessReasonPurchased, enums.AccessReasonFree:
		return true, nil
	default:
		return false, nil
	}
}

// OwnedItemIDs filters itemIDs down to the ones userID already purchased.
func (s *service) OwnedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	ids, err := s.repo.PurchasedItemIDs(ctx, userID, itemIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup purchases")
	}
	return ids, nil
}

func (s *service) ListPurchases(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}
	return rows, nil
}
