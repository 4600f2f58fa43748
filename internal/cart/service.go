package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/internal/pricing"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

const cartUniqueIndex = "idx_cart_entries_user_item"

type itemLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
}

type ownershipResolver interface {
	OwnedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error)
}

// AddResult reports the outcome of an add. AlreadyInCart is informational,
// not an error; the entry is the surviving row either way.
type AddResult struct {
	Entry         *models.CartEntry
	AlreadyInCart bool
}

// Line is one cart row decorated for display. Unavailable lines stay visible
// but are excluded from the quote and will block checkout.
type Line struct {
	Entry       models.CartEntry
	Unavailable bool
}

// View is the full cart with its running quote.
type View struct {
	Lines []Line
	Quote pricing.Quote
}

// Service exposes cart staging operations.
type Service interface {
	Add(ctx context.Context, userID, itemID uuid.UUID) (*AddResult, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) (*View, error)
	Count(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	repo            Repository
	items           itemLoader
	ownership       ownershipResolver
	discountPercent int
}

// NewService builds a cart service backed by the provided collaborators.
func NewService(repo Repository, items itemLoader, ownership ownershipResolver, discountPercent int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item loader required")
	}
	if ownership == nil {
		return nil, fmt.Errorf("ownership resolver required")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, fmt.Errorf("discount percent out of range")
	}
	return &service{
		repo:            repo,
		items:           items,
		ownership:       ownership,
		discountPercent: discountPercent,
	}, nil
}

func (s *service) Add(ctx context.Context, userID, itemID uuid.UUID) (*AddResult, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and item id are required")
	}

	item, err := s.items.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup item")
	}
	if !item.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item is not available")
	}
	if item.SellerID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "sellers already own their listings").
			WithDetails(map[string]any{"item_ids": []string{itemID.String()}})
	}

	owned, err := s.ownership.OwnedItemIDs(ctx, userID, []uuid.UUID{itemID})
	if err != nil {
		return nil, err
	}
	if len(owned) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item already purchased").
			WithDetails(map[string]any{"item_ids": []string{itemID.String()}})
	}

	entry := &models.CartEntry{UserID: userID, ItemID: itemID}
	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		// lost a double-click race, the earlier row wins
		if db.IsUniqueViolation(err, cartUniqueIndex) {
			existing, findErr := s.repo.FindByUserAndItem(ctx, userID, itemID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "refetch cart entry")
			}
			return &AddResult{Entry: existing, AlreadyInCart: true}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart entry")
	}

	return &AddResult{Entry: created}, nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user and item id are required")
	}

	affected, err := s.repo.DeleteByUserAndItem(ctx, userID, itemID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart entry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	entries, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}

	view := &View{Lines: make([]Line, 0, len(entries))}
	var priced []pricing.Line
	for _, entry := range entries {
		line := Line{Entry: entry}
		if entry.Item == nil || !entry.Item.Purchasable() {
			line.Unavailable = true
		} else {
			priced = append(priced, pricing.Line{PriceCents: entry.Item.PriceCents})
		}
		view.Lines = append(view.Lines, line)
	}

	quote, err := pricing.Price(priced, s.discountPercent)
	if err != nil {
		return nil, err
	}
	view.Quote = quote
	return view, nil
}

func (s *service) Count(ctx context.Context, userID uuid.UUID) (int64, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}
	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count cart")
	}
	return count, nil
}
