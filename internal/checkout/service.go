package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/internal/cart"
	"github.com/cramsheets/cramsheets-backend/internal/entitlements"
	"github.com/cramsheets/cramsheets-backend/internal/orders"
	"github.com/cramsheets/cramsheets-backend/internal/pricing"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a cart into a pending order.
type Service interface {
	Execute(ctx context.Context, userID uuid.UUID) (*models.Order, error)
}

type service struct {
	tx              txRunner
	cartRepo        cart.Repository
	ordersRepo      orders.Repository
	purchasesRepo   entitlements.Repository
	discountPercent int
}

// NewService builds a checkout service. All writes run inside one
// transaction supplied by the tx runner.
func NewService(tx txRunner, cartRepo cart.Repository, ordersRepo orders.Repository, purchasesRepo entitlements.Repository, discountPercent int) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if purchasesRepo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if discountPercent < 0 || discountPercent > 100 {
		return nil, fmt.Errorf("discount percent out of range")
	}
	return &service{
		tx:              tx,
		cartRepo:        cartRepo,
		ordersRepo:      ordersRepo,
		purchasesRepo:   purchasesRepo,
		discountPercent: discountPercent,
	}, nil
}

// Execute snapshots the cart into an immutable pending order and drains the
// cart. Items are re-checked inside the transaction; any entry that became
// unavailable or already owned since it was staged aborts the whole checkout
// with the offending ids in the error details. The drain is verified against
// the snapshot so two concurrent checkouts cannot both produce an order.
func (s *service) Execute(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user identity missing")
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)
		purchasesRepo := s.purchasesRepo.WithTx(tx)

		entries, err := cartRepo.ListByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(entries) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		var unavailable []string
		var owned []string
		itemIDs := make([]uuid.UUID, 0, len(entries))
		for _, entry := range entries {
			itemIDs = append(itemIDs, entry.ItemID)
			if entry.Item == nil || !entry.Item.Purchasable() {
				unavailable = append(unavailable, entry.ItemID.String())
				continue
			}
			// sellers already hold their own uploads
			if entry.Item.SellerID == userID {
				owned = append(owned, entry.ItemID.String())
			}
		}
		if len(unavailable) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart contains unavailable items").
				WithDetails(map[string]any{"item_ids": unavailable})
		}

		purchasedIDs, err := purchasesRepo.PurchasedItemIDs(ctx, userID, itemIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check prior purchases")
		}
		for _, id := range purchasedIDs {
			owned = append(owned, id.String())
		}
		if len(owned) > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart contains items the buyer already owns").
				WithDetails(map[string]any{"item_ids": owned})
		}

		lines := make([]pricing.Line, len(entries))
		orderItems := make([]models.OrderItem, len(entries))
		for i, entry := range entries {
			lines[i] = pricing.Line{PriceCents: entry.Item.PriceCents}
			orderItems[i] = models.OrderItem{
				ItemID:     entry.ItemID,
				Title:      entry.Item.Title,
				PriceCents: entry.Item.PriceCents,
			}
		}

		quote, err := pricing.Price(lines, s.discountPercent)
		if err != nil {
			return err
		}

		order := &models.Order{
			UserID:        userID,
			SubtotalCents: quote.SubtotalCents,
			DiscountKind:  quote.DiscountKind,
			DiscountCents: quote.DiscountCents,
			TotalCents:    quote.TotalCents,
			PaymentStatus: enums.PaymentStatusPending,
			Items:         orderItems,
		}

		created, err = ordersRepo.Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		drained, err := cartRepo.DeleteAllByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "drain cart")
		}
		// a rival checkout drained these rows after our snapshot; abort so
		// only one order comes out of the cart
		if drained != int64(len(entries)) {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
