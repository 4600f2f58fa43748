package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/internal/entitlements"
	"github.com/cramsheets/cramsheets-backend/internal/orders"
	"github.com/cramsheets/cramsheets-backend/pkg/config"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

const paymentRequestOrderIndex = "idx_payment_requests_order_id"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns payment request issuance and the reconciliation state machine.
type Service interface {
	RequestPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.PaymentRequest, error)
	Approve(ctx context.Context, adminID, orderID uuid.UUID) (*models.Order, error)
	Reject(ctx context.Context, adminID, orderID uuid.UUID, reason string) (*models.Order, error)
}

type service struct {
	tx            txRunner
	ordersRepo    orders.Repository
	requestsRepo  Repository
	purchasesRepo entitlements.Repository
	cfg           config.PaymentConfig
	nowFn         func() time.Time
}

// NewService builds a payments service.
func NewService(tx txRunner, ordersRepo orders.Repository, requestsRepo Repository, purchasesRepo entitlements.Repository, cfg config.PaymentConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if requestsRepo == nil {
		return nil, fmt.Errorf("payment requests repository required")
	}
	if purchasesRepo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if cfg.BeneficiaryAccount == "" {
		return nil, fmt.Errorf("beneficiary account required")
	}
	return &service{
		tx:            tx,
		ordersRepo:    ordersRepo,
		requestsRepo:  requestsRepo,
		purchasesRepo: purchasesRepo,
		cfg:           cfg,
		nowFn:         time.Now,
	}, nil
}

// RequestPayment returns the transfer instructions for a pending order. The
// call is idempotent; repeated requests always return the one stored row.
// The status check and the insert share one transaction so a request cannot
// land on an order that was settled in between.
func (s *service) RequestPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.PaymentRequest, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user and order id are required")
	}

	var result *models.PaymentRequest
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		requestsRepo := s.requestsRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if order.PaymentStatus != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment")
		}

		existing, err := requestsRepo.FindByOrderID(ctx, orderID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup payment request")
		}

		reference := ReferenceFor(s.cfg, orderID)
		request := &models.PaymentRequest{
			OrderID:     orderID,
			Reference:   reference,
			AmountCents: order.TotalCents,
			Code:        BuildCode(s.cfg, reference, order.TotalCents),
		}
		created, err := requestsRepo.Create(ctx, request)
		if err != nil {
			// returned raw so the caller can spot the unique violation
			return err
		}
		result = created
		return nil
	})
	if err != nil {
		// concurrent request already created the row, hand that one back
		if db.IsUniqueViolation(err, paymentRequestOrderIndex) {
			winner, findErr := s.requestsRepo.FindByOrderID(ctx, orderID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "refetch payment request")
			}
			return winner, nil
		}
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment request")
	}
	return result, nil
}

// Approve marks a pending order paid and mints the buyer's entitlements.
// Both writes share one transaction; the status flip is guarded so two
// admins cannot settle the same order twice.
func (s *service) Approve(ctx context.Context, adminID, orderID uuid.UUID) (*models.Order, error) {
	if adminID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin and order id are required")
	}

	var settled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)
		purchasesRepo := s.purchasesRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}

		now := s.nowFn()
		ok, err := ordersRepo.SettleIfPending(ctx, orderID, enums.PaymentStatusPaid, orders.ReviewStamp{
			ReviewedBy: adminID,
			ReviewedAt: now,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled")
		}

		purchases := make([]models.Purchase, len(order.Items))
		for i, item := range order.Items {
			purchases[i] = models.Purchase{
				UserID:  order.UserID,
				ItemID:  item.ItemID,
				OrderID: order.ID,
			}
		}
		if err := purchasesRepo.CreateIgnoringDuplicates(ctx, purchases); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mint purchases")
		}

		order.PaymentStatus = enums.PaymentStatusPaid
		order.ReviewedBy = &adminID
		order.ReviewedAt = &now
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// Reject marks a pending order failed. The reason is mandatory and lands on
// the order for the buyer to see. No entitlements are granted.
func (s *service) Reject(ctx context.Context, adminID, orderID uuid.UUID, reason string) (*models.Order, error) {
	if adminID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "admin and order id are required")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}

	var settled *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.ordersRepo.WithTx(tx)

		order, err := s.loadOrder(ctx, ordersRepo, orderID)
		if err != nil {
			return err
		}

		now := s.nowFn()
		ok, err := ordersRepo.SettleIfPending(ctx, orderID, enums.PaymentStatusFailed, orders.ReviewStamp{
			ReviewedBy: adminID,
			ReviewedAt: now,
			Reason:     &reason,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle order")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled")
		}

		order.PaymentStatus = enums.PaymentStatusFailed
		order.RejectionReason = &reason
		order.ReviewedBy = &adminID
		order.ReviewedAt = &now
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}

func (s *service) loadOrder(ctx context.Context, repo orders.Repository, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup order")
	}
	return order, nil
}
