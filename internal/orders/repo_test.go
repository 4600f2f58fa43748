package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  discount_kind TEXT NOT NULL DEFAULT 'none',
  discount_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  rejection_reason TEXT,
  reviewed_by TEXT,
  reviewed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  item_id TEXT NOT NULL,
  title TEXT NOT NULL,
  price_cents INTEGER NOT NULL
);`
	paymentRequests := `
CREATE TABLE IF NOT EXISTS payment_requests (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  reference TEXT NOT NULL UNIQUE,
  amount_cents INTEGER NOT NULL,
  code TEXT NOT NULL,
  created_at DATETIME
);`

	for _, ddl := range []string{ordersTable, orderItems, paymentRequests} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedOrder(t *testing.T, repo Repository, userID uuid.UUID, itemPrices ...int64) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:        userID,
		PaymentStatus: enums.PaymentStatusPending,
	}
	for _, cents := range itemPrices {
		order.Items = append(order.Items, models.OrderItem{
			ItemID:     uuid.New(),
			Title:      "T",
			PriceCents: cents,
		})
		order.SubtotalCents += cents
	}
	order.TotalCents = order.SubtotalCents

	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestCreateAndFindOrder(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()
	user := uuid.New()

	created := seedOrder(t, repo, user, 500, 300)
	require.NotEqual(t, uuid.Nil, created.ID)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, user, found.UserID)
	assert.Equal(t, int64(800), found.SubtotalCents)
	require.Len(t, found.Items, 2)
	assert.Nil(t, found.PaymentRequest)
}

func TestListByUserNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	user := uuid.New()

	older := seedOrder(t, repo, user, 100)
	newer := seedOrder(t, repo, user, 200)
	seedOrder(t, repo, uuid.New(), 300)

	// force distinct timestamps, sqlite stores what we give it
	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", older.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	rows, err := repo.ListByUser(ctx, user)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, newer.ID, rows[0].ID)
	assert.Equal(t, older.ID, rows[1].ID)
}

func TestSettleIfPendingIsGuarded(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()
	admin := uuid.New()

	order := seedOrder(t, repo, uuid.New(), 500)

	ok, err := repo.SettleIfPending(ctx, order.ID, enums.PaymentStatusPaid, ReviewStamp{
		ReviewedBy: admin,
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	// second settle must lose the guard
	ok, err = repo.SettleIfPending(ctx, order.ID, enums.PaymentStatusFailed, ReviewStamp{
		ReviewedBy: admin,
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	require.NotNil(t, found.ReviewedBy)
	assert.Equal(t, admin, *found.ReviewedBy)
}

func TestSettleIfPendingRecordsRejection(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	order := seedOrder(t, repo, uuid.New(), 500)
	reason := "no matching transfer"

	ok, err := repo.SettleIfPending(ctx, order.ID, enums.PaymentStatusFailed, ReviewStamp{
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Now(),
		Reason:     &reason,
	})
	require.NoError(t, err)
	assert.True(t, ok)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusFailed, found.PaymentStatus)
	require.NotNil(t, found.RejectionReason)
	assert.Equal(t, reason, *found.RejectionReason)
}

func TestListByStatus(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	ctx := context.Background()

	pending := seedOrder(t, repo, uuid.New(), 100)
	settledOrder := seedOrder(t, repo, uuid.New(), 200)
	_, err := repo.SettleIfPending(ctx, settledOrder.ID, enums.PaymentStatusPaid, ReviewStamp{
		ReviewedBy: uuid.New(),
		ReviewedAt: time.Now(),
	})
	require.NoError(t, err)

	rows, err := repo.ListByStatus(ctx, enums.PaymentStatusPending)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, pending.ID, rows[0].ID)
}
