package entitlements

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type stubPurchasesRepo struct {
	purchases map[string]models.Purchase
}

func newStubPurchasesRepo() *stubPurchasesRepo {
	return &stubPurchasesRepo{purchases: make(map[string]models.Purchase)}
}

func purchaseKey(userID, itemID uuid.UUID) string {
	return userID.String() + "/" + itemID.String()
}

func (s *stubPurchasesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPurchasesRepo) CreateIgnoringDuplicates(ctx context.Context, purchases []models.Purchase) error {
	for _, p := range purchases {
		key := purchaseKey(p.UserID, p.ItemID)
		if _, exists := s.purchases[key]; exists {
			continue
		}
		s.purchases[key] = p
	}
	return nil
}

func (s *stubPurchasesRepo) HasPurchase(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	_, ok := s.purchases[purchaseKey(userID, itemID)]
	return ok, nil
}

func (s *stubPurchasesRepo) PurchasedItemIDs(ctx context.Context, userID uuid.UUID, itemIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for _, itemID := range itemIDs {
		if _, ok := s.purchases[purchaseKey(userID, itemID)]; ok {
			out = append(out, itemID)
		}
	}
	return out, nil
}

func (s *stubPurchasesRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type stubItemLoader struct {
	items map[uuid.UUID]*models.CatalogItem
}

func (s *stubItemLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

type stubSigner struct{}

func (stubSigner) SignedURL(fileKey string) (string, error) {
	return fmt.Sprintf("/files/%s?sig=stub", fileKey), nil
}

func approvedItem(sellerID uuid.UUID, priceCents int64) *models.CatalogItem {
	return &models.CatalogItem{
		ID:             uuid.New(),
		SellerID:       sellerID,
		Title:          "T",
		PriceCents:     priceCents,
		Active:         true,
		ApprovalStatus: enums.ApprovalStatusApproved,
		FileKey:        "sheets/t.pdf",
	}
}

func newTestEntitlements(t *testing.T, items ...*models.CatalogItem) (Service, *stubPurchasesRepo) {
	t.Helper()
	repo := newStubPurchasesRepo()
	loader := &stubItemLoader{items: make(map[uuid.UUID]*models.CatalogItem)}
	for _, item := range items {
		loader.items[item.ID] = item
	}
	svc, err := NewService(repo, loader, stubSigner{})
	require.NoError(t, err)
	return svc, repo
}

func TestResolveOwnerBeatsPurchase(t *testing.T) {
	seller := uuid.New()
	item := approvedItem(seller, 0)
	svc, repo := newTestEntitlements(t, item)
	ctx := context.Background()

	// even a recorded purchase cannot demote the owner reason
	require.NoError(t, repo.CreateIgnoringDuplicates(ctx, []models.Purchase{
		{UserID: seller, ItemID: item.ID, OrderID: uuid.New()},
	}))

	access, err := svc.Resolve(ctx, seller, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccessReasonOwner, access.Reason)
	assert.True(t, access.Granted())
}

func TestResolvePurchasedBeatsFree(t *testing.T) {
	item := approvedItem(uuid.New(), 0)
	svc, repo := newTestEntitlements(t, item)
	ctx := context.Background()
	buyer := uuid.New()

	require.NoError(t, repo.CreateIgnoringDuplicates(ctx, []models.Purchase{
		{UserID: buyer, ItemID: item.ID, OrderID: uuid.New()},
	}))

	access, err := svc.Resolve(ctx, buyer, item.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccessReasonPurchased, access.Reason)
}

func TestResolveFreeRequiresPurchasable(t *testing.T) {
	free := approvedItem(uuid.New(), 0)
	hidden := approvedItem(uuid.New(), 0)
	hidden.Active = false
	svc, _ := newTestEntitlements(t, free, hidden)
	ctx := context.Background()
	user := uuid.New()

	access, err := svc.Resolve(ctx, user, free.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccessReasonFree, access.Reason)

	access, err = svc.Resolve(ctx, user, hidden.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.AccessReasonNone, access.Reason)
	assert.False(t, access.Granted())
}

func TestDownloadURLRequiresAccess(t *testing.T) {
	paid := approvedItem(uuid.New(), 500)
	svc, repo := newTestEntitlements(t, paid)
	ctx := context.Background()
	user := uuid.New()

	_, err := svc.DownloadURL(ctx, user, paid.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, repo.CreateIgnoringDuplicates(ctx, []models.Purchase{
		{UserID: user, ItemID: paid.ID, OrderID: uuid.New()},
	}))

	url, err := svc.DownloadURL(ctx, user, paid.ID)
	require.NoError(t, err)
	assert.Equal(t, "/files/sheets/t.pdf?sig=stub", url)
}

func TestCanReviewExcludesOwner(t *testing.T) {
	seller := uuid.New()
	item := approvedItem(seller, 0)
	svc, _ := newTestEntitlements(t, item)
	ctx := context.Background()

	ok, err := svc.CanReview(ctx, seller, item.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	freeUser := uuid.New()
	ok, err = svc.CanReview(ctx, freeUser, item.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	buyer := uuid.New()
	paid := approvedItem(uuid.New(), 300)
	svcPaid, repoPaid := newTestEntitlements(t, paid)
	require.NoError(t, repoPaid.CreateIgnoringDuplicates(ctx, []models.Purchase{
		{UserID: buyer, ItemID: paid.ID, OrderID: uuid.New()},
	}))
	ok, err = svcPaid.CanReview(ctx, buyer, paid.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOwnedItemIDsFilters(t *testing.T) {
	a := approvedItem(uuid.New(), 100)
	b := approvedItem(uuid.New(), 100)
	svc, repo := newTestEntitlements(t, a, b)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, repo.CreateIgnoringDuplicates(ctx, []models.Purchase{
		{UserID: user, ItemID: a.ID, OrderID: uuid.New()},
	}))

	owned, err := svc.OwnedItemIDs(ctx, user, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a.ID}, owned)
}

func TestResolveUnknownItem(t *testing.T) {
	svc, _ := newTestEntitlements(t)
	_, err := svc.Resolve(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
