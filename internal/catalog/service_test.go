package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type stubCatalogRepo struct {
	items map[uuid.UUID]*models.CatalogItem
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{items: make(map[uuid.UUID]*models.CatalogItem)}
}

func (s *stubCatalogRepo) Create(ctx context.Context, item *models.CatalogItem) (*models.CatalogItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, item *models.CatalogItem) error {
	if _, ok := s.items[item.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.items[item.ID] = item
	return nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *stubCatalogRepo) ListPublic(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error) {
	var rows []models.CatalogItem
	for _, item := range s.items {
		if item.Purchasable() {
			rows = append(rows, *item)
		}
	}
	return rows, nil
}

func (s *stubCatalogRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.CatalogItem, error) {
	var rows []models.CatalogItem
	for _, item := range s.items {
		if item.SellerID == sellerID {
			rows = append(rows, *item)
		}
	}
	return rows, nil
}

func (s *stubCatalogRepo) UpdateApproval(ctx context.Context, id uuid.UUID, status enums.ApprovalStatus) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.ApprovalStatus = status
	return nil
}

func newTestCatalog(t *testing.T) (Service, *stubCatalogRepo) {
	t.Helper()
	repo := newStubCatalogRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestCreateItemStartsPending(t *testing.T) {
	svc, _ := newTestCatalog(t)
	sellerID := uuid.New()

	item, err := svc.CreateItem(context.Background(), sellerID, CreateItemInput{
		Title:      "Calculus I Cheat Sheet",
		CourseCode: "math101",
		PriceCents: 499,
		Tags:       []string{"Calculus", "calculus", " limits "},
		FileKey:    "sheets/calc.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, enums.ApprovalStatusPending, item.ApprovalStatus)
	assert.True(t, item.Active)
	assert.Equal(t, "MATH101", item.CourseCode)
	assert.Equal(t, []string{"calculus", "limits"}, []string(item.Tags))
	assert.False(t, item.Purchasable())
}

func TestCreateItemValidation(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	sellerID := uuid.New()

	cases := []CreateItemInput{
		{Title: "", CourseCode: "M1", PriceCents: 1, FileKey: "k"},
		{Title: "T", CourseCode: "", PriceCents: 1, FileKey: "k"},
		{Title: "T", CourseCode: "M1", PriceCents: -1, FileKey: "k"},
		{Title: "T", CourseCode: "M1", PriceCents: 1, FileKey: ""},
	}
	for _, input := range cases {
		_, err := svc.CreateItem(ctx, sellerID, input)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestUpdateItemOwnerScoped(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()
	sellerID := uuid.New()

	item, err := svc.CreateItem(ctx, sellerID, CreateItemInput{
		Title: "T", CourseCode: "M1", PriceCents: 100, FileKey: "k",
	})
	require.NoError(t, err)

	newPrice := int64(250)
	updated, err := svc.UpdateItem(ctx, sellerID, item.ID, UpdateItemInput{PriceCents: &newPrice})
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.PriceCents)

	_, err = svc.UpdateItem(ctx, uuid.New(), item.ID, UpdateItemInput{PriceCents: &newPrice})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestModerateApproveThenConflict(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, uuid.New(), CreateItemInput{
		Title: "T", CourseCode: "M1", PriceCents: 100, FileKey: "k",
	})
	require.NoError(t, err)

	moderated, err := svc.Moderate(ctx, item.ID, ModerationApprove)
	require.NoError(t, err)
	assert.Equal(t, enums.ApprovalStatusApproved, moderated.ApprovalStatus)
	assert.True(t, moderated.Purchasable())

	_, err = svc.Moderate(ctx, item.ID, ModerationReject)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestModerateDeactivateHidesItem(t *testing.T) {
	svc, repo := newTestCatalog(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, uuid.New(), CreateItemInput{
		Title: "T", CourseCode: "M1", PriceCents: 100, FileKey: "k",
	})
	require.NoError(t, err)
	_, err = svc.Moderate(ctx, item.ID, ModerationApprove)
	require.NoError(t, err)

	_, err = svc.Moderate(ctx, item.ID, ModerationDeactivate)
	require.NoError(t, err)
	assert.False(t, repo.items[item.ID].Active)

	_, err = svc.GetPublicItem(ctx, item.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetPublicItemHidesUnapproved(t *testing.T) {
	svc, _ := newTestCatalog(t)
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, uuid.New(), CreateItemInput{
		Title: "T", CourseCode: "M1", PriceCents: 100, FileKey: "k",
	})
	require.NoError(t, err)

	_, err = svc.GetPublicItem(ctx, item.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.GetPublicItem(ctx, uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
