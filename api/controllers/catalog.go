package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	catalogsvc "github.com/cramsheets/cramsheets-backend/internal/catalog"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CatalogList serves the public, purchasable slice of the catalog.
func CatalogList(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		filter, err := listFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListPublic(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemListResponse(items))
	}
}

// CatalogDetail serves one purchasable item.
func CatalogDetail(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetPublicItem(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemResponse(item))
	}
}

func listFilterFromQuery(r *http.Request) (catalogsvc.ListFilter, error) {
	query := r.URL.Query()
	filter := catalogsvc.ListFilter{
		CourseCode: strings.TrimSpace(query.Get("course_code")),
		Search:     strings.TrimSpace(query.Get("q")),
		Limit:      defaultPageSize,
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return catalogsvc.ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer")
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}
		filter.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return catalogsvc.ListFilter{}, pkgerrors.New(pkgerrors.CodeValidation, "offset must be a non-negative integer")
		}
		filter.Offset = offset
	}

	return filter, nil
}

type itemResponse struct {
	ID             uuid.UUID `json:"id"`
	SellerID       uuid.UUID `json:"seller_id"`
	Title          string    `json:"title"`
	CourseCode     string    `json:"course_code"`
	Description    string    `json:"description,omitempty"`
	PriceCents     int64     `json:"price_cents"`
	Active         bool      `json:"active"`
	ApprovalStatus string    `json:"approval_status"`
	Tags           []string  `json:"tags,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func newItemResponse(item *models.CatalogItem) itemResponse {
	return itemResponse{
		ID:             item.ID,
		SellerID:       item.SellerID,
		Title:          item.Title,
		CourseCode:     item.CourseCode,
		Description:    item.Description,
		PriceCents:     item.PriceCents,
		Active:         item.Active,
		ApprovalStatus: string(item.ApprovalStatus),
		Tags:           item.Tags,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func newItemListResponse(items []models.CatalogItem) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for i := range items {
		out = append(out, newItemResponse(&items[i]))
	}
	return out
}
