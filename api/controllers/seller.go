package controllers

import (
	"net/http"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	"github.com/cramsheets/cramsheets-backend/api/validators"
	catalogsvc "github.com/cramsheets/cramsheets-backend/internal/catalog"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// SellerCreateItem submits a new sheet. It lands pending moderation.
func SellerCreateItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), sellerID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newItemResponse(item))
	}
}

// SellerUpdateItem edits an existing sheet owned by the caller.
func SellerUpdateItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), sellerID, itemID, payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemResponse(item))
	}
}

// SellerListItems returns everything the caller has listed, any status.
func SellerListItems(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		sellerID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListSellerItems(r.Context(), sellerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemListResponse(items))
	}
}

type createItemRequest struct {
	Title       string   `json:"title" validate:"required"`
	CourseCode  string   `json:"course_code" validate:"required"`
	Description string   `json:"description"`
	PriceCents  int64    `json:"price_cents" validate:"min=0"`
	Tags        []string `json:"tags"`
	FileKey     string   `json:"file_key" validate:"required"`
}

func (r createItemRequest) toInput() catalogsvc.CreateItemInput {
	return catalogsvc.CreateItemInput{
		Title:       r.Title,
		CourseCode:  r.CourseCode,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Tags:        r.Tags,
		FileKey:     r.FileKey,
	}
}

type updateItemRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	PriceCents  *int64   `json:"price_cents"`
	Tags        []string `json:"tags"`
	Active      *bool    `json:"active"`
}

func (r updateItemRequest) toInput() catalogsvc.UpdateItemInput {
	return catalogsvc.UpdateItemInput{
		Title:       r.Title,
		Description: r.Description,
		PriceCents:  r.PriceCents,
		Tags:        r.Tags,
		Active:      r.Active,
	}
}
