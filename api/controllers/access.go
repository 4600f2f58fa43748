package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	entsvc "github.com/cramsheets/cramsheets-backend/internal/entitlements"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// ItemAccess explains whether and why the caller may open an item.
func ItemAccess(svc entsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		access, err := svc.Resolve(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		canReview, err := svc.CanReview(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, accessResponse{
			Reason:    string(access.Reason),
			Granted:   access.Granted(),
			CanReview: canReview,
		})
	}
}

// ItemDownload hands out a short-lived signed link to the item's file.
func ItemDownload(svc entsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		url, err := svc.DownloadURL(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"url": url})
	}
}

// PurchasesList returns the caller's library of settled purchases.
func PurchasesList(svc entsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "entitlements service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListPurchases(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]purchaseResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, newPurchaseResponse(row))
		}
		responses.WriteSuccess(w, out)
	}
}

type accessResponse struct {
	Reason    string `json:"reason"`
	Granted   bool   `json:"granted"`
	CanReview bool   `json:"can_review"`
}

type purchaseResponse struct {
	ItemID      uuid.UUID `json:"item_id"`
	OrderID     uuid.UUID `json:"order_id"`
	PurchasedAt time.Time `json:"purchased_at"`
}

func newPurchaseResponse(purchase models.Purchase) purchaseResponse {
	return purchaseResponse{
		ItemID:      purchase.ItemID,
		OrderID:     purchase.OrderID,
		PurchasedAt: purchase.CreatedAt,
	}
}
