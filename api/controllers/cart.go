package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	"github.com/cramsheets/cramsheets-backend/api/validators"
	cartsvc "github.com/cramsheets/cramsheets-backend/internal/cart"
	"github.com/cramsheets/cramsheets-backend/internal/pricing"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// CartAdd stages one item in the caller's cart. Re-adding an item that is
// already staged succeeds and reports already_in_cart.
func CartAdd(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Add(r.Context(), userID, payload.ItemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if result.AlreadyInCart {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, addCartItemResponse{
			ItemID:        result.Entry.ItemID,
			AlreadyInCart: result.AlreadyInCart,
			AddedAt:       result.Entry.CreatedAt,
		})
	}
}

// CartRemove drops one item from the caller's cart.
func CartRemove(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
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

		if err := svc.Remove(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// CartFetch returns the cart lines with the running bundle quote.
func CartFetch(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newCartResponse(view))
	}
}

// CartCount returns the number of staged entries, for badge rendering.
func CartCount(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		count, err := svc.Count(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]int64{"count": count})
	}
}

type addCartItemRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
}

type addCartItemResponse struct {
	ItemID        uuid.UUID `json:"item_id"`
	AlreadyInCart bool      `json:"already_in_cart"`
	AddedAt       time.Time `json:"added_at"`
}

type cartLineResponse struct {
	ItemID      uuid.UUID `json:"item_id"`
	Title       string    `json:"title,omitempty"`
	PriceCents  int64     `json:"price_cents,omitempty"`
	Unavailable bool      `json:"unavailable,omitempty"`
	AddedAt     time.Time `json:"added_at"`
}

type cartResponse struct {
	Lines []cartLineResponse `json:"lines"`
	Quote pricing.Quote      `json:"quote"`
}

func newCartResponse(view *cartsvc.View) cartResponse {
	lines := make([]cartLineResponse, 0, len(view.Lines))
	for _, line := range view.Lines {
		out := cartLineResponse{
			ItemID:      line.Entry.ItemID,
			Unavailable: line.Unavailable,
			AddedAt:     line.Entry.CreatedAt,
		}
		if line.Entry.Item != nil {
			out.Title = line.Entry.Item.Title
			out.PriceCents = line.Entry.Item.PriceCents
		}
		lines = append(lines, out)
	}
	return cartResponse{Lines: lines, Quote: view.Quote}
}
