package controllers

import (
	"net/http"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	"github.com/cramsheets/cramsheets-backend/api/validators"
	catalogsvc "github.com/cramsheets/cramsheets-backend/internal/catalog"
	ordersvc "github.com/cramsheets/cramsheets-backend/internal/orders"
	paymentsvc "github.com/cramsheets/cramsheets-backend/internal/payments"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// AdminPendingOrders lists orders awaiting manual payment review, oldest
// first so the queue drains in arrival order.
func AdminPendingOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		rows, err := svc.ListPendingReview(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(rows))
	}
}

// AdminApproveOrder settles a pending order as paid and mints entitlements.
func AdminApproveOrder(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		adminID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Approve(r.Context(), adminID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminRejectOrder settles a pending order as failed with a mandatory reason.
func AdminRejectOrder(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		adminID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload rejectOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Reject(r.Context(), adminID, orderID, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// AdminModerateItem applies an approve/reject/deactivate verdict to a sheet.
func AdminModerateItem(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload moderateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Moderate(r.Context(), itemID, catalogsvc.ModerationDecision(payload.Decision))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newItemResponse(item))
	}
}

type rejectOrderRequest struct {
	Reason string `json:"reason" validate:"required"`
}

type moderateItemRequest struct {
	Decision string `json:"decision" validate:"required,oneof=approve reject deactivate"`
}
