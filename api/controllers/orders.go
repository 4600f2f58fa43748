package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	ordersvc "github.com/cramsheets/cramsheets-backend/internal/orders"
	paymentsvc "github.com/cramsheets/cramsheets-backend/internal/payments"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// OrdersList returns the caller's order history, newest first.
func OrdersList(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListUserOrders(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderListResponse(rows))
	}
}

// OrderDetail returns one of the caller's orders with its items and any
// issued payment request.
func OrderDetail(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetUserOrder(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderPaymentRequest issues (or re-serves) the transfer instructions for a
// pending order.
func OrderPaymentRequest(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := pathUUID(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.RequestPayment(r.Context(), userID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newPaymentRequestResponse(request))
	}
}

type orderItemResponse struct {
	ItemID     uuid.UUID `json:"item_id"`
	Title      string    `json:"title"`
	PriceCents int64     `json:"price_cents"`
}

type paymentRequestResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderID     uuid.UUID `json:"order_id"`
	Reference   string    `json:"reference"`
	AmountCents int64     `json:"amount_cents"`
	Code        string    `json:"code"`
	CreatedAt   time.Time `json:"created_at"`
}

type orderResponse struct {
	ID              uuid.UUID               `json:"id"`
	SubtotalCents   int64                   `json:"subtotal_cents"`
	DiscountKind    string                  `json:"discount_kind"`
	DiscountCents   int64                   `json:"discount_cents"`
	TotalCents      int64                   `json:"total_cents"`
	PaymentStatus   string                  `json:"payment_status"`
	RejectionReason *string                 `json:"rejection_reason,omitempty"`
	Items           []orderItemResponse     `json:"items"`
	PaymentRequest  *paymentRequestResponse `json:"payment_request,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func newPaymentRequestResponse(request *models.PaymentRequest) *paymentRequestResponse {
	if request == nil {
		return nil
	}
	return &paymentRequestResponse{
		ID:          request.ID,
		OrderID:     request.OrderID,
		Reference:   request.Reference,
		AmountCents: request.AmountCents,
		Code:        request.Code,
		CreatedAt:   request.CreatedAt,
	}
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ItemID:     item.ItemID,
			Title:      item.Title,
			PriceCents: item.PriceCents,
		})
	}
	return orderResponse{
		ID:              order.ID,
		SubtotalCents:   order.SubtotalCents,
		DiscountKind:    string(order.DiscountKind),
		DiscountCents:   order.DiscountCents,
		TotalCents:      order.TotalCents,
		PaymentStatus:   string(order.PaymentStatus),
		RejectionReason: order.RejectionReason,
		Items:           items,
		PaymentRequest:  newPaymentRequestResponse(order.PaymentRequest),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func newOrderListResponse(rows []models.Order) []orderResponse {
	out := make([]orderResponse, 0, len(rows))
	for i := range rows {
		out = append(out, newOrderResponse(&rows[i]))
	}
	return out
}
