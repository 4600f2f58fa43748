package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	paymentsvc "github.com/cramsheets/cramsheets-backend/internal/payments"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type stubPaymentsService struct {
	request *models.PaymentRequest
	order   *models.Order
	err     error
}

var _ paymentsvc.Service = stubPaymentsService{}

func (s stubPaymentsService) RequestPayment(ctx context.Context, userID, orderID uuid.UUID) (*models.PaymentRequest, error) {
	return s.request, s.err
}

func (s stubPaymentsService) Approve(ctx context.Context, adminID, orderID uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s stubPaymentsService) Reject(ctx context.Context, adminID, orderID uuid.UUID, reason string) (*models.Order, error) {
	return s.order, s.err
}

func withOrderParam(req *http.Request, orderID uuid.UUID) *http.Request {
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", orderID.String())
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func TestOrderPaymentRequestSuccess(t *testing.T) {
	orderID := uuid.New()
	request := &models.PaymentRequest{
		ID:          uuid.New(),
		OrderID:     orderID,
		Reference:   "CS-0123456789AB",
		AmountCents: 720,
		Code:        "SPD*1.0*ACC:CZ65*AM:7.20*CC:EUR*RN:CramSheets*X-REF:CS-0123456789AB*MSG:CS-0123456789AB",
	}
	handler := OrderPaymentRequest(stubPaymentsService{request: request}, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment-request", ""), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data paymentRequestResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Reference != request.Reference {
		t.Fatalf("unexpected reference %s", envelope.Data.Reference)
	}
	if envelope.Data.Code == "" {
		t.Fatal("expected the payment code in the payload")
	}
}

func TestOrderPaymentRequestSettledOrder(t *testing.T) {
	handler := OrderPaymentRequest(stubPaymentsService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is not awaiting payment"),
	}, nil)

	orderID := uuid.New()
	req := withOrderParam(authedRequest(http.MethodPost, "/api/v1/orders/"+orderID.String()+"/payment-request", ""), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}

func TestOrderPaymentRequestRejectsBadOrderID(t *testing.T) {
	handler := OrderPaymentRequest(stubPaymentsService{}, nil)

	req := authedRequest(http.MethodPost, "/api/v1/orders/not-a-uuid/payment-request", "")
	rc := chi.NewRouteContext()
	rc.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminApproveOrderSuccess(t *testing.T) {
	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		TotalCents:    720,
		PaymentStatus: enums.PaymentStatusPaid,
	}
	handler := AdminApproveOrder(stubPaymentsService{order: order}, nil)

	req := withOrderParam(authedRequest(http.MethodPost, "/api/admin/v1/orders/"+orderID.String()+"/approve", ""), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data orderResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentStatus != string(enums.PaymentStatusPaid) {
		t.Fatalf("unexpected status %s", envelope.Data.PaymentStatus)
	}
}

func TestAdminRejectOrderRequiresReason(t *testing.T) {
	handler := AdminRejectOrder(stubPaymentsService{}, nil)

	orderID := uuid.New()
	req := withOrderParam(authedRequest(http.MethodPost, "/api/admin/v1/orders/"+orderID.String()+"/reject", `{}`), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminRejectOrderAlreadySettled(t *testing.T) {
	handler := AdminRejectOrder(stubPaymentsService{
		err: pkgerrors.New(pkgerrors.CodeStateConflict, "order is already settled"),
	}, nil)

	orderID := uuid.New()
	req := withOrderParam(authedRequest(http.MethodPost, "/api/admin/v1/orders/"+orderID.String()+"/reject", `{"reason":"no transfer"}`), orderID)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
}
