package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	authsvc "github.com/cramsheets/cramsheets-backend/internal/auth"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
)

type stubAuthService struct {
	session *authsvc.Session
	err     error
}

func (s stubAuthService) Register(ctx context.Context, input authsvc.RegisterInput) (*authsvc.Session, error) {
	return s.session, s.err
}

func (s stubAuthService) Login(ctx context.Context, input authsvc.LoginInput) (*authsvc.Session, error) {
	return s.session, s.err
}

func testSession() *authsvc.Session {
	return &authsvc.Session{
		User: &models.User{
			ID:          uuid.New(),
			Email:       "jana@fit.uni.cz",
			DisplayName: "Jana",
			Role:        enums.UserRoleBuyer,
		},
		Token: "signed-token",
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	handler := AuthRegister(stubAuthService{session: testSession()}, nil)

	body := `{"email":"jana@fit.uni.cz","password":"correct horse","display_name":"Jana"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data sessionResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Token == "" {
		t.Fatal("expected a token in the session payload")
	}
	if envelope.Data.User.Email != "jana@fit.uni.cz" {
		t.Fatalf("unexpected email %s", envelope.Data.User.Email)
	}
}

func TestAuthRegisterValidatesPayload(t *testing.T) {
	handler := AuthRegister(stubAuthService{session: testSession()}, nil)

	body := `{"email":"not-an-email","password":"short","display_name":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterDuplicateEmail(t *testing.T) {
	handler := AuthRegister(stubAuthService{
		err: pkgerrors.New(pkgerrors.CodeConflict, "email already registered"),
	}, nil)

	body := `{"email":"jana@fit.uni.cz","password":"correct horse","display_name":"Jana"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestAuthLoginInvalidCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{
		err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials"),
	}, nil)

	body := `{"email":"jana@fit.uni.cz","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}
