package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cramsheets/cramsheets-backend/api/responses"
	"github.com/cramsheets/cramsheets-backend/api/validators"
	authsvc "github.com/cramsheets/cramsheets-backend/internal/auth"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/logger"
)

// AuthRegister creates an account and returns a fresh session.
func AuthRegister(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Register(r.Context(), payload.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newSessionResponse(session))
	}
}

// AuthLogin checks credentials and returns a fresh session.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), authsvc.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newSessionResponse(session))
	}
}

type registerRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"display_name" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=buyer seller"`
}

func (r registerRequest) toInput() authsvc.RegisterInput {
	return authsvc.RegisterInput{
		Email:       r.Email,
		Password:    r.Password,
		DisplayName: r.DisplayName,
		Role:        enums.UserRole(r.Role),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	DomainVerified bool      `json:"domain_verified"`
	CreatedAt      time.Time `json:"created_at"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:             user.ID,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		Role:           string(user.Role),
		DomainVerified: user.EmailDomainVerified,
		CreatedAt:      user.CreatedAt,
	}
}

func newSessionResponse(session *authsvc.Session) sessionResponse {
	return sessionResponse{
		Token: session.Token,
		User:  newUserResponse(session.User),
	}
}
