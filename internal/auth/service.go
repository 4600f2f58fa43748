package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cramsheets/cramsheets-backend/internal/users"
	pkgauth "github.com/cramsheets/cramsheets-backend/pkg/auth"
	"github.com/cramsheets/cramsheets-backend/pkg/config"
	"github.com/cramsheets/cramsheets-backend/pkg/db"
	"github.com/cramsheets/cramsheets-backend/pkg/db/models"
	"github.com/cramsheets/cramsheets-backend/pkg/enums"
	pkgerrors "github.com/cramsheets/cramsheets-backend/pkg/errors"
	"github.com/cramsheets/cramsheets-backend/pkg/security"
)

// Academic mail domains get the verified flag at registration. Everything
// else registers fine but stays unverified.
var verifiedEmailSuffixes = []string{".edu", ".ac.uk", ".uni.cz"}

// RegisterInput carries the fields accepted at account creation.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
	Role        enums.UserRole
}

// LoginInput carries the credential pair checked at login.
type LoginInput struct {
	Email    string
	Password string
}

// Session pairs an authenticated user with a freshly minted access token.
type Session struct {
	User  *models.User
	Token string
}

// Service exposes account registration and credential login.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
}

type service struct {
	repo     users.Repository
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
	nowFn    func() time.Time
}

// NewService builds an auth service backed by the users repository.
func NewService(repo users.Repository, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if jwtCfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret required")
	}
	return &service{
		repo:   repo,
		jwtCfg: jwtCfg,
		pwCfg:  pwCfg,
		nowFn:  time.Now,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if strings.TrimSpace(input.DisplayName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "display_name is required")
	}

	role := input.Role
	if role == "" {
		role = enums.UserRoleBuyer
	}
	if role != enums.UserRoleBuyer && role != enums.UserRoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role must be buyer or seller")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user := &models.User{
		Email:               email,
		PasswordHash:        hash,
		DisplayName:         strings.TrimSpace(input.DisplayName),
		Role:                role,
		EmailDomainVerified: hasVerifiedDomain(email),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_users_email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.sessionFor(created)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// same answer for unknown email and bad password
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil || !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	return s.sessionFor(user)
}

func (s *service) sessionFor(user *models.User) (*Session, error) {
	token, err := pkgauth.MintAccessToken(s.jwtCfg, s.nowFn(), pkgauth.AccessTokenPayload{
		UserID:         user.ID,
		Role:           user.Role,
		DomainVerified: user.EmailDomainVerified,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &Session{User: user, Token: token}, nil
}

func hasVerifiedDomain(email string) bool {
	_, domain, found := strings.Cut(email, "@")
	if !found {
		return false
	}
	for _, suffix := range verifiedEmailSuffixes {
		if strings.HasSuffix(domain, suffix) {
			return true
		}
	}
	return false
}
