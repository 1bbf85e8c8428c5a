package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/config"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
	"github.com/mapexe/storefront-backend/internal/utils"
)

// dummyHash is compared against when the username is unknown so that
// login takes the same time whether or not the account exists.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z5Z9T7sYdLbtP9y1i/0rL2aG"

type AuthService struct {
	store   storage.Store
	policy  *access.Policy
	cfg     *config.Config
	revoked *utils.RevocationList
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,username"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	IsAdmin  bool   `json:"isAdmin"`
}

type AuthResponse struct {
	User        models.PublicAccount `json:"user"`
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType"`
	ExpiresIn   int                  `json:"expiresIn"` // in seconds
}

func NewAuthService(store storage.Store, policy *access.Policy, cfg *config.Config) *AuthService {
	return &AuthService{
		store:   store,
		policy:  policy,
		cfg:     cfg,
		revoked: utils.NewRevocationList(),
	}
}

// Register creates a staff account. Only an admin caller may create another
// admin directly.
func (s *AuthService) Register(ctx context.Context, principal *access.Principal, req *RegisterRequest) (*AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.IsAdmin && principal.Role() != access.RoleAdmin {
		if !principal.Authenticated() {
			return nil, apperr.Unauthenticated()
		}
		return nil, apperr.Forbidden()
	}

	hash, err := models.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	account, err := s.store.CreateAccount(ctx, models.AccountInput{
		Username: req.Username,
		Email:    req.Email,
		Password: hash,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, apperr.Conflict("username or email already exists")
		}
		return nil, storeError("create account", err)
	}

	logrus.WithFields(logrus.Fields{
		"account_id": account.ID,
		"username":   account.Username,
	}).Info("Account registered")

	return s.issue(account)
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccountByUsername(ctx, req.Username)
	if err != nil {
		return nil, storeError("get account by username", err)
	}
	if account == nil {
		(&models.Account{Password: dummyHash}).CheckPassword(req.Password)
		return nil, apperr.Unauthenticated()
	}
	if err := account.CheckPassword(req.Password); err != nil {
		return nil, apperr.Unauthenticated()
	}

	return s.issue(account)
}

// Logout revokes the token described by claims until it expires.
func (s *AuthService) Logout(claims *utils.JWTClaims) {
	if claims == nil || claims.ID == "" {
		return
	}
	expiresAt := time.Now().Add(time.Duration(s.cfg.JWT.AccessTokenTTL) * time.Hour)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	s.revoked.Revoke(claims.ID, expiresAt)
}

// Authenticate resolves a bearer token to the current state of its account.
// Tokens for deleted accounts or revoked tokens are rejected.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Account, *utils.JWTClaims, error) {
	claims, err := utils.ValidateJWT(token)
	if err != nil {
		return nil, nil, apperr.Unauthenticated()
	}
	if s.revoked.IsRevoked(claims.ID) {
		return nil, nil, apperr.Unauthenticated()
	}

	account, err := s.store.GetAccount(ctx, claims.AccountID)
	if err != nil {
		return nil, nil, storeError("get account", err)
	}
	if account == nil {
		return nil, nil, apperr.Unauthenticated()
	}
	return account, claims, nil
}

func (s *AuthService) issue(account *models.Account) (*AuthResponse, error) {
	token, _, err := utils.GenerateJWT(account.ID, account.Username, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	return &AuthResponse{
		User:        account.Public(),
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
	}, nil
}
