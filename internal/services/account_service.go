package services

import (
	"context"

	"github.com/mapexe/storefront-backend/internal/access"
	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/models"
	"github.com/mapexe/storefront-backend/internal/storage"
)

type AccountService struct {
	store  storage.Store
	policy *access.Policy
}

func NewAccountService(store storage.Store, policy *access.Policy) *AccountService {
	return &AccountService{
		store:  store,
		policy: policy,
	}
}

func (s *AccountService) ListAccounts(ctx context.Context, principal *access.Principal) ([]models.PublicAccount, error) {
	if err := s.policy.Require(principal, access.ResourceAccounts, access.ActionRead); err != nil {
		return nil, err
	}

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}
	return models.PublicAccounts(accounts), nil
}

// DeleteAccount removes another staff account. Admins can never remove
// their own account.
func (s *AccountService) DeleteAccount(ctx context.Context, principal *access.Principal, id uint) error {
	if err := s.policy.Require(principal, access.ResourceAccounts, access.ActionDelete); err != nil {
		return err
	}
	if err := access.RequireNotSelf(principal, id); err != nil {
		return err
	}

	removed, err := s.store.DeleteAccount(ctx, id)
	if err != nil {
		return storeError("delete account", err)
	}
	if !removed {
		return apperr.NotFound("account")
	}
	return nil
}

func (s *AccountService) Promote(ctx context.Context, principal *access.Principal, id uint) (*models.PublicAccount, error) {
	if err := s.policy.Require(principal, access.ResourceAccounts, access.ActionPromote); err != nil {
		return nil, err
	}

	isAdmin := true
	account, err := s.store.UpdateAccount(ctx, id, models.AccountPatch{IsAdmin: &isAdmin})
	if err != nil {
		return nil, storeError("promote account", err)
	}
	if account == nil {
		return nil, apperr.NotFound("account")
	}

	public := account.Public()
	return &public, nil
}
