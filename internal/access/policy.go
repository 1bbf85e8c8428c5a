package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/mapexe/storefront-backend/internal/apperr"
)

// Resources
const (
	ResourceItems        = "items"
	ResourceOrders       = "orders"
	ResourceTestimonials = "testimonials"
	ResourceAccounts     = "accounts"
	ResourceStats        = "stats"
	ResourceUploads      = "uploads"
)

// Actions
const (
	ActionRead      = "read"
	ActionCreate    = "create"
	ActionUpdate    = "update"
	ActionUpdateOwn = "update_own"
	ActionDelete    = "delete"
	ActionDeleteOwn = "delete_own"
	ActionPromote   = "promote"
	ActionVerify    = "verify"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var defaultPolicies = [][]string{
	{RoleAnonymous, ResourceItems, ActionRead},
	{RoleAnonymous, ResourceOrders, ActionCreate},
	{RoleAnonymous, ResourceTestimonials, ActionRead},
	{RoleAnonymous, ResourceTestimonials, ActionCreate},

	{RoleStaff, ResourceItems, ActionCreate},
	{RoleStaff, ResourceItems, ActionUpdateOwn},
	{RoleStaff, ResourceItems, ActionDeleteOwn},
	{RoleStaff, ResourceOrders, ActionRead},
	{RoleStaff, ResourceUploads, ActionCreate},

	{RoleAdmin, ResourceItems, ActionUpdate},
	{RoleAdmin, ResourceItems, ActionDelete},
	{RoleAdmin, ResourceOrders, ActionUpdate},
	{RoleAdmin, ResourceTestimonials, ActionVerify},
	{RoleAdmin, ResourceAccounts, ActionRead},
	{RoleAdmin, ResourceAccounts, ActionDelete},
	{RoleAdmin, ResourceAccounts, ActionPromote},
	{RoleAdmin, ResourceStats, ActionRead},
}

// Policy answers role questions with a casbin RBAC enforcer. admin inherits
// staff, which inherits anonymous.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse access model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize enforcer: %w", err)
	}

	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(RoleStaff, RoleAnonymous); err != nil {
		return nil, fmt.Errorf("failed to load role hierarchy: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicy(RoleAdmin, RoleStaff); err != nil {
		return nil, fmt.Errorf("failed to load role hierarchy: %w", err)
	}

	return &Policy{enforcer: enforcer}, nil
}

// MustNewPolicy is NewPolicy for wiring code where the built-in model cannot
// fail to load.
func MustNewPolicy() *Policy {
	p, err := NewPolicy()
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Policy) allowed(principal *Principal, resource, action string) (bool, error) {
	ok, err := p.enforcer.Enforce(principal.Role(), resource, action)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("permission check failed: %w", err))
	}
	return ok, nil
}

// Require fails with UNAUTHORIZED for an anonymous caller and FORBIDDEN for
// an authenticated one when the role may not perform action on resource.
func (p *Policy) Require(principal *Principal, resource, action string) error {
	ok, err := p.allowed(principal, resource, action)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	if !principal.Authenticated() {
		return apperr.Unauthenticated()
	}
	return apperr.Forbidden()
}

// RequireOwnerOrAdmin allows the owner of a record (via ownAction) or any
// role granted anyAction on the resource.
func (p *Policy) RequireOwnerOrAdmin(principal *Principal, ownerID uint, resource, anyAction, ownAction string) error {
	if !principal.Authenticated() {
		return apperr.Unauthenticated()
	}

	ok, err := p.allowed(principal, resource, anyAction)
	if err != nil || ok {
		return err
	}

	if principal.AccountID == ownerID {
		ok, err = p.allowed(principal, resource, ownAction)
		if err != nil || ok {
			return err
		}
	}
	return apperr.Forbidden()
}

// RequireNotSelf rejects an operation aimed at the caller's own account.
func RequireNotSelf(principal *Principal, targetID uint) error {
	if principal != nil && principal.AccountID == targetID {
		return apperr.SelfDelete()
	}
	return nil
}
