// Package access decides which principal may run which operation. It sits
// above storage and never touches it: callers load whatever records a rule
// needs and pass the relevant ids in.
package access

import "github.com/mapexe/storefront-backend/internal/models"

const (
	RoleAnonymous = "anonymous"
	RoleStaff     = "staff"
	RoleAdmin     = "admin"
)

// Principal is the authenticated account behind a request. A nil *Principal
// is an anonymous caller.
type Principal struct {
	AccountID uint
	Username  string
	IsAdmin   bool
}

func PrincipalFor(a *models.Account) *Principal {
	if a == nil {
		return nil
	}
	return &Principal{AccountID: a.ID, Username: a.Username, IsAdmin: a.IsAdmin}
}

func (p *Principal) Role() string {
	switch {
	case p == nil:
		return RoleAnonymous
	case p.IsAdmin:
		return RoleAdmin
	default:
		return RoleStaff
	}
}

func (p *Principal) Authenticated() bool {
	return p != nil
}
