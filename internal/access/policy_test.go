package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapexe/storefront-backend/internal/apperr"
	"github.com/mapexe/storefront-backend/internal/models"
)

var (
	anonymous *Principal
	staff     = &Principal{AccountID: 2, Username: "staff"}
	other     = &Principal{AccountID: 3, Username: "other"}
	admin     = &Principal{AccountID: 1, Username: "admin", IsAdmin: true}
)

func TestRequire(t *testing.T) {
	policy, err := NewPolicy()
	require.NoError(t, err)

	tests := []struct {
		name      string
		principal *Principal
		resource  string
		action    string
		want      apperr.Kind
	}{
		{"anonymous reads items", anonymous, ResourceItems, ActionRead, ""},
		{"anonymous creates order", anonymous, ResourceOrders, ActionCreate, ""},
		{"anonymous creates testimonial", anonymous, ResourceTestimonials, ActionCreate, ""},
		{"anonymous cannot create item", anonymous, ResourceItems, ActionCreate, apperr.KindUnauthenticated},
		{"anonymous cannot list orders", anonymous, ResourceOrders, ActionRead, apperr.KindUnauthenticated},
		{"anonymous cannot update order", anonymous, ResourceOrders, ActionUpdate, apperr.KindUnauthenticated},
		{"staff creates item", staff, ResourceItems, ActionCreate, ""},
		{"staff lists orders", staff, ResourceOrders, ActionRead, ""},
		{"staff inherits anonymous", staff, ResourceOrders, ActionCreate, ""},
		{"staff cannot update order", staff, ResourceOrders, ActionUpdate, apperr.KindForbidden},
		{"staff cannot list accounts", staff, ResourceAccounts, ActionRead, apperr.KindForbidden},
		{"staff cannot verify testimonial", staff, ResourceTestimonials, ActionVerify, apperr.KindForbidden},
		{"admin updates order", admin, ResourceOrders, ActionUpdate, ""},
		{"admin promotes", admin, ResourceAccounts, ActionPromote, ""},
		{"admin deletes account", admin, ResourceAccounts, ActionDelete, ""},
		{"admin verifies testimonial", admin, ResourceTestimonials, ActionVerify, ""},
		{"admin inherits staff", admin, ResourceItems, ActionCreate, ""},
		{"admin reads stats", admin, ResourceStats, ActionRead, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Require(tt.principal, tt.resource, tt.action)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}
}

func TestRequireOwnerOrAdmin(t *testing.T) {
	policy := MustNewPolicy()
	const ownerID = 2

	check := func(p *Principal) error {
		return policy.RequireOwnerOrAdmin(p, ownerID, ResourceItems, ActionUpdate, ActionUpdateOwn)
	}

	assert.NoError(t, check(staff), "creator keeps control of their item")
	assert.NoError(t, check(admin), "any admin may edit")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(check(other)))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(check(anonymous)))
}

func TestRequireNotSelf(t *testing.T) {
	err := RequireNotSelf(admin, admin.AccountID)
	assert.Equal(t, apperr.KindSelfDelete, apperr.KindOf(err))
	assert.NotEqual(t, apperr.KindForbidden, apperr.KindOf(err))

	assert.NoError(t, RequireNotSelf(admin, 99))
}

func TestPrincipalFor(t *testing.T) {
	assert.Nil(t, PrincipalFor(nil))
	assert.Equal(t, RoleAnonymous, anonymous.Role())

	p := PrincipalFor(&models.Account{ID: 5, Username: "x", IsAdmin: true})
	assert.Equal(t, uint(5), p.AccountID)
	assert.Equal(t, RoleAdmin, p.Role())
	assert.Equal(t, RoleStaff, staff.Role())
}
