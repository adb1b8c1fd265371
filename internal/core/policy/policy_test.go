package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsale/marketplace-api/internal/core/domain"
)

var (
	admin  = &domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	seller = &domain.Actor{UserID: "seller-1", Role: domain.RoleSeller}
	other  = &domain.Actor{UserID: "seller-2", Role: domain.RoleSeller}
	buyer  = &domain.Actor{UserID: "buyer-1", Role: domain.RoleBuyer}
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		actor    *domain.Actor
		resource Resource
		action   Action
		owners   []string
		allowed  bool
		scope    Scope
	}{
		{"anonymous lists cars", nil, ResourceCar, ActionList, nil, true, ScopeAll},
		{"anonymous reads brand", nil, ResourceBrand, ActionRead, nil, true, ScopeAll},
		{"anonymous reads category", nil, ResourceCategory, ActionRead, nil, true, ScopeAll},
		{"anonymous creates car", nil, ResourceCar, ActionCreate, nil, false, ScopeNone},
		{"anonymous updates own-less car", nil, ResourceCar, ActionUpdate, []string{""}, false, ScopeNone},
		{"anonymous lists sales", nil, ResourceSale, ActionList, nil, false, ScopeNone},
		{"admin deletes any car", admin, ResourceCar, ActionDelete, []string{"seller-1"}, true, ScopeAll},
		{"admin creates brand", admin, ResourceBrand, ActionCreate, nil, true, ScopeAll},
		{"admin lists all sales", admin, ResourceSale, ActionList, nil, true, ScopeAll},
		{"seller creates car", seller, ResourceCar, ActionCreate, nil, true, ScopeAll},
		{"buyer creates car", buyer, ResourceCar, ActionCreate, nil, false, ScopeNone},
		{"seller creates brand", seller, ResourceBrand, ActionCreate, nil, false, ScopeNone},
		{"owner updates car", seller, ResourceCar, ActionUpdate, []string{"seller-1"}, true, ScopeOwn},
		{"non-owner updates car", other, ResourceCar, ActionUpdate, []string{"seller-1"}, false, ScopeNone},
		{"non-owner deletes car", other, ResourceCar, ActionDelete, []string{"seller-1"}, false, ScopeNone},
		{"owner cannot update brand", seller, ResourceBrand, ActionUpdate, []string{"seller-1"}, false, ScopeNone},
		{"buyer reads own sale", buyer, ResourceSale, ActionRead, []string{"seller-1", "buyer-1"}, true, ScopeOwn},
		{"stranger reads sale", other, ResourceSale, ActionRead, []string{"seller-1", "buyer-1"}, false, ScopeNone},
		{"buyer lists sales scoped", buyer, ResourceSale, ActionList, nil, true, ScopeOwn},
		{"buyer lists favorites scoped", buyer, ResourceFavorite, ActionList, nil, true, ScopeOwn},
		{"buyer creates favorite", buyer, ResourceFavorite, ActionCreate, nil, true, ScopeAll},
		{"buyer deletes another favorite", buyer, ResourceFavorite, ActionDelete, []string{"buyer-9"}, false, ScopeNone},
		{"empty owner never matches", &domain.Actor{UserID: "x", Role: domain.RoleBuyer}, ResourceCar, ActionUpdate, []string{""}, false, ScopeNone},
		{"buyer lists users", buyer, ResourceUser, ActionList, nil, false, ScopeNone},
		{"user updates self", buyer, ResourceUser, ActionUpdate, []string{"buyer-1"}, true, ScopeOwn},
		{"unknown pair is admin only", seller, ResourceFavorite, ActionUpdate, []string{"seller-1"}, false, ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.actor, tt.resource, tt.action, tt.owners...)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.scope, d.Scope)
			if tt.allowed {
				assert.NoError(t, d.Err())
			} else {
				assert.Error(t, d.Err())
			}
		})
	}
}

func TestEvaluate_AnonymousDenialIsAuthenticationRequired(t *testing.T) {
	err := Authorize(nil, ResourceCar, ActionCreate)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.False(t, errors.Is(err, domain.ErrForbidden))
}

func TestEvaluate_DenialCarriesRequiredRoles(t *testing.T) {
	err := Authorize(buyer, ResourceCar, ActionCreate)
	require.Error(t, err)

	var pe *domain.PermissionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "insufficient permissions", pe.Error())
	assert.ElementsMatch(t, []domain.Role{domain.RoleSeller, domain.RoleAdmin}, pe.Required)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// Every non-admin, non-owner actor is denied mutation of owned resources.
func TestEvaluate_NonOwnerMutationDenied(t *testing.T) {
	resources := []Resource{ResourceCar, ResourceBrand, ResourceCategory, ResourceSale}
	actions := []Action{ActionUpdate, ActionDelete}
	actors := []*domain.Actor{seller, other, buyer}

	for _, r := range resources {
		for _, a := range actions {
			for _, act := range actors {
				d := Evaluate(act, r, a, "owner-somebody-else")
				assert.Falsef(t, d.Allowed, "%s %s %s should be denied", act.Role, a, r)
				assert.ErrorIs(t, d.Err(), domain.ErrForbidden)
			}
		}
	}
}

func TestRequiredRolesIsACopy(t *testing.T) {
	d := Evaluate(buyer, ResourceBrand, ActionCreate)
	require.Len(t, d.Required, 1)
	d.Required[0] = domain.RoleBuyer

	assert.Equal(t, []domain.Role{domain.RoleAdmin}, Lookup(ResourceBrand, ActionCreate).Roles)
}
