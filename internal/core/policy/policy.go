// Package policy decides whether an actor may perform an action on a
// resource. It is the single place where role and ownership rules live;
// callers supply the owners of the addressed resource and act on the
// returned Decision.
package policy

import (
	"github.com/carsale/marketplace-api/internal/core/domain"
)

// Action is an operation on a resource.
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource names a kind of resource.
type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceBrand    Resource = "brand"
	ResourceCategory Resource = "category"
	ResourceCar      Resource = "car"
	ResourceFavorite Resource = "favorite"
	ResourceSale     Resource = "sale"
)

// Scope tells a list operation which records the actor may see.
type Scope string

const (
	ScopeNone Scope = ""
	ScopeAll  Scope = "all"
	ScopeOwn  Scope = "own"
)

// Rule is the policy for one (resource, action) pair. Admins are allowed
// everything regardless of the rule.
type Rule struct {
	// Public allows anonymous callers.
	Public bool
	// Owner allows an actor whose ID is among the resource owners.
	Owner bool
	// Roles allows actors holding one of these roles.
	Roles []domain.Role
	// Scoped restricts role-granted list access to the actor's own records.
	Scoped bool
}

var anyRole = []domain.Role{domain.RoleAdmin, domain.RoleSeller, domain.RoleBuyer}

var adminOnly = []domain.Role{domain.RoleAdmin}

type key struct {
	resource Resource
	action   Action
}

var rules = map[key]Rule{
	{ResourceBrand, ActionList}:   {Public: true},
	{ResourceBrand, ActionRead}:   {Public: true},
	{ResourceBrand, ActionCreate}: {Roles: adminOnly},
	{ResourceBrand, ActionUpdate}: {Roles: adminOnly},
	{ResourceBrand, ActionDelete}: {Roles: adminOnly},

	{ResourceCategory, ActionList}:   {Public: true},
	{ResourceCategory, ActionRead}:   {Public: true},
	{ResourceCategory, ActionCreate}: {Roles: adminOnly},
	{ResourceCategory, ActionUpdate}: {Roles: adminOnly},
	{ResourceCategory, ActionDelete}: {Roles: adminOnly},

	{ResourceCar, ActionList}:   {Public: true},
	{ResourceCar, ActionRead}:   {Public: true},
	{ResourceCar, ActionCreate}: {Roles: []domain.Role{domain.RoleSeller, domain.RoleAdmin}},
	{ResourceCar, ActionUpdate}: {Owner: true, Roles: adminOnly},
	{ResourceCar, ActionDelete}: {Owner: true, Roles: adminOnly},

	{ResourceFavorite, ActionList}:   {Roles: anyRole, Scoped: true},
	{ResourceFavorite, ActionRead}:   {Owner: true, Roles: adminOnly},
	{ResourceFavorite, ActionCreate}: {Roles: anyRole},
	{ResourceFavorite, ActionDelete}: {Owner: true, Roles: adminOnly},

	{ResourceSale, ActionList}:   {Roles: anyRole, Scoped: true},
	{ResourceSale, ActionRead}:   {Owner: true, Roles: adminOnly},
	{ResourceSale, ActionCreate}: {Roles: []domain.Role{domain.RoleSeller, domain.RoleAdmin}},
	{ResourceSale, ActionUpdate}: {Owner: true, Roles: adminOnly},
	{ResourceSale, ActionDelete}: {Owner: true, Roles: adminOnly},

	{ResourceUser, ActionList}:   {Roles: adminOnly},
	{ResourceUser, ActionRead}:   {Owner: true, Roles: adminOnly},
	{ResourceUser, ActionUpdate}: {Owner: true, Roles: adminOnly},
}

// Lookup returns the rule for a resource and action. Pairs absent from the
// table are admin-only.
func Lookup(resource Resource, action Action) Rule {
	if r, ok := rules[key{resource, action}]; ok {
		return r
	}
	return Rule{Roles: adminOnly}
}

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool
	// Scope is set on allowed decisions: ScopeOwn means the actor sees only
	// records it participates in.
	Scope Scope
	// Anonymous is true when the denial is due to a missing identity.
	Anonymous bool
	Reason    string
	// Required lists the roles that would have been accepted.
	Required []domain.Role
	// MatchedBy names the rule clause that granted access.
	MatchedBy string
}

// Err returns nil for an allowed decision, otherwise the matching domain error.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Anonymous {
		return domain.ErrAuthenticationRequired
	}
	return &domain.PermissionError{Reason: d.Reason, Required: d.Required}
}

// Evaluate applies, in order: anonymous callers get public actions only;
// admins get everything; owners get owner-enabled actions; role holders get
// role-enabled actions; everyone else is denied with the accepted roles.
// Owner IDs that are empty never match.
func Evaluate(actor *domain.Actor, resource Resource, action Action, ownerIDs ...string) Decision {
	rule := Lookup(resource, action)

	if actor == nil || actor.UserID == "" {
		if rule.Public {
			return Decision{Allowed: true, Scope: ScopeAll, MatchedBy: "public"}
		}
		return Decision{Anonymous: true, Reason: domain.ErrAuthenticationRequired.Error(), Required: requiredRoles(rule)}
	}

	if actor.Role == domain.RoleAdmin {
		return Decision{Allowed: true, Scope: ScopeAll, MatchedBy: "admin"}
	}

	if rule.Public {
		return Decision{Allowed: true, Scope: ScopeAll, MatchedBy: "public"}
	}

	if rule.Owner && isOwner(actor.UserID, ownerIDs) {
		return Decision{Allowed: true, Scope: ScopeOwn, MatchedBy: "owner"}
	}

	if hasRole(rule.Roles, actor.Role) {
		scope := ScopeAll
		if rule.Scoped {
			scope = ScopeOwn
		}
		return Decision{Allowed: true, Scope: scope, MatchedBy: "role"}
	}

	return Decision{Reason: domain.ErrForbidden.Error(), Required: requiredRoles(rule)}
}

// Authorize is Evaluate followed by Decision.Err.
func Authorize(actor *domain.Actor, resource Resource, action Action, ownerIDs ...string) error {
	return Evaluate(actor, resource, action, ownerIDs...).Err()
}

func isOwner(id string, owners []string) bool {
	for _, o := range owners {
		if o != "" && o == id {
			return true
		}
	}
	return false
}

func hasRole(roles []domain.Role, r domain.Role) bool {
	for _, x := range roles {
		if x == r {
			return true
		}
	}
	return false
}

func requiredRoles(rule Rule) []domain.Role {
	out := make([]domain.Role, len(rule.Roles))
	copy(out, rule.Roles)
	return out
}
