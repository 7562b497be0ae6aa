// Package policy decides which actors may perform which operations.
//
// Rules are plain data evaluated in order; the first rule naming the requested
// operation decides the outcome. Evaluation has no side effects.
package policy

import (
	"slices" // Role membership

	"store_rating/internal/domain" // Roles and error kinds
)

// Operation names an action subject to authorization.
type Operation string

const (
	CreateStore      Operation = "store:create"
	UpsertRating     Operation = "rating:upsert"
	ReadStore        Operation = "store:read"
	UpdateStore      Operation = "store:update"
	DeleteStore      Operation = "store:delete"
	CountStores      Operation = "store:count"
	ReadOwnStore     Operation = "store:read-own"
	ListStoreRatings Operation = "rating:list-store"
	ListUserRatings  Operation = "rating:list-user"
	ReadOwnRating    Operation = "rating:read-own"
	ListUsers        Operation = "user:list"
	ReadUser         Operation = "user:read"
	CreateUser       Operation = "user:create"
	DeleteUser       Operation = "user:delete"
	ChangeUserRole   Operation = "user:change-role"
	UpdateUser       Operation = "user:update"
	UpdatePassword   Operation = "user:update-password"
)

// Resource carries the facts about the target that rules may inspect.
type Resource struct {
	StoreOwnerID     *string // Owner of the store acted on, nil when ownerless
	TargetUserID     string  // User acted on
	PasswordVerified bool    // Set by the caller after checking the current password
}

// Rule allows an operation to a set of roles, optionally under a condition.
type Rule struct {
	Operation Operation                                   // Operation the rule decides
	Public    bool                                        // Allows unauthenticated callers
	Roles     []domain.Role                               // Empty means any authenticated actor
	Condition func(actor domain.Actor, res Resource) bool // Must hold when set
	Reason    string                                      // Reported when Condition fails
}

// Policy is an ordered rule table.
type Policy struct {
	rules []Rule // Evaluated in order
}

// New builds a policy from rules.
func New(rules []Rule) *Policy {
	return &Policy{rules: slices.Clone(rules)} // Callers cannot mutate the table afterwards
}

// Default returns the rule table of the store rating service.
func Default() *Policy {
	return New(DefaultRules())
}

// DefaultRules returns a copy of the built-in rule table.
func DefaultRules() []Rule {
	admin := []domain.Role{domain.RoleAdmin}
	return []Rule{
		{Operation: CreateStore, Roles: admin},
		{
			Operation: UpsertRating,
			Roles:     []domain.Role{domain.RoleUser},
			Condition: notStoreOwner,
			Reason:    "owners cannot rate their own store",
		},
		{Operation: ReadStore, Public: true},
		{Operation: UpdateStore, Roles: admin},
		{Operation: DeleteStore, Roles: admin},
		{Operation: CountStores, Roles: admin},
		{Operation: ReadOwnStore, Roles: []domain.Role{domain.RoleStoreOwner}},
		{Operation: ListStoreRatings, Roles: []domain.Role{domain.RoleStoreOwner, domain.RoleAdmin}},
		{
			Operation: ListUserRatings,
			Roles:     []domain.Role{domain.RoleUser, domain.RoleAdmin},
			Condition: selfOrAdmin,
			Reason:    "users may only list their own ratings",
		},
		{Operation: ReadOwnRating, Roles: []domain.Role{domain.RoleUser}},
		{Operation: ListUsers, Roles: admin},
		{Operation: ReadUser, Roles: admin},
		{Operation: CreateUser, Roles: admin},
		{Operation: DeleteUser, Roles: admin},
		{Operation: ChangeUserRole, Roles: admin},
		{
			Operation: UpdateUser,
			Condition: selfOrAdmin,
			Reason:    "users may only update their own profile",
		},
		{
			Operation: UpdatePassword,
			Condition: func(actor domain.Actor, res Resource) bool {
				return actor.ID == res.TargetUserID && res.PasswordVerified
			},
			Reason: "current password is incorrect",
		},
	}
}

// notStoreOwner holds unless actor owns the store
func notStoreOwner(actor domain.Actor, res Resource) bool {
	return res.StoreOwnerID == nil || *res.StoreOwnerID != actor.ID
}

// selfOrAdmin holds for admins and for the target user
func selfOrAdmin(actor domain.Actor, res Resource) bool {
	return actor.Role == domain.RoleAdmin || actor.ID == res.TargetUserID
}

// Authorize returns nil when actor may perform op on res. A nil actor is an
// unauthenticated caller.
func (p *Policy) Authorize(actor *domain.Actor, op Operation, res Resource) error {
	for _, rule := range p.rules {
		if rule.Operation != op {
			continue // Not this operation
		}
		if rule.Public {
			return nil // Anyone may proceed
		}
		if actor == nil {
			return domain.Unauthenticated("authentication required") // Checked before roles
		}
		if len(rule.Roles) > 0 && !slices.Contains(rule.Roles, actor.Role) {
			return domain.Forbidden("role %s may not perform %s", actor.Role, op)
		}
		if rule.Condition != nil && !rule.Condition(*actor, res) {
			return domain.Forbidden("%s", rule.Reason)
		}
		return nil // First matching rule decides
	}
	// No rule names op
	return domain.Forbidden("operation %s is not permitted", op)
}
