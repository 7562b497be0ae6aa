package domain

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor has the ADMIN role; a nil actor is not an admin.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
