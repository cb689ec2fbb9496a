package domain

import "context"

// Role names carried in the token's roles claim.
const (
	RoleAdmin = "Admin"
	RoleTech  = "Tech"
	// RolePublic is the implicit role of anonymous callers, used only in
	// retrieval filters. It never appears in a token.
	RolePublic = "public"
)

// User is an authenticated caller extracted from a validated JWT.
// Built per-request, never cached.
type User struct {
	Sub   string
	Email string
	Name  string
	Roles []string
}

// HasRole reports whether the user holds the given role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether the user holds at least one of the given roles.
func (u *User) HasAnyRole(roles ...string) bool {
	for _, r := range roles {
		if u.HasRole(r) {
			return true
		}
	}
	return false
}

// IsTechnician reports whether the user may access technician features.
func (u *User) IsTechnician() bool {
	return u.HasAnyRole(RoleAdmin, RoleTech)
}

type userCtxKey struct{}

// ContextWithUser stores a caller identity in the context.
func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext extracts the caller identity from the context.
// Returns nil for anonymous requests.
func UserFromContext(ctx context.Context) *User {
	if u, ok := ctx.Value(userCtxKey{}).(*User); ok {
		return u
	}
	return nil
}
