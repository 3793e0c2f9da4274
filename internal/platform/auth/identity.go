package auth

import (
	"context"
	"strings"
)

// Role constants used throughout the API when checking authorisation boundaries.
const (
	RoleCustomer = "customer"
	RoleSupplier = "supplier"
	RoleAdmin    = "admin"
)

// Identity captures the authenticated principal extracted from a session token.
type Identity struct {
	UID     string
	Email   string
	Role    string
	TokenID string
}

// HasRole reports whether the identity carries the requested role (case-insensitive).
func (i *Identity) HasRole(role string) bool {
	if i == nil {
		return false
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return false
	}
	return strings.EqualFold(i.Role, role)
}

// HasAnyRole reports whether the identity carries any of the provided roles.
func (i *Identity) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if i.HasRole(role) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity may access the admin surface.
func (i *Identity) IsAdmin() bool {
	return i.HasRole(RoleAdmin)
}

type contextKey string

const identityContextKey contextKey = "github.com/afripicx/nomads/internal/platform/auth/identity"

// WithIdentity stores the identity within the context for downstream handlers.
func WithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity previously stored in context.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*Identity)
	if !ok || identity == nil {
		return nil, false
	}
	return identity, true
}
