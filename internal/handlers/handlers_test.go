package handlers

import (
	"context"
	"errors"

	"github.com/afripicx/nomads/internal/platform/auth"
)

// stubVerifier resolves bearer tokens from a fixed map so middleware tests
// can exercise role checks without minting real JWTs.
type stubVerifier struct {
	identities map[string]*auth.Identity
}

func (s *stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	identity, ok := s.identities[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return identity, nil
}

func newTestAuthenticator() *auth.Authenticator {
	return auth.NewAuthenticator(&stubVerifier{identities: map[string]*auth.Identity{
		"customer-token": {UID: "usr_customer", Email: "jane@example.com", Role: auth.RoleCustomer, TokenID: "tok_customer"},
		"supplier-token": {UID: "usr_supplier", Email: "amina@example.com", Role: auth.RoleSupplier, TokenID: "tok_supplier"},
		"admin-token":    {UID: "usr_admin", Email: "admin@example.com", Role: auth.RoleAdmin, TokenID: "tok_admin"},
	}})
}
