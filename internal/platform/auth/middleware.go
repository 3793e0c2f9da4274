package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// AdminDeniedMessage is returned verbatim when a non-admin principal reaches
// the admin surface so clients can discard their stored session.
const AdminDeniedMessage = "Access denied. Admin privileges required."

// Verifier validates a bearer token and resolves the embedded identity.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// Authenticator wires session token verification into HTTP middleware.
type Authenticator struct {
	verifier Verifier
}

// NewAuthenticator constructs an Authenticator over the supplied verifier.
func NewAuthenticator(verifier Verifier) *Authenticator {
	return &Authenticator{verifier: verifier}
}

// RequireAuth verifies the Authorization bearer token and, when roles are
// supplied, ensures the identity carries one of them.
func (a *Authenticator) RequireAuth(allowedRoles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedRoles))
	adminOnly := len(allowedRoles) > 0
	for _, role := range allowedRoles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role == "" {
			continue
		}
		allowed[role] = struct{}{}
		if role != RoleAdmin {
			adminOnly = false
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				respondAuthError(w, http.StatusUnauthorized, "unauthenticated", "authorization header missing or invalid")
				return
			}
			if a == nil || a.verifier == nil {
				respondAuthError(w, http.StatusUnauthorized, "unauthenticated", "authorization service unavailable")
				return
			}

			identity, err := a.verifier.Verify(r.Context(), tokenStr)
			if err != nil {
				respondVerificationError(w, err)
				return
			}

			if len(allowed) > 0 {
				if _, ok := allowed[strings.ToLower(identity.Role)]; !ok {
					message := "identity does not have the required role"
					if adminOnly {
						message = AdminDeniedMessage
					}
					respondAuthError(w, http.StatusForbidden, "access_denied", message)
					return
				}
			}

			ctx := WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondAuthError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
		"status":  status,
	})
}

func respondVerificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTokenExpired):
		respondAuthError(w, http.StatusUnauthorized, "token_expired", "session token expired")
	case errors.Is(err, ErrTokenRevoked):
		respondAuthError(w, http.StatusUnauthorized, "token_revoked", "session token revoked")
	default:
		respondAuthError(w, http.StatusUnauthorized, "invalid_token", "session token invalid")
	}
}
