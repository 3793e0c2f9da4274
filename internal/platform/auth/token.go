package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const defaultTokenTTL = 24 * time.Hour

var (
	// ErrTokenExpired signals that the session token has expired.
	ErrTokenExpired = errors.New("auth: session token expired")
	// ErrTokenInvalid signals that the session token failed verification.
	ErrTokenInvalid = errors.New("auth: session token invalid")
	// ErrTokenRevoked signals that the session token was revoked by logout.
	ErrTokenRevoked = errors.New("auth: session token revoked")
)

// RevocationStore tracks token identifiers invalidated before their natural
// expiry.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiry time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// MemoryRevocationList is an in-memory RevocationStore. Expired entries are
// dropped opportunistically on access.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewMemoryRevocationList constructs an empty revocation list.
func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]time.Time)}
}

// Revoke records the token identifier until the supplied expiry.
func (l *MemoryRevocationList) Revoke(_ context.Context, tokenID string, expiry time.Time) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return errors.New("auth: token id is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for id, exp := range l.revoked {
		if exp.Before(now) {
			delete(l.revoked, id)
		}
	}

	if expiry.Before(now) {
		return nil
	}
	l.revoked[tokenID] = expiry
	return nil
}

// IsRevoked reports whether the token identifier is currently revoked.
func (l *MemoryRevocationList) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expiry, ok := l.revoked[strings.TrimSpace(tokenID)]
	if !ok {
		return false, nil
	}
	if expiry.Before(time.Now()) {
		delete(l.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

type sessionClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 session tokens. It is injected into
// handlers rather than held as package state so tests can swap clocks and
// secrets freely.
type TokenService struct {
	secret  []byte
	issuer  string
	ttl     time.Duration
	clock   func() time.Time
	revoked RevocationStore
	newID   func() string
}

// TokenServiceDeps lists the dependencies required to build a TokenService.
type TokenServiceDeps struct {
	Secret      []byte
	Issuer      string
	TTL         time.Duration
	Clock       func() time.Time
	Revocations RevocationStore
	IDGenerator func() string
}

// NewTokenService validates dependencies and constructs the service.
func NewTokenService(deps TokenServiceDeps) (*TokenService, error) {
	if len(deps.Secret) == 0 {
		return nil, errors.New("auth: token secret is required")
	}
	if deps.Revocations == nil {
		return nil, errors.New("auth: revocation store is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("auth: id generator is required")
	}

	svc := &TokenService{
		secret:  deps.Secret,
		issuer:  strings.TrimSpace(deps.Issuer),
		ttl:     deps.TTL,
		clock:   deps.Clock,
		revoked: deps.Revocations,
		newID:   deps.IDGenerator,
	}
	if svc.issuer == "" {
		svc.issuer = "nomads-api"
	}
	if svc.ttl <= 0 {
		svc.ttl = defaultTokenTTL
	}
	if svc.clock == nil {
		svc.clock = time.Now
	}
	return svc, nil
}

// TTL reports the lifetime applied to newly issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue mints a signed session token for the principal.
func (s *TokenService) Issue(uid, email, role string) (string, error) {
	if strings.TrimSpace(uid) == "" {
		return "", errors.New("auth: uid is required")
	}

	now := s.clock().UTC()
	claims := sessionClaims{
		Email: strings.TrimSpace(email),
		Role:  strings.ToLower(strings.TrimSpace(role)),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.newID(),
			Issuer:    s.issuer,
			Subject:   strings.TrimSpace(uid),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses the token, checks signature, expiry, and revocation, and
// returns the embedded identity.
func (s *TokenService) Verify(ctx context.Context, raw string) (*Identity, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrTokenInvalid
	}

	// The parser only checks the signature; claim validation happens below
	// against the service clock, not the wall clock.
	claims := &sessionClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	_, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, ErrTokenInvalid
	}

	now := s.clock().UTC()
	if !claims.VerifyExpiresAt(now, true) {
		return nil, ErrTokenExpired
	}
	if !claims.VerifyIssuedAt(now, false) {
		return nil, ErrTokenInvalid
	}
	if s.issuer != "" && claims.Issuer != s.issuer {
		return nil, ErrTokenInvalid
	}

	if claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: revocation lookup: %w", err)
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	return &Identity{
		UID:     claims.Subject,
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}, nil
}

// Revoke invalidates the token carried by the identity until its natural
// expiry window has elapsed.
func (s *TokenService) Revoke(ctx context.Context, identity *Identity) error {
	if identity == nil || strings.TrimSpace(identity.TokenID) == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, identity.TokenID, s.clock().UTC().Add(s.ttl))
}
