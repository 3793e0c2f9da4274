package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/repositories"
)

const minPasswordLength = 8

var (
	// ErrUserInvalidInput signals a register command missing required data.
	ErrUserInvalidInput = errors.New("user: invalid input")
	// ErrEmailTaken is returned when the email already belongs to an account.
	ErrEmailTaken = errors.New("user: email already registered")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords so
	// login failures do not reveal which accounts exist.
	ErrInvalidCredentials = errors.New("user: invalid credentials")
	// ErrUserNotFound is returned when the account does not exist.
	ErrUserNotFound = errors.New("user: not found")
)

// SessionTokens is the slice of the token service the user service needs.
type SessionTokens interface {
	Issue(uid, email, role string) (string, error)
	Revoke(ctx context.Context, identity *auth.Identity) error
	TTL() time.Duration
}

// UserServiceDeps bundles collaborators required to construct a user service.
type UserServiceDeps struct {
	Users       repositories.UserRepository
	Tokens      SessionTokens
	Clock       func() time.Time
	IDGenerator func() string
}

type userService struct {
	users  repositories.UserRepository
	tokens SessionTokens
	clock  func() time.Time
	newID  func() string
}

// NewUserService constructs the account and session service.
func NewUserService(deps UserServiceDeps) (UserService, error) {
	if deps.Users == nil {
		return nil, errors.New("user service: user repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("user service: token service is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("user service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &userService{
		users:  deps.Users,
		tokens: deps.Tokens,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
	}, nil
}

func (s *userService) Register(ctx context.Context, cmd RegisterCommand) (AuthSession, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return AuthSession{}, fmt.Errorf("%w: name is required", ErrUserInvalidInput)
	}
	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return AuthSession{}, err
	}
	if len(cmd.Password) < minPasswordLength {
		return AuthSession{}, fmt.Errorf("%w: password must be at least %d characters", ErrUserInvalidInput, minPasswordLength)
	}

	role := cmd.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	switch role {
	case domain.RoleCustomer:
	case domain.RoleSupplier:
		if cmd.Supplier == nil || strings.TrimSpace(cmd.Supplier.BusinessName) == "" {
			return AuthSession{}, fmt.Errorf("%w: supplier accounts need a business name", ErrUserInvalidInput)
		}
	default:
		// admin accounts are provisioned out of band
		return AuthSession{}, fmt.Errorf("%w: role %q cannot self-register", ErrUserInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthSession{}, fmt.Errorf("user: hash password: %w", err)
	}

	user := domain.User{
		ID:           "usr_" + s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Phone:        strings.TrimSpace(cmd.Phone),
		Supplier:     cmd.Supplier,
		CreatedAt:    s.clock(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		if repositories.IsConflict(err) {
			return AuthSession{}, ErrEmailTaken
		}
		return AuthSession{}, fmt.Errorf("user: insert: %w", err)
	}

	return s.newSession(user)
}

func (s *userService) Login(ctx context.Context, cmd LoginCommand) (AuthSession, error) {
	email, err := normalizeEmail(cmd.Email)
	if err != nil {
		return AuthSession{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if repositories.IsNotFound(err) {
			return AuthSession{}, ErrInvalidCredentials
		}
		return AuthSession{}, fmt.Errorf("user: find by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(cmd.Password)) != nil {
		return AuthSession{}, ErrInvalidCredentials
	}

	return s.newSession(user)
}

func (s *userService) Logout(ctx context.Context, cmd LogoutCommand) error {
	return s.tokens.Revoke(ctx, &auth.Identity{
		UID:     strings.TrimSpace(cmd.UserID),
		TokenID: strings.TrimSpace(cmd.TokenID),
	})
}

func (s *userService) GetProfile(ctx context.Context, userID string) (User, error) {
	user, err := s.users.FindByID(ctx, strings.TrimSpace(userID))
	if err != nil {
		if repositories.IsNotFound(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("user: find: %w", err)
	}
	return user, nil
}

func (s *userService) newSession(user domain.User) (AuthSession, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		return AuthSession{}, fmt.Errorf("user: issue session token: %w", err)
	}
	return AuthSession{
		User:      user,
		Token:     token,
		ExpiresAt: s.clock().Add(s.tokens.TTL()),
	}, nil
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrUserInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%w: email is not valid", ErrUserInvalidInput)
	}
	return email, nil
}
