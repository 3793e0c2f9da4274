package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

var errMissingID = errors.New("missing id")

// UserRepository is the in-memory account store. Emails are unique,
// case-insensitively.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[string]domain.User
	byEmail map[string]string
}

// NewUserRepository constructs an empty account store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[string]domain.User),
		byEmail: make(map[string]string),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Insert adds a user, rejecting duplicate IDs and emails.
func (r *UserRepository) Insert(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(user.ID) == "" {
		return repositories.NewInternalError("user.insert", errMissingID)
	}
	email := normaliseEmail(user.Email)
	if email == "" {
		return repositories.NewInternalError("user.insert", errors.New("missing email"))
	}
	if _, exists := r.users[user.ID]; exists {
		return repositories.NewConflictError("user.insert", nil)
	}
	if _, exists := r.byEmail[email]; exists {
		return repositories.NewConflictError("user.insert", errors.New("email already registered"))
	}

	r.users[user.ID] = user
	r.byEmail[email] = user.ID
	return nil
}

// FindByID returns the user or a not-found error.
func (r *UserRepository) FindByID(_ context.Context, userID string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[strings.TrimSpace(userID)]
	if !ok {
		return domain.User{}, repositories.NewNotFoundError("user.find", nil)
	}
	return user, nil
}

// FindByEmail resolves a user by email, case-insensitively.
func (r *UserRepository) FindByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[normaliseEmail(email)]
	if !ok {
		return domain.User{}, repositories.NewNotFoundError("user.find_by_email", nil)
	}
	return r.users[id], nil
}

// CountByRole tallies accounts carrying the given role.
func (r *UserRepository) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}
