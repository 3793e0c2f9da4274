package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// ContactRepository stores contact-form submissions in arrival order.
type ContactRepository struct {
	mu       sync.RWMutex
	messages []domain.ContactMessage
}

// NewContactRepository constructs an empty message store.
func NewContactRepository() *ContactRepository {
	return &ContactRepository{}
}

// Insert appends a message.
func (r *ContactRepository) Insert(_ context.Context, message domain.ContactMessage) error {
	if strings.TrimSpace(message.ID) == "" {
		return repositories.NewInternalError("contact.insert", errMissingID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
	return nil
}

// ListAll returns every stored message in arrival order.
func (r *ContactRepository) ListAll(_ context.Context) ([]domain.ContactMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.ContactMessage(nil), r.messages...), nil
}
