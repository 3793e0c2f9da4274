package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

const maxContactBodyLength = 4000

// ErrContactInvalidInput signals a contact submission missing required data.
var ErrContactInvalidInput = errors.New("contact: invalid input")

// ContactServiceDeps bundles collaborators required to construct a contact service.
type ContactServiceDeps struct {
	Contacts    repositories.ContactRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type contactService struct {
	contacts  repositories.ContactRepository
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
}

// NewContactService constructs the contact-form service.
func NewContactService(deps ContactServiceDeps) (ContactService, error) {
	if deps.Contacts == nil {
		return nil, errors.New("contact service: contact repository is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("contact service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &contactService{
		contacts:  deps.Contacts,
		sanitizer: bluemonday.StrictPolicy(),
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
	}, nil
}

// Submit strips markup from every free-text field and stores the message.
func (s *contactService) Submit(ctx context.Context, cmd ContactCommand) (ContactMessage, error) {
	name := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Name))
	if name == "" {
		return ContactMessage{}, fmt.Errorf("%w: name is required", ErrContactInvalidInput)
	}
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return ContactMessage{}, fmt.Errorf("%w: email is not valid", ErrContactInvalidInput)
	}
	body := strings.TrimSpace(s.sanitizer.Sanitize(cmd.Body))
	if body == "" {
		return ContactMessage{}, fmt.Errorf("%w: message body is required", ErrContactInvalidInput)
	}
	if len(body) > maxContactBodyLength {
		return ContactMessage{}, fmt.Errorf("%w: message body exceeds %d characters", ErrContactInvalidInput, maxContactBodyLength)
	}

	message := domain.ContactMessage{
		ID:         "msg_" + s.newID(),
		Name:       name,
		Email:      email,
		Subject:    strings.TrimSpace(s.sanitizer.Sanitize(cmd.Subject)),
		Body:       body,
		ReceivedAt: s.clock(),
	}

	if err := s.contacts.Insert(ctx, message); err != nil {
		return ContactMessage{}, fmt.Errorf("contact: insert: %w", err)
	}
	return message, nil
}

func (s *contactService) ListMessages(ctx context.Context) ([]ContactMessage, error) {
	messages, err := s.contacts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("contact: list: %w", err)
	}
	return messages, nil
}
