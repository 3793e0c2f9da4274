package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// PaymentRepository is the in-memory payment store.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]domain.Payment
}

// NewPaymentRepository constructs an empty payment store.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[string]domain.Payment)}
}

// Insert adds a payment attempt.
func (r *PaymentRepository) Insert(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(payment.ID) == "" {
		return repositories.NewInternalError("payment.insert", errMissingID)
	}
	if _, exists := r.payments[payment.ID]; exists {
		return repositories.NewConflictError("payment.insert", nil)
	}
	r.payments[payment.ID] = payment
	return nil
}

// Update replaces an existing payment.
func (r *PaymentRepository) Update(_ context.Context, payment domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.payments[payment.ID]; !exists {
		return repositories.NewNotFoundError("payment.update", nil)
	}
	r.payments[payment.ID] = payment
	return nil
}

// FindByID returns the payment or a not-found error.
func (r *PaymentRepository) FindByID(_ context.Context, paymentID string) (domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	payment, ok := r.payments[strings.TrimSpace(paymentID)]
	if !ok {
		return domain.Payment{}, repositories.NewNotFoundError("payment.find", nil)
	}
	return payment, nil
}

// ListByOrder returns the order's payment attempts, oldest first.
func (r *PaymentRepository) ListByOrder(_ context.Context, orderID string) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Payment, 0)
	for _, payment := range r.payments {
		if payment.OrderID == orderID {
			out = append(out, payment)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
