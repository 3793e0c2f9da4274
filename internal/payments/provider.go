package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afripicx/nomads/internal/domain"
)

// Status enumerates the normalised payment states shared across providers.
type Status string

const (
	// StatusPending indicates the payment is awaiting customer action or provider confirmation.
	StatusPending Status = "pending"
	// StatusSucceeded indicates the provider reports the payment as settled.
	StatusSucceeded Status = "succeeded"
	// StatusFailed indicates the provider reports a failure and no further action is possible.
	StatusFailed Status = "failed"
	// StatusPendingVerification indicates the payment completes off-platform and an
	// operator must verify receipt before the order progresses.
	StatusPendingVerification Status = "pending_verification"
)

// ErrUnsupportedMethod is returned when the manager has no provider for a payment method.
var ErrUnsupportedMethod = errors.New("payments: unsupported payment method")

// ChargeRequest captures the payload required to initiate a payment.
type ChargeRequest struct {
	OrderID        string
	OrderNumber    string
	AmountUSD      float64
	Currency       domain.Currency
	CustomerEmail  string
	PhoneNumber    string
	Metadata       map[string]string
	IdempotencyKey string
}

// ChargeResult normalises provider specific outcomes for storage.
type ChargeResult struct {
	Provider       string
	Status         Status
	TransactionRef string
	ClientSecret   string
	BankDetails    *domain.BankDetails
	Raw            map[string]any
}

// Provider is the contract a payment method adapter implements.
type Provider interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// Manager routes charge requests to the provider registered for the method.
type Manager struct {
	providers map[domain.PaymentMethod]Provider
}

// NewManager constructs a Manager over the supplied providers.
func NewManager(providers map[domain.PaymentMethod]Provider) (*Manager, error) {
	if len(providers) == 0 {
		return nil, errors.New("payments: at least one provider is required")
	}
	copyMap := make(map[domain.PaymentMethod]Provider, len(providers))
	for method, provider := range providers {
		if provider == nil {
			return nil, fmt.Errorf("payments: nil provider registered for method %q", method)
		}
		if _, ok := domain.ParsePaymentMethod(string(method)); !ok {
			return nil, fmt.Errorf("payments: invalid provider registration for method %q", method)
		}
		copyMap[method] = provider
	}
	return &Manager{providers: copyMap}, nil
}

// Supports reports whether a provider is registered for the method.
func (m *Manager) Supports(method domain.PaymentMethod) bool {
	if m == nil {
		return false
	}
	_, ok := m.providers[method]
	return ok
}

// Charge delegates to the provider registered for the method.
func (m *Manager) Charge(ctx context.Context, method domain.PaymentMethod, req ChargeRequest) (ChargeResult, error) {
	if m == nil {
		return ChargeResult{}, errors.New("payments: manager is nil")
	}
	provider, ok := m.providers[method]
	if !ok {
		return ChargeResult{}, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	result, err := provider.Charge(ctx, req)
	if err != nil {
		return ChargeResult{}, err
	}
	if result.Provider == "" {
		result.Provider = string(method)
	}
	return result, nil
}

func utcClock(clock func() time.Time) func() time.Time {
	if clock == nil {
		clock = time.Now
	}
	return func() time.Time {
		return clock().UTC()
	}
}
