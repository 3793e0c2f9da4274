package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"

	"github.com/afripicx/nomads/internal/domain"
)

// StripeLogger defines the logging contract for Stripe provider operations.
type StripeLogger func(ctx context.Context, event string, fields map[string]any)

type stripePaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeProviderConfig configures the StripeProvider.
type StripeProviderConfig struct {
	APIKey string
	// PaymentMethodType selects the Stripe payment method ("card" or "paypal").
	PaymentMethodType string
	Backends          *stripe.Backends
	Logger            StripeLogger
	Clock             func() time.Time
	Intents           stripePaymentIntentAPI
}

// StripeProvider implements the Provider interface on top of Stripe Payment Intents.
// One instance serves one payment method type; card and PayPal get separate
// registrations in the manager.
type StripeProvider struct {
	intents    stripePaymentIntentAPI
	methodType string
	clock      func() time.Time
	logger     StripeLogger
}

// NewStripeProvider constructs a Stripe Provider using the given configuration.
func NewStripeProvider(cfg StripeProviderConfig) (*StripeProvider, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" && cfg.Intents == nil {
		return nil, errors.New("stripe: api key is required")
	}

	methodType := strings.TrimSpace(strings.ToLower(cfg.PaymentMethodType))
	switch methodType {
	case "card", "paypal":
	default:
		return nil, fmt.Errorf("stripe: unsupported payment method type %q", cfg.PaymentMethodType)
	}

	intents := cfg.Intents
	if intents == nil {
		sc := client.New(apiKey, cfg.Backends)
		intents = sc.PaymentIntents
	}

	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &StripeProvider{
		intents:    intents,
		methodType: methodType,
		clock:      utcClock(cfg.Clock),
		logger:     logger,
	}, nil
}

// Charge creates a Payment Intent for the order amount. The client completes
// the intent with the returned client secret; webhook-less polling treats the
// result as pending until Stripe reports success.
func (p *StripeProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if p == nil {
		return ChargeResult{}, errors.New("stripe: provider is nil")
	}
	if req.AmountUSD <= 0 {
		return ChargeResult{}, errors.New("stripe: amount must be positive")
	}

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(usdCents(req.AmountUSD)),
		Currency:           stripe.String(strings.ToLower(string(domain.CurrencyUSD))),
		PaymentMethodTypes: stripe.StringSlice([]string{p.methodType}),
	}
	params.Context = ctx
	if key := strings.TrimSpace(req.IdempotencyKey); key != "" {
		params.SetIdempotencyKey(key)
	}
	if email := strings.TrimSpace(req.CustomerEmail); email != "" {
		params.ReceiptEmail = stripe.String(email)
	}
	params.Metadata = map[string]string{
		"order_id":     req.OrderID,
		"order_number": req.OrderNumber,
	}
	for k, v := range req.Metadata {
		params.Metadata[k] = v
	}

	intent, err := p.intents.New(params)
	if err != nil {
		return ChargeResult{}, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	p.logger(ctx, "payments.stripe.intent.created", map[string]any{
		"paymentIntent": intent.ID,
		"method":        p.methodType,
		"status":        intent.Status,
	})

	raw := map[string]any{}
	if data, err := json.Marshal(intent); err == nil {
		_ = json.Unmarshal(data, &raw)
	} else {
		raw["payment_intent"] = intent
	}

	return ChargeResult{
		Provider:       "stripe",
		Status:         stripeStatus(intent.Status),
		TransactionRef: intent.ID,
		ClientSecret:   intent.ClientSecret,
		Raw:            raw,
	}, nil
}

func stripeStatus(status stripe.PaymentIntentStatus) Status {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusPending
	}
}

func usdCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
