package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MpesaLogger defines the logging contract for M-Pesa provider operations.
type MpesaLogger func(ctx context.Context, event string, fields map[string]any)

var (
	// ErrMpesaPhoneRequired indicates the charge request carried no phone number.
	ErrMpesaPhoneRequired = errors.New("mpesa: phone number is required")
	// ErrMpesaPhoneInvalid indicates the phone number is not a Kenyan mobile number.
	ErrMpesaPhoneInvalid = errors.New("mpesa: phone number is not a valid Kenyan mobile number")
)

// MpesaProviderConfig configures the MpesaProvider.
type MpesaProviderConfig struct {
	Clock  func() time.Time
	Logger MpesaLogger
}

// MpesaProvider simulates an STK push against the customer's phone. The
// transaction reference is derived from the push timestamp so repeated pushes
// are distinguishable.
type MpesaProvider struct {
	clock  func() time.Time
	logger MpesaLogger
}

// NewMpesaProvider constructs an M-Pesa Provider using the given configuration.
func NewMpesaProvider(cfg MpesaProviderConfig) (*MpesaProvider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &MpesaProvider{
		clock:  utcClock(cfg.Clock),
		logger: logger,
	}, nil
}

// Charge initiates an STK push and reports the settled result.
func (p *MpesaProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if p == nil {
		return ChargeResult{}, errors.New("mpesa: provider is nil")
	}
	phone, err := NormalizeKenyanPhone(req.PhoneNumber)
	if err != nil {
		return ChargeResult{}, err
	}

	ref := "MPX" + strconv.FormatInt(p.clock().UnixMilli(), 10)
	p.logger(ctx, "payments.mpesa.stk_push", map[string]any{
		"orderId":        req.OrderID,
		"phone":          maskPhone(phone),
		"transactionRef": ref,
	})

	return ChargeResult{
		Provider:       "mpesa",
		Status:         StatusSucceeded,
		TransactionRef: ref,
		Raw: map[string]any{
			"phone":  phone,
			"amount": req.AmountUSD,
		},
	}, nil
}

// NormalizeKenyanPhone canonicalises a Kenyan mobile number to 2547XXXXXXXX /
// 2541XXXXXXXX form. Accepted inputs are 07.., 01.., +2547.., 2547.. and the
// 1-prefixed equivalents.
func NormalizeKenyanPhone(raw string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, strings.TrimSpace(raw))
	if cleaned == "" {
		return "", ErrMpesaPhoneRequired
	}

	switch {
	case len(cleaned) == 10 && (strings.HasPrefix(cleaned, "07") || strings.HasPrefix(cleaned, "01")):
		cleaned = "254" + cleaned[1:]
	case len(cleaned) == 12 && strings.HasPrefix(cleaned, "254"):
		// already canonical
	default:
		return "", fmt.Errorf("%w: %q", ErrMpesaPhoneInvalid, raw)
	}

	if cleaned[3] != '7' && cleaned[3] != '1' {
		return "", fmt.Errorf("%w: %q", ErrMpesaPhoneInvalid, raw)
	}
	return cleaned, nil
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return "****"
	}
	return strings.Repeat("*", len(phone)-3) + phone[len(phone)-3:]
}
