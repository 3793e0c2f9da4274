package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/afripicx/nomads/internal/domain"
)

// CheckoutStep names one stage of the checkout flow. The bank details step
// only appears for bank transfer submissions.
type CheckoutStep string

const (
	StepShipping    CheckoutStep = "shipping"
	StepPayment     CheckoutStep = "payment"
	StepReview      CheckoutStep = "review"
	StepBankDetails CheckoutStep = "bank_details"
	StepDone        CheckoutStep = "done"
)

var (
	// ErrCheckoutFlowNotFound is returned when the flow does not exist or
	// belongs to another user.
	ErrCheckoutFlowNotFound = errors.New("checkout: flow not found")
	// ErrCheckoutInvalidTransition signals an operation the current step does not allow.
	ErrCheckoutInvalidTransition = errors.New("checkout: invalid transition")
	// ErrCheckoutShippingIncomplete is returned when required shipping fields are blank.
	ErrCheckoutShippingIncomplete = errors.New("checkout: shipping details incomplete")
	// ErrCheckoutMethodRequired is returned when advancing past payment without a method.
	ErrCheckoutMethodRequired = errors.New("checkout: payment method is required")
	// ErrCheckoutTermsNotAccepted is returned when advancing past payment without accepting terms.
	ErrCheckoutTermsNotAccepted = errors.New("checkout: terms must be accepted")
)

// CheckoutFlow is the server-held state of one checkout attempt. Transitions
// are pure: each returns the next flow value without mutating the receiver.
type CheckoutFlow struct {
	ID            string                  `json:"id"`
	UserID        string                  `json:"-"`
	Step          CheckoutStep            `json:"step"`
	Items         []domain.CartItem       `json:"items"`
	Totals        domain.CartTotals       `json:"totals"`
	Currency      domain.Currency         `json:"currency"`
	Shipping      *domain.ShippingDetails `json:"shipping,omitempty"`
	PaymentMethod domain.PaymentMethod    `json:"payment_method,omitempty"`
	PhoneNumber   string                  `json:"-"`
	AgreeToTerms  bool                    `json:"agree_to_terms"`
	OrderID       string                  `json:"order_id,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func (f CheckoutFlow) withShipping(details domain.ShippingDetails, at time.Time) (CheckoutFlow, error) {
	if f.Step != StepShipping {
		return CheckoutFlow{}, fmt.Errorf("%w: shipping is locked at step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	if !details.Valid() {
		return CheckoutFlow{}, ErrCheckoutShippingIncomplete
	}
	f.Shipping = &details
	f.UpdatedAt = at
	return f, nil
}

func (f CheckoutFlow) withPaymentMethod(method domain.PaymentMethod, phone string, agree bool, at time.Time) (CheckoutFlow, error) {
	if f.Step != StepPayment {
		return CheckoutFlow{}, fmt.Errorf("%w: payment method is locked at step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	f.PaymentMethod = method
	f.PhoneNumber = phone
	f.AgreeToTerms = agree
	f.UpdatedAt = at
	return f, nil
}

// advance moves the flow one step forward, enforcing each step's completion
// requirements. Review and later steps advance through submit and confirm,
// not through this transition.
func (f CheckoutFlow) advance(at time.Time) (CheckoutFlow, error) {
	switch f.Step {
	case StepShipping:
		if f.Shipping == nil || !f.Shipping.Valid() {
			return CheckoutFlow{}, ErrCheckoutShippingIncomplete
		}
		f.Step = StepPayment
	case StepPayment:
		if f.PaymentMethod == "" {
			return CheckoutFlow{}, ErrCheckoutMethodRequired
		}
		if !f.AgreeToTerms {
			return CheckoutFlow{}, ErrCheckoutTermsNotAccepted
		}
		f.Step = StepReview
	default:
		return CheckoutFlow{}, fmt.Errorf("%w: cannot advance from step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	f.UpdatedAt = at
	return f, nil
}

// back moves the flow one step toward shipping. Entered data is retained so
// returning customers do not re-type it. Backing out of shipping is a no-op.
func (f CheckoutFlow) back(at time.Time) (CheckoutFlow, error) {
	switch f.Step {
	case StepShipping:
		return f, nil
	case StepPayment:
		f.Step = StepShipping
	case StepReview:
		f.Step = StepPayment
	default:
		return CheckoutFlow{}, fmt.Errorf("%w: cannot go back from step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	f.UpdatedAt = at
	return f, nil
}

// submitted records the created order and picks the terminal step for the
// chosen payment method.
func (f CheckoutFlow) submitted(orderID string, at time.Time) (CheckoutFlow, error) {
	if f.Step != StepReview {
		return CheckoutFlow{}, fmt.Errorf("%w: cannot submit at step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	f.OrderID = orderID
	if f.PaymentMethod == domain.PaymentMethodBankTransfer {
		f.Step = StepBankDetails
	} else {
		f.Step = StepDone
	}
	f.UpdatedAt = at
	return f, nil
}

func (f CheckoutFlow) confirmed(at time.Time) (CheckoutFlow, error) {
	if f.Step != StepBankDetails {
		return CheckoutFlow{}, fmt.Errorf("%w: cannot confirm at step %s", ErrCheckoutInvalidTransition, f.Step)
	}
	f.Step = StepDone
	f.UpdatedAt = at
	return f, nil
}
