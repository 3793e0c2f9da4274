package services

import (
	"errors"
	"fmt"
	"math"

	"github.com/afripicx/nomads/internal/domain"
)

var (
	// ErrCartPricingInvalidInput signals bad cart data such as missing items or
	// non-positive quantities.
	ErrCartPricingInvalidInput = errors.New("cart pricing: invalid input")
)

// PricingEngineDeps carries the storefront pricing policy, normally sourced
// from configuration.
type PricingEngineDeps struct {
	FreeShippingThresholdUSD float64
	FlatShippingUSD          float64
	TaxRate                  float64
}

// PricingEngine computes cart totals in canonical USD. Shipping is flat rate
// and waived above the free shipping threshold; tax applies to the subtotal.
type PricingEngine struct {
	freeShippingThreshold float64
	flatShipping          float64
	taxRate               float64
}

// NewPricingEngine constructs a pricing engine over the supplied policy.
func NewPricingEngine(deps PricingEngineDeps) (*PricingEngine, error) {
	if deps.FreeShippingThresholdUSD < 0 {
		return nil, errors.New("pricing engine: free shipping threshold must not be negative")
	}
	if deps.FlatShippingUSD < 0 {
		return nil, errors.New("pricing engine: flat shipping must not be negative")
	}
	if deps.TaxRate < 0 || deps.TaxRate >= 1 {
		return nil, errors.New("pricing engine: tax rate must be in [0, 1)")
	}
	return &PricingEngine{
		freeShippingThreshold: deps.FreeShippingThresholdUSD,
		flatShipping:          deps.FlatShippingUSD,
		taxRate:               deps.TaxRate,
	}, nil
}

// Totals prices the supplied cart lines.
func (e *PricingEngine) Totals(items []domain.CartItem) (domain.CartTotals, error) {
	if e == nil {
		return domain.CartTotals{}, errors.New("pricing engine: engine is nil")
	}
	if len(items) == 0 {
		return domain.CartTotals{}, fmt.Errorf("%w: cart is empty", ErrCartPricingInvalidInput)
	}

	var subtotal float64
	for _, item := range items {
		if item.Quantity <= 0 {
			return domain.CartTotals{}, fmt.Errorf("%w: quantity for %q must be positive", ErrCartPricingInvalidInput, item.ProductID)
		}
		if item.UnitPriceUSD < 0 {
			return domain.CartTotals{}, fmt.Errorf("%w: unit price for %q must not be negative", ErrCartPricingInvalidInput, item.ProductID)
		}
		subtotal += item.UnitPriceUSD * float64(item.Quantity)
	}

	shipping := e.flatShipping
	if subtotal > e.freeShippingThreshold {
		shipping = 0
	}
	tax := roundCents(subtotal * e.taxRate)

	return domain.CartTotals{
		SubtotalUSD: roundCents(subtotal),
		ShippingUSD: shipping,
		TaxUSD:      tax,
		TotalUSD:    roundCents(subtotal + shipping + tax),
	}, nil
}

func roundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
