package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// ErrCartProductUnavailable is returned when a quoted line references a
// product that does not exist or is not publicly visible.
var ErrCartProductUnavailable = errors.New("cart: product unavailable")

// CartServiceDeps bundles collaborators required to construct a cart service.
type CartServiceDeps struct {
	Products repositories.ProductRepository
	Pricing  *PricingEngine
}

type cartService struct {
	products repositories.ProductRepository
	pricing  *PricingEngine
}

// NewCartService constructs a cart service that prices client-held carts.
func NewCartService(deps CartServiceDeps) (CartService, error) {
	if deps.Products == nil {
		return nil, errors.New("cart service: product repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("cart service: pricing engine is required")
	}
	return &cartService{products: deps.Products, pricing: deps.Pricing}, nil
}

func (s *cartService) Quote(ctx context.Context, cmd CartQuoteCommand) (CartQuote, error) {
	currency, err := normalizeCurrency(cmd.Currency)
	if err != nil {
		return CartQuote{}, fmt.Errorf("%w: %v", ErrCartPricingInvalidInput, err)
	}
	items, err := s.resolveLines(ctx, cmd.Lines)
	if err != nil {
		return CartQuote{}, err
	}

	totals, err := s.pricing.Totals(items)
	if err != nil {
		return CartQuote{}, err
	}

	quote := CartQuote{Items: items, Totals: totals, Currency: currency}
	quote.Formatted.Subtotal = domain.FormatPrice(totals.SubtotalUSD, currency)
	quote.Formatted.Shipping = domain.FormatPrice(totals.ShippingUSD, currency)
	quote.Formatted.Tax = domain.FormatPrice(totals.TaxUSD, currency)
	quote.Formatted.Total = domain.FormatPrice(totals.TotalUSD, currency)
	return quote, nil
}

// resolveLines re-reads unit prices from the catalog so quoted carts cannot
// carry client-supplied prices.
func (s *cartService) resolveLines(ctx context.Context, lines []CartQuoteLine) ([]domain.CartItem, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", ErrCartPricingInvalidInput)
	}

	items := make([]domain.CartItem, 0, len(lines))
	for _, line := range lines {
		productID := strings.TrimSpace(line.ProductID)
		if productID == "" {
			return nil, fmt.Errorf("%w: product id is required", ErrCartPricingInvalidInput)
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for %q must be positive", ErrCartPricingInvalidInput, productID)
		}

		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if repositories.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", ErrCartProductUnavailable, productID)
			}
			return nil, fmt.Errorf("cart: find product: %w", err)
		}
		if product.Status != domain.ProductStatusActive {
			return nil, fmt.Errorf("%w: %s", ErrCartProductUnavailable, productID)
		}

		items = append(items, domain.CartItem{
			ProductID:    product.ID,
			Name:         product.Name,
			UnitPriceUSD: product.PriceUSD,
			Quantity:     line.Quantity,
		})
	}
	return items, nil
}
