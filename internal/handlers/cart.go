package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// CartHandlers prices client-held carts. The cart itself lives in the
// browser; the server only quotes it against live catalog prices.
type CartHandlers struct {
	carts services.CartService
}

const maxCartBodySize = 16 * 1024

// NewCartHandlers constructs handlers for the cart quoting endpoint.
func NewCartHandlers(carts services.CartService) *CartHandlers {
	return &CartHandlers{carts: carts}
}

// Routes wires the /cart endpoints onto the provided router.
func (h *CartHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Post("/quote", h.quote)
}

type cartQuoteRequest struct {
	Items    []services.CartQuoteLine `json:"items"`
	Currency string                   `json:"currency"`
}

func (h *CartHandlers) quote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("cart_service_unavailable", "cart service is unavailable", http.StatusServiceUnavailable))
		return
	}

	var req cartQuoteRequest
	if !decodeJSONBody(w, r, maxCartBodySize, &req) {
		return
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	quote, err := h.carts.Quote(ctx, services.CartQuoteCommand{
		Lines:    req.Items,
		Currency: currency,
	})
	if err != nil {
		h.writeCartError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, quote)
}

func (h *CartHandlers) writeCartError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCartPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", err.Error(), http.StatusUnprocessableEntity))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("cart_error", "failed to price cart", http.StatusInternalServerError))
	}
}
