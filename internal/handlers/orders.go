package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/platform/pagination"
	"github.com/afripicx/nomads/internal/services"
)

// OrdersHandlers exposes direct order placement, order history, and public
// tracking. Direct placement bypasses the step-by-step checkout flow but
// still prices the lines server-side.
type OrdersHandlers struct {
	authn       *auth.Authenticator
	orders      services.OrderService
	carts       services.CartService
	idempotency func(http.Handler) http.Handler
}

const maxOrderBodySize = 32 * 1024

// NewOrdersHandlers constructs handlers for the order endpoints. The
// idempotency middleware, when supplied, guards only the placement route.
func NewOrdersHandlers(authn *auth.Authenticator, orders services.OrderService, carts services.CartService, idempotency func(http.Handler) http.Handler) *OrdersHandlers {
	return &OrdersHandlers{
		authn:       authn,
		orders:      orders,
		carts:       carts,
		idempotency: idempotency,
	}
}

// Routes wires the order endpoints onto the provided router. Tracking is
// public so customers can share the link; placement and history require a
// session.
func (h *OrdersHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}

	place := r.With()
	if h.authn != nil {
		place = place.With(h.authn.RequireAuth())
	}
	if h.idempotency != nil {
		place = place.With(h.idempotency)
	}
	place.Post("/order", h.placeOrder)

	list := r.With()
	if h.authn != nil {
		list = list.With(h.authn.RequireAuth())
	}
	list.Get("/orders", h.listOrders)

	r.Get("/orders/{orderNumber}/tracking", h.track)
}

type placeOrderRequest struct {
	Items         []services.CartQuoteLine `json:"items"`
	Currency      string                   `json:"currency"`
	Shipping      domain.ShippingDetails   `json:"shipping"`
	PaymentMethod string                   `json:"payment_method"`
}

type orderResponse struct {
	Order domain.Order `json:"order"`
}

type ordersResponse struct {
	Orders []domain.Order `json:"orders"`
}

func (h *OrdersHandlers) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil || h.carts == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	var req placeOrderRequest
	if !decodeJSONBody(w, r, maxOrderBodySize, &req) {
		return
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported payment method", http.StatusBadRequest))
		return
	}

	// Re-quote the lines so unit prices come from the catalog, not the client.
	quote, err := h.carts.Quote(ctx, services.CartQuoteCommand{
		Lines:    req.Items,
		Currency: currency,
	})
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}

	order, err := h.orders.CreateOrder(ctx, services.CreateOrderCommand{
		UserID:        identity.UID,
		Items:         quote.Items,
		Currency:      currency,
		Shipping:      req.Shipping,
		PaymentMethod: method,
	})
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, orderResponse{Order: order})
}

func (h *OrdersHandlers) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	window, err := pagination.FromRequest(r, pagination.Options{})
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
		return
	}

	orders, err := h.orders.ListOrders(ctx, identity.UID)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	start, end := window.Window(len(orders))
	writeJSONResponse(w, http.StatusOK, ordersResponse{Orders: orders[start:end]})
}

func (h *OrdersHandlers) track(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("order_service_unavailable", "order service is unavailable", http.StatusServiceUnavailable))
		return
	}

	number := strings.TrimSpace(chi.URLParam(r, "orderNumber"))
	tracking, err := h.orders.Track(ctx, number)
	if err != nil {
		h.writeOrderError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, tracking)
}

func (h *OrdersHandlers) writeOrderError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrOrderInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("order_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCartPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", err.Error(), http.StatusUnprocessableEntity))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("order_error", "order operation failed", http.StatusInternalServerError))
	}
}
