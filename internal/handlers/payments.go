package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/payments"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// PaymentHandlers initiates charges for placed orders. Each supported method
// gets its own route so clients never send a free-form method string here.
type PaymentHandlers struct {
	authn  *auth.Authenticator
	charge services.PaymentService
	orders services.OrderService
}

const maxPaymentBodySize = 16 * 1024

// NewPaymentHandlers constructs handlers enforcing authentication before
// invoking the payment service.
func NewPaymentHandlers(authn *auth.Authenticator, charge services.PaymentService, orders services.OrderService) *PaymentHandlers {
	return &PaymentHandlers{
		authn:  authn,
		charge: charge,
		orders: orders,
	}
}

// Routes wires the /payments endpoints onto the provided router.
func (h *PaymentHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/mpesa", h.chargeWith(domain.PaymentMethodMpesa))
	r.Post("/paypal", h.chargeWith(domain.PaymentMethodPayPal))
	r.Post("/card", h.chargeWith(domain.PaymentMethodCard))
	r.Post("/bank", h.chargeWith(domain.PaymentMethodBankTransfer))
	r.Post("/bank/confirm", h.confirmBank)
}

type paymentRequest struct {
	OrderID     string `json:"order_id"`
	PhoneNumber string `json:"phone_number"`
}

func (h *PaymentHandlers) chargeWith(method domain.PaymentMethod) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		identity, req, ok := h.parsePaymentRequest(ctx, w, r)
		if !ok {
			return
		}

		if !h.ownsOrder(ctx, w, identity, req.OrderID) {
			return
		}

		result, err := h.charge.ProcessPayment(ctx, services.ProcessPaymentCommand{
			OrderID:        req.OrderID,
			Method:         method,
			PhoneNumber:    req.PhoneNumber,
			IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
		})
		if err != nil {
			h.writePaymentError(ctx, w, err)
			return
		}
		writeJSONResponse(w, http.StatusOK, result)
	}
}

func (h *PaymentHandlers) confirmBank(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, req, ok := h.parsePaymentRequest(ctx, w, r)
	if !ok {
		return
	}

	if !h.ownsOrder(ctx, w, identity, req.OrderID) {
		return
	}

	result, err := h.charge.ConfirmBankTransfer(ctx, req.OrderID)
	if err != nil {
		h.writePaymentError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *PaymentHandlers) parsePaymentRequest(ctx context.Context, w http.ResponseWriter, r *http.Request) (*auth.Identity, paymentRequest, bool) {
	var req paymentRequest
	if h.charge == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("payment_service_unavailable", "payment service is unavailable", http.StatusServiceUnavailable))
		return nil, req, false
	}

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return nil, req, false
	}

	if !decodeJSONBody(w, r, maxPaymentBodySize, &req) {
		return nil, req, false
	}
	req.OrderID = strings.TrimSpace(req.OrderID)
	if req.OrderID == "" {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "order_id is required", http.StatusBadRequest))
		return nil, req, false
	}
	return identity, req, true
}

// ownsOrder ensures customers can only pay for their own orders. Admins may
// settle any order, which covers manual bank verification.
func (h *PaymentHandlers) ownsOrder(ctx context.Context, w http.ResponseWriter, identity *auth.Identity, orderID string) bool {
	order, err := h.orders.GetOrder(ctx, orderID)
	if err != nil {
		h.writePaymentError(ctx, w, err)
		return false
	}
	if order.UserID != identity.UID && !identity.IsAdmin() {
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
		return false
	}
	return true
}

func (h *PaymentHandlers) writePaymentError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrPaymentInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrOrderNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("order_not_found", "order not found", http.StatusNotFound))
	case errors.Is(err, services.ErrPaymentAlreadySettled):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", "order already settled", http.StatusConflict))
	case errors.Is(err, services.ErrPaymentNotAwaitingVerification):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, payments.ErrMpesaPhoneRequired), errors.Is(err, payments.ErrMpesaPhoneInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_phone_number", err.Error(), http.StatusBadRequest))
	case errors.Is(err, payments.ErrUnsupportedMethod):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported payment method", http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("payment_error", "payment operation failed", http.StatusInternalServerError))
	}
}
