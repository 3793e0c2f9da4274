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

// CheckoutHandlers drives the multi-step checkout flow. Every endpoint is
// scoped to the authenticated user who started the flow.
type CheckoutHandlers struct {
	authn    *auth.Authenticator
	checkout services.CheckoutService
}

const maxCheckoutBodySize = 32 * 1024

// NewCheckoutHandlers constructs handlers enforcing authentication before
// invoking the checkout service.
func NewCheckoutHandlers(authn *auth.Authenticator, checkout services.CheckoutService) *CheckoutHandlers {
	return &CheckoutHandlers{
		authn:    authn,
		checkout: checkout,
	}
}

// Routes wires the /checkout endpoints onto the provided router.
func (h *CheckoutHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth())
	}
	r.Post("/start", h.start)
	r.Get("/{flowID}", h.getFlow)
	r.Post("/{flowID}/shipping", h.setShipping)
	r.Post("/{flowID}/payment", h.setPaymentMethod)
	r.Post("/{flowID}/advance", h.advance)
	r.Post("/{flowID}/back", h.back)
	r.Post("/{flowID}/submit", h.submit)
	r.Post("/{flowID}/confirm", h.confirm)
}

type startCheckoutRequest struct {
	Items    []services.CartQuoteLine `json:"items"`
	Currency string                   `json:"currency"`
}

type checkoutPaymentRequest struct {
	Method       string `json:"method"`
	PhoneNumber  string `json:"phone_number"`
	AgreeToTerms bool   `json:"agree_to_terms"`
}

type checkoutFlowResponse struct {
	Flow services.CheckoutFlow `json:"flow"`
}

func (h *CheckoutHandlers) start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req startCheckoutRequest
	if !decodeJSONBody(w, r, maxCheckoutBodySize, &req) {
		return
	}

	currency, err := domain.ParseCurrency(req.Currency)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	flow, err := h.checkout.StartFlow(ctx, services.StartCheckoutCommand{
		UserID:   identity.UID,
		Lines:    req.Items,
		Currency: currency,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) getFlow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	flow, err := h.checkout.GetFlow(ctx, identity.UID, flowIDParam(r))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) setShipping(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var details domain.ShippingDetails
	if !decodeJSONBody(w, r, maxCheckoutBodySize, &details) {
		return
	}

	flow, err := h.checkout.SetShipping(ctx, services.SetShippingCommand{
		UserID:   identity.UID,
		FlowID:   flowIDParam(r),
		Shipping: details,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) setPaymentMethod(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req checkoutPaymentRequest
	if !decodeJSONBody(w, r, maxCheckoutBodySize, &req) {
		return
	}

	method, ok := domain.ParsePaymentMethod(req.Method)
	if !ok {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported payment method", http.StatusBadRequest))
		return
	}

	flow, err := h.checkout.SetPaymentMethod(ctx, services.SetPaymentMethodCommand{
		UserID:       identity.UID,
		FlowID:       flowIDParam(r),
		Method:       method,
		PhoneNumber:  req.PhoneNumber,
		AgreeToTerms: req.AgreeToTerms,
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) advance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	flow, err := h.checkout.Advance(ctx, identity.UID, flowIDParam(r))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) back(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	flow, err := h.checkout.Back(ctx, identity.UID, flowIDParam(r))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, checkoutFlowResponse{Flow: flow})
}

func (h *CheckoutHandlers) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	result, err := h.checkout.Submit(ctx, services.SubmitCheckoutCommand{
		UserID: identity.UID,
		FlowID: flowIDParam(r),
	})
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *CheckoutHandlers) confirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	result, err := h.checkout.ConfirmBankTransfer(ctx, identity.UID, flowIDParam(r))
	if err != nil {
		h.writeCheckoutError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

func (h *CheckoutHandlers) requireService(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.checkout == nil {
		httpx.WriteError(ctx, w, httpx.NewError("checkout_service_unavailable", "checkout service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	return requireIdentity(ctx, w)
}

func flowIDParam(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "flowID"))
}

func (h *CheckoutHandlers) writeCheckoutError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutFlowNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_not_found", "checkout flow not found", http.StatusNotFound))
	case errors.Is(err, services.ErrCheckoutInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("checkout_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCheckoutShippingIncomplete),
		errors.Is(err, services.ErrCheckoutMethodRequired),
		errors.Is(err, services.ErrCheckoutTermsNotAccepted):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartPricingInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCartProductUnavailable):
		httpx.WriteError(ctx, w, httpx.NewError("product_unavailable", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, payments.ErrMpesaPhoneRequired), errors.Is(err, payments.ErrMpesaPhoneInvalid):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_phone_number", err.Error(), http.StatusBadRequest))
	case errors.Is(err, payments.ErrUnsupportedMethod):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported payment method", http.StatusBadRequest))
	case errors.Is(err, services.ErrPaymentAlreadySettled):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", "order already settled", http.StatusConflict))
	case errors.Is(err, services.ErrPaymentNotAwaitingVerification):
		httpx.WriteError(ctx, w, httpx.NewError("payment_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("checkout_error", "checkout operation failed", http.StatusInternalServerError))
	}
}
