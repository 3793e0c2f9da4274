package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/services"
)

type stubCheckoutService struct {
	startFunc   func(ctx context.Context, cmd services.StartCheckoutCommand) (services.CheckoutFlow, error)
	getFunc     func(ctx context.Context, userID, flowID string) (services.CheckoutFlow, error)
	submitFunc  func(ctx context.Context, cmd services.SubmitCheckoutCommand) (services.CheckoutResult, error)
	confirmFunc func(ctx context.Context, userID, flowID string) (services.CheckoutResult, error)
}

func (s *stubCheckoutService) StartFlow(ctx context.Context, cmd services.StartCheckoutCommand) (services.CheckoutFlow, error) {
	if s.startFunc == nil {
		return services.CheckoutFlow{}, nil
	}
	return s.startFunc(ctx, cmd)
}

func (s *stubCheckoutService) GetFlow(ctx context.Context, userID, flowID string) (services.CheckoutFlow, error) {
	if s.getFunc == nil {
		return services.CheckoutFlow{}, nil
	}
	return s.getFunc(ctx, userID, flowID)
}

func (s *stubCheckoutService) SetShipping(ctx context.Context, cmd services.SetShippingCommand) (services.CheckoutFlow, error) {
	return services.CheckoutFlow{}, nil
}

func (s *stubCheckoutService) SetPaymentMethod(ctx context.Context, cmd services.SetPaymentMethodCommand) (services.CheckoutFlow, error) {
	return services.CheckoutFlow{}, nil
}

func (s *stubCheckoutService) Advance(ctx context.Context, userID, flowID string) (services.CheckoutFlow, error) {
	return services.CheckoutFlow{}, nil
}

func (s *stubCheckoutService) Back(ctx context.Context, userID, flowID string) (services.CheckoutFlow, error) {
	return services.CheckoutFlow{}, nil
}

func (s *stubCheckoutService) Submit(ctx context.Context, cmd services.SubmitCheckoutCommand) (services.CheckoutResult, error) {
	if s.submitFunc == nil {
		return services.CheckoutResult{}, nil
	}
	return s.submitFunc(ctx, cmd)
}

func (s *stubCheckoutService) ConfirmBankTransfer(ctx context.Context, userID, flowID string) (services.CheckoutResult, error) {
	if s.confirmFunc == nil {
		return services.CheckoutResult{}, nil
	}
	return s.confirmFunc(ctx, userID, flowID)
}

func newCheckoutRouter(service services.CheckoutService) chi.Router {
	router := chi.NewRouter()
	router.Route("/checkout", NewCheckoutHandlers(newTestAuthenticator(), service).Routes)
	return router
}

func TestCheckoutHandlersStartRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/checkout/start", strings.NewReader(`{"items":[]}`))
	rr := httptest.NewRecorder()
	newCheckoutRouter(&stubCheckoutService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestCheckoutHandlersStartSuccess(t *testing.T) {
	service := &stubCheckoutService{
		startFunc: func(ctx context.Context, cmd services.StartCheckoutCommand) (services.CheckoutFlow, error) {
			if cmd.UserID != "usr_customer" {
				t.Fatalf("unexpected user %q", cmd.UserID)
			}
			if len(cmd.Lines) != 1 || cmd.Lines[0].ProductID != "3" {
				t.Fatalf("unexpected lines %+v", cmd.Lines)
			}
			return services.CheckoutFlow{
				ID:       "chk_00000001",
				UserID:   cmd.UserID,
				Step:     services.StepShipping,
				Currency: domain.CurrencyUSD,
			}, nil
		},
	}

	body := `{"items":[{"product_id":"3","quantity":1}],"currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/checkout/start", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp checkoutFlowResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Flow.ID != "chk_00000001" || resp.Flow.Step != services.StepShipping {
		t.Fatalf("unexpected flow %+v", resp.Flow)
	}
}

func TestCheckoutHandlersGetFlowNotFound(t *testing.T) {
	service := &stubCheckoutService{
		getFunc: func(ctx context.Context, userID, flowID string) (services.CheckoutFlow, error) {
			if flowID != "chk_missing" {
				t.Fatalf("unexpected flow id %q", flowID)
			}
			return services.CheckoutFlow{}, services.ErrCheckoutFlowNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/checkout/chk_missing", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestCheckoutHandlersSetPaymentRejectsUnknownMethod(t *testing.T) {
	body := `{"method":"cheque","agree_to_terms":true}`
	req := httptest.NewRequest(http.MethodPost, "/checkout/chk_1/payment", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newCheckoutRouter(&stubCheckoutService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCheckoutHandlersSubmitReturnsBankDetails(t *testing.T) {
	service := &stubCheckoutService{
		submitFunc: func(ctx context.Context, cmd services.SubmitCheckoutCommand) (services.CheckoutResult, error) {
			return services.CheckoutResult{
				Flow:  services.CheckoutFlow{ID: cmd.FlowID, Step: services.StepBankDetails},
				Order: domain.Order{ID: "ord_1", Number: "NT123456"},
				BankDetails: &domain.BankDetails{
					BankName:  "Equity Bank",
					Reference: "ORDER-ord_1",
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/checkout/chk_1/submit", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newCheckoutRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result services.CheckoutResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.BankDetails == nil || result.BankDetails.Reference != "ORDER-ord_1" {
		t.Fatalf("unexpected bank details %+v", result.BankDetails)
	}
	if result.Order.Number != "NT123456" {
		t.Fatalf("unexpected order number %q", result.Order.Number)
	}
}
