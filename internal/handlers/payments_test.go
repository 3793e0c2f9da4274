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

type stubPaymentService struct {
	processFunc func(ctx context.Context, cmd services.ProcessPaymentCommand) (services.PaymentResult, error)
	confirmFunc func(ctx context.Context, orderID string) (services.PaymentResult, error)
}

func (s *stubPaymentService) ProcessPayment(ctx context.Context, cmd services.ProcessPaymentCommand) (services.PaymentResult, error) {
	if s.processFunc == nil {
		return services.PaymentResult{}, nil
	}
	return s.processFunc(ctx, cmd)
}

func (s *stubPaymentService) ConfirmBankTransfer(ctx context.Context, orderID string) (services.PaymentResult, error) {
	if s.confirmFunc == nil {
		return services.PaymentResult{}, nil
	}
	return s.confirmFunc(ctx, orderID)
}

func (s *stubPaymentService) ListPayments(ctx context.Context, orderID string) ([]domain.Payment, error) {
	return nil, nil
}

func newPaymentsRouter(charge services.PaymentService, orders services.OrderService) chi.Router {
	router := chi.NewRouter()
	router.Route("/payments", NewPaymentHandlers(newTestAuthenticator(), charge, orders).Routes)
	return router
}

func ownedOrderStub(userID string) *stubOrderService {
	return &stubOrderService{
		getFunc: func(ctx context.Context, orderID string) (domain.Order, error) {
			return domain.Order{ID: orderID, UserID: userID}, nil
		},
	}
}

func TestPaymentHandlersMpesaCharge(t *testing.T) {
	charge := &stubPaymentService{
		processFunc: func(ctx context.Context, cmd services.ProcessPaymentCommand) (services.PaymentResult, error) {
			if cmd.Method != domain.PaymentMethodMpesa {
				t.Fatalf("unexpected method %q", cmd.Method)
			}
			if cmd.PhoneNumber != "0712345678" {
				t.Fatalf("unexpected phone %q", cmd.PhoneNumber)
			}
			if cmd.IdempotencyKey != "idem-1" {
				t.Fatalf("unexpected idempotency key %q", cmd.IdempotencyKey)
			}
			return services.PaymentResult{
				Payment: domain.Payment{
					ID:             "pay_1",
					OrderID:        cmd.OrderID,
					Method:         domain.PaymentMethodMpesa,
					Status:         domain.PaymentStatusSucceeded,
					TransactionRef: "MPX1717243200000",
				},
			}, nil
		},
	}

	body := `{"order_id":"ord_1","phone_number":"0712345678"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/mpesa", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	req.Header.Set("Idempotency-Key", "idem-1")
	rr := httptest.NewRecorder()
	newPaymentsRouter(charge, ownedOrderStub("usr_customer")).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var result services.PaymentResult
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !strings.HasPrefix(result.Payment.TransactionRef, "MPX") {
		t.Fatalf("unexpected transaction ref %q", result.Payment.TransactionRef)
	}
}

func TestPaymentHandlersRejectForeignOrder(t *testing.T) {
	body := `{"order_id":"ord_1"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/card", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newPaymentsRouter(&stubPaymentService{}, ownedOrderStub("usr_other")).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestPaymentHandlersAdminMaySettleAnyOrder(t *testing.T) {
	charge := &stubPaymentService{
		confirmFunc: func(ctx context.Context, orderID string) (services.PaymentResult, error) {
			return services.PaymentResult{
				Payment: domain.Payment{
					ID:      "pay_2",
					OrderID: orderID,
					Method:  domain.PaymentMethodBankTransfer,
					Status:  domain.PaymentStatusSucceeded,
				},
			}, nil
		},
	}

	body := `{"order_id":"ord_1"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/bank/confirm", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer admin-token")
	rr := httptest.NewRecorder()
	newPaymentsRouter(charge, ownedOrderStub("usr_customer")).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestPaymentHandlersAlreadySettled(t *testing.T) {
	charge := &stubPaymentService{
		processFunc: func(ctx context.Context, cmd services.ProcessPaymentCommand) (services.PaymentResult, error) {
			return services.PaymentResult{}, services.ErrPaymentAlreadySettled
		},
	}

	body := `{"order_id":"ord_1"}`
	req := httptest.NewRequest(http.MethodPost, "/payments/paypal", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newPaymentsRouter(charge, ownedOrderStub("usr_customer")).ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rr.Code)
	}
}

func TestPaymentHandlersMissingOrderID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/payments/bank", strings.NewReader(`{"order_id":" "}`))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newPaymentsRouter(&stubPaymentService{}, ownedOrderStub("usr_customer")).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}
