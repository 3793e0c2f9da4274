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

type stubOrderService struct {
	createFunc  func(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error)
	getFunc     func(ctx context.Context, orderID string) (domain.Order, error)
	listFunc    func(ctx context.Context, userID string) ([]domain.Order, error)
	listAllFunc func(ctx context.Context) ([]domain.Order, error)
	trackFunc   func(ctx context.Context, number string) (services.OrderTracking, error)
}

func (s *stubOrderService) CreateOrder(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
	if s.createFunc == nil {
		return domain.Order{}, nil
	}
	return s.createFunc(ctx, cmd)
}

func (s *stubOrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if s.getFunc == nil {
		return domain.Order{}, nil
	}
	return s.getFunc(ctx, orderID)
}

func (s *stubOrderService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if s.listFunc == nil {
		return nil, nil
	}
	return s.listFunc(ctx, userID)
}

func (s *stubOrderService) ListAllOrders(ctx context.Context) ([]domain.Order, error) {
	if s.listAllFunc == nil {
		return nil, nil
	}
	return s.listAllFunc(ctx)
}

func (s *stubOrderService) MarkPaid(ctx context.Context, orderID string) (domain.Order, error) {
	return domain.Order{}, nil
}

func (s *stubOrderService) TransitionStatus(ctx context.Context, cmd services.OrderStatusCommand) (domain.Order, error) {
	return domain.Order{}, nil
}

func (s *stubOrderService) Track(ctx context.Context, number string) (services.OrderTracking, error) {
	if s.trackFunc == nil {
		return services.OrderTracking{}, nil
	}
	return s.trackFunc(ctx, number)
}

func newOrdersRouter(orders services.OrderService, carts services.CartService) chi.Router {
	router := chi.NewRouter()
	NewOrdersHandlers(newTestAuthenticator(), orders, carts, nil).Routes(router)
	return router
}

func TestOrdersHandlersPlaceOrderRepricesLines(t *testing.T) {
	carts := &stubCartService{
		quoteFunc: func(ctx context.Context, cmd services.CartQuoteCommand) (services.CartQuote, error) {
			return services.CartQuote{
				Items: []domain.CartItem{{
					ProductID:    "1",
					Name:         "Maasai Beaded Necklace",
					UnitPriceUSD: 89,
					Quantity:     1,
				}},
				Currency: domain.CurrencyUSD,
			}, nil
		},
	}
	orders := &stubOrderService{
		createFunc: func(ctx context.Context, cmd services.CreateOrderCommand) (domain.Order, error) {
			if cmd.UserID != "usr_customer" {
				t.Fatalf("unexpected user %q", cmd.UserID)
			}
			if len(cmd.Items) != 1 || cmd.Items[0].UnitPriceUSD != 89 {
				t.Fatalf("expected catalog price on line, got %+v", cmd.Items)
			}
			if cmd.PaymentMethod != domain.PaymentMethodMpesa {
				t.Fatalf("unexpected method %q", cmd.PaymentMethod)
			}
			return domain.Order{ID: "ord_1", Number: "NT123456", UserID: cmd.UserID}, nil
		},
	}

	body := `{
		"items":[{"product_id":"1","quantity":1}],
		"currency":"USD",
		"payment_method":"mpesa",
		"shipping":{"first_name":"Jane","last_name":"Mwangi","email":"jane@example.com","phone":"0712345678","address":"Moi Ave","city":"Nairobi","country":"KE"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newOrdersRouter(orders, carts).ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp orderResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Order.Number != "NT123456" {
		t.Fatalf("unexpected order number %q", resp.Order.Number)
	}
}

func TestOrdersHandlersPlaceOrderRequiresAuth(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/order", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	newOrdersRouter(&stubOrderService{}, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestOrdersHandlersListOwnOrders(t *testing.T) {
	orders := &stubOrderService{
		listFunc: func(ctx context.Context, userID string) ([]domain.Order, error) {
			if userID != "usr_customer" {
				t.Fatalf("unexpected user %q", userID)
			}
			return []domain.Order{{ID: "ord_1", Number: "NT123456"}}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newOrdersRouter(orders, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp ordersResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Orders) != 1 || resp.Orders[0].Number != "NT123456" {
		t.Fatalf("unexpected orders %+v", resp.Orders)
	}
}

func TestOrdersHandlersListAppliesWindow(t *testing.T) {
	orders := &stubOrderService{
		listFunc: func(ctx context.Context, userID string) ([]domain.Order, error) {
			all := make([]domain.Order, 5)
			for i := range all {
				all[i] = domain.Order{ID: "ord_" + string(rune('a'+i))}
			}
			return all, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders?limit=2&offset=3", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rr := httptest.NewRecorder()
	newOrdersRouter(orders, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp ordersResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Orders) != 2 || resp.Orders[0].ID != "ord_d" {
		t.Fatalf("unexpected window %+v", resp.Orders)
	}

	req = httptest.NewRequest(http.MethodGet, "/orders?limit=0", nil)
	req.Header.Set("Authorization", "Bearer customer-token")
	rr = httptest.NewRecorder()
	newOrdersRouter(orders, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for zero limit, got %d", rr.Code)
	}
}

func TestOrdersHandlersTrackingIsPublic(t *testing.T) {
	orders := &stubOrderService{
		trackFunc: func(ctx context.Context, number string) (services.OrderTracking, error) {
			if number != "NT123456" {
				t.Fatalf("unexpected number %q", number)
			}
			return services.OrderTracking{
				Number:         "NT123456",
				Status:         domain.OrderStatusShipped,
				TrackingNumber: "KE20240001",
				Events: []domain.TrackingEvent{
					{Status: domain.OrderStatusPendingPayment},
					{Status: domain.OrderStatusProcessing},
					{Status: domain.OrderStatusShipped},
				},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/NT123456/tracking", nil)
	rr := httptest.NewRecorder()
	newOrdersRouter(orders, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var tracking services.OrderTracking
	if err := json.Unmarshal(rr.Body.Bytes(), &tracking); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tracking.TrackingNumber != "KE20240001" || len(tracking.Events) != 3 {
		t.Fatalf("unexpected tracking %+v", tracking)
	}
}

func TestOrdersHandlersTrackingNotFound(t *testing.T) {
	orders := &stubOrderService{
		trackFunc: func(ctx context.Context, number string) (services.OrderTracking, error) {
			return services.OrderTracking{}, services.ErrOrderNotFound
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/orders/NT999999/tracking", nil)
	rr := httptest.NewRecorder()
	newOrdersRouter(orders, &stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}
