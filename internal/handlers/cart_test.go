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

type stubCartService struct {
	quoteFunc func(ctx context.Context, cmd services.CartQuoteCommand) (services.CartQuote, error)
}

func (s *stubCartService) Quote(ctx context.Context, cmd services.CartQuoteCommand) (services.CartQuote, error) {
	if s.quoteFunc == nil {
		return services.CartQuote{}, nil
	}
	return s.quoteFunc(ctx, cmd)
}

func newCartRouter(service services.CartService) chi.Router {
	router := chi.NewRouter()
	router.Route("/cart", NewCartHandlers(service).Routes)
	return router
}

func TestCartHandlersQuoteSuccess(t *testing.T) {
	service := &stubCartService{
		quoteFunc: func(ctx context.Context, cmd services.CartQuoteCommand) (services.CartQuote, error) {
			if len(cmd.Lines) != 1 || cmd.Lines[0].ProductID != "1" || cmd.Lines[0].Quantity != 2 {
				t.Fatalf("unexpected lines %+v", cmd.Lines)
			}
			if cmd.Currency != domain.CurrencyKES {
				t.Fatalf("unexpected currency %q", cmd.Currency)
			}
			quote := services.CartQuote{
				Items: []domain.CartItem{{
					ProductID:    "1",
					Name:         "Maasai Beaded Necklace",
					UnitPriceUSD: 89,
					Quantity:     2,
				}},
				Totals: domain.CartTotals{
					SubtotalUSD: 178,
					TaxUSD:      14.24,
					TotalUSD:    192.24,
				},
				Currency: domain.CurrencyKES,
			}
			quote.Formatted.Total = "KSh 24,799"
			return quote, nil
		},
	}

	body := `{"items":[{"product_id":"1","quantity":2}],"currency":"KES"}`
	req := httptest.NewRequest(http.MethodPost, "/cart/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newCartRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var quote services.CartQuote
	if err := json.Unmarshal(rr.Body.Bytes(), &quote); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if quote.Totals.TotalUSD != 192.24 {
		t.Fatalf("unexpected total %v", quote.Totals.TotalUSD)
	}
	if quote.Formatted.Total != "KSh 24,799" {
		t.Fatalf("unexpected formatted total %q", quote.Formatted.Total)
	}
}

func TestCartHandlersQuoteEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/cart/quote", strings.NewReader(""))
	rr := httptest.NewRecorder()
	newCartRouter(&stubCartService{}).ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCartHandlersQuoteProductUnavailable(t *testing.T) {
	service := &stubCartService{
		quoteFunc: func(ctx context.Context, cmd services.CartQuoteCommand) (services.CartQuote, error) {
			return services.CartQuote{}, services.ErrCartProductUnavailable
		},
	}

	body := `{"items":[{"product_id":"99","quantity":1}],"currency":"USD"}`
	req := httptest.NewRequest(http.MethodPost, "/cart/quote", strings.NewReader(body))
	rr := httptest.NewRecorder()
	newCartRouter(service).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rr.Code)
	}

	var envelope map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode error envelope: %v", err)
	}
	if envelope["error"] != "product_unavailable" {
		t.Fatalf("unexpected error code %v", envelope["error"])
	}
}
