package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/payments"
	"github.com/afripicx/nomads/internal/repositories/memory"
)

type stackFixture struct {
	registry *memory.Registry
	cart     CartService
	orders   OrderService
	payments PaymentService
	checkout CheckoutService
	now      time.Time
}

func testIDGenerator() func() string {
	var mu sync.Mutex
	var n int
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%08d", n)
	}
}

func newStackFixture(t *testing.T) *stackFixture {
	t.Helper()

	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	newID := testIDGenerator()
	registry := memory.NewRegistry()

	pricing, err := NewPricingEngine(PricingEngineDeps{
		FreeShippingThresholdUSD: 100,
		FlatShippingUSD:          15,
		TaxRate:                  0.08,
	})
	if err != nil {
		t.Fatalf("NewPricingEngine: %v", err)
	}

	cart, err := NewCartService(CartServiceDeps{Products: registry.Products(), Pricing: pricing})
	if err != nil {
		t.Fatalf("NewCartService: %v", err)
	}

	orders, err := NewOrderService(OrderServiceDeps{
		Orders:      registry.Orders(),
		Counters:    registry.Counters(),
		Pricing:     pricing,
		Clock:       clock,
		IDGenerator: newID,
	})
	if err != nil {
		t.Fatalf("NewOrderService: %v", err)
	}

	mpesa, err := payments.NewMpesaProvider(payments.MpesaProviderConfig{Clock: clock})
	if err != nil {
		t.Fatalf("NewMpesaProvider: %v", err)
	}
	bank, err := payments.NewBankTransferProvider(payments.BankTransferProviderConfig{
		BankName:      "Equity Bank",
		PaybillNumber: "247247",
		AccountNumber: "0748261019",
		AccountName:   "Nomad Treasures",
	})
	if err != nil {
		t.Fatalf("NewBankTransferProvider: %v", err)
	}
	manager, err := payments.NewManager(map[domain.PaymentMethod]payments.Provider{
		domain.PaymentMethodMpesa:        mpesa,
		domain.PaymentMethodBankTransfer: bank,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	paymentSvc, err := NewPaymentService(PaymentServiceDeps{
		Payments:    registry.Payments(),
		Orders:      orders,
		Manager:     manager,
		Clock:       clock,
		IDGenerator: newID,
	})
	if err != nil {
		t.Fatalf("NewPaymentService: %v", err)
	}

	checkout, err := NewCheckoutService(CheckoutServiceDeps{
		Cart:        cart,
		Orders:      orders,
		Payments:    paymentSvc,
		Clock:       clock,
		IDGenerator: newID,
	})
	if err != nil {
		t.Fatalf("NewCheckoutService: %v", err)
	}

	return &stackFixture{
		registry: registry,
		cart:     cart,
		orders:   orders,
		payments: paymentSvc,
		checkout: checkout,
		now:      now,
	}
}

func validShipping() domain.ShippingDetails {
	return domain.ShippingDetails{
		FirstName: "Amina",
		LastName:  "Otieno",
		Email:     "amina@example.com",
		Phone:     "0712345678",
		Address:   "12 Biashara Street",
		City:      "Nairobi",
		Country:   "Kenya",
	}
}

func (f *stackFixture) startFlow(t *testing.T, userID string) CheckoutFlow {
	t.Helper()
	flow, err := f.checkout.StartFlow(context.Background(), StartCheckoutCommand{
		UserID: userID,
		Lines:  []CartQuoteLine{{ProductID: "1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("StartFlow: %v", err)
	}
	return flow
}

func (f *stackFixture) flowAtReview(t *testing.T, userID string, method domain.PaymentMethod) CheckoutFlow {
	t.Helper()
	ctx := context.Background()
	flow := f.startFlow(t, userID)

	if _, err := f.checkout.SetShipping(ctx, SetShippingCommand{UserID: userID, FlowID: flow.ID, Shipping: validShipping()}); err != nil {
		t.Fatalf("SetShipping: %v", err)
	}
	if _, err := f.checkout.Advance(ctx, userID, flow.ID); err != nil {
		t.Fatalf("Advance to payment: %v", err)
	}
	if _, err := f.checkout.SetPaymentMethod(ctx, SetPaymentMethodCommand{
		UserID:       userID,
		FlowID:       flow.ID,
		Method:       method,
		PhoneNumber:  "0712345678",
		AgreeToTerms: true,
	}); err != nil {
		t.Fatalf("SetPaymentMethod: %v", err)
	}
	next, err := f.checkout.Advance(ctx, userID, flow.ID)
	if err != nil {
		t.Fatalf("Advance to review: %v", err)
	}
	return next
}

func TestCheckoutStartFlowPricesCart(t *testing.T) {
	f := newStackFixture(t)

	flow := f.startFlow(t, "usr_1")
	if flow.Step != StepShipping {
		t.Fatalf("step = %s, want shipping", flow.Step)
	}
	if flow.Totals.SubtotalUSD != 89 || flow.Totals.ShippingUSD != 15 || flow.Totals.TotalUSD != 111.12 {
		t.Fatalf("unexpected totals: %+v", flow.Totals)
	}
}

func TestCheckoutAdvanceRequiresStepCompletion(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	flow := f.startFlow(t, "usr_1")

	if _, err := f.checkout.Advance(ctx, "usr_1", flow.ID); !errors.Is(err, ErrCheckoutShippingIncomplete) {
		t.Fatalf("err = %v, want ErrCheckoutShippingIncomplete", err)
	}

	incomplete := validShipping()
	incomplete.Email = "  "
	if _, err := f.checkout.SetShipping(ctx, SetShippingCommand{UserID: "usr_1", FlowID: flow.ID, Shipping: incomplete}); !errors.Is(err, ErrCheckoutShippingIncomplete) {
		t.Fatalf("err = %v, want ErrCheckoutShippingIncomplete", err)
	}

	if _, err := f.checkout.SetShipping(ctx, SetShippingCommand{UserID: "usr_1", FlowID: flow.ID, Shipping: validShipping()}); err != nil {
		t.Fatalf("SetShipping: %v", err)
	}
	next, err := f.checkout.Advance(ctx, "usr_1", flow.ID)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if next.Step != StepPayment {
		t.Fatalf("step = %s, want payment", next.Step)
	}

	if _, err := f.checkout.Advance(ctx, "usr_1", flow.ID); !errors.Is(err, ErrCheckoutMethodRequired) {
		t.Fatalf("err = %v, want ErrCheckoutMethodRequired", err)
	}

	if _, err := f.checkout.SetPaymentMethod(ctx, SetPaymentMethodCommand{
		UserID: "usr_1", FlowID: flow.ID, Method: domain.PaymentMethodMpesa, PhoneNumber: "0712345678",
	}); err != nil {
		t.Fatalf("SetPaymentMethod: %v", err)
	}
	if _, err := f.checkout.Advance(ctx, "usr_1", flow.ID); !errors.Is(err, ErrCheckoutTermsNotAccepted) {
		t.Fatalf("err = %v, want ErrCheckoutTermsNotAccepted", err)
	}
}

func TestCheckoutBackRetainsEnteredData(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	flow := f.flowAtReview(t, "usr_1", domain.PaymentMethodMpesa)

	back, err := f.checkout.Back(ctx, "usr_1", flow.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back.Step != StepPayment {
		t.Fatalf("step = %s, want payment", back.Step)
	}
	back, err = f.checkout.Back(ctx, "usr_1", flow.ID)
	if err != nil {
		t.Fatalf("Back: %v", err)
	}
	if back.Step != StepShipping {
		t.Fatalf("step = %s, want shipping", back.Step)
	}
	if back.Shipping == nil || back.Shipping.FirstName != "Amina" {
		t.Fatalf("shipping not retained: %+v", back.Shipping)
	}
	if back.PaymentMethod != domain.PaymentMethodMpesa {
		t.Fatalf("payment method not retained: %s", back.PaymentMethod)
	}
}

func TestCheckoutSubmitMpesaSettlesOrder(t *testing.T) {
	f := newStackFixture(t)
	flow := f.flowAtReview(t, "usr_1", domain.PaymentMethodMpesa)

	result, err := f.checkout.Submit(context.Background(), SubmitCheckoutCommand{UserID: "usr_1", FlowID: flow.ID})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Flow.Step != StepDone {
		t.Fatalf("step = %s, want done", result.Flow.Step)
	}
	if result.Order.Number != "NT123456" {
		t.Fatalf("order number = %q, want NT123456", result.Order.Number)
	}
	if result.Order.Status != domain.OrderStatusProcessing {
		t.Fatalf("order status = %s, want processing", result.Order.Status)
	}
	if result.Payment.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("payment status = %s, want succeeded", result.Payment.Status)
	}
	if !strings.HasPrefix(result.Payment.TransactionRef, "MPX") {
		t.Fatalf("transaction ref = %q, want MPX prefix", result.Payment.TransactionRef)
	}

	// a settled flow cannot be submitted twice
	if _, err := f.checkout.Submit(context.Background(), SubmitCheckoutCommand{UserID: "usr_1", FlowID: flow.ID}); !errors.Is(err, ErrCheckoutInvalidTransition) {
		t.Fatalf("err = %v, want ErrCheckoutInvalidTransition", err)
	}
}

func TestCheckoutBankTransferNeedsExplicitConfirm(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	flow := f.flowAtReview(t, "usr_1", domain.PaymentMethodBankTransfer)

	result, err := f.checkout.Submit(ctx, SubmitCheckoutCommand{UserID: "usr_1", FlowID: flow.ID})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Flow.Step != StepBankDetails {
		t.Fatalf("step = %s, want bank_details", result.Flow.Step)
	}
	if result.BankDetails == nil {
		t.Fatal("expected bank details")
	}
	if want := "ORDER-" + result.Order.ID; result.BankDetails.Reference != want {
		t.Fatalf("reference = %q, want %q", result.BankDetails.Reference, want)
	}
	if result.BankDetails.Amount != result.Order.Totals.TotalUSD || result.BankDetails.Currency != domain.CurrencyUSD {
		t.Fatalf("instructions = %v %s, want order total %v USD", result.BankDetails.Amount, result.BankDetails.Currency, result.Order.Totals.TotalUSD)
	}
	if result.Order.Status != domain.OrderStatusPendingPayment {
		t.Fatalf("order status = %s, want pending_payment before confirm", result.Order.Status)
	}
	if result.Payment.Status != domain.PaymentStatusPendingVerification {
		t.Fatalf("payment status = %s, want pending_verification", result.Payment.Status)
	}

	confirmed, err := f.checkout.ConfirmBankTransfer(ctx, "usr_1", flow.ID)
	if err != nil {
		t.Fatalf("ConfirmBankTransfer: %v", err)
	}
	if confirmed.Flow.Step != StepDone {
		t.Fatalf("step = %s, want done", confirmed.Flow.Step)
	}
	if confirmed.Order.Status != domain.OrderStatusProcessing {
		t.Fatalf("order status = %s, want processing", confirmed.Order.Status)
	}
	if confirmed.Payment.Status != domain.PaymentStatusSucceeded {
		t.Fatalf("payment status = %s, want succeeded", confirmed.Payment.Status)
	}
}

func TestCheckoutFlowsAreOwnedByTheirUser(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	flow := f.startFlow(t, "usr_1")

	if _, err := f.checkout.GetFlow(ctx, "usr_2", flow.ID); !errors.Is(err, ErrCheckoutFlowNotFound) {
		t.Fatalf("err = %v, want ErrCheckoutFlowNotFound", err)
	}
	if _, err := f.checkout.GetFlow(ctx, "usr_1", "chk_missing"); !errors.Is(err, ErrCheckoutFlowNotFound) {
		t.Fatalf("err = %v, want ErrCheckoutFlowNotFound", err)
	}
}
