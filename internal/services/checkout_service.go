package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/afripicx/nomads/internal/domain"
)

const flowTTL = 2 * time.Hour

// CheckoutServiceDeps bundles collaborators required to construct a checkout service.
type CheckoutServiceDeps struct {
	Cart        CartService
	Orders      OrderService
	Payments    PaymentService
	Clock       func() time.Time
	IDGenerator func() string
}

type checkoutService struct {
	cart     CartService
	orders   OrderService
	payments PaymentService
	clock    func() time.Time
	newID    func() string

	mu    sync.Mutex
	flows map[string]CheckoutFlow
}

// NewCheckoutService constructs the checkout flow coordinator. Flows live in
// process memory and expire two hours after their last update.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Cart == nil {
		return nil, errors.New("checkout service: cart service is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("checkout service: order service is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payment service is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("checkout service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &checkoutService{
		cart:     deps.Cart,
		orders:   deps.Orders,
		payments: deps.Payments,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
		flows: make(map[string]CheckoutFlow),
	}, nil
}

func (s *checkoutService) StartFlow(ctx context.Context, cmd StartCheckoutCommand) (CheckoutFlow, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return CheckoutFlow{}, errors.New("checkout: user id is required")
	}

	quote, err := s.cart.Quote(ctx, CartQuoteCommand{Lines: cmd.Lines, Currency: cmd.Currency})
	if err != nil {
		return CheckoutFlow{}, err
	}

	now := s.clock()
	flow := CheckoutFlow{
		ID:        "chk_" + s.newID(),
		UserID:    userID,
		Step:      StepShipping,
		Items:     quote.Items,
		Totals:    quote.Totals,
		Currency:  quote.Currency,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.putFlow(flow)
	return flow, nil
}

func (s *checkoutService) GetFlow(ctx context.Context, userID, flowID string) (CheckoutFlow, error) {
	return s.findFlow(userID, flowID)
}

func (s *checkoutService) SetShipping(ctx context.Context, cmd SetShippingCommand) (CheckoutFlow, error) {
	return s.transition(cmd.UserID, cmd.FlowID, func(flow CheckoutFlow, at time.Time) (CheckoutFlow, error) {
		return flow.withShipping(cmd.Shipping, at)
	})
}

func (s *checkoutService) SetPaymentMethod(ctx context.Context, cmd SetPaymentMethodCommand) (CheckoutFlow, error) {
	method, ok := domain.ParsePaymentMethod(string(cmd.Method))
	if !ok {
		return CheckoutFlow{}, fmt.Errorf("%w: unknown payment method %q", ErrCheckoutInvalidTransition, cmd.Method)
	}
	return s.transition(cmd.UserID, cmd.FlowID, func(flow CheckoutFlow, at time.Time) (CheckoutFlow, error) {
		return flow.withPaymentMethod(method, strings.TrimSpace(cmd.PhoneNumber), cmd.AgreeToTerms, at)
	})
}

func (s *checkoutService) Advance(ctx context.Context, userID, flowID string) (CheckoutFlow, error) {
	return s.transition(userID, flowID, CheckoutFlow.advance)
}

func (s *checkoutService) Back(ctx context.Context, userID, flowID string) (CheckoutFlow, error) {
	return s.transition(userID, flowID, CheckoutFlow.back)
}

func (s *checkoutService) Submit(ctx context.Context, cmd SubmitCheckoutCommand) (CheckoutResult, error) {
	flow, err := s.findFlow(cmd.UserID, cmd.FlowID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if flow.Step != StepReview {
		return CheckoutResult{}, fmt.Errorf("%w: cannot submit at step %s", ErrCheckoutInvalidTransition, flow.Step)
	}

	order, err := s.orders.CreateOrder(ctx, CreateOrderCommand{
		UserID:        flow.UserID,
		Items:         flow.Items,
		Currency:      flow.Currency,
		Shipping:      *flow.Shipping,
		PaymentMethod: flow.PaymentMethod,
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	payment, err := s.payments.ProcessPayment(ctx, ProcessPaymentCommand{
		OrderID:     order.ID,
		Method:      flow.PaymentMethod,
		PhoneNumber: flow.PhoneNumber,
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	next, err := flow.submitted(order.ID, s.clock())
	if err != nil {
		return CheckoutResult{}, err
	}
	s.putFlow(next)

	if next.Step == StepDone {
		if order, err = s.orders.GetOrder(ctx, order.ID); err != nil {
			return CheckoutResult{}, err
		}
	}

	return CheckoutResult{
		Flow:        next,
		Order:       order,
		Payment:     payment.Payment,
		BankDetails: payment.BankDetails,
	}, nil
}

func (s *checkoutService) ConfirmBankTransfer(ctx context.Context, userID, flowID string) (CheckoutResult, error) {
	flow, err := s.findFlow(userID, flowID)
	if err != nil {
		return CheckoutResult{}, err
	}

	next, err := flow.confirmed(s.clock())
	if err != nil {
		return CheckoutResult{}, err
	}

	payment, err := s.payments.ConfirmBankTransfer(ctx, flow.OrderID)
	if err != nil {
		return CheckoutResult{}, err
	}
	s.putFlow(next)

	order, err := s.orders.GetOrder(ctx, flow.OrderID)
	if err != nil {
		return CheckoutResult{}, err
	}

	return CheckoutResult{Flow: next, Order: order, Payment: payment.Payment}, nil
}

func (s *checkoutService) transition(userID, flowID string, fn func(CheckoutFlow, time.Time) (CheckoutFlow, error)) (CheckoutFlow, error) {
	flow, err := s.findFlow(userID, flowID)
	if err != nil {
		return CheckoutFlow{}, err
	}
	next, err := fn(flow, s.clock())
	if err != nil {
		return CheckoutFlow{}, err
	}
	s.putFlow(next)
	return next, nil
}

func (s *checkoutService) findFlow(userID, flowID string) (CheckoutFlow, error) {
	userID = strings.TrimSpace(userID)
	flowID = strings.TrimSpace(flowID)
	if userID == "" || flowID == "" {
		return CheckoutFlow{}, ErrCheckoutFlowNotFound
	}

	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(now)

	flow, ok := s.flows[flowID]
	if !ok || flow.UserID != userID {
		return CheckoutFlow{}, ErrCheckoutFlowNotFound
	}
	return flow, nil
}

func (s *checkoutService) putFlow(flow CheckoutFlow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flows[flow.ID] = flow
}

func (s *checkoutService) pruneLocked(now time.Time) {
	for id, flow := range s.flows {
		if now.Sub(flow.UpdatedAt) > flowTTL {
			delete(s.flows, id)
		}
	}
}
