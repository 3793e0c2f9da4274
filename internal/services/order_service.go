package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

var (
	// ErrOrderNotFound is returned when the order does not exist.
	ErrOrderNotFound = errors.New("order: not found")
	// ErrOrderInvalidInput signals a create command missing required data.
	ErrOrderInvalidInput = errors.New("order: invalid input")
	// ErrOrderInvalidTransition signals a status change the lifecycle does not allow.
	ErrOrderInvalidTransition = errors.New("order: invalid status transition")
)

// orderTransitions lists the allowed status moves. Delivered and cancelled
// are terminal.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPendingPayment: {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing:     {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:        {domain.OrderStatusDelivered},
}

var statusDescriptions = map[domain.OrderStatus]string{
	domain.OrderStatusPendingPayment: "Order placed, awaiting payment",
	domain.OrderStatusProcessing:     "Payment received, order is being prepared",
	domain.OrderStatusShipped:        "Order handed to the courier",
	domain.OrderStatusDelivered:      "Order delivered",
	domain.OrderStatusCancelled:      "Order cancelled",
}

// OrderServiceDeps bundles collaborators required to construct an order service.
type OrderServiceDeps struct {
	Orders      repositories.OrderRepository
	Counters    repositories.CounterRepository
	Pricing     *PricingEngine
	Clock       func() time.Time
	IDGenerator func() string
}

type orderService struct {
	orders   repositories.OrderRepository
	counters repositories.CounterRepository
	pricing  *PricingEngine
	clock    func() time.Time
	newID    func() string
}

// NewOrderService constructs the order lifecycle service.
func NewOrderService(deps OrderServiceDeps) (OrderService, error) {
	if deps.Orders == nil {
		return nil, errors.New("order service: order repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("order service: counter repository is required")
	}
	if deps.Pricing == nil {
		return nil, errors.New("order service: pricing engine is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("order service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &orderService{
		orders:   deps.Orders,
		counters: deps.Counters,
		pricing:  deps.Pricing,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
	}, nil
}

func (s *orderService) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return Order{}, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	if len(cmd.Items) == 0 {
		return Order{}, fmt.Errorf("%w: order has no items", ErrOrderInvalidInput)
	}
	if !cmd.Shipping.Valid() {
		return Order{}, fmt.Errorf("%w: shipping details incomplete", ErrOrderInvalidInput)
	}
	method, ok := domain.ParsePaymentMethod(string(cmd.PaymentMethod))
	if !ok {
		return Order{}, fmt.Errorf("%w: unknown payment method %q", ErrOrderInvalidInput, cmd.PaymentMethod)
	}
	currency, err := normalizeCurrency(cmd.Currency)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrOrderInvalidInput, err)
	}

	totals, err := s.pricing.Totals(cmd.Items)
	if err != nil {
		return Order{}, err
	}

	seq, err := s.counters.Next(ctx, "order")
	if err != nil {
		return Order{}, fmt.Errorf("order: next order number: %w", err)
	}

	items := make([]domain.OrderLineItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		items = append(items, domain.OrderLineItem{
			ProductID:    item.ProductID,
			Name:         item.Name,
			UnitPriceUSD: item.UnitPriceUSD,
			Quantity:     item.Quantity,
		})
	}

	now := s.clock()
	order := domain.Order{
		ID:            "ord_" + s.newID(),
		Number:        "NT" + strconv.FormatInt(seq, 10),
		UserID:        userID,
		Items:         items,
		Totals:        totals,
		Currency:      currency,
		Shipping:      cmd.Shipping,
		PaymentMethod: method,
		Status:        domain.OrderStatusPendingPayment,
		Events: []domain.TrackingEvent{{
			Status:      domain.OrderStatusPendingPayment,
			Description: statusDescriptions[domain.OrderStatusPendingPayment],
			OccurredAt:  now,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orders.Insert(ctx, order); err != nil {
		return Order{}, fmt.Errorf("order: insert: %w", err)
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (Order, error) {
	order, err := s.orders.FindByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if repositories.IsNotFound(err) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("order: find: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, userID string) ([]Order, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrOrderInvalidInput)
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("order: list by user: %w", err)
	}
	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("order: list all: %w", err)
	}
	return orders, nil
}

func (s *orderService) MarkPaid(ctx context.Context, orderID string) (Order, error) {
	return s.TransitionStatus(ctx, OrderStatusCommand{
		OrderID: orderID,
		Target:  domain.OrderStatusProcessing,
	})
}

func (s *orderService) TransitionStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error) {
	order, err := s.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return Order{}, err
	}

	if !transitionAllowed(order.Status, cmd.Target) {
		return Order{}, fmt.Errorf("%w: %s -> %s", ErrOrderInvalidTransition, order.Status, cmd.Target)
	}

	now := s.clock()
	order.Status = cmd.Target
	order.UpdatedAt = now

	if cmd.Target == domain.OrderStatusShipped && order.TrackingNumber == "" {
		number, err := s.nextTrackingNumber(ctx, now)
		if err != nil {
			return Order{}, err
		}
		order.TrackingNumber = number
	}

	description := strings.TrimSpace(cmd.Description)
	if description == "" {
		description = statusDescriptions[cmd.Target]
	}
	order.Events = append(order.Events, domain.TrackingEvent{
		Status:      cmd.Target,
		Description: description,
		Location:    strings.TrimSpace(cmd.Location),
		OccurredAt:  now,
	})

	if err := s.orders.Update(ctx, order); err != nil {
		return Order{}, fmt.Errorf("order: update: %w", err)
	}
	return order, nil
}

func (s *orderService) Track(ctx context.Context, number string) (OrderTracking, error) {
	order, err := s.orders.FindByNumber(ctx, strings.TrimSpace(number))
	if err != nil {
		if repositories.IsNotFound(err) {
			return OrderTracking{}, ErrOrderNotFound
		}
		return OrderTracking{}, fmt.Errorf("order: find by number: %w", err)
	}

	return OrderTracking{
		Number:         order.Number,
		Status:         order.Status,
		TrackingNumber: order.TrackingNumber,
		Events:         order.Events,
	}, nil
}

func (s *orderService) nextTrackingNumber(ctx context.Context, now time.Time) (string, error) {
	seq, err := s.counters.Next(ctx, "tracking")
	if err != nil {
		return "", fmt.Errorf("order: next tracking number: %w", err)
	}
	return fmt.Sprintf("KE%d%04d", now.Year(), seq), nil
}

func transitionAllowed(from, to domain.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
