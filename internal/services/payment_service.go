package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/payments"
	"github.com/afripicx/nomads/internal/repositories"
)

var (
	// ErrPaymentInvalidInput signals a charge command missing required data.
	ErrPaymentInvalidInput = errors.New("payment: invalid input")
	// ErrPaymentAlreadySettled is returned when charging an order that is no
	// longer awaiting payment.
	ErrPaymentAlreadySettled = errors.New("payment: order already settled")
	// ErrPaymentNotAwaitingVerification is returned when confirming a bank
	// transfer that has no pending verification record.
	ErrPaymentNotAwaitingVerification = errors.New("payment: no transfer awaiting verification")
)

// PaymentServiceDeps bundles collaborators required to construct a payment service.
type PaymentServiceDeps struct {
	Payments    repositories.PaymentRepository
	Orders      OrderService
	Manager     *payments.Manager
	Clock       func() time.Time
	IDGenerator func() string
}

type paymentService struct {
	payments repositories.PaymentRepository
	orders   OrderService
	manager  *payments.Manager
	clock    func() time.Time
	newID    func() string
}

// NewPaymentService constructs the payment coordination service.
func NewPaymentService(deps PaymentServiceDeps) (PaymentService, error) {
	if deps.Payments == nil {
		return nil, errors.New("payment service: payment repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("payment service: order service is required")
	}
	if deps.Manager == nil {
		return nil, errors.New("payment service: provider manager is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("payment service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &paymentService{
		payments: deps.Payments,
		orders:   deps.Orders,
		manager:  deps.Manager,
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
	}, nil
}

func (s *paymentService) ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand) (PaymentResult, error) {
	method, ok := domain.ParsePaymentMethod(string(cmd.Method))
	if !ok {
		return PaymentResult{}, fmt.Errorf("%w: unknown payment method %q", ErrPaymentInvalidInput, cmd.Method)
	}

	order, err := s.orders.GetOrder(ctx, cmd.OrderID)
	if err != nil {
		return PaymentResult{}, err
	}
	if order.Status != domain.OrderStatusPendingPayment {
		return PaymentResult{}, fmt.Errorf("%w: order %s is %s", ErrPaymentAlreadySettled, order.Number, order.Status)
	}

	result, err := s.manager.Charge(ctx, method, payments.ChargeRequest{
		OrderID:        order.ID,
		OrderNumber:    order.Number,
		AmountUSD:      order.Totals.TotalUSD,
		Currency:       order.Currency,
		CustomerEmail:  order.Shipping.Email,
		PhoneNumber:    cmd.PhoneNumber,
		IdempotencyKey: cmd.IdempotencyKey,
	})
	if err != nil {
		return PaymentResult{}, err
	}

	now := s.clock()
	payment := domain.Payment{
		ID:             "pay_" + s.newID(),
		OrderID:        order.ID,
		Method:         method,
		Status:         paymentStatus(result.Status),
		AmountUSD:      order.Totals.TotalUSD,
		Currency:       order.Currency,
		TransactionRef: result.TransactionRef,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.payments.Insert(ctx, payment); err != nil {
		return PaymentResult{}, fmt.Errorf("payment: insert: %w", err)
	}

	if payment.Status == domain.PaymentStatusSucceeded {
		if _, err := s.orders.MarkPaid(ctx, order.ID); err != nil {
			return PaymentResult{}, err
		}
	}

	return PaymentResult{
		Payment:      payment,
		ClientSecret: result.ClientSecret,
		BankDetails:  result.BankDetails,
	}, nil
}

// ConfirmBankTransfer settles the pending verification record for the order
// and moves the order into processing. It stands in for the operator checking
// the paybill statement.
func (s *paymentService) ConfirmBankTransfer(ctx context.Context, orderID string) (PaymentResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return PaymentResult{}, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}

	records, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return PaymentResult{}, fmt.Errorf("payment: list by order: %w", err)
	}

	var pending *domain.Payment
	for i := range records {
		if records[i].Method == domain.PaymentMethodBankTransfer && records[i].Status == domain.PaymentStatusPendingVerification {
			pending = &records[i]
			break
		}
	}
	if pending == nil {
		return PaymentResult{}, ErrPaymentNotAwaitingVerification
	}

	pending.Status = domain.PaymentStatusSucceeded
	pending.UpdatedAt = s.clock()
	if err := s.payments.Update(ctx, *pending); err != nil {
		return PaymentResult{}, fmt.Errorf("payment: update: %w", err)
	}

	if _, err := s.orders.MarkPaid(ctx, orderID); err != nil {
		return PaymentResult{}, err
	}

	return PaymentResult{Payment: *pending}, nil
}

func (s *paymentService) ListPayments(ctx context.Context, orderID string) ([]Payment, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, fmt.Errorf("%w: order id is required", ErrPaymentInvalidInput)
	}
	records, err := s.payments.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("payment: list by order: %w", err)
	}
	return records, nil
}

func paymentStatus(status payments.Status) domain.PaymentStatus {
	switch status {
	case payments.StatusSucceeded:
		return domain.PaymentStatusSucceeded
	case payments.StatusFailed:
		return domain.PaymentStatusFailed
	case payments.StatusPendingVerification:
		return domain.PaymentStatusPendingVerification
	default:
		return domain.PaymentStatusPending
	}
}
