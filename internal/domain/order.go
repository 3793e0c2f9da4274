package domain

import "time"

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	OrderStatusProcessing     OrderStatus = "processing"
	OrderStatusShipped        OrderStatus = "shipped"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// OrderLineItem snapshots a purchased product at order time.
type OrderLineItem struct {
	ProductID    string  `json:"product_id"`
	Name         string  `json:"name"`
	UnitPriceUSD float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// TrackingEvent records a fulfilment milestone for display on the tracking
// page, newest last.
type TrackingEvent struct {
	Status      OrderStatus `json:"status"`
	Description string      `json:"description"`
	Location    string      `json:"location,omitempty"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// Order is a placed storefront order.
type Order struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	UserID         string          `json:"user_id"`
	Items          []OrderLineItem `json:"items"`
	Totals         CartTotals      `json:"totals"`
	Currency       Currency        `json:"currency"`
	Shipping       ShippingDetails `json:"shipping"`
	PaymentMethod  PaymentMethod   `json:"payment_method"`
	Status         OrderStatus     `json:"status"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Events         []TrackingEvent `json:"events,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// PaymentStatus tracks the settlement state of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusPending             PaymentStatus = "pending"
	PaymentStatusSucceeded           PaymentStatus = "succeeded"
	PaymentStatusFailed              PaymentStatus = "failed"
	PaymentStatusPendingVerification PaymentStatus = "pending_verification"
)

// Payment records a settlement attempt against an order.
type Payment struct {
	ID             string        `json:"id"`
	OrderID        string        `json:"order_id"`
	Method         PaymentMethod `json:"method"`
	Status         PaymentStatus `json:"status"`
	AmountUSD      float64       `json:"amount"`
	Currency       Currency      `json:"currency"`
	TransactionRef string        `json:"transaction_ref,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
