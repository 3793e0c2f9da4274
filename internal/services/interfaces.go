package services

import (
	"context"
	"time"

	"github.com/afripicx/nomads/internal/domain"
)

// Type aliases expose domain models to the services package without reversing
// dependency direction.
type (
	Currency        = domain.Currency
	Product         = domain.Product
	ProductStatus   = domain.ProductStatus
	CartItem        = domain.CartItem
	CartTotals      = domain.CartTotals
	PaymentMethod   = domain.PaymentMethod
	ShippingDetails = domain.ShippingDetails
	BankDetails     = domain.BankDetails
	Order           = domain.Order
	OrderStatus     = domain.OrderStatus
	TrackingEvent   = domain.TrackingEvent
	Payment         = domain.Payment
	PaymentStatus   = domain.PaymentStatus
	User            = domain.User
	Role            = domain.Role
	SupplierProfile = domain.SupplierProfile
	ContactMessage  = domain.ContactMessage
	DashboardStats  = domain.DashboardStats
)

// CatalogService serves the public storefront catalog with filtering, sorting,
// search, and display currency conversion.
type CatalogService interface {
	ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error)
	GetProduct(ctx context.Context, productID string, currency Currency) (ProductView, error)
	FilterOptions(ctx context.Context, currency Currency) (CatalogFilterOptions, error)
}

// CartService prices a client-held cart against the live catalog.
type CartService interface {
	Quote(ctx context.Context, cmd CartQuoteCommand) (CartQuote, error)
}

// CheckoutService drives the multi-step checkout flow. Flows are short-lived
// server-side state keyed by flow ID and owned by the user who started them.
type CheckoutService interface {
	StartFlow(ctx context.Context, cmd StartCheckoutCommand) (CheckoutFlow, error)
	GetFlow(ctx context.Context, userID, flowID string) (CheckoutFlow, error)
	SetShipping(ctx context.Context, cmd SetShippingCommand) (CheckoutFlow, error)
	SetPaymentMethod(ctx context.Context, cmd SetPaymentMethodCommand) (CheckoutFlow, error)
	Advance(ctx context.Context, userID, flowID string) (CheckoutFlow, error)
	Back(ctx context.Context, userID, flowID string) (CheckoutFlow, error)
	Submit(ctx context.Context, cmd SubmitCheckoutCommand) (CheckoutResult, error)
	ConfirmBankTransfer(ctx context.Context, userID, flowID string) (CheckoutResult, error)
}

// OrderService encapsulates order creation, status transitions, and tracking.
type OrderService interface {
	CreateOrder(ctx context.Context, cmd CreateOrderCommand) (Order, error)
	GetOrder(ctx context.Context, orderID string) (Order, error)
	ListOrders(ctx context.Context, userID string) ([]Order, error)
	ListAllOrders(ctx context.Context) ([]Order, error)
	MarkPaid(ctx context.Context, orderID string) (Order, error)
	TransitionStatus(ctx context.Context, cmd OrderStatusCommand) (Order, error)
	Track(ctx context.Context, number string) (OrderTracking, error)
}

// PaymentService initiates charges against orders and records the outcomes.
type PaymentService interface {
	ProcessPayment(ctx context.Context, cmd ProcessPaymentCommand) (PaymentResult, error)
	ConfirmBankTransfer(ctx context.Context, orderID string) (PaymentResult, error)
	ListPayments(ctx context.Context, orderID string) ([]Payment, error)
}

// UserService manages account registration, credential verification, and sessions.
type UserService interface {
	Register(ctx context.Context, cmd RegisterCommand) (AuthSession, error)
	Login(ctx context.Context, cmd LoginCommand) (AuthSession, error)
	Logout(ctx context.Context, cmd LogoutCommand) error
	GetProfile(ctx context.Context, userID string) (User, error)
}

// AdminService backs the operator dashboard and product moderation queue.
type AdminService interface {
	DashboardStats(ctx context.Context) (DashboardStats, error)
	ListProducts(ctx context.Context) ([]Product, error)
	ApproveProduct(ctx context.Context, cmd ModerateProductCommand) (Product, error)
	RejectProduct(ctx context.Context, cmd ModerateProductCommand) (Product, error)
}

// SupplierService backs the supplier portal: an own-products view and new
// product submissions that enter the moderation queue.
type SupplierService interface {
	Dashboard(ctx context.Context, supplierID string) (SupplierDashboard, error)
	ListProducts(ctx context.Context, supplierID string) ([]Product, error)
	SubmitProduct(ctx context.Context, cmd SubmitProductCommand) (Product, error)
}

// ContactService accepts sanitised storefront contact-form submissions.
type ContactService interface {
	Submit(ctx context.Context, cmd ContactCommand) (ContactMessage, error)
	ListMessages(ctx context.Context) ([]ContactMessage, error)
}

// SystemService aggregates utility endpoints (health checks, build info).
type SystemService interface {
	HealthReport(ctx context.Context) (HealthReport, error)
	Info(ctx context.Context) (SystemInfo, error)
}

// Command and DTO definitions ------------------------------------------------

// ProductQuery carries catalog list parameters. Zero values mean "no filter".
type ProductQuery struct {
	Tribes      []string
	Categories  []string
	PriceBucket string
	Sort        string
	Search      string
	Currency    Currency
	Limit       int
	Offset      int
}

// ProductView is a catalog entry decorated for display in one currency.
type ProductView struct {
	Product
	Currency          Currency `json:"currency"`
	DisplayPrice      float64  `json:"display_price"`
	FormattedPrice    string   `json:"formatted_price"`
	DisplayOriginal   *float64 `json:"display_original_price,omitempty"`
	FormattedOriginal string   `json:"formatted_original_price,omitempty"`
}

// ProductPage is one window of catalog results.
type ProductPage struct {
	Items  []ProductView `json:"items"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// PriceBucketOption describes one selectable price range in the display currency.
type PriceBucketOption struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// CatalogFilterOptions lists the selectable facets for the storefront sidebar.
type CatalogFilterOptions struct {
	Tribes       []string            `json:"tribes"`
	Categories   []string            `json:"categories"`
	PriceBuckets []PriceBucketOption `json:"price_buckets"`
	Sorts        []string            `json:"sorts"`
}

// CartQuoteCommand prices the supplied lines. Quantities are validated and
// unit prices re-read from the catalog so clients cannot set their own prices.
type CartQuoteCommand struct {
	Lines    []CartQuoteLine
	Currency Currency
}

type CartQuoteLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartQuote is the priced cart returned to the client.
type CartQuote struct {
	Items     []CartItem `json:"items"`
	Totals    CartTotals `json:"totals"`
	Currency  Currency   `json:"currency"`
	Formatted struct {
		Subtotal string `json:"subtotal"`
		Shipping string `json:"shipping"`
		Tax      string `json:"tax"`
		Total    string `json:"total"`
	} `json:"formatted"`
}

type StartCheckoutCommand struct {
	UserID   string
	Lines    []CartQuoteLine
	Currency Currency
}

type SetShippingCommand struct {
	UserID   string
	FlowID   string
	Shipping ShippingDetails
}

type SetPaymentMethodCommand struct {
	UserID       string
	FlowID       string
	Method       PaymentMethod
	PhoneNumber  string
	AgreeToTerms bool
}

type SubmitCheckoutCommand struct {
	UserID string
	FlowID string
}

// CheckoutResult reports the order produced by a submitted flow. BankDetails
// is set only for bank transfer submissions awaiting an explicit confirm.
type CheckoutResult struct {
	Flow        CheckoutFlow `json:"flow"`
	Order       Order        `json:"order"`
	Payment     Payment      `json:"payment"`
	BankDetails *BankDetails `json:"bank_details,omitempty"`
}

type CreateOrderCommand struct {
	UserID        string
	Items         []CartItem
	Currency      Currency
	Shipping      ShippingDetails
	PaymentMethod PaymentMethod
}

type OrderStatusCommand struct {
	OrderID     string
	Target      OrderStatus
	Description string
	Location    string
}

// OrderTracking is the public view served by the tracking page.
type OrderTracking struct {
	Number         string          `json:"number"`
	Status         OrderStatus     `json:"status"`
	TrackingNumber string          `json:"tracking_number,omitempty"`
	Events         []TrackingEvent `json:"events"`
}

type ProcessPaymentCommand struct {
	OrderID        string
	Method         PaymentMethod
	PhoneNumber    string
	IdempotencyKey string
}

// PaymentResult pairs the recorded payment with any provider artefacts the
// client needs to finish the charge.
type PaymentResult struct {
	Payment      Payment      `json:"payment"`
	ClientSecret string       `json:"client_secret,omitempty"`
	BankDetails  *BankDetails `json:"bank_details,omitempty"`
}

type RegisterCommand struct {
	Name     string
	Email    string
	Password string
	Phone    string
	Role     Role
	Supplier *SupplierProfile
}

type LoginCommand struct {
	Email    string
	Password string
}

type LogoutCommand struct {
	UserID  string
	TokenID string
}

// AuthSession is the response to a successful register or login.
type AuthSession struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ModerateProductCommand struct {
	ProductID string
	ActorID   string
	Reason    string
}

type SubmitProductCommand struct {
	SupplierID  string
	Name        string
	Tribe       string
	Category    string
	PriceUSD    float64
	ImageURL    string
	Description string
}

// SupplierDashboard aggregates the figures shown on the supplier portal.
type SupplierDashboard struct {
	TotalProducts    int     `json:"total_products"`
	ActiveProducts   int     `json:"active_products"`
	PendingProducts  int     `json:"pending_products"`
	RejectedProducts int     `json:"rejected_products"`
	TotalSalesUSD    float64 `json:"total_sales"`
	UnitsSold        int     `json:"units_sold"`
}

type ContactCommand struct {
	Name    string
	Email   string
	Subject string
	Body    string
}

// HealthReport summarises dependency probes for the readiness endpoint.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// SystemInfo reports build and runtime metadata.
type SystemInfo struct {
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	GitSHA    string    `json:"git_sha,omitempty"`
	BuiltAt   string    `json:"built_at,omitempty"`
	Env       string    `json:"env"`
	StartedAt time.Time `json:"started_at"`
	Now       time.Time `json:"now"`
}
