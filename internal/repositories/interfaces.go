package repositories

import (
	"context"

	"github.com/afripicx/nomads/internal/domain"
)

// Registry exposes typed repository accessors for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Products() ProductRepository
	Users() UserRepository
	Orders() OrderRepository
	Payments() PaymentRepository
	Contacts() ContactRepository
	Counters() CounterRepository
}

// RepositoryError wraps persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
}

// ProductRepository persists catalog entries, including pending supplier
// submissions.
type ProductRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	Update(ctx context.Context, product domain.Product) error
	FindByID(ctx context.Context, productID string) (domain.Product, error)
	// List returns products in seed (featured) order, optionally restricted
	// to a status. An empty status returns everything.
	List(ctx context.Context, status domain.ProductStatus) ([]domain.Product, error)
	ListBySupplier(ctx context.Context, supplierID string) ([]domain.Product, error)
}

// UserRepository persists accounts. Email addresses are unique.
type UserRepository interface {
	Insert(ctx context.Context, user domain.User) error
	FindByID(ctx context.Context, userID string) (domain.User, error)
	FindByEmail(ctx context.Context, email string) (domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int, error)
}

// OrderRepository persists storefront orders.
type OrderRepository interface {
	Insert(ctx context.Context, order domain.Order) error
	Update(ctx context.Context, order domain.Order) error
	FindByID(ctx context.Context, orderID string) (domain.Order, error)
	FindByNumber(ctx context.Context, number string) (domain.Order, error)
	// ListByUser returns the caller's orders, most recent first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	// ListAll returns every order, most recent first.
	ListAll(ctx context.Context) ([]domain.Order, error)
}

// PaymentRepository persists settlement attempts keyed by order.
type PaymentRepository interface {
	Insert(ctx context.Context, payment domain.Payment) error
	Update(ctx context.Context, payment domain.Payment) error
	FindByID(ctx context.Context, paymentID string) (domain.Payment, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.Payment, error)
}

// ContactRepository stores contact-form submissions.
type ContactRepository interface {
	Insert(ctx context.Context, message domain.ContactMessage) error
	ListAll(ctx context.Context) ([]domain.ContactMessage, error)
}

// CounterRepository issues monotonically increasing sequence values used for
// human-readable order and tracking numbers.
type CounterRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
