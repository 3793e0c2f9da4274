package memory

import (
	"context"

	"github.com/afripicx/nomads/internal/repositories"
)

// Registry bundles the in-memory stores behind the repositories.Registry
// interface.
type Registry struct {
	products *ProductRepository
	users    *UserRepository
	orders   *OrderRepository
	payments *PaymentRepository
	contacts *ContactRepository
	counters *CounterRepository
}

// NewRegistry constructs the full set of in-memory stores. Order numbers
// start above the seeded floor so they look like a live sequence.
func NewRegistry() *Registry {
	return &Registry{
		products: NewProductRepository(),
		users:    NewUserRepository(),
		orders:   NewOrderRepository(),
		payments: NewPaymentRepository(),
		contacts: NewContactRepository(),
		counters: NewCounterRepository(map[string]int64{
			"order":    123455,
			"tracking": 0,
		}),
	}
}

// Close implements repositories.Registry. Nothing to release for memory stores.
func (r *Registry) Close(context.Context) error { return nil }

// Products implements repositories.Registry.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// Users implements repositories.Registry.
func (r *Registry) Users() repositories.UserRepository { return r.users }

// Orders implements repositories.Registry.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Payments implements repositories.Registry.
func (r *Registry) Payments() repositories.PaymentRepository { return r.payments }

// Contacts implements repositories.Registry.
func (r *Registry) Contacts() repositories.ContactRepository { return r.contacts }

// Counters implements repositories.Registry.
func (r *Registry) Counters() repositories.CounterRepository { return r.counters }
