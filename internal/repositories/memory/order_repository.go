package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// OrderRepository is the in-memory order store.
type OrderRepository struct {
	mu       sync.RWMutex
	orders   map[string]domain.Order
	byNumber map[string]string
}

// NewOrderRepository constructs an empty order store.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders:   make(map[string]domain.Order),
		byNumber: make(map[string]string),
	}
}

// Insert adds an order, rejecting duplicate IDs and numbers.
func (r *OrderRepository) Insert(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(order.ID) == "" {
		return repositories.NewInternalError("order.insert", errMissingID)
	}
	if _, exists := r.orders[order.ID]; exists {
		return repositories.NewConflictError("order.insert", nil)
	}
	if order.Number != "" {
		if _, exists := r.byNumber[order.Number]; exists {
			return repositories.NewConflictError("order.insert", nil)
		}
	}

	r.orders[order.ID] = cloneOrder(order)
	if order.Number != "" {
		r.byNumber[order.Number] = order.ID
	}
	return nil
}

// Update replaces an existing order.
func (r *OrderRepository) Update(_ context.Context, order domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.orders[order.ID]
	if !ok {
		return repositories.NewNotFoundError("order.update", nil)
	}
	if existing.Number != order.Number {
		delete(r.byNumber, existing.Number)
		if order.Number != "" {
			r.byNumber[order.Number] = order.ID
		}
	}
	r.orders[order.ID] = cloneOrder(order)
	return nil
}

// FindByID returns the order or a not-found error.
func (r *OrderRepository) FindByID(_ context.Context, orderID string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[strings.TrimSpace(orderID)]
	if !ok {
		return domain.Order{}, repositories.NewNotFoundError("order.find", nil)
	}
	return cloneOrder(order), nil
}

// FindByNumber resolves an order by its human-readable number.
func (r *OrderRepository) FindByNumber(_ context.Context, number string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byNumber[strings.ToUpper(strings.TrimSpace(number))]
	if !ok {
		return domain.Order{}, repositories.NewNotFoundError("order.find_by_number", nil)
	}
	return cloneOrder(r.orders[id]), nil
}

// ListByUser returns the caller's orders, most recent first.
func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.UserID == userID {
			out = append(out, cloneOrder(order))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// ListAll returns every order, most recent first.
func (r *OrderRepository) ListAll(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Order, 0, len(r.orders))
	for _, order := range r.orders {
		out = append(out, cloneOrder(order))
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Number > orders[j].Number
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}

func cloneOrder(order domain.Order) domain.Order {
	copied := order
	copied.Items = append([]domain.OrderLineItem(nil), order.Items...)
	copied.Events = append([]domain.TrackingEvent(nil), order.Events...)
	return copied
}
