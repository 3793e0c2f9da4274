package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// ErrProductNotPending is returned when moderating a product that is not in
// the review queue.
var ErrProductNotPending = errors.New("admin: product is not pending review")

// AdminServiceDeps bundles collaborators required to construct an admin service.
type AdminServiceDeps struct {
	Products repositories.ProductRepository
	Users    repositories.UserRepository
	Orders   repositories.OrderRepository
	Clock    func() time.Time
}

type adminService struct {
	products repositories.ProductRepository
	users    repositories.UserRepository
	orders   repositories.OrderRepository
	clock    func() time.Time
}

// NewAdminService constructs the operator dashboard service.
func NewAdminService(deps AdminServiceDeps) (AdminService, error) {
	if deps.Products == nil {
		return nil, errors.New("admin service: product repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("admin service: user repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("admin service: order repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &adminService{
		products: deps.Products,
		users:    deps.Users,
		orders:   deps.Orders,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

// DashboardStats computes the dashboard figures from live data on every call.
func (s *adminService) DashboardStats(ctx context.Context) (DashboardStats, error) {
	customers, err := s.users.CountByRole(ctx, domain.RoleCustomer)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("admin: count customers: %w", err)
	}
	suppliers, err := s.users.CountByRole(ctx, domain.RoleSupplier)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("admin: count suppliers: %w", err)
	}
	products, err := s.products.List(ctx, "")
	if err != nil {
		return DashboardStats{}, fmt.Errorf("admin: list products: %w", err)
	}
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("admin: list orders: %w", err)
	}

	stats := DashboardStats{
		TotalCustomers: customers,
		TotalSuppliers: suppliers,
		TotalProducts:  len(products),
		TotalOrders:    len(orders),
	}
	for _, product := range products {
		if product.Status == domain.ProductStatusPending {
			stats.PendingProducts++
		}
	}
	for _, order := range orders {
		switch order.Status {
		case domain.OrderStatusPendingPayment, domain.OrderStatusProcessing:
			stats.PendingOrders++
		}
		if order.Status != domain.OrderStatusCancelled && order.Status != domain.OrderStatusPendingPayment {
			stats.TotalRevenueUSD += order.Totals.TotalUSD
		}
	}
	stats.TotalRevenueUSD = roundCents(stats.TotalRevenueUSD)
	return stats, nil
}

func (s *adminService) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.products.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("admin: list products: %w", err)
	}
	return products, nil
}

func (s *adminService) ApproveProduct(ctx context.Context, cmd ModerateProductCommand) (Product, error) {
	return s.moderate(ctx, cmd, domain.ProductStatusActive)
}

func (s *adminService) RejectProduct(ctx context.Context, cmd ModerateProductCommand) (Product, error) {
	return s.moderate(ctx, cmd, domain.ProductStatusRejected)
}

func (s *adminService) moderate(ctx context.Context, cmd ModerateProductCommand, target domain.ProductStatus) (Product, error) {
	productID := strings.TrimSpace(cmd.ProductID)
	if productID == "" {
		return Product{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, fmt.Errorf("admin: find product: %w", err)
	}
	if product.Status != domain.ProductStatusPending {
		return Product{}, fmt.Errorf("%w: %s is %s", ErrProductNotPending, product.ID, product.Status)
	}

	product.Status = target
	product.UpdatedAt = s.clock()
	if err := s.products.Update(ctx, product); err != nil {
		return Product{}, fmt.Errorf("admin: update product: %w", err)
	}
	return product, nil
}
