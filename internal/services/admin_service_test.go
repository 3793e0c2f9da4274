package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories/memory"
)

type adminFixture struct {
	registry *memory.Registry
	service  AdminService
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()

	registry := memory.NewRegistry()
	service, err := NewAdminService(AdminServiceDeps{
		Products: registry.Products(),
		Users:    registry.Users(),
		Orders:   registry.Orders(),
		Clock:    func() time.Time { return time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("NewAdminService: %v", err)
	}
	return &adminFixture{registry: registry, service: service}
}

func (f *adminFixture) seedUser(t *testing.T, id string, role domain.Role) {
	t.Helper()
	err := f.registry.Users().Insert(context.Background(), domain.User{
		ID:    id,
		Name:  id,
		Email: id + "@example.com",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func (f *adminFixture) seedOrder(t *testing.T, id string, status domain.OrderStatus, total float64) {
	t.Helper()
	err := f.registry.Orders().Insert(context.Background(), domain.Order{
		ID:     id,
		Number: "NT" + id,
		UserID: "usr_1",
		Status: status,
		Totals: domain.CartTotals{TotalUSD: total},
	})
	if err != nil {
		t.Fatalf("insert order: %v", err)
	}
}

func TestDashboardStatsComputedFromLiveData(t *testing.T) {
	f := newAdminFixture(t)

	f.seedUser(t, "c1", domain.RoleCustomer)
	f.seedUser(t, "c2", domain.RoleCustomer)
	f.seedUser(t, "s1", domain.RoleSupplier)
	f.seedUser(t, "a1", domain.RoleAdmin)

	f.seedOrder(t, "1", domain.OrderStatusPendingPayment, 50)
	f.seedOrder(t, "2", domain.OrderStatusProcessing, 100)
	f.seedOrder(t, "3", domain.OrderStatusDelivered, 200)
	f.seedOrder(t, "4", domain.OrderStatusCancelled, 75)

	stats, err := f.service.DashboardStats(context.Background())
	if err != nil {
		t.Fatalf("DashboardStats: %v", err)
	}

	if stats.TotalCustomers != 2 || stats.TotalSuppliers != 1 {
		t.Fatalf("user counts = %d/%d, want 2/1", stats.TotalCustomers, stats.TotalSuppliers)
	}
	if stats.TotalProducts != 8 {
		t.Fatalf("total products = %d, want 8 seeded", stats.TotalProducts)
	}
	if stats.TotalOrders != 4 {
		t.Fatalf("total orders = %d, want 4", stats.TotalOrders)
	}
	if stats.PendingOrders != 2 {
		t.Fatalf("pending orders = %d, want 2", stats.PendingOrders)
	}
	// revenue excludes unpaid and cancelled orders
	if stats.TotalRevenueUSD != 300 {
		t.Fatalf("revenue = %v, want 300", stats.TotalRevenueUSD)
	}
}

func TestApproveAndRejectPendingProducts(t *testing.T) {
	f := newAdminFixture(t)
	ctx := context.Background()

	insert := func(id string) {
		err := f.registry.Products().Insert(ctx, domain.Product{
			ID: id, Name: "Pending " + id, Tribe: "Maasai", Category: "Jewelry",
			PriceUSD: 30, Status: domain.ProductStatusPending, SupplierID: "s1",
		})
		if err != nil {
			t.Fatalf("insert product: %v", err)
		}
	}
	insert("p1")
	insert("p2")

	approved, err := f.service.ApproveProduct(ctx, ModerateProductCommand{ProductID: "p1", ActorID: "a1"})
	if err != nil {
		t.Fatalf("ApproveProduct: %v", err)
	}
	if approved.Status != domain.ProductStatusActive {
		t.Fatalf("status = %s, want active", approved.Status)
	}

	rejected, err := f.service.RejectProduct(ctx, ModerateProductCommand{ProductID: "p2", ActorID: "a1", Reason: "duplicate listing"})
	if err != nil {
		t.Fatalf("RejectProduct: %v", err)
	}
	if rejected.Status != domain.ProductStatusRejected {
		t.Fatalf("status = %s, want rejected", rejected.Status)
	}

	if _, err := f.service.ApproveProduct(ctx, ModerateProductCommand{ProductID: "p1"}); !errors.Is(err, ErrProductNotPending) {
		t.Fatalf("err = %v, want ErrProductNotPending on second approve", err)
	}
	if _, err := f.service.ApproveProduct(ctx, ModerateProductCommand{ProductID: "missing"}); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}
