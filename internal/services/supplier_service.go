package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// ErrSupplierInvalidInput signals a product submission missing required data.
var ErrSupplierInvalidInput = errors.New("supplier: invalid input")

// SupplierServiceDeps bundles collaborators required to construct a supplier service.
type SupplierServiceDeps struct {
	Products    repositories.ProductRepository
	Orders      repositories.OrderRepository
	Clock       func() time.Time
	IDGenerator func() string
}

type supplierService struct {
	products  repositories.ProductRepository
	orders    repositories.OrderRepository
	sanitizer *bluemonday.Policy
	clock     func() time.Time
	newID     func() string
}

// NewSupplierService constructs the supplier portal service.
func NewSupplierService(deps SupplierServiceDeps) (SupplierService, error) {
	if deps.Products == nil {
		return nil, errors.New("supplier service: product repository is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("supplier service: order repository is required")
	}
	if deps.IDGenerator == nil {
		return nil, errors.New("supplier service: id generator is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &supplierService{
		products:  deps.Products,
		orders:    deps.Orders,
		sanitizer: bluemonday.StrictPolicy(),
		clock: func() time.Time {
			return clock().UTC()
		},
		newID: deps.IDGenerator,
	}, nil
}

func (s *supplierService) Dashboard(ctx context.Context, supplierID string) (SupplierDashboard, error) {
	supplierID = strings.TrimSpace(supplierID)
	if supplierID == "" {
		return SupplierDashboard{}, fmt.Errorf("%w: supplier id is required", ErrSupplierInvalidInput)
	}

	products, err := s.products.ListBySupplier(ctx, supplierID)
	if err != nil {
		return SupplierDashboard{}, fmt.Errorf("supplier: list products: %w", err)
	}

	dashboard := SupplierDashboard{TotalProducts: len(products)}
	owned := make(map[string]bool, len(products))
	for _, product := range products {
		owned[product.ID] = true
		switch product.Status {
		case domain.ProductStatusActive:
			dashboard.ActiveProducts++
		case domain.ProductStatusPending:
			dashboard.PendingProducts++
		case domain.ProductStatusRejected:
			dashboard.RejectedProducts++
		}
	}

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return SupplierDashboard{}, fmt.Errorf("supplier: list orders: %w", err)
	}
	for _, order := range orders {
		if order.Status == domain.OrderStatusCancelled || order.Status == domain.OrderStatusPendingPayment {
			continue
		}
		for _, item := range order.Items {
			if !owned[item.ProductID] {
				continue
			}
			dashboard.UnitsSold += item.Quantity
			dashboard.TotalSalesUSD += item.UnitPriceUSD * float64(item.Quantity)
		}
	}
	dashboard.TotalSalesUSD = roundCents(dashboard.TotalSalesUSD)
	return dashboard, nil
}

func (s *supplierService) ListProducts(ctx context.Context, supplierID string) ([]Product, error) {
	supplierID = strings.TrimSpace(supplierID)
	if supplierID == "" {
		return nil, fmt.Errorf("%w: supplier id is required", ErrSupplierInvalidInput)
	}
	products, err := s.products.ListBySupplier(ctx, supplierID)
	if err != nil {
		return nil, fmt.Errorf("supplier: list products: %w", err)
	}
	return products, nil
}

// SubmitProduct stores a new submission in the moderation queue. Free-text
// fields are stripped of markup before storage.
func (s *supplierService) SubmitProduct(ctx context.Context, cmd SubmitProductCommand) (Product, error) {
	supplierID := strings.TrimSpace(cmd.SupplierID)
	if supplierID == "" {
		return Product{}, fmt.Errorf("%w: supplier id is required", ErrSupplierInvalidInput)
	}
	name := s.clean(cmd.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrSupplierInvalidInput)
	}
	tribe := s.clean(cmd.Tribe)
	if tribe == "" {
		return Product{}, fmt.Errorf("%w: tribe is required", ErrSupplierInvalidInput)
	}
	category := s.clean(cmd.Category)
	if category == "" {
		return Product{}, fmt.Errorf("%w: category is required", ErrSupplierInvalidInput)
	}
	if cmd.PriceUSD <= 0 {
		return Product{}, fmt.Errorf("%w: price must be positive", ErrSupplierInvalidInput)
	}

	now := s.clock()
	product := domain.Product{
		ID:          "prd_" + s.newID(),
		Name:        name,
		Tribe:       tribe,
		Category:    category,
		PriceUSD:    cmd.PriceUSD,
		ImageURL:    strings.TrimSpace(cmd.ImageURL),
		Description: s.clean(cmd.Description),
		Status:      domain.ProductStatusPending,
		SupplierID:  supplierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Insert(ctx, product); err != nil {
		return Product{}, fmt.Errorf("supplier: insert product: %w", err)
	}
	return product, nil
}

func (s *supplierService) clean(raw string) string {
	return strings.TrimSpace(s.sanitizer.Sanitize(raw))
}
