package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories"
)

// ProductRepository is the in-memory catalog store. It is seeded with the
// launch assortment and keeps insertion order so the featured sort stays
// stable.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
	order    []string
	seq      int
}

// NewProductRepository constructs the store seeded with the launch catalog.
func NewProductRepository() *ProductRepository {
	repo := &ProductRepository{products: make(map[string]domain.Product)}
	for _, product := range seedProducts() {
		repo.products[product.ID] = product
		repo.order = append(repo.order, product.ID)
	}
	repo.seq = len(repo.order)
	return repo
}

func usd(v float64) *float64 { return &v }

func seedProducts() []domain.Product {
	launched := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	products := []domain.Product{
		{
			ID: "1", Name: "Maasai Beaded Necklace", Tribe: "Maasai", Category: "Jewelry",
			PriceUSD: 89, OriginalPriceUSD: usd(120),
			ImageURL: "/assets/products/maasai-beaded-necklace.jpg",
			Rating:   4.8, Reviews: 24, IsNew: true,
		},
		{
			ID: "2", Name: "Turkana Woven Basket", Tribe: "Turkana", Category: "Baskets",
			PriceUSD: 156,
			ImageURL: "/assets/products/turkana-woven-basket.jpg",
			Rating:   4.9, Reviews: 18,
		},
		{
			ID: "3", Name: "Samburu Traditional Shuka", Tribe: "Samburu", Category: "Clothing",
			PriceUSD: 203,
			ImageURL: "/assets/products/samburu-traditional-shuka.jpg",
			Rating:   4.7, Reviews: 31,
		},
		{
			ID: "4", Name: "Borana Drum", Tribe: "Borana", Category: "Musical Instruments",
			PriceUSD: 340,
			ImageURL: "/assets/products/borana-drum.jpg",
			Rating:   5.0, Reviews: 12, IsNew: true,
		},
		{
			ID: "5", Name: "Rendile Carved Stool", Tribe: "Rendile", Category: "Home Décor",
			PriceUSD: 285,
			ImageURL: "/assets/products/rendile-carved-stool.jpg",
			Rating:   4.6, Reviews: 19,
		},
		{
			ID: "6", Name: "Somali Incense Burner", Tribe: "Somali", Category: "Home Décor",
			PriceUSD: 67,
			ImageURL: "/assets/products/somali-incense-burner.jpg",
			Rating:   4.4, Reviews: 27,
		},
		{
			ID: "7", Name: "Maasai Leather Sandals", Tribe: "Maasai", Category: "Clothing",
			PriceUSD: 45, OriginalPriceUSD: usd(65),
			ImageURL: "/assets/products/maasai-leather-sandals.jpg",
			Rating:   4.5, Reviews: 16,
		},
		{
			ID: "8", Name: "Turkana Clay Pot", Tribe: "Turkana", Category: "Home Décor",
			PriceUSD: 78,
			ImageURL: "/assets/products/turkana-clay-pot.jpg",
			Rating:   4.3, Reviews: 22, IsNew: true,
		},
	}
	for i := range products {
		products[i].Status = domain.ProductStatusActive
		products[i].CreatedAt = launched
		products[i].UpdatedAt = launched
	}
	return products
}

// Insert adds a product. The ID must be unique.
func (r *ProductRepository) Insert(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(product.ID) == "" {
		return repositories.NewInternalError("product.insert", errMissingID)
	}
	if _, exists := r.products[product.ID]; exists {
		return repositories.NewConflictError("product.insert", nil)
	}

	r.products[product.ID] = product
	r.order = append(r.order, product.ID)
	return nil
}

// Update replaces an existing product.
func (r *ProductRepository) Update(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[product.ID]; !exists {
		return repositories.NewNotFoundError("product.update", nil)
	}
	r.products[product.ID] = product
	return nil
}

// FindByID returns the product or a not-found error.
func (r *ProductRepository) FindByID(_ context.Context, productID string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[strings.TrimSpace(productID)]
	if !ok {
		return domain.Product{}, repositories.NewNotFoundError("product.find", nil)
	}
	return product, nil
}

// List returns products in seed order, optionally restricted to a status.
func (r *ProductRepository) List(_ context.Context, status domain.ProductStatus) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0, len(r.order))
	for _, id := range r.order {
		product := r.products[id]
		if status != "" && product.Status != status {
			continue
		}
		out = append(out, product)
	}
	return out, nil
}

// ListBySupplier returns a supplier's submissions, newest first.
func (r *ProductRepository) ListBySupplier(_ context.Context, supplierID string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Product, 0)
	for _, id := range r.order {
		product := r.products[id]
		if product.SupplierID == supplierID {
			out = append(out, product)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
