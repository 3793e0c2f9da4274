package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/pagination"
	"github.com/afripicx/nomads/internal/repositories"
)

var (
	// ErrCatalogInvalidInput signals bad list parameters such as an unknown sort key.
	ErrCatalogInvalidInput = errors.New("catalog: invalid input")
	// ErrProductNotFound is returned when the requested product does not exist
	// or is not publicly visible.
	ErrProductNotFound = errors.New("catalog: product not found")
)

// Sort keys accepted by ListProducts.
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortNewest    = "newest"
	SortRating    = "rating"
)

// priceBucket is one selectable price range over the converted display price.
// The upper bound is inclusive; max < 0 means unbounded.
type priceBucket struct {
	key string
	min float64
	max float64
}

// Bucket boundaries follow the USD ranges scaled by the fixed KES rate, so
// the same bucket keys select the same products in either currency.
var (
	usdBuckets = []priceBucket{
		{key: "0-50", min: 0, max: 50},
		{key: "50-100", min: 50, max: 100},
		{key: "100-200", min: 100, max: 200},
		{key: "200-500", min: 200, max: 500},
		{key: "500+", min: 500, max: -1},
	}
	kesBuckets = []priceBucket{
		{key: "0-50", min: 0, max: 6450},
		{key: "50-100", min: 6450, max: 12900},
		{key: "100-200", min: 12900, max: 25800},
		{key: "200-500", min: 25800, max: 64500},
		{key: "500+", min: 64500, max: -1},
	}
)

// CatalogServiceDeps bundles collaborators required to construct a catalog service.
type CatalogServiceDeps struct {
	Products repositories.ProductRepository
}

type catalogService struct {
	products repositories.ProductRepository
}

// NewCatalogService constructs the storefront catalog service.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Products == nil {
		return nil, errors.New("catalog service: product repository is required")
	}
	return &catalogService{products: deps.Products}, nil
}

func (s *catalogService) ListProducts(ctx context.Context, query ProductQuery) (ProductPage, error) {
	currency, err := normalizeCurrency(query.Currency)
	if err != nil {
		return ProductPage{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}

	sortKey := strings.TrimSpace(strings.ToLower(query.Sort))
	if sortKey == "" {
		sortKey = SortFeatured
	}
	switch sortKey {
	case SortFeatured, SortPriceLow, SortPriceHigh, SortNewest, SortRating:
	default:
		return ProductPage{}, fmt.Errorf("%w: unknown sort %q", ErrCatalogInvalidInput, query.Sort)
	}

	var bucket *priceBucket
	if key := strings.TrimSpace(query.PriceBucket); key != "" {
		bucket = findBucket(currency, key)
		if bucket == nil {
			return ProductPage{}, fmt.Errorf("%w: unknown price range %q", ErrCatalogInvalidInput, query.PriceBucket)
		}
	}

	products, err := s.products.List(ctx, domain.ProductStatusActive)
	if err != nil {
		return ProductPage{}, fmt.Errorf("catalog: list products: %w", err)
	}

	filtered := make([]domain.Product, 0, len(products))
	tribes := lowerSet(query.Tribes)
	categories := lowerSet(query.Categories)
	search := strings.ToLower(strings.TrimSpace(query.Search))
	for _, product := range products {
		if len(tribes) > 0 && !tribes[strings.ToLower(product.Tribe)] {
			continue
		}
		if len(categories) > 0 && !categories[strings.ToLower(product.Category)] {
			continue
		}
		if bucket != nil && !bucket.contains(domain.ConvertPrice(product.PriceUSD, currency)) {
			continue
		}
		if search != "" && !matchesSearch(product, search) {
			continue
		}
		filtered = append(filtered, product)
	}

	sortProducts(filtered, sortKey)

	pager := pagination.Params{Limit: query.Limit, Offset: query.Offset}.Normalize()
	start, end := pager.Window(len(filtered))

	items := make([]ProductView, 0, end-start)
	for _, product := range filtered[start:end] {
		items = append(items, newProductView(product, currency))
	}

	return ProductPage{
		Items:  items,
		Total:  len(filtered),
		Limit:  pager.Limit,
		Offset: pager.Offset,
	}, nil
}

func (s *catalogService) GetProduct(ctx context.Context, productID string, currency Currency) (ProductView, error) {
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return ProductView{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ProductView{}, fmt.Errorf("%w: product id is required", ErrCatalogInvalidInput)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ProductView{}, ErrProductNotFound
		}
		return ProductView{}, fmt.Errorf("catalog: find product: %w", err)
	}
	if product.Status != domain.ProductStatusActive {
		return ProductView{}, ErrProductNotFound
	}
	return newProductView(product, currency), nil
}

func (s *catalogService) FilterOptions(ctx context.Context, currency Currency) (CatalogFilterOptions, error) {
	currency, err := normalizeCurrency(currency)
	if err != nil {
		return CatalogFilterOptions{}, fmt.Errorf("%w: %v", ErrCatalogInvalidInput, err)
	}

	buckets := bucketsFor(currency)
	options := make([]PriceBucketOption, 0, len(buckets))
	for _, b := range buckets {
		options = append(options, PriceBucketOption{Key: b.key, Label: b.label(currency)})
	}

	return CatalogFilterOptions{
		Tribes:       domain.Tribes(),
		Categories:   domain.Categories(),
		PriceBuckets: options,
		Sorts:        []string{SortFeatured, SortPriceLow, SortPriceHigh, SortNewest, SortRating},
	}, nil
}

func newProductView(product domain.Product, currency Currency) ProductView {
	view := ProductView{
		Product:        product,
		Currency:       currency,
		DisplayPrice:   domain.ConvertPrice(product.PriceUSD, currency),
		FormattedPrice: domain.FormatPrice(product.PriceUSD, currency),
	}
	if product.OriginalPriceUSD != nil {
		converted := domain.ConvertPrice(*product.OriginalPriceUSD, currency)
		view.DisplayOriginal = &converted
		view.FormattedOriginal = domain.FormatPrice(*product.OriginalPriceUSD, currency)
	}
	return view
}

func sortProducts(products []domain.Product, sortKey string) {
	switch sortKey {
	case SortFeatured:
		// repository order is the curated featured order
	case SortPriceLow:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceUSD < products[j].PriceUSD
		})
	case SortPriceHigh:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].PriceUSD > products[j].PriceUSD
		})
	case SortNewest:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].IsNew && !products[j].IsNew
		})
	case SortRating:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	}
}

func matchesSearch(product domain.Product, search string) bool {
	for _, haystack := range []string{product.Name, product.Tribe, product.Category, product.Description} {
		if strings.Contains(strings.ToLower(haystack), search) {
			return true
		}
	}
	return false
}

func (b priceBucket) contains(price float64) bool {
	if price < b.min {
		return false
	}
	if b.max < 0 {
		return true
	}
	return price <= b.max
}

func (b priceBucket) label(currency Currency) string {
	symbol := currency.Symbol()
	if b.max < 0 {
		return fmt.Sprintf("%s%d+", symbol, int64(b.min))
	}
	return fmt.Sprintf("%s%d - %s%d", symbol, int64(b.min), symbol, int64(b.max))
}

func bucketsFor(currency Currency) []priceBucket {
	if currency == domain.CurrencyKES {
		return kesBuckets
	}
	return usdBuckets
}

func findBucket(currency Currency, key string) *priceBucket {
	for _, b := range bucketsFor(currency) {
		if b.key == key {
			bucket := b
			return &bucket
		}
	}
	return nil
}

func lowerSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			set[v] = true
		}
	}
	return set
}

func normalizeCurrency(currency Currency) (Currency, error) {
	if currency == "" {
		return domain.CurrencyUSD, nil
	}
	if !currency.Valid() {
		return "", fmt.Errorf("unsupported currency %q", currency)
	}
	return currency, nil
}
