package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/repositories/memory"
)

func newCatalogFixture(t *testing.T) CatalogService {
	t.Helper()
	svc, err := NewCatalogService(CatalogServiceDeps{Products: memory.NewProductRepository()})
	require.NoError(t, err)
	return svc
}

func productIDs(items []ProductView) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	return ids
}

func TestListProductsFiltersAndSorts(t *testing.T) {
	svc := newCatalogFixture(t)

	cases := []struct {
		name  string
		query ProductQuery
		want  []string
		total int
	}{
		{
			name:  "featured order by default",
			query: ProductQuery{},
			want:  []string{"1", "2", "3", "4", "5", "6", "7", "8"},
			total: 8,
		},
		{
			name:  "filter by tribe",
			query: ProductQuery{Tribes: []string{"Maasai"}},
			want:  []string{"1", "7"},
			total: 2,
		},
		{
			name:  "filter by category",
			query: ProductQuery{Categories: []string{"Home Décor"}},
			want:  []string{"5", "6", "8"},
			total: 3,
		},
		{
			name:  "filters intersect",
			query: ProductQuery{Tribes: []string{"Maasai"}, Categories: []string{"Clothing"}},
			want:  []string{"7"},
			total: 1,
		},
		{
			name:  "price bucket over usd price",
			query: ProductQuery{PriceBucket: "50-100"},
			want:  []string{"1", "6", "8"},
			total: 3,
		},
		{
			name:  "same bucket key in kes",
			query: ProductQuery{PriceBucket: "50-100", Currency: domain.CurrencyKES},
			want:  []string{"1", "6", "8"},
			total: 3,
		},
		{
			name: "maasai under fifty in kes",
			query: ProductQuery{
				Tribes:      []string{"Maasai"},
				PriceBucket: "0-50",
				Currency:    domain.CurrencyKES,
			},
			want:  []string{"7"},
			total: 1,
		},
		{
			name:  "unbounded top bucket",
			query: ProductQuery{PriceBucket: "200-500"},
			want:  []string{"3", "4", "5"},
			total: 3,
		},
		{
			name:  "sort price low",
			query: ProductQuery{Sort: SortPriceLow},
			want:  []string{"7", "6", "8", "1", "2", "3", "5", "4"},
			total: 8,
		},
		{
			name:  "sort price high",
			query: ProductQuery{Sort: SortPriceHigh},
			want:  []string{"4", "5", "3", "2", "1", "8", "6", "7"},
			total: 8,
		},
		{
			name:  "sort newest keeps featured order within groups",
			query: ProductQuery{Sort: SortNewest},
			want:  []string{"1", "4", "8", "2", "3", "5", "6", "7"},
			total: 8,
		},
		{
			name:  "sort rating",
			query: ProductQuery{Sort: SortRating},
			want:  []string{"4", "2", "1", "3", "5", "7", "6", "8"},
			total: 8,
		},
		{
			name:  "search matches name and tribe",
			query: ProductQuery{Search: "turkana"},
			want:  []string{"2", "8"},
			total: 2,
		},
		{
			name:  "pagination windows the filtered set",
			query: ProductQuery{Limit: 3, Offset: 2},
			want:  []string{"3", "4", "5"},
			total: 8,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, err := svc.ListProducts(context.Background(), tc.query)
			require.NoError(t, err)
			require.Equal(t, tc.want, productIDs(page.Items))
			require.Equal(t, tc.total, page.Total)
		})
	}
}

func TestListProductsDroppingAFilterNeverShrinksResults(t *testing.T) {
	svc := newCatalogFixture(t)
	ctx := context.Background()

	full := ProductQuery{
		Tribes:      []string{"Maasai"},
		Categories:  []string{"Clothing"},
		PriceBucket: "0-50",
		Currency:    domain.CurrencyKES,
	}
	relaxed := []ProductQuery{
		{Categories: full.Categories, PriceBucket: full.PriceBucket, Currency: full.Currency},
		{Tribes: full.Tribes, PriceBucket: full.PriceBucket, Currency: full.Currency},
		{Tribes: full.Tribes, Categories: full.Categories, Currency: full.Currency},
	}

	narrow, err := svc.ListProducts(ctx, full)
	require.NoError(t, err)
	require.NotEmpty(t, narrow.Items)

	for _, query := range relaxed {
		page, err := svc.ListProducts(ctx, query)
		require.NoError(t, err)
		require.GreaterOrEqual(t, page.Total, narrow.Total)
		require.Subset(t, productIDs(page.Items), productIDs(narrow.Items))
	}
}

func TestListProductsRejectsUnknownSortAndBucket(t *testing.T) {
	svc := newCatalogFixture(t)

	_, err := svc.ListProducts(context.Background(), ProductQuery{Sort: "cheapest"})
	require.ErrorIs(t, err, ErrCatalogInvalidInput)

	_, err = svc.ListProducts(context.Background(), ProductQuery{PriceBucket: "10-20"})
	require.ErrorIs(t, err, ErrCatalogInvalidInput)
}

func TestGetProductFormatsCurrency(t *testing.T) {
	svc := newCatalogFixture(t)

	usd, err := svc.GetProduct(context.Background(), "1", domain.CurrencyUSD)
	require.NoError(t, err)
	require.Equal(t, "$89", usd.FormattedPrice)
	require.Equal(t, "$120", usd.FormattedOriginal)

	kes, err := svc.GetProduct(context.Background(), "1", domain.CurrencyKES)
	require.NoError(t, err)
	require.Equal(t, float64(11481), kes.DisplayPrice)
	require.Equal(t, "KSh 11,481", kes.FormattedPrice)
	require.Equal(t, "KSh 15,480", kes.FormattedOriginal)
}

func TestGetProductHidesNonActiveProducts(t *testing.T) {
	repo := memory.NewProductRepository()
	svc, err := NewCatalogService(CatalogServiceDeps{Products: repo})
	require.NoError(t, err)

	product, err := repo.FindByID(context.Background(), "2")
	require.NoError(t, err)
	product.Status = domain.ProductStatusPending
	require.NoError(t, repo.Update(context.Background(), product))

	_, err = svc.GetProduct(context.Background(), "2", domain.CurrencyUSD)
	require.ErrorIs(t, err, ErrProductNotFound)

	page, err := svc.ListProducts(context.Background(), ProductQuery{})
	require.NoError(t, err)
	require.NotContains(t, productIDs(page.Items), "2")
}

func TestFilterOptionsLabelsFollowCurrency(t *testing.T) {
	svc := newCatalogFixture(t)

	options, err := svc.FilterOptions(context.Background(), domain.CurrencyKES)
	require.NoError(t, err)
	require.Equal(t, domain.Tribes(), options.Tribes)
	require.Len(t, options.PriceBuckets, 5)
	require.Equal(t, "KSh6450 - KSh12900", options.PriceBuckets[1].Label)
	require.Equal(t, "KSh64500+", options.PriceBuckets[4].Label)

	_, err = svc.FilterOptions(context.Background(), domain.Currency("EUR"))
	require.True(t, errors.Is(err, ErrCatalogInvalidInput))
}
