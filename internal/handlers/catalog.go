package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// CatalogHandlers exposes the public storefront catalog.
type CatalogHandlers struct {
	catalog services.CatalogService
}

// NewCatalogHandlers constructs handlers for the public catalog endpoints.
func NewCatalogHandlers(catalog services.CatalogService) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog}
}

// Routes wires the catalog endpoints onto the provided router. The detail
// route lives under the singular /product path.
func (h *CatalogHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	r.Get("/products", h.listProducts)
	r.Get("/products/filters", h.filterOptions)
	r.Get("/product/{productID}", h.getProduct)
}

func (h *CatalogHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	currency, err := currencyFromQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	query := services.ProductQuery{
		Tribes:      splitCSV(r.URL.Query().Get("tribes")),
		Categories:  splitCSV(r.URL.Query().Get("categories")),
		PriceBucket: strings.TrimSpace(r.URL.Query().Get("price")),
		Sort:        strings.TrimSpace(r.URL.Query().Get("sort")),
		Search:      strings.TrimSpace(r.URL.Query().Get("search")),
		Currency:    currency,
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "limit must be an integer", http.StatusBadRequest))
			return
		}
		query.Limit = limit
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("offset")); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "offset must be an integer", http.StatusBadRequest))
			return
		}
		query.Offset = offset
	}

	page, err := h.catalog.ListProducts(ctx, query)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, page)
}

func (h *CatalogHandlers) getProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	currency, err := currencyFromQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	productID := strings.TrimSpace(chi.URLParam(r, "productID"))
	view, err := h.catalog.GetProduct(ctx, productID, currency)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, view)
}

func (h *CatalogHandlers) filterOptions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.catalog == nil {
		httpx.WriteError(ctx, w, httpx.NewError("catalog_service_unavailable", "catalog service is unavailable", http.StatusServiceUnavailable))
		return
	}

	currency, err := currencyFromQuery(r)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", "unsupported currency", http.StatusBadRequest))
		return
	}

	options, err := h.catalog.FilterOptions(ctx, currency)
	if err != nil {
		h.writeCatalogError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, options)
}

func (h *CatalogHandlers) writeCatalogError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCatalogInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("catalog_error", "failed to read catalog", http.StatusInternalServerError))
	}
}
