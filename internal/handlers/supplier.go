package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// SupplierHandlers backs the supplier portal. Suppliers only ever see their
// own products and sales figures.
type SupplierHandlers struct {
	authn     *auth.Authenticator
	suppliers services.SupplierService
}

const maxSupplierBodySize = 32 * 1024

// NewSupplierHandlers constructs handlers restricted to the supplier role.
func NewSupplierHandlers(authn *auth.Authenticator, suppliers services.SupplierService) *SupplierHandlers {
	return &SupplierHandlers{
		authn:     authn,
		suppliers: suppliers,
	}
}

// Routes wires the /supplier endpoints onto the provided router.
func (h *SupplierHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleSupplier))
	}
	r.Get("/dashboard", h.dashboard)
	r.Get("/products", h.listProducts)
	r.Post("/products", h.submitProduct)
}

type submitProductRequest struct {
	Name        string  `json:"name"`
	Tribe       string  `json:"tribe"`
	Category    string  `json:"category"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image"`
	Description string  `json:"description"`
}

func (h *SupplierHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	dashboard, err := h.suppliers.Dashboard(ctx, identity.UID)
	if err != nil {
		h.writeSupplierError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, dashboard)
}

func (h *SupplierHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	products, err := h.suppliers.ListProducts(ctx, identity.UID)
	if err != nil {
		h.writeSupplierError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, adminProductsResponse{Products: products})
}

func (h *SupplierHandlers) submitProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := h.requireService(ctx, w)
	if !ok {
		return
	}

	var req submitProductRequest
	if !decodeJSONBody(w, r, maxSupplierBodySize, &req) {
		return
	}

	product, err := h.suppliers.SubmitProduct(ctx, services.SubmitProductCommand{
		SupplierID:  identity.UID,
		Name:        req.Name,
		Tribe:       req.Tribe,
		Category:    req.Category,
		PriceUSD:    req.Price,
		ImageURL:    req.ImageURL,
		Description: req.Description,
	})
	if err != nil {
		h.writeSupplierError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, map[string]domain.Product{"product": product})
}

func (h *SupplierHandlers) requireService(ctx context.Context, w http.ResponseWriter) (*auth.Identity, bool) {
	if h.suppliers == nil {
		httpx.WriteError(ctx, w, httpx.NewError("supplier_service_unavailable", "supplier service is unavailable", http.StatusServiceUnavailable))
		return nil, false
	}
	return requireIdentity(ctx, w)
}

func (h *SupplierHandlers) writeSupplierError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrSupplierInvalidInput):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("supplier_error", "supplier operation failed", http.StatusInternalServerError))
	}
}
