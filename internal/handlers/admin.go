package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// AdminHandlers backs the operator dashboard and the product moderation queue.
type AdminHandlers struct {
	authn  *auth.Authenticator
	admin  services.AdminService
	orders services.OrderService
}

const (
	maxAdminBodySize  = 16 * 1024
	recentOrdersLimit = 10
)

// NewAdminHandlers constructs handlers restricted to the admin role.
func NewAdminHandlers(authn *auth.Authenticator, admin services.AdminService, orders services.OrderService) *AdminHandlers {
	return &AdminHandlers{
		authn:  authn,
		admin:  admin,
		orders: orders,
	}
}

// Routes wires the /admin endpoints onto the provided router.
func (h *AdminHandlers) Routes(r chi.Router) {
	if r == nil {
		return
	}
	if h.authn != nil {
		r.Use(h.authn.RequireAuth(auth.RoleAdmin))
	}
	r.Get("/dashboard", h.dashboard)
	r.Get("/products", h.listProducts)
	r.Post("/products/{productID}/approve", h.approveProduct)
	r.Post("/products/{productID}/reject", h.rejectProduct)
}

type adminDashboardResponse struct {
	Stats        domain.DashboardStats `json:"stats"`
	RecentOrders []domain.Order        `json:"recent_orders"`
}

type adminProductsResponse struct {
	Products []domain.Product `json:"products"`
}

type moderateProductRequest struct {
	Reason string `json:"reason"`
}

func (h *AdminHandlers) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.admin == nil || h.orders == nil {
		httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "admin service is unavailable", http.StatusServiceUnavailable))
		return
	}

	stats, err := h.admin.DashboardStats(ctx)
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}

	orders, err := h.orders.ListAllOrders(ctx)
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}

	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if len(orders) > recentOrdersLimit {
		orders = orders[:recentOrdersLimit]
	}

	writeJSONResponse(w, http.StatusOK, adminDashboardResponse{
		Stats:        stats,
		RecentOrders: orders,
	})
}

func (h *AdminHandlers) listProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.admin == nil {
		httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "admin service is unavailable", http.StatusServiceUnavailable))
		return
	}

	products, err := h.admin.ListProducts(ctx)
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, adminProductsResponse{Products: products})
}

func (h *AdminHandlers) approveProduct(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, true)
}

func (h *AdminHandlers) rejectProduct(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, false)
}

func (h *AdminHandlers) moderate(w http.ResponseWriter, r *http.Request, approve bool) {
	ctx := r.Context()
	if h.admin == nil {
		httpx.WriteError(ctx, w, httpx.NewError("admin_service_unavailable", "admin service is unavailable", http.StatusServiceUnavailable))
		return
	}

	identity, ok := requireIdentity(ctx, w)
	if !ok {
		return
	}

	// The body is optional; rejections may carry a reason.
	var req moderateProductRequest
	if r.Body != nil && r.ContentLength > 0 {
		if !decodeJSONBody(w, r, maxAdminBodySize, &req) {
			return
		}
	}

	cmd := services.ModerateProductCommand{
		ProductID: strings.TrimSpace(chi.URLParam(r, "productID")),
		ActorID:   identity.UID,
		Reason:    req.Reason,
	}

	var product domain.Product
	var err error
	if approve {
		product, err = h.admin.ApproveProduct(ctx, cmd)
	} else {
		product, err = h.admin.RejectProduct(ctx, cmd)
	}
	if err != nil {
		h.writeAdminError(ctx, w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]domain.Product{"product": product})
}

func (h *AdminHandlers) writeAdminError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_found", "product not found", http.StatusNotFound))
	case errors.Is(err, services.ErrProductNotPending):
		httpx.WriteError(ctx, w, httpx.NewError("product_conflict", err.Error(), http.StatusConflict))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("admin_error", "admin operation failed", http.StatusInternalServerError))
	}
}
