package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/afripicx/nomads/internal/platform/httpx"
)

// RouteRegistrar registers a set of routes against the provided router.
type RouteRegistrar func(r chi.Router)

type routerConfig struct {
	basePath    string
	middlewares []func(http.Handler) http.Handler
	system      *SystemHandlers

	catalog  RouteRegistrar
	auth     RouteRegistrar
	cart     RouteRegistrar
	checkout RouteRegistrar
	orders   RouteRegistrar
	payments RouteRegistrar
	admin    RouteRegistrar
	supplier RouteRegistrar
	contact  RouteRegistrar
}

// Option customises the router configuration before construction.
type Option func(*routerConfig)

const (
	defaultAPIPrefix  = "/api"
	defaultTimeout    = 60 * time.Second
	errorNotFoundCode = "route_not_found"
)

// NewRouter constructs the chi router with shared middleware and the expected
// route groups. Registrars left unset answer 501 so partial wiring during
// development fails loudly instead of silently 404ing.
func NewRouter(opts ...Option) chi.Router {
	cfg := routerConfig{
		basePath: defaultAPIPrefix,
		middlewares: []func(http.Handler) http.Handler{
			middleware.RequestID,
			middleware.RealIP,
			middleware.Timeout(defaultTimeout),
		},
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	if cfg.system == nil {
		cfg.system = NewSystemHandlers(nil)
	}

	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError(errorNotFoundCode, fmt.Sprintf("no route for %s", req.URL.Path), http.StatusNotFound))
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("method_not_allowed", fmt.Sprintf("method %s not allowed on %s", req.Method, req.URL.Path), http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", cfg.system.Healthz)
	r.Get("/readyz", cfg.system.Readyz)

	r.Route(cfg.basePath, func(api chi.Router) {
		mount := func(path string, registrar RouteRegistrar, name string) {
			api.Route(path, func(group chi.Router) {
				if registrar != nil {
					registrar(group)
					return
				}
				registerNotImplemented(group, name)
			})
		}

		// Catalog, auth, orders, and contact register multiple top-level
		// paths and therefore attach directly to the api router.
		if cfg.catalog != nil {
			cfg.catalog(api)
		} else {
			registerNotImplementedRoute(api, "/products", "catalog")
			registerNotImplementedRoute(api, "/product/{productID}", "catalog")
		}
		if cfg.auth != nil {
			cfg.auth(api)
		} else {
			registerNotImplementedRoute(api, "/register", "auth")
			registerNotImplementedRoute(api, "/login", "auth")
			registerNotImplementedRoute(api, "/logout", "auth")
		}
		if cfg.orders != nil {
			cfg.orders(api)
		} else {
			registerNotImplementedRoute(api, "/order", "orders")
			registerNotImplementedRoute(api, "/orders", "orders")
		}
		if cfg.contact != nil {
			cfg.contact(api)
		} else {
			registerNotImplementedRoute(api, "/contact", "contact")
		}

		mount("/cart", cfg.cart, "cart")
		mount("/checkout", cfg.checkout, "checkout")
		mount("/payments", cfg.payments, "payments")
		mount("/admin", cfg.admin, "admin")
		mount("/supplier", cfg.supplier, "supplier")

		api.Get("/system/info", cfg.system.Info)
	})

	return r
}

// WithMiddlewares appends additional global middleware to the router.
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithSystemHandlers overrides the handlers for /healthz, /readyz, and
// /api/system/info.
func WithSystemHandlers(h *SystemHandlers) Option {
	return func(cfg *routerConfig) {
		cfg.system = h
	}
}

// WithCatalogRoutes configures the registrar responsible for the public catalog.
func WithCatalogRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.catalog = reg
	}
}

// WithAuthRoutes configures the registrar responsible for account endpoints.
func WithAuthRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.auth = reg
	}
}

// WithCartRoutes configures the registrar responsible for cart endpoints.
func WithCartRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.cart = reg
	}
}

// WithCheckoutRoutes configures the registrar responsible for checkout endpoints.
func WithCheckoutRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.checkout = reg
	}
}

// WithOrderRoutes configures the registrar responsible for order endpoints.
func WithOrderRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.orders = reg
	}
}

// WithPaymentRoutes configures the registrar responsible for payment endpoints.
func WithPaymentRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.payments = reg
	}
}

// WithAdminRoutes configures the registrar responsible for admin endpoints.
func WithAdminRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.admin = reg
	}
}

// WithSupplierRoutes configures the registrar responsible for supplier endpoints.
func WithSupplierRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.supplier = reg
	}
}

// WithContactRoutes configures the registrar responsible for the contact form.
func WithContactRoutes(reg RouteRegistrar) Option {
	return func(cfg *routerConfig) {
		cfg.contact = reg
	}
}

func registerNotImplemented(r chi.Router, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
	}
	r.HandleFunc("/*", handler)
	r.HandleFunc("/", handler)
	r.NotFound(handler)
	r.MethodNotAllowed(handler)
}

func registerNotImplementedRoute(r chi.Router, path string, name string) {
	handler := func(w http.ResponseWriter, req *http.Request) {
		httpx.WriteError(req.Context(), w, httpx.NewError("not_implemented", fmt.Sprintf("%s routes not implemented", name), http.StatusNotImplemented))
	}
	r.HandleFunc(path, handler)
}
