package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/afripicx/nomads/internal/di"
	"github.com/afripicx/nomads/internal/handlers"
	"github.com/afripicx/nomads/internal/platform/config"
	"github.com/afripicx/nomads/internal/platform/idempotency"
	"github.com/afripicx/nomads/internal/platform/observability"
	"github.com/afripicx/nomads/internal/repositories/memory"
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("api")
	ctx = observability.WithLogger(ctx, logger)

	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	registry := memory.NewRegistry()

	container, err := di.NewContainer(ctx, cfg, registry, logger)
	if err != nil {
		logger.Fatal("failed to assemble container", zap.Error(err))
	}

	metrics, err := observability.NewRequestMetrics()
	if err != nil {
		logger.Fatal("failed to initialise request metrics", zap.Error(err))
	}

	idempotencyMiddleware := idempotency.Middleware(
		idempotency.NewMemoryStore(),
		idempotency.WithTTL(cfg.IdempotencyTTL),
		idempotency.WithLogger(logger.Named("idempotency")),
	)

	middlewares := []func(http.Handler) http.Handler{
		observability.InjectLoggerMiddleware(logger.Named("http")),
		observability.TraceMiddleware(),
		observability.RecoveryMiddleware(logger.Named("http")),
		observability.RequestLoggerMiddleware(metrics),
	}

	authn := container.Authenticator
	svc := container.Services

	catalogHandlers := handlers.NewCatalogHandlers(svc.Catalog)
	authHandlers := handlers.NewAuthHandlers(authn, svc.Users)
	cartHandlers := handlers.NewCartHandlers(svc.Cart)
	checkoutHandlers := handlers.NewCheckoutHandlers(authn, svc.Checkout)
	orderHandlers := handlers.NewOrdersHandlers(authn, svc.Orders, svc.Cart, idempotencyMiddleware)
	paymentHandlers := handlers.NewPaymentHandlers(authn, svc.Payments, svc.Orders)
	adminHandlers := handlers.NewAdminHandlers(authn, svc.Admin, svc.Orders)
	supplierHandlers := handlers.NewSupplierHandlers(authn, svc.Supplier)
	contactHandlers := handlers.NewContactHandlers(svc.Contact, time.Now)
	systemHandlers := handlers.NewSystemHandlers(svc.System)

	router := handlers.NewRouter(
		handlers.WithMiddlewares(middlewares...),
		handlers.WithSystemHandlers(systemHandlers),
		handlers.WithCatalogRoutes(catalogHandlers.Routes),
		handlers.WithAuthRoutes(authHandlers.Routes),
		handlers.WithCartRoutes(cartHandlers.Routes),
		handlers.WithCheckoutRoutes(checkoutHandlers.Routes),
		handlers.WithOrderRoutes(orderHandlers.Routes),
		handlers.WithPaymentRoutes(paymentHandlers.Routes),
		handlers.WithAdminRoutes(adminHandlers.Routes),
		handlers.WithSupplierRoutes(supplierHandlers.Routes),
		handlers.WithContactRoutes(contactHandlers.Routes),
	)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	go func() {
		serverLogger.Info("nomad treasures api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverLogger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-shutdown
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
