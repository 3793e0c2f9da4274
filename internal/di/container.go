package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/payments"
	"github.com/afripicx/nomads/internal/platform/auth"
	"github.com/afripicx/nomads/internal/platform/config"
	"github.com/afripicx/nomads/internal/repositories"
	"github.com/afripicx/nomads/internal/services"
)

// localDevTokenSecret signs sessions when no secret is configured. Config
// validation guarantees this only happens in the local environment.
const localDevTokenSecret = "nomads-local-dev-secret"

// Services bundles the service-layer contracts that handlers rely upon.
// Concrete implementations are assembled via dependency injection in
// NewContainer.
type Services struct {
	Catalog  services.CatalogService
	Cart     services.CartService
	Checkout services.CheckoutService
	Orders   services.OrderService
	Payments services.PaymentService
	Users    services.UserService
	Admin    services.AdminService
	Supplier services.SupplierService
	Contact  services.ContactService
	System   services.SystemService
}

// Container wires repositories, auth, and services for runtime use.
type Container struct {
	Config        config.Config
	Logger        *zap.Logger
	Repositories  repositories.Registry
	Tokens        *auth.TokenService
	Authenticator *auth.Authenticator
	Services      Services
}

// NewContainer constructs the runtime dependencies and seeds the bootstrap
// admin account.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, logger *zap.Logger) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	tokens, err := buildTokenService(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := buildServices(cfg, reg, tokens, logger)
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:        cfg,
		Logger:        logger,
		Repositories:  reg,
		Tokens:        tokens,
		Authenticator: auth.NewAuthenticator(tokens),
		Services:      svc,
	}

	if err := c.seedAdmin(ctx); err != nil {
		return nil, fmt.Errorf("seed admin account: %w", err)
	}
	return c, nil
}

// Close releases resources such as repository clients or caches.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func newID() string {
	return ulid.Make().String()
}

func buildTokenService(cfg config.Config) (*auth.TokenService, error) {
	secret := cfg.Auth.TokenSecret
	if secret == "" {
		secret = localDevTokenSecret
	}
	return auth.NewTokenService(auth.TokenServiceDeps{
		Secret:      []byte(secret),
		Issuer:      cfg.Auth.Issuer,
		TTL:         cfg.Auth.TokenTTL,
		Clock:       time.Now,
		Revocations: auth.NewMemoryRevocationList(),
		IDGenerator: newID,
	})
}

func buildServices(cfg config.Config, reg repositories.Registry, tokens *auth.TokenService, logger *zap.Logger) (Services, error) {
	var svc Services

	pricing, err := services.NewPricingEngine(services.PricingEngineDeps{
		FreeShippingThresholdUSD: cfg.Pricing.FreeShippingThresholdUSD,
		FlatShippingUSD:          cfg.Pricing.FlatShippingUSD,
		TaxRate:                  cfg.Pricing.TaxRate,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build pricing engine: %w", err)
	}

	svc.Catalog, err = services.NewCatalogService(services.CatalogServiceDeps{
		Products: reg.Products(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}

	svc.Cart, err = services.NewCartService(services.CartServiceDeps{
		Products: reg.Products(),
		Pricing:  pricing,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build cart service: %w", err)
	}

	svc.Orders, err = services.NewOrderService(services.OrderServiceDeps{
		Orders:      reg.Orders(),
		Counters:    reg.Counters(),
		Pricing:     pricing,
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build order service: %w", err)
	}

	manager, err := buildPaymentManager(cfg, logger)
	if err != nil {
		return Services{}, err
	}

	svc.Payments, err = services.NewPaymentService(services.PaymentServiceDeps{
		Payments:    reg.Payments(),
		Orders:      svc.Orders,
		Manager:     manager,
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build payment service: %w", err)
	}

	svc.Checkout, err = services.NewCheckoutService(services.CheckoutServiceDeps{
		Cart:        svc.Cart,
		Orders:      svc.Orders,
		Payments:    svc.Payments,
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}

	svc.Users, err = services.NewUserService(services.UserServiceDeps{
		Users:       reg.Users(),
		Tokens:      tokens,
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build user service: %w", err)
	}

	svc.Admin, err = services.NewAdminService(services.AdminServiceDeps{
		Products: reg.Products(),
		Users:    reg.Users(),
		Orders:   reg.Orders(),
		Clock:    time.Now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build admin service: %w", err)
	}

	svc.Supplier, err = services.NewSupplierService(services.SupplierServiceDeps{
		Products:    reg.Products(),
		Orders:      reg.Orders(),
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build supplier service: %w", err)
	}

	svc.Contact, err = services.NewContactService(services.ContactServiceDeps{
		Contacts:    reg.Contacts(),
		Clock:       time.Now,
		IDGenerator: newID,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build contact service: %w", err)
	}

	svc.System, err = services.NewSystemService(services.SystemServiceDeps{
		Registry: reg,
		Env:      cfg.Env,
		Version:  cfg.Build.Version,
		GitSHA:   cfg.Build.GitSHA,
		BuiltAt:  cfg.Build.BuiltAt,
		Clock:    time.Now,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build system service: %w", err)
	}

	return svc, nil
}

func buildPaymentManager(cfg config.Config, logger *zap.Logger) (*payments.Manager, error) {
	providerLog := func(ctx context.Context, event string, fields map[string]any) {
		zapFields := make([]zap.Field, 0, len(fields))
		for key, value := range fields {
			zapFields = append(zapFields, zap.Any(key, value))
		}
		logger.Info(event, zapFields...)
	}

	mpesa, err := payments.NewMpesaProvider(payments.MpesaProviderConfig{
		Logger: providerLog,
	})
	if err != nil {
		return nil, fmt.Errorf("build mpesa provider: %w", err)
	}

	bank, err := payments.NewBankTransferProvider(payments.BankTransferProviderConfig{
		BankName:      cfg.Payments.BankName,
		PaybillNumber: cfg.Payments.BankPaybillNumber,
		AccountNumber: cfg.Payments.BankAccountNumber,
		AccountName:   cfg.Payments.BankAccountName,
	})
	if err != nil {
		return nil, fmt.Errorf("build bank transfer provider: %w", err)
	}

	providers := map[domain.PaymentMethod]payments.Provider{
		domain.PaymentMethodMpesa:        mpesa,
		domain.PaymentMethodBankTransfer: bank,
	}

	// Card and PayPal ride on Stripe Payment Intents and are only offered
	// when an API key is configured.
	if cfg.Payments.StripeAPIKey != "" {
		card, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey:            cfg.Payments.StripeAPIKey,
			PaymentMethodType: "card",
			Logger:            providerLog,
		})
		if err != nil {
			return nil, fmt.Errorf("build stripe card provider: %w", err)
		}
		paypal, err := payments.NewStripeProvider(payments.StripeProviderConfig{
			APIKey:            cfg.Payments.StripeAPIKey,
			PaymentMethodType: "paypal",
			Logger:            providerLog,
		})
		if err != nil {
			return nil, fmt.Errorf("build stripe paypal provider: %w", err)
		}
		providers[domain.PaymentMethodCard] = card
		providers[domain.PaymentMethodPayPal] = paypal
	}

	manager, err := payments.NewManager(providers)
	if err != nil {
		return nil, fmt.Errorf("build payment manager: %w", err)
	}
	return manager, nil
}

// seedAdmin inserts the bootstrap admin account when it does not exist yet.
// Admin registration is rejected by the API, so this is the only path that
// creates one.
func (c *Container) seedAdmin(ctx context.Context) error {
	users := c.Repositories.Users()
	if users == nil {
		return errors.New("user repository is required")
	}

	email := c.Config.Bootstrap.AdminEmail
	if _, err := users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !repositories.IsNotFound(err) {
		return err
	}

	password := c.Config.Bootstrap.AdminPassword
	if password == "" {
		password = "admin-local-dev"
		c.Logger.Warn("seeding admin with the local development password; set NOMADS_ADMIN_PASSWORD",
			zap.String("email", email))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := users.Insert(ctx, domain.User{
		ID:           "usr_" + newID(),
		Name:         c.Config.Bootstrap.AdminName,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	c.Logger.Info("seeded bootstrap admin account", zap.String("email", email))
	return nil
}
