package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment names accepted by NOMADS_ENV.
const (
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

// HTTPConfig controls the HTTP server runtime.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	BasePath        string
}

// AuthConfig controls session token issuance.
type AuthConfig struct {
	TokenSecret string
	TokenTTL    time.Duration
	Issuer      string
}

// PaymentsConfig carries provider credentials and the manual bank transfer
// instructions shown at checkout.
type PaymentsConfig struct {
	StripeAPIKey string

	BankName          string
	BankPaybillNumber string
	BankAccountNumber string
	BankAccountName   string
}

// PricingConfig carries the storefront pricing rules.
type PricingConfig struct {
	FreeShippingThresholdUSD float64
	FlatShippingUSD          float64
	TaxRate                  float64
}

// BootstrapConfig carries the admin account seeded at startup. Admin accounts
// cannot be created through the API, so the first one must come from here.
type BootstrapConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// BuildConfig carries build metadata injected by the release pipeline.
type BuildConfig struct {
	Version string
	GitSHA  string
	BuiltAt string
}

// Config is the root configuration assembled at startup.
type Config struct {
	Env            string
	HTTP           HTTPConfig
	Auth           AuthConfig
	Payments       PaymentsConfig
	Pricing        PricingConfig
	Bootstrap      BootstrapConfig
	Build          BuildConfig
	IdempotencyTTL time.Duration
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool { return c.Env == EnvProduction }

// ValidationError describes a configuration value that failed validation.
type ValidationError struct {
	Key    string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Key, e.Reason)
}

type loader struct {
	lookup func(string) (string, bool)
}

// Option customises Load behaviour.
type Option func(*loader)

// WithEnvMap overrides environment lookups, primarily for tests. Values in
// the map take precedence over the process environment.
func WithEnvMap(values map[string]string) Option {
	return func(l *loader) {
		base := l.lookup
		l.lookup = func(key string) (string, bool) {
			if v, ok := values[key]; ok {
				return v, true
			}
			return base(key)
		}
	}
}

// Load assembles the configuration from NOMADS_* environment variables,
// applying defaults and validating the result.
func Load(_ context.Context, opts ...Option) (Config, error) {
	l := &loader{lookup: os.LookupEnv}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	cfg := Config{
		Env: l.stringWithDefault("NOMADS_ENV", EnvLocal),
		HTTP: HTTPConfig{
			Addr:            l.stringWithDefault("NOMADS_HTTP_ADDR", ":8080"),
			ReadTimeout:     l.durationWithDefault("NOMADS_HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    l.durationWithDefault("NOMADS_HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:     l.durationWithDefault("NOMADS_HTTP_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: l.durationWithDefault("NOMADS_HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
			BasePath:        l.stringWithDefault("NOMADS_HTTP_BASE_PATH", "/api"),
		},
		Auth: AuthConfig{
			TokenSecret: l.stringWithDefault("NOMADS_AUTH_TOKEN_SECRET", ""),
			TokenTTL:    l.durationWithDefault("NOMADS_AUTH_TOKEN_TTL", 24*time.Hour),
			Issuer:      l.stringWithDefault("NOMADS_AUTH_ISSUER", "nomads-api"),
		},
		Payments: PaymentsConfig{
			StripeAPIKey:      l.stringWithDefault("NOMADS_STRIPE_API_KEY", ""),
			BankName:          l.stringWithDefault("NOMADS_BANK_NAME", "Equity Bank"),
			BankPaybillNumber: l.stringWithDefault("NOMADS_BANK_PAYBILL", "247247"),
			BankAccountNumber: l.stringWithDefault("NOMADS_BANK_ACCOUNT", "0748261019"),
			BankAccountName:   l.stringWithDefault("NOMADS_BANK_ACCOUNT_NAME", "Nomad Treasures"),
		},
		Pricing: PricingConfig{
			FreeShippingThresholdUSD: l.floatWithDefault("NOMADS_FREE_SHIPPING_THRESHOLD", 100),
			FlatShippingUSD:          l.floatWithDefault("NOMADS_FLAT_SHIPPING", 15),
			TaxRate:                  l.floatWithDefault("NOMADS_TAX_RATE", 0.08),
		},
		Bootstrap: BootstrapConfig{
			AdminName:     l.stringWithDefault("NOMADS_ADMIN_NAME", "Store Admin"),
			AdminEmail:    l.stringWithDefault("NOMADS_ADMIN_EMAIL", "admin@nomadtreasures.com"),
			AdminPassword: l.stringWithDefault("NOMADS_ADMIN_PASSWORD", ""),
		},
		Build: BuildConfig{
			Version: l.stringWithDefault("NOMADS_VERSION", "dev"),
			GitSHA:  l.stringWithDefault("NOMADS_GIT_SHA", ""),
			BuiltAt: l.stringWithDefault("NOMADS_BUILD_TIME", ""),
		},
		IdempotencyTTL: l.durationWithDefault("NOMADS_IDEMPOTENCY_TTL", 24*time.Hour),
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validate(cfg Config) error {
	switch cfg.Env {
	case EnvLocal, EnvStaging, EnvProduction:
	default:
		return ValidationError{Key: "NOMADS_ENV", Reason: fmt.Sprintf("unknown environment %q", cfg.Env)}
	}

	if strings.TrimSpace(cfg.HTTP.Addr) == "" {
		return ValidationError{Key: "NOMADS_HTTP_ADDR", Reason: "must not be empty"}
	}
	if !strings.HasPrefix(cfg.HTTP.BasePath, "/") {
		return ValidationError{Key: "NOMADS_HTTP_BASE_PATH", Reason: "must start with /"}
	}

	if cfg.Env != EnvLocal && strings.TrimSpace(cfg.Auth.TokenSecret) == "" {
		return ValidationError{Key: "NOMADS_AUTH_TOKEN_SECRET", Reason: "required outside local environment"}
	}
	if cfg.Env != EnvLocal && strings.TrimSpace(cfg.Bootstrap.AdminPassword) == "" {
		return ValidationError{Key: "NOMADS_ADMIN_PASSWORD", Reason: "required outside local environment"}
	}
	if cfg.Auth.TokenTTL <= 0 {
		return ValidationError{Key: "NOMADS_AUTH_TOKEN_TTL", Reason: "must be positive"}
	}

	if cfg.Pricing.TaxRate < 0 || cfg.Pricing.TaxRate >= 1 {
		return ValidationError{Key: "NOMADS_TAX_RATE", Reason: "must be in [0, 1)"}
	}
	if cfg.Pricing.FlatShippingUSD < 0 {
		return ValidationError{Key: "NOMADS_FLAT_SHIPPING", Reason: "must not be negative"}
	}
	if cfg.Pricing.FreeShippingThresholdUSD < 0 {
		return ValidationError{Key: "NOMADS_FREE_SHIPPING_THRESHOLD", Reason: "must not be negative"}
	}

	return nil
}

func (l *loader) stringWithDefault(key, fallback string) string {
	if raw, ok := l.lookup(key); ok {
		if value := strings.TrimSpace(raw); value != "" {
			return value
		}
	}
	return fallback
}

func (l *loader) durationWithDefault(key string, fallback time.Duration) time.Duration {
	raw, ok := l.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func (l *loader) floatWithDefault(key string, fallback float64) float64 {
	raw, ok := l.lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return value
}
