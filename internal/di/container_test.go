package di

import (
	"context"
	"testing"

	"github.com/afripicx/nomads/internal/domain"
	"github.com/afripicx/nomads/internal/platform/config"
	"github.com/afripicx/nomads/internal/repositories/memory"
	"github.com/afripicx/nomads/internal/services"
)

func newTestConfig(t *testing.T, overrides map[string]string) config.Config {
	t.Helper()
	env := map[string]string{"NOMADS_ENV": "local"}
	for key, value := range overrides {
		env[key] = value
	}
	cfg, err := config.Load(context.Background(), config.WithEnvMap(env))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewContainerRequiresRegistry(t *testing.T) {
	cfg := newTestConfig(t, nil)

	if _, err := NewContainer(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestNewContainerWiresServices(t *testing.T) {
	cfg := newTestConfig(t, nil)

	container, err := NewContainer(context.Background(), cfg, memory.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	svc := container.Services
	if svc.Catalog == nil || svc.Cart == nil || svc.Checkout == nil || svc.Orders == nil ||
		svc.Payments == nil || svc.Users == nil || svc.Admin == nil || svc.Supplier == nil ||
		svc.Contact == nil || svc.System == nil {
		t.Fatalf("expected every service wired, got %+v", svc)
	}
	if container.Authenticator == nil {
		t.Fatal("expected authenticator")
	}
	if container.Tokens == nil {
		t.Fatal("expected token service")
	}
}

func TestNewContainerSeedsBootstrapAdmin(t *testing.T) {
	cfg := newTestConfig(t, map[string]string{
		"NOMADS_ADMIN_EMAIL":    "owner@example.com",
		"NOMADS_ADMIN_PASSWORD": "open sesame",
	})

	container, err := NewContainer(context.Background(), cfg, memory.NewRegistry(), nil)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	session, err := container.Services.Users.Login(context.Background(), services.LoginCommand{
		Email:    "owner@example.com",
		Password: "open sesame",
	})
	if err != nil {
		t.Fatalf("login as seeded admin: %v", err)
	}
	if session.User.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", session.User.Role)
	}
	if session.Token == "" {
		t.Fatal("expected session token")
	}
}

func TestNewContainerSeedAdminIsIdempotent(t *testing.T) {
	cfg := newTestConfig(t, map[string]string{
		"NOMADS_ADMIN_PASSWORD": "open sesame",
	})
	registry := memory.NewRegistry()

	if _, err := NewContainer(context.Background(), cfg, registry, nil); err != nil {
		t.Fatalf("first NewContainer: %v", err)
	}
	if _, err := NewContainer(context.Background(), cfg, registry, nil); err != nil {
		t.Fatalf("second NewContainer: %v", err)
	}

	admin, err := registry.Users().FindByEmail(context.Background(), cfg.Bootstrap.AdminEmail)
	if err != nil {
		t.Fatalf("find seeded admin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %q", admin.Role)
	}
}
