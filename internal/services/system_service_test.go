package services

import (
	"context"
	"testing"
	"time"

	"github.com/afripicx/nomads/internal/repositories/memory"
)

func TestSystemServiceReportsHealthAndInfo(t *testing.T) {
	now := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	service, err := NewSystemService(SystemServiceDeps{
		Registry: memory.NewRegistry(),
		Env:      "local",
		Version:  "1.2.3",
		Clock:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewSystemService: %v", err)
	}

	report, err := service.HealthReport(context.Background())
	if err != nil {
		t.Fatalf("HealthReport: %v", err)
	}
	if report.Status != "ok" {
		t.Fatalf("status = %q, want ok", report.Status)
	}
	if report.Checks["repositories"] != "ok" {
		t.Fatalf("repositories check = %q, want ok", report.Checks["repositories"])
	}

	info, err := service.Info(context.Background())
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.Name != "nomads-api" || info.Version != "1.2.3" || info.Env != "local" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if !info.StartedAt.Equal(now) || !info.Now.Equal(now) {
		t.Fatalf("timestamps not from injected clock: %+v", info)
	}
}
