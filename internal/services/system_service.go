package services

import (
	"context"
	"errors"
	"time"

	"github.com/afripicx/nomads/internal/repositories"
)

const serviceName = "nomads-api"

// SystemServiceDeps bundles collaborators required to construct a system service.
type SystemServiceDeps struct {
	Registry repositories.Registry
	Env      string
	Version  string
	GitSHA   string
	BuiltAt  string
	Clock    func() time.Time
}

type systemService struct {
	registry  repositories.Registry
	env       string
	version   string
	gitSHA    string
	builtAt   string
	clock     func() time.Time
	startedAt time.Time
}

// NewSystemService constructs the health and build-info service.
func NewSystemService(deps SystemServiceDeps) (SystemService, error) {
	if deps.Registry == nil {
		return nil, errors.New("system service: repository registry is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	utc := func() time.Time {
		return clock().UTC()
	}

	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return &systemService{
		registry:  deps.Registry,
		env:       deps.Env,
		version:   version,
		gitSHA:    deps.GitSHA,
		builtAt:   deps.BuiltAt,
		clock:     utc,
		startedAt: utc(),
	}, nil
}

// HealthReport probes each dependency and reports per-check outcomes. The
// overall status is "ok" only when every probe passes.
func (s *systemService) HealthReport(ctx context.Context) (HealthReport, error) {
	report := HealthReport{
		Status: "ok",
		Checks: map[string]string{},
	}

	if _, err := s.registry.Products().List(ctx, ""); err != nil {
		report.Status = "degraded"
		report.Checks["repositories"] = err.Error()
	} else {
		report.Checks["repositories"] = "ok"
	}

	return report, nil
}

func (s *systemService) Info(ctx context.Context) (SystemInfo, error) {
	return SystemInfo{
		Name:      serviceName,
		Version:   s.version,
		GitSHA:    s.gitSHA,
		BuiltAt:   s.builtAt,
		Env:       s.env,
		StartedAt: s.startedAt,
		Now:       s.clock(),
	}, nil
}
