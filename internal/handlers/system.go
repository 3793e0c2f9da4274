package handlers

import (
	"net/http"
	"time"

	"github.com/afripicx/nomads/internal/platform/httpx"
	"github.com/afripicx/nomads/internal/services"
)

// SystemHandlers serves liveness, readiness, and build-info endpoints.
type SystemHandlers struct {
	system    services.SystemService
	startedAt time.Time
}

// NewSystemHandlers constructs the system endpoints. A nil service degrades
// readiness and info to static responses, which keeps /healthz usable while
// the rest of the container boots.
func NewSystemHandlers(system services.SystemService) *SystemHandlers {
	return &SystemHandlers{
		system:    system,
		startedAt: time.Now().UTC(),
	}
}

// Healthz reports process liveness only. It never consults dependencies.
func (h *SystemHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"uptime":    time.Since(h.startedAt).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Readyz probes dependencies and answers 503 while any probe fails.
func (h *SystemHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("not_ready", "system service is unavailable", http.StatusServiceUnavailable))
		return
	}

	report, err := h.system.HealthReport(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("not_ready", "readiness probe failed", http.StatusServiceUnavailable))
		return
	}

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSONResponse(w, status, report)
}

// Info reports the service name, version, and build metadata.
func (h *SystemHandlers) Info(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.system == nil {
		httpx.WriteError(ctx, w, httpx.NewError("system_service_unavailable", "system service is unavailable", http.StatusServiceUnavailable))
		return
	}

	info, err := h.system.Info(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("system_error", "failed to collect build info", http.StatusInternalServerError))
		return
	}
	writeJSONResponse(w, http.StatusOK, info)
}
