package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// RequestMetrics records per-request counters and latency through the global
// OpenTelemetry meter provider. A nil receiver disables recording.
type RequestMetrics struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewRequestMetrics registers the HTTP server instruments.
func NewRequestMetrics() (*RequestMetrics, error) {
	meter := otel.Meter("github.com/afripicx/nomads/internal/platform/observability")

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Completed HTTP requests"))
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}

	return &RequestMetrics{requests: requests, latency: latency}, nil
}

func (m *RequestMetrics) record(ctx context.Context, method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	if m.requests != nil {
		m.requests.Add(ctx, 1, attrs)
	}
	if m.latency != nil {
		m.latency.Record(ctx, float64(latency)/float64(time.Millisecond), attrs)
	}
}
