package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const (
	meterScope         = "github.com/pawplates/engine/internal/observability"
	defaultServiceName = "pawplates-engine"
	cardinalityLimit   = 2000
)

// latencyHistogramBoundaries are Prometheus-style buckets (seconds) for
// request and recommendation duration histograms.
var latencyHistogramBoundaries = []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5}

// EngineMetrics is the single metrics interface for the engine (HTTP,
// refresh pipeline, recommendation flows, rate limiting).
type EngineMetrics interface {
	RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration)
	RecordEmbeddingRefresh(ctx context.Context, outcome string)
	RecordRecommendation(ctx context.Context, flow, outcome string, duration time.Duration)
	RecordRateLimitRejection(ctx context.Context, action string)
}

// MeterProviderShutdown is the subset of the SDK MeterProvider needed for shutdown.
type MeterProviderShutdown interface {
	Shutdown(ctx context.Context) error
}

// MeterProviderConfig holds configuration for creating the MeterProvider and metrics.
type MeterProviderConfig struct {
	// ServiceName is used in the resource (default: pawplates-engine).
	ServiceName string
}

// NewMeterProvider creates a MeterProvider with a Prometheus exporter and
// returns the provider, an HTTP handler for /metrics, and EngineMetrics using
// the provider's Meter. Caller must call provider.Shutdown on exit. When
// metrics are disabled, pass nil for metrics at call sites.
func NewMeterProvider(_ context.Context, cfg MeterProviderConfig) (provider MeterProviderShutdown, metricsHandler http.Handler, metrics EngineMetrics, err error) {
	serviceNameVal := cfg.ServiceName
	if serviceNameVal == "" {
		serviceNameVal = defaultServiceName
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceNameVal),
	)

	reg := prometheus.NewRegistry()

	exporter, err := prometheusexporter.New(
		prometheusexporter.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
		sdkmetric.WithView(
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "http.server.duration"},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyHistogramBoundaries}},
			),
			sdkmetric.NewView(
				sdkmetric.Instrument{Name: "recommendation_duration_seconds"},
				sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: latencyHistogramBoundaries}},
			),
		),
	)
	provider = mp
	meter := mp.Meter(meterScope)

	metrics, err = newMetricsFromMeter(meter)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create metrics instruments: %w", err)
	}

	metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})

	return provider, metricsHandler, metrics, nil
}

func newMetricsFromMeter(meter metric.Meter) (*engineMetricsImpl, error) {
	requestCount, err := meter.Int64Counter(
		"http.server.request_count",
		metric.WithDescription("Total HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("request_count: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("http.server.duration: %w", err)
	}

	refreshes, err := meter.Int64Counter(
		"embedding_refreshes_total",
		metric.WithDescription("Embedding refresh outcomes"),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding_refreshes_total: %w", err)
	}

	recommendations, err := meter.Int64Counter(
		"recommendations_total",
		metric.WithDescription("Recommendation outcomes per flow"),
	)
	if err != nil {
		return nil, fmt.Errorf("recommendations_total: %w", err)
	}

	recommendationDuration, err := meter.Float64Histogram(
		"recommendation_duration_seconds",
		metric.WithDescription("Recommendation flow duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("recommendation_duration_seconds: %w", err)
	}

	rateLimitRejections, err := meter.Int64Counter(
		"rate_limit_rejections_total",
		metric.WithDescription("Requests rejected by the fixed-window limiter per action"),
	)
	if err != nil {
		return nil, fmt.Errorf("rate_limit_rejections_total: %w", err)
	}

	return &engineMetricsImpl{
		requestCount:        requestCount,
		requestDuration:     requestDuration,
		refreshes:           refreshes,
		recommendations:     recommendations,
		recommendationDur:   recommendationDuration,
		rateLimitRejections: rateLimitRejections,
	}, nil
}

type engineMetricsImpl struct {
	requestCount        metric.Int64Counter
	requestDuration     metric.Float64Histogram
	refreshes           metric.Int64Counter
	recommendations     metric.Int64Counter
	recommendationDur   metric.Float64Histogram
	rateLimitRejections metric.Int64Counter
}

func (m *engineMetricsImpl) RecordRequest(ctx context.Context, method, route, statusClass string, duration time.Duration) {
	attrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.String("status_class", statusClass),
	)
	m.requestCount.Add(ctx, 1, metric.WithAttributeSet(attrs))

	durAttrs := attribute.NewSet(
		attribute.String("method", method),
		attribute.String("route", route),
	)
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributeSet(durAttrs))
}

func (m *engineMetricsImpl) RecordEmbeddingRefresh(ctx context.Context, outcome string) {
	outcome = normalizeOutcome(outcome)
	m.refreshes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *engineMetricsImpl) RecordRecommendation(ctx context.Context, flow, outcome string, duration time.Duration) {
	flow = normalizeFlow(flow)
	outcome = normalizeOutcome(outcome)
	m.recommendations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
	m.recommendationDur.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.String("outcome", outcome),
	))
}

func (m *engineMetricsImpl) RecordRateLimitRejection(ctx context.Context, action string) {
	action = normalizeAction(action)
	m.rateLimitRejections.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
}

// normalizeFlow maps flow names to a bounded set for cardinality control.
func normalizeFlow(s string) string {
	switch s {
	case "profile", "collaborative":
		return s
	default:
		return "unknown"
	}
}

// normalizeOutcome maps outcomes to a bounded set.
func normalizeOutcome(s string) string {
	switch s {
	case "success", "invalid_input", "not_found", "rate_limited", "external_error":
		return s
	default:
		return "unknown"
	}
}

// normalizeAction maps limiter actions to a bounded set.
func normalizeAction(s string) string {
	switch s {
	case "embedding-update", "embedding-refresh", "recommend-profile", "assistant", "meal-history", "favorites":
		return s
	default:
		return "unknown"
	}
}
