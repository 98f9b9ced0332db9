package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	prometheusexporter "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.27.0"

	"github.com/formbricks/embedder/internal/config"
)

const (
	defaultServiceName   = "embedder"
	cardinalityLimit     = 2000
	metricExportInterval = 60 * time.Second
)

// newResource returns a resource carrying serviceName (default "embedder").
// A single resource avoids Schema URL conflicts when merging with resource.Default().
func newResource(serviceName string) *resource.Resource {
	if serviceName == "" {
		serviceName = defaultServiceName
	}

	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)
}

// NewMeterProvider creates a MeterProvider for cfg.OtelMetricsExporter.
// "prometheus" also returns the /metrics handler; "otlp" pushes periodically and returns a nil handler.
// Empty or unknown exporters return (nil, nil, nil).
func NewMeterProvider(ctx context.Context, cfg *config.Config, serviceName string) (*sdkmetric.MeterProvider, http.Handler, error) {
	if cfg == nil {
		return nil, nil, nil
	}

	var (
		reader  sdkmetric.Reader
		handler http.Handler
	)

	switch cfg.OtelMetricsExporter {
	case "prometheus":
		reg := prometheus.NewRegistry()

		exporter, err := prometheusexporter.New(prometheusexporter.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}

		reader = exporter
		handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	case "otlp":
		// SDK reads OTEL_EXPORTER_OTLP_ENDPOINT (and scheme/insecure) from env.
		exp, err := otlpmetrichttp.New(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create OTLP metric exporter: %w", err)
		}

		reader = sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(metricExportInterval))
	default:
		return nil, nil, nil
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(newResource(serviceName)),
		sdkmetric.WithReader(reader),
		sdkmetric.WithCardinalityLimit(cardinalityLimit),
	)

	return provider, handler, nil
}

// ShutdownMeterProvider flushes and shuts down the MeterProvider. Safe to call with nil.
func ShutdownMeterProvider(ctx context.Context, provider *sdkmetric.MeterProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("meter provider shutdown: %w", err)
	}

	return nil
}

// NewTracerProvider creates a TracerProvider for cfg.OtelTracesExporter ("otlp" or "stdout").
// stdout spans are written to w, so the CLI can keep them off the vector output.
// Empty or unknown exporters return (nil, nil).
func NewTracerProvider(ctx context.Context, cfg *config.Config, serviceName string, w io.Writer) (*sdktrace.TracerProvider, error) {
	if cfg == nil {
		//nolint:nilnil // intentional: tracing disabled, caller checks for nil
		return nil, nil
	}

	var (
		exp sdktrace.SpanExporter
		err error
	)

	switch cfg.OtelTracesExporter {
	case "otlp":
		exp, err = newOTLPTraceExporter(ctx)
	case "stdout":
		exp, err = newStdoutTraceExporter(w)
	default:
		//nolint:nilnil // tracing disabled or unknown exporter, caller checks for nil
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithResource(newResource(serviceName)),
		sdktrace.WithSampler(newSampler()),
		sdktrace.WithBatcher(exp),
	), nil
}

// ShutdownTracerProvider flushes and shuts down the TracerProvider. Safe to call with nil.
func ShutdownTracerProvider(ctx context.Context, provider *sdktrace.TracerProvider) error {
	if provider == nil {
		return nil
	}

	if err := provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("tracer provider shutdown: %w", err)
	}

	return nil
}
