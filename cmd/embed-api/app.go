package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/formbricks/embedder/internal/api/handlers"
	"github.com/formbricks/embedder/internal/api/middleware"
	"github.com/formbricks/embedder/internal/config"
	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/embeddings"
	"github.com/formbricks/embedder/internal/observability"
	"github.com/formbricks/embedder/internal/service"
	"github.com/formbricks/embedder/pkg/cache"
)

const serviceName = "embed-api"

const (
	readTimeout  = 15 * time.Second
	writeTimeout = 60 * time.Second
	idleTimeout  = 60 * time.Second
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg            *config.Config
	server         *http.Server
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
}

// NewApp wires the embedding client, cache, observability and HTTP server from cfg.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.APIKey == "" {
		return nil, embederrors.NewConfigurationError("API_KEY", "API_KEY environment variable is required in API mode")
	}

	meterProvider, metricsHandler, err := observability.NewMeterProvider(ctx, cfg, serviceName)
	if err != nil {
		return nil, fmt.Errorf("create meter provider: %w", err)
	}

	if meterProvider == nil {
		slog.Warn("metrics not enabled (OTEL_METRICS_EXPORTER empty or unset)")
	}

	tracerProvider, err := observability.NewTracerProvider(ctx, cfg, serviceName, nil)
	if err != nil {
		if err2 := observability.ShutdownMeterProvider(context.Background(), meterProvider); err2 != nil {
			slog.Error("shutdown meter provider after tracer provider error", "error", err2)
		}

		return nil, fmt.Errorf("create tracer provider: %w", err)
	}

	if tracerProvider != nil {
		otel.SetTracerProvider(tracerProvider)
	} else {
		slog.Warn("tracing not enabled (OTEL_TRACES_EXPORTER empty or unset)")
	}

	svc, err := newEmbeddingService(ctx, cfg, meterProvider)
	if err != nil {
		if err2 := shutdownObservability(context.Background(), tracerProvider, meterProvider); err2 != nil {
			slog.Error("shutdown observability after embedding service error", "error", err2)
		}

		return nil, err
	}

	slog.Info("embeddings enabled",
		"provider", svc.Provider(),
		"model", svc.Model(),
		"dimensions", cfg.EmbeddingDimensions,
		"cache_size", cfg.EmbeddingCacheSize,
	)

	server := newHTTPServer(cfg, handlers.NewHealthHandler(), handlers.NewEmbeddingsHandler(svc),
		metricsHandler, meterProvider, tracerProvider)

	return &App{
		cfg:            cfg,
		server:         server,
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
	}, nil
}

// newEmbeddingService builds the provider client, wraps it with the cache when enabled
// and attaches metrics when a meter provider exists.
func newEmbeddingService(ctx context.Context, cfg *config.Config, meterProvider *sdkmetric.MeterProvider) (*service.EmbeddingService, error) {
	client, err := embeddings.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	var (
		embeddingMetrics observability.EmbeddingMetrics
		cacheMetrics     observability.CacheMetrics
	)

	if meterProvider != nil {
		meter := meterProvider.Meter(observability.MeterScope)

		if embeddingMetrics, err = observability.NewEmbeddingMetrics(meter); err != nil {
			return nil, fmt.Errorf("create embedding metrics: %w", err)
		}

		if cacheMetrics, err = observability.NewCacheMetrics(meter); err != nil {
			return nil, fmt.Errorf("create cache metrics: %w", err)
		}
	}

	if cfg.EmbeddingCacheSize > 0 {
		vectors, err := cache.NewLoaderCache[[]float32](cfg.EmbeddingCacheSize,
			cache.WithLoadTimeout(cacheLoadTimeout(cfg)))
		if err != nil {
			return nil, fmt.Errorf("create embedding cache: %w", err)
		}

		client = service.NewCachingClient(client, vectors, cacheMetrics)
	}

	return service.NewEmbeddingService(client,
		service.WithNormalize(cfg.EmbeddingNormalize),
		service.WithMetrics(embeddingMetrics),
	), nil
}

// cacheLoadTimeout bounds a shared provider call that outlives its callers. No response can be
// written after writeTimeout, so that is the bound when no request timeout is configured.
func cacheLoadTimeout(cfg *config.Config) time.Duration {
	if cfg.EmbeddingRequestTimeout > 0 {
		return cfg.EmbeddingRequestTimeout
	}

	return writeTimeout
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health and /metrics, API key on /v1/).
// Handler chain: RequestID -> otelhttp(Logging(mux)) so access logs get trace_id/span_id from context.
func newHTTPServer(
	cfg *config.Config,
	health *handlers.HealthHandler,
	embeddingsHandler *handlers.EmbeddingsHandler,
	metricsHandler http.Handler,
	meterProvider *sdkmetric.MeterProvider,
	tracerProvider *sdktrace.TracerProvider,
) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", health.Check)

	if metricsHandler != nil {
		public.Handle("GET /metrics", metricsHandler)
	}

	protected := http.NewServeMux()
	protected.HandleFunc("POST /v1/embeddings", embeddingsHandler.Create)

	protectedWithAuth := middleware.Auth(cfg.APIKey)(middleware.MaxBody(cfg.MaxRequestBodyBytes)(protected))
	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedWithAuth)
	mux.Handle("/", public)

	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks and scrapes to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health" && r.URL.Path != "/metrics"
		}),
	}
	if meterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(meterProvider))
	}

	if tracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(tracerProvider))
	}

	inner := middleware.Logging(mux)
	handler := otelhttp.NewHandler(inner, serviceName, otelOpts...)
	handler = middleware.RequestID(handler)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Handler returns the server's root handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run starts the HTTP server, then blocks until ctx is cancelled (e.g. signal) or the server fails.
// Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr <- fmt.Errorf("server: %w", err)
		}
	}()

	select {
	case err := <-runErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// shutdownObservability shuts down tracer and meter providers. Logs secondary errors, returns the first.
func shutdownObservability(ctx context.Context, tracer *sdktrace.TracerProvider, meter *sdkmetric.MeterProvider) error {
	var first error

	if err := observability.ShutdownTracerProvider(ctx, tracer); err != nil {
		first = err
	}

	if err := observability.ShutdownMeterProvider(ctx, meter); err != nil {
		if first == nil {
			first = err
		} else {
			slog.Error("shutdown meter provider", "error", err)
		}
	}

	return first
}

// Shutdown stops the server, then flushes observability. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) (err error) {
	defer func() {
		obsErr := shutdownObservability(ctx, a.tracerProvider, a.meterProvider)
		if err == nil {
			err = obsErr
		} else if obsErr != nil {
			slog.Error("shutdown observability", "error", obsErr)
		}
	}()

	if err = a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}

	return nil
}
