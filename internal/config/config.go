// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/formbricks/embedder/internal/embederrors"
)

// Supported embedding providers.
const (
	ProviderGoogle = "google"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

const defaultMaxRequestBodyBytes = 1 << 20

// Config holds all application configuration.
type Config struct {
	// Embedding provider
	EmbeddingProvider       string
	EmbeddingProviderAPIKey string
	EmbeddingModel          string
	EmbeddingDimensions     int
	EmbeddingNormalize      bool
	EmbeddingBaseURL        string
	// EmbeddingRequestTimeout bounds one provider call; 0 means no timeout.
	EmbeddingRequestTimeout time.Duration

	LogLevel string

	// API mode only
	Port                string
	APIKey              string
	EmbeddingCacheSize  int
	MaxRequestBodyBytes int64

	// Observability: empty disables the corresponding signal.
	OtelTracesExporter  string
	OtelMetricsExporter string
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsBool retrieves an environment variable as a bool or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration retrieves an environment variable as a time.Duration or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}

	return ""
}

// Overrides replace individual environment values, e.g. from CLI flags. Zero values keep the
// environment's setting.
type Overrides struct {
	Provider   string
	Model      string
	Dimensions *int
	Normalize  *bool
}

// Load reads configuration from environment variables and returns a Config struct.
// It automatically loads .env file if it exists.
// The credential is read from EMBEDDING_PROVIDER_API_KEY, falling back to GEMINI_API_KEY and
// GOOGLE_API_KEY for the google provider only; it is required for every provider except mock. Its value is not checked here,
// a bad key only surfaces when the provider rejects it.
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides is Load with o applied before validation.
func LoadWithOverrides(o Overrides) (*Config, error) {
	// Load .env file if it exists. Skip logging when absent (e.g. env from secrets/parameter store).
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	provider := getEnv("EMBEDDING_PROVIDER", ProviderGoogle)
	if o.Provider != "" {
		provider = o.Provider
	}

	provider = strings.ToLower(strings.TrimSpace(provider))
	if !IsSupportedProvider(provider) {
		return nil, embederrors.NewConfigurationError("EMBEDDING_PROVIDER",
			"EMBEDDING_PROVIDER must be one of google, openai, mock (got "+strconv.Quote(provider)+")")
	}

	apiKey := os.Getenv("EMBEDDING_PROVIDER_API_KEY")
	if provider == ProviderGoogle && apiKey == "" {
		apiKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}

	if apiKey == "" && provider != ProviderMock {
		msg := "EMBEDDING_PROVIDER_API_KEY environment variable is required but not set"
		if provider == ProviderGoogle {
			msg = "EMBEDDING_PROVIDER_API_KEY (or GEMINI_API_KEY) environment variable is required but not set"
		}

		return nil, embederrors.NewConfigurationError("EMBEDDING_PROVIDER_API_KEY", msg)
	}

	dimensions := getEnvAsInt("EMBEDDING_DIMENSIONS", 0)
	if o.Dimensions != nil {
		dimensions = *o.Dimensions
	}

	if dimensions < 0 {
		return nil, embederrors.NewConfigurationError("EMBEDDING_DIMENSIONS",
			"EMBEDDING_DIMENSIONS must be zero (model default) or a positive integer")
	}

	timeout := getEnvAsDuration("EMBEDDING_REQUEST_TIMEOUT", 0)
	if timeout < 0 {
		return nil, embederrors.NewConfigurationError("EMBEDDING_REQUEST_TIMEOUT",
			"EMBEDDING_REQUEST_TIMEOUT must not be negative")
	}

	cacheSize := getEnvAsInt("EMBEDDING_CACHE_SIZE", 1000)
	if cacheSize < 0 {
		return nil, embederrors.NewConfigurationError("EMBEDDING_CACHE_SIZE",
			"EMBEDDING_CACHE_SIZE must be zero (disabled) or a positive integer")
	}

	maxBody := int64(getEnvAsInt("MAX_REQUEST_BODY_BYTES", defaultMaxRequestBodyBytes))

	model := os.Getenv("EMBEDDING_MODEL")
	if o.Model != "" {
		model = o.Model
	}

	normalize := getEnvAsBool("EMBEDDING_NORMALIZE", false)
	if o.Normalize != nil {
		normalize = *o.Normalize
	}

	cfg := &Config{
		EmbeddingProvider:       provider,
		EmbeddingProviderAPIKey: apiKey,
		EmbeddingModel:          model,
		EmbeddingDimensions:     dimensions,
		EmbeddingNormalize:      normalize,
		EmbeddingBaseURL:        os.Getenv("EMBEDDING_BASE_URL"),
		EmbeddingRequestTimeout: timeout,

		LogLevel: getEnv("LOG_LEVEL", "info"),

		Port:                getEnv("PORT", "8080"),
		APIKey:              os.Getenv("API_KEY"),
		EmbeddingCacheSize:  cacheSize,
		MaxRequestBodyBytes: maxBody,

		OtelTracesExporter:  strings.ToLower(os.Getenv("OTEL_TRACES_EXPORTER")),
		OtelMetricsExporter: strings.ToLower(os.Getenv("OTEL_METRICS_EXPORTER")),
	}

	return cfg, nil
}

// IsSupportedProvider reports whether name is a known embedding provider.
func IsSupportedProvider(name string) bool {
	switch name {
	case ProviderGoogle, ProviderOpenAI, ProviderMock:
		return true
	default:
		return false
	}
}
