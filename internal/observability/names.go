// Package observability provides OpenTelemetry metrics, tracing and log correlation for the embedder.
package observability

import "github.com/formbricks/embedder/internal/embederrors"

// Metric names (Prometheus / OpenTelemetry).
const (
	MetricNameRequests        = "embedder_requests_total"
	MetricNameRequestDuration = "embedder_request_duration_seconds"
	MetricNameErrors          = "embedder_errors_total"
	MetricNameCacheHits       = "embedder_cache_hits_total"
	MetricNameCacheMisses     = "embedder_cache_misses_total"
)

// Attribute keys.
const (
	AttrProvider = "provider"
	AttrStatus   = "status"
	AttrReason   = "reason"
)

// Request statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error reasons recorded locally, in addition to the remote reasons from embederrors.
const (
	ReasonValidation     = "validation"
	ReasonConfiguration  = "configuration"
	ReasonAuthentication = "authentication"
	ReasonCanceled       = "canceled"
)

// AllowedProviders for the provider attribute.
var AllowedProviders = map[string]bool{
	"google": true,
	"openai": true,
	"mock":   true,
}

// AllowedErrorReasons for embedder_errors_total.
var AllowedErrorReasons = map[string]bool{
	ReasonValidation:                    true,
	ReasonConfiguration:                 true,
	ReasonAuthentication:                true,
	ReasonCanceled:                      true,
	embederrors.ReasonNetwork:           true,
	embederrors.ReasonTimeout:           true,
	embederrors.ReasonInvalidModel:      true,
	embederrors.ReasonQuotaExceeded:     true,
	embederrors.ReasonInvalidInput:      true,
	embederrors.ReasonServerError:       true,
	embederrors.ReasonEmptyResponse:     true,
	embederrors.ReasonDimensionMismatch: true,
	embederrors.ReasonUnknown:           true,
}

// NormalizeProvider returns provider if allowed, otherwise "other".
func NormalizeProvider(provider string) string {
	if AllowedProviders[provider] {
		return provider
	}

	return "other"
}

// NormalizeReason returns reason if in allowed, otherwise "other".
func NormalizeReason(reason string, allowed map[string]bool) string {
	if allowed[reason] {
		return reason
	}

	return "other"
}

// NormalizeStatus returns status if it is success or error, otherwise "other".
func NormalizeStatus(status string) string {
	switch status {
	case StatusSuccess, StatusError:
		return status
	default:
		return "other"
	}
}
