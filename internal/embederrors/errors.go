// Package embederrors provides sentinel and typed errors for the embedding client.
package embederrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Reasons attached to RemoteServiceError. Bounded so they can be used as metric attributes.
const (
	ReasonNetwork           = "network"
	ReasonTimeout           = "timeout"
	ReasonInvalidModel      = "invalid_model"
	ReasonQuotaExceeded     = "quota_exceeded"
	ReasonInvalidInput      = "invalid_input"
	ReasonServerError       = "server_error"
	ReasonEmptyResponse     = "empty_response"
	ReasonDimensionMismatch = "dimension_mismatch"
	ReasonUnknown           = "unknown"
)

// ErrConfiguration is the sentinel for configuration errors.
var ErrConfiguration = &ConfigurationError{}

// ConfigurationError is returned when local configuration is missing or unusable
// (no credential, unsupported provider, invalid dimensions).
type ConfigurationError struct {
	Key     string
	Message string
}

// NewConfigurationError creates a ConfigurationError for the given key.
func NewConfigurationError(key, message string) *ConfigurationError {
	return &ConfigurationError{Key: key, Message: message}
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Key != "" {
		return "invalid configuration: " + e.Key
	}

	return "configuration error"
}

// Is implements the error interface for error comparison.
func (e *ConfigurationError) Is(target error) bool {
	_, ok := target.(*ConfigurationError)

	return ok
}

// ErrValidation is the sentinel for input validation errors.
var ErrValidation = &ValidationError{}

// ValidationError is returned when input fails local validation (e.g. empty text).
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError creates a ValidationError with a custom message.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}

	if e.Field != "" {
		return "validation failed for field: " + e.Field
	}

	return "validation error"
}

// Is implements the error interface for error comparison.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)

	return ok
}

// ErrRemoteService is the sentinel for any failure reported by, or while reaching, the embedding service.
var ErrRemoteService = &RemoteServiceError{}

// RemoteServiceError describes a failed call to the embedding service.
type RemoteServiceError struct {
	Provider   string
	Model      string
	StatusCode int
	Reason     string
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *RemoteServiceError) Error() string {
	var b strings.Builder

	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}

	reason := e.Reason
	if reason == "" {
		reason = ReasonUnknown
	}

	b.WriteString(strings.ReplaceAll(reason, "_", " "))

	if e.Model != "" {
		fmt.Fprintf(&b, " (model %q", e.Model)
		if e.StatusCode != 0 {
			fmt.Fprintf(&b, ", status %d", e.StatusCode)
		}

		b.WriteString(")")
	} else if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}

	switch {
	case e.Message != "":
		b.WriteString(": ")
		b.WriteString(e.Message)
	case e.Err != nil:
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}

	return b.String()
}

// Unwrap returns the underlying SDK or transport error.
func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *RemoteServiceError) Is(target error) bool {
	_, ok := target.(*RemoteServiceError)

	return ok
}

// ErrAuthentication is the sentinel for rejected credentials.
var ErrAuthentication = &AuthenticationError{}

// AuthenticationError is returned when the embedding service rejects the credential.
// It also matches ErrRemoteService: the rejection is only observable remotely.
type AuthenticationError struct {
	Provider   string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	msg := "authentication failed"
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}

	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}

	if e.Message != "" {
		msg += ": " + e.Message
	}

	return msg
}

// Unwrap returns the underlying SDK error.
func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// Is implements the error interface for error comparison.
func (e *AuthenticationError) Is(target error) bool {
	switch target.(type) {
	case *AuthenticationError, *RemoteServiceError:
		return true
	default:
		return false
	}
}

// FromStatus maps an HTTP-level failure reported by a provider SDK onto the error taxonomy.
func FromStatus(provider, model string, status int, message string, cause error) error {
	lower := strings.ToLower(message)

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &AuthenticationError{Provider: provider, StatusCode: status, Message: message, Err: cause}
	case status == http.StatusBadRequest && (strings.Contains(lower, "api key") || strings.Contains(lower, "api_key")):
		// Gemini reports an invalid key as 400 INVALID_ARGUMENT / API_KEY_INVALID.
		return &AuthenticationError{Provider: provider, StatusCode: status, Message: message, Err: cause}
	}

	reason := ReasonUnknown

	switch {
	case status == http.StatusNotFound:
		reason = ReasonInvalidModel
	case status == http.StatusBadRequest && isInputLimitMessage(lower):
		// Token limit messages name the model but describe the input.
		reason = ReasonInvalidInput
	case status == http.StatusBadRequest && isUnknownModelMessage(lower):
		reason = ReasonInvalidModel
	case status == http.StatusTooManyRequests:
		reason = ReasonQuotaExceeded
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		reason = ReasonInvalidInput
	case status >= http.StatusInternalServerError:
		reason = ReasonServerError
	}

	return &RemoteServiceError{
		Provider:   provider,
		Model:      model,
		StatusCode: status,
		Reason:     reason,
		Message:    message,
		Err:        cause,
	}
}

func isInputLimitMessage(lower string) bool {
	return containsAny(lower, "token", "context length", "exceeds", "too long")
}

func isUnknownModelMessage(lower string) bool {
	return strings.Contains(lower, "model") && containsAny(lower, "not found", "does not exist", "unknown")
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}

	return false
}

// FromTransport wraps a failure that never produced an HTTP response (DNS, refused
// connection, deadline) as a RemoteServiceError.
func FromTransport(provider, model string, err error) error {
	reason := ReasonNetwork

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		reason = ReasonTimeout
	}

	return &RemoteServiceError{Provider: provider, Model: model, Reason: reason, Err: err}
}

// Reason returns the RemoteServiceError reason for err, "authentication" for rejected
// credentials, or "" when err is not a remote-service error.
func Reason(err error) string {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return "authentication"
	}

	var remoteErr *RemoteServiceError
	if errors.As(err, &remoteErr) {
		if remoteErr.Reason == "" {
			return ReasonUnknown
		}

		return remoteErr.Reason
	}

	return ""
}
