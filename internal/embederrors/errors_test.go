package embederrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	cause := errors.New("sdk error")

	tests := []struct {
		name       string
		status     int
		message    string
		wantAuth   bool
		wantReason string
	}{
		{"401 is authentication", http.StatusUnauthorized, "unauthorized", true, ""},
		{"403 is authentication", http.StatusForbidden, "permission denied", true, ""},
		{"400 with api key message is authentication", http.StatusBadRequest, "API key not valid. Please pass a valid API key.", true, ""},
		{"404 is invalid model", http.StatusNotFound, "models/nope is not found", false, ReasonInvalidModel},
		{"400 mentioning model is invalid model", http.StatusBadRequest, "unknown model: nope", false, ReasonInvalidModel},
		{"400 model does not exist is invalid model", http.StatusBadRequest, "The model `nope` does not exist", false, ReasonInvalidModel},
		{"400 openai context length is invalid input", http.StatusBadRequest,
			"This model's maximum context length is 8192 tokens, however you requested 9000 tokens (9000 in your prompt; 0 for the completion). Please reduce your prompt; or completion length.",
			false, ReasonInvalidInput},
		{"400 gemini token limit is invalid input", http.StatusBadRequest,
			"The input token count (3000) exceeds the maximum number of tokens allowed (2048) for model gemini-embedding-001.",
			false, ReasonInvalidInput},
		{"429 is quota", http.StatusTooManyRequests, "resource exhausted", false, ReasonQuotaExceeded},
		{"400 other is invalid input", http.StatusBadRequest, "contents must not be empty", false, ReasonInvalidInput},
		{"503 is server error", http.StatusServiceUnavailable, "overloaded", false, ReasonServerError},
		{"418 is unknown", http.StatusTeapot, "", false, ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus("google", "gemini-embedding-001", tt.status, tt.message, cause)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrRemoteService)
			assert.ErrorIs(t, err, cause)

			if tt.wantAuth {
				assert.ErrorIs(t, err, ErrAuthentication)
				assert.Equal(t, "authentication", Reason(err))

				return
			}

			assert.NotErrorIs(t, err, ErrAuthentication)
			assert.Equal(t, tt.wantReason, Reason(err))

			var remoteErr *RemoteServiceError
			require.ErrorAs(t, err, &remoteErr)
			assert.Equal(t, tt.status, remoteErr.StatusCode)
			assert.Equal(t, "gemini-embedding-001", remoteErr.Model)
		})
	}
}

func TestFromTransport(t *testing.T) {
	t.Run("deadline is timeout", func(t *testing.T) {
		err := FromTransport("openai", "m", fmt.Errorf("post: %w", context.DeadlineExceeded))

		assert.ErrorIs(t, err, ErrRemoteService)
		assert.Equal(t, ReasonTimeout, Reason(err))
	})

	t.Run("other failure is network", func(t *testing.T) {
		err := FromTransport("openai", "m", errors.New("connection refused"))

		assert.ErrorIs(t, err, ErrRemoteService)
		assert.Equal(t, ReasonNetwork, Reason(err))
	})
}

func TestRemoteServiceError_Error(t *testing.T) {
	err := &RemoteServiceError{
		Provider:   "google",
		Model:      "nope",
		StatusCode: http.StatusNotFound,
		Reason:     ReasonInvalidModel,
		Message:    "model not found",
	}

	assert.Equal(t, `google: invalid model (model "nope", status 404): model not found`, err.Error())
}

func TestSentinels_doNotCrossMatch(t *testing.T) {
	validation := NewValidationError("text", "text is required")
	config := NewConfigurationError("EMBEDDING_PROVIDER_API_KEY", "missing credential")

	assert.ErrorIs(t, validation, ErrValidation)
	assert.NotErrorIs(t, validation, ErrRemoteService)
	assert.ErrorIs(t, config, ErrConfiguration)
	assert.NotErrorIs(t, config, ErrValidation)
	assert.Equal(t, "", Reason(validation))

	remote := &RemoteServiceError{Reason: ReasonNetwork}
	assert.NotErrorIs(t, remote, ErrAuthentication)
}
