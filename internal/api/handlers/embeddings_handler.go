// Package handlers implements the HTTP handlers of the embedding API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/formbricks/embedder/internal/api/response"
	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/models"
)

// Embedder is the service behind POST /v1/embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (*models.Embedding, error)
}

// EmbeddingsHandler handles embedding requests.
type EmbeddingsHandler struct {
	embedder Embedder
}

// NewEmbeddingsHandler creates a new embeddings handler.
func NewEmbeddingsHandler(embedder Embedder) *EmbeddingsHandler {
	return &EmbeddingsHandler{embedder: embedder}
}

// Create handles POST /v1/embeddings with body {"text": "..."}.
func (h *EmbeddingsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateEmbeddingRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondRequestEntityTooLarge(w)

			return
		}

		if errors.Is(err, io.EOF) {
			response.RespondBadRequest(w, "request body is required")

			return
		}

		response.RespondBadRequest(w, "invalid request body: "+err.Error())

		return
	}

	// Anything but whitespace after the object is rejected.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondRequestEntityTooLarge(w)

			return
		}

		response.RespondBadRequest(w, "request body must contain a single JSON object")

		return
	}

	embedding, err := h.embedder.Embed(r.Context(), req.Text)
	if err != nil {
		respondEmbedError(r.Context(), w, err)

		return
	}

	response.RespondData(w, http.StatusOK, embedding)
}

// respondEmbedError maps the embedding error taxonomy onto HTTP statuses.
// Provider failures are reported as gateway errors; the client's own request was valid.
func respondEmbedError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, embederrors.ErrValidation):
		response.RespondBadRequest(w, err.Error())

		return
	case errors.Is(err, embederrors.ErrAuthentication):
		slog.ErrorContext(ctx, "embedding provider rejected credentials", "error", err)
		response.RespondBadGateway(w, "embedding provider rejected credentials")

		return
	case errors.Is(err, embederrors.ErrConfiguration):
		slog.ErrorContext(ctx, "embedding misconfigured", "error", err)
		response.RespondInternalServerError(w, "embedding service is misconfigured")

		return
	case errors.Is(err, context.Canceled):
		slog.InfoContext(ctx, "embedding request canceled by client")

		return
	}

	slog.WarnContext(ctx, "embedding request failed", "reason", embederrors.Reason(err), "error", err)

	switch embederrors.Reason(err) {
	case embederrors.ReasonQuotaExceeded:
		response.RespondServiceUnavailable(w, "embedding provider quota exceeded")
	case embederrors.ReasonTimeout:
		response.RespondError(w, http.StatusGatewayTimeout, "Gateway Timeout", "embedding provider timed out")
	case "":
		response.RespondInternalServerError(w, "failed to create embedding")
	default:
		response.RespondBadGateway(w, err.Error())
	}
}
