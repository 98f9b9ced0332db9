package googleai

import (
	"errors"

	"google.golang.org/genai"

	"github.com/formbricks/embedder/internal/embederrors"
)

// classifyError maps SDK errors onto the embederrors taxonomy.
// genai returns APIError by value for non-2xx responses; anything else is a transport failure.
func classifyError(model string, err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return embederrors.FromStatus(ProviderName, model, apiErr.Code, apiErr.Message, err)
	}

	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return embederrors.FromStatus(ProviderName, model, apiErrPtr.Code, apiErrPtr.Message, err)
	}

	return embederrors.FromTransport(ProviderName, model, err)
}
