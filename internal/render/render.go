// Package render writes an embedding to the CLI's standard output.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/formbricks/embedder/internal/embederrors"
	"github.com/formbricks/embedder/internal/models"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// IsSupportedFormat reports whether format can be passed to Write.
func IsSupportedFormat(format string) bool {
	return format == FormatText || format == FormatJSON
}

// Write renders e to w. FormatText prints the values as a bracketed, space-separated list
// on one line. FormatJSON prints the model, dimensions and values as one JSON object.
func Write(w io.Writer, format string, e *models.Embedding) error {
	if e == nil {
		return embederrors.NewValidationError("embedding", "nothing to render")
	}

	switch format {
	case FormatText, "":
		if _, err := fmt.Fprintln(w, e.Values); err != nil {
			return fmt.Errorf("write embedding: %w", err)
		}

		return nil
	case FormatJSON:
		enc := json.NewEncoder(w)
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}

		return nil
	default:
		return embederrors.NewValidationError("format", fmt.Sprintf("unsupported output format %q (want text or json)", format))
	}
}
