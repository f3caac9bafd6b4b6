// Package validation checks uploaded post images before they reach storage.
package validation

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
)

var (
	// ErrPayloadTooLarge: the body or the image is over the configured size.
	ErrPayloadTooLarge = errors.New("image too large")
	// ErrInvalidMimeType: the image type is not allowed or the bytes do not decode.
	ErrInvalidMimeType = errors.New("unsupported image type")
	// ErrMalformedForm: the body is not a readable multipart form.
	ErrMalformedForm = errors.New("malformed multipart form")
)

// formOverhead covers the text fields and boundaries around the image.
const formOverhead = 1 << 20

// ParsePostForm caps the body at the image limit plus overhead and parses it.
// Going over the cap makes the server stop reading, which clients see as a reset.
// Only a body over the cap is ErrPayloadTooLarge; any other failure is ErrMalformedForm.
func ParsePostForm(r *http.Request, w http.ResponseWriter, maxImageSize int64) error {
	limit := maxImageSize + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(limit)
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return fmt.Errorf("%w: image exceeds the limit of %.0f MB", ErrPayloadTooLarge, SizeMB(maxImageSize))
	}
	return fmt.Errorf("%w: %v", ErrMalformedForm, err)
}

// SizeMB converts bytes to megabytes for error messages.
func SizeMB(bytes int64) float64 {
	return float64(bytes) / (1 << 20)
}
