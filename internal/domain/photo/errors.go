package photo

import (
	"errors"
	"fmt"

	"photoshare/internal/pkg/blobstore"
	"photoshare/internal/pkg/sharelink"
)

var (
	// ErrValidation is user-correctable and is always raised before any
	// blob or row is written.
	ErrValidation = errors.New("validation error")

	ErrNoFile          = fmt.Errorf("%w: no file uploaded", ErrValidation)
	ErrUnexpectedField = fmt.Errorf("%w: unexpected file field", ErrValidation)
	ErrTooManyFiles    = fmt.Errorf("%w: too many files", ErrValidation)
	ErrTooManyFields   = fmt.Errorf("%w: too many fields", ErrValidation)
	ErrFileTooLarge    = fmt.Errorf("%w: file exceeds maximum allowed size", ErrValidation)
	ErrInvalidMimeType = fmt.Errorf("%w: only image files are allowed", ErrValidation)
	ErrEmptyFile       = fmt.Errorf("%w: file is empty", ErrValidation)
	ErrMalformedForm   = fmt.Errorf("%w: malformed multipart body", ErrValidation)

	ErrNotFound   = errors.New("photo not found")
	ErrRepository = errors.New("repository error")

	// ErrUpload wraps every failure of an upload after validation passed.
	ErrUpload = errors.New("upload failed")
)

// Kind names the error class of err for logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrNotFound), errors.Is(err, blobstore.ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRepository):
		return "repository"
	case errors.Is(err, blobstore.ErrWrite):
		return "write"
	case errors.Is(err, sharelink.ErrEncoding):
		return "encoding"
	default:
		return "internal"
	}
}
