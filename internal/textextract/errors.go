package textextract

import (
	"errors"
	"fmt"
)

// Common text extraction errors
var (
	// ErrUnsupportedFormat is returned when the file extension is not a
	// supported document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoText is returned when the document yields no readable text.
	ErrNoText = errors.New("document contains no readable text")

	// ErrFileTooLarge is returned when the document exceeds the maximum
	// size for synchronous OCR processing.
	ErrFileTooLarge = errors.New("document exceeds the maximum size limit (20MB)")

	// ErrMissingCredentials is returned when neither GOOGLE_APPLICATION_CREDENTIALS
	// nor GOOGLE_CREDENTIALS environment variables are configured.
	ErrMissingCredentials = errors.New("missing Google Cloud credentials: set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_CREDENTIALS environment variable")

	// ErrOCRFailed is returned when the OCR backend fails to process the
	// document.
	ErrOCRFailed = errors.New("OCR processing failed")
)

// ExtractError wraps errors with additional context about the extraction
// failure.
type ExtractError struct {
	// Op is the operation that failed (e.g., "ExtractText", "LoadCredentials").
	Op string

	// Err is the underlying error.
	Err error

	// Details provides additional context about the failure.
	Details string
}

// Error implements the error interface.
func (e *ExtractError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("textextract: %s failed: %s: %v", e.Op, e.Details, e.Err)
	}
	return fmt.Sprintf("textextract: %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ExtractError) Unwrap() error {
	return e.Err
}

// Is implements error matching for Go 1.13+ error handling.
func (e *ExtractError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// WrapExtractError wraps an error as an ExtractError if it isn't already one.
func WrapExtractError(op string, err error, details string) error {
	if err == nil {
		return nil
	}

	var extractErr *ExtractError
	if errors.As(err, &extractErr) {
		return err // Already wrapped
	}

	return &ExtractError{Op: op, Err: err, Details: details}
}
