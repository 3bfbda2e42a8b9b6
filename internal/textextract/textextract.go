// Package textextract turns source documents (PDF or image files) into
// best-effort plain text for downstream pattern matching.
//
// PDFs are read through their embedded text layer first; scanned PDFs
// without one, and image files, fall back to OCR. Two OCR backends are
// available: Google Cloud Vision document text detection and a Google
// Document AI OCR processor. Only raw text is taken from either - field
// extraction stays pattern-based downstream.
//
// Required Environment Variables (OCR backends):
//   - GOOGLE_APPLICATION_CREDENTIALS: Path to service account JSON file, OR
//   - GOOGLE_CREDENTIALS: Inline JSON credentials string
package textextract

import (
	"context"
	"path/filepath"
	"strings"
)

// Extractor extracts plain text from a document file. Implementations are
// best-effort: callers treat empty text or an error as an unprocessable
// document and move on.
type Extractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// MaxFileSizeBytes is the maximum file size for synchronous OCR processing (20MB)
const MaxFileSizeBytes = 20 * 1024 * 1024

// Supported source file extensions.
var (
	PDFExtensions   = []string{".pdf"}
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".tiff", ".tif", ".bmp"}
)

// IsSupported reports whether the file extension is a supported document
// format.
func IsSupported(path string) bool {
	return IsPDF(path) || IsImage(path)
}

// IsPDF reports whether the file is a PDF by extension.
func IsPDF(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range PDFExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsImage reports whether the file is a supported image format by extension.
func IsImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ImageExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// mimeType maps a supported extension to the MIME type the OCR backends
// expect.
func mimeType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".tiff", ".tif":
		return "image/tiff"
	case ".bmp":
		return "image/bmp"
	default:
		return ""
	}
}
