package textextract

import (
	"context"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextExtractor reads the embedded text layer of a PDF. It is the cheap
// first attempt for every PDF; scanned documents with no text layer come
// back as ErrNoText and are handed to OCR by the layered extractor.
type PDFTextExtractor struct{}

// NewPDFTextExtractor returns a text-layer extractor.
func NewPDFTextExtractor() *PDFTextExtractor {
	return &PDFTextExtractor{}
}

// ExtractText extracts the text layer of the PDF at path.
func (p *PDFTextExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	const op = "ExtractText"

	if !IsPDF(path) {
		return "", WrapExtractError(op, ErrUnsupportedFormat, path)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", WrapExtractError(op, err, "failed to open PDF")
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", WrapExtractError(op, err, "failed to read text layer")
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", WrapExtractError(op, err, "failed to read text layer")
	}

	text := string(raw)
	if strings.TrimSpace(text) == "" {
		return "", WrapExtractError(op, ErrNoText, "PDF has no text layer")
	}
	return text, nil
}
