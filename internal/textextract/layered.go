package textextract

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"invoicelink/internal/logger"
)

// LayeredExtractor chains the cheap PDF text-layer read with an OCR
// fallback. PDFs whose text layer is empty, and image files, are handed to
// the OCR backend. With a nil OCR backend only text-layer PDFs can be
// processed.
type LayeredExtractor struct {
	textLayer *PDFTextExtractor
	ocr       Extractor
	log       zerolog.Logger
}

// NewLayeredExtractor builds the standard extraction chain. ocr may be nil
// to disable OCR entirely.
func NewLayeredExtractor(ocr Extractor) *LayeredExtractor {
	return &LayeredExtractor{
		textLayer: NewPDFTextExtractor(),
		ocr:       ocr,
		log:       logger.WithComponent("textextract"),
	}
}

// ExtractText returns best-effort text for the document at path.
func (l *LayeredExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	const op = "ExtractText"

	switch {
	case IsPDF(path):
		text, err := l.textLayer.ExtractText(ctx, path)
		if err == nil {
			l.log.Debug().Str("file", path).Msg("Extracted text layer from PDF")
			return text, nil
		}
		if l.ocr == nil {
			return "", err
		}
		if errors.Is(err, ErrNoText) {
			l.log.Info().Str("file", path).Msg("No text layer found, using OCR")
		} else {
			l.log.Warn().Err(err).Str("file", path).Msg("Text layer extraction failed, using OCR")
		}
		return l.ocr.ExtractText(ctx, path)

	case IsImage(path):
		if l.ocr == nil {
			return "", WrapExtractError(op, ErrOCRFailed, "no OCR backend configured for image input")
		}
		return l.ocr.ExtractText(ctx, path)

	default:
		return "", WrapExtractError(op, ErrUnsupportedFormat, path)
	}
}
