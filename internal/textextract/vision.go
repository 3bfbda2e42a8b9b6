package textextract

import (
	"context"
	"fmt"
	"os"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionExtractor performs OCR using the Google Cloud Vision API. PDFs go
// through document text detection on inline file content; images go through
// single-image document text detection.
type VisionExtractor struct {
	client *vision.ImageAnnotatorClient
}

// NewVisionExtractor creates an OCR extractor with credentials from the
// environment. It expects either GOOGLE_APPLICATION_CREDENTIALS path or
// GOOGLE_CREDENTIALS JSON in env, and falls back to application default
// credentials.
func NewVisionExtractor(ctx context.Context) (*VisionExtractor, error) {
	const op = "NewVisionExtractor"

	var client *vision.ImageAnnotatorClient
	var err error

	// Check for inline credentials first
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapExtractError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err = vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapExtractError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
	} else {
		// Try default credentials as fallback
		client, err = vision.NewImageAnnotatorClient(ctx)
		if err != nil {
			return nil, WrapExtractError(op, ErrMissingCredentials, "no credentials found in environment")
		}
	}

	return &VisionExtractor{client: client}, nil
}

// NewVisionExtractorWithClient creates an extractor with an explicit client (for testing).
func NewVisionExtractorWithClient(client *vision.ImageAnnotatorClient) *VisionExtractor {
	return &VisionExtractor{client: client}
}

// ExtractText performs OCR on the document at path.
func (v *VisionExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	const op = "ExtractText"

	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExtractError(op, err, "failed to read file")
	}
	if len(data) > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}

	switch {
	case IsPDF(path):
		return v.extractPDF(ctx, data)
	case IsImage(path):
		return v.extractImage(ctx, data)
	default:
		return "", WrapExtractError(op, ErrUnsupportedFormat, path)
	}
}

// extractPDF runs document text detection over inline PDF content and
// concatenates page text in reading order.
func (v *VisionExtractor) extractPDF(ctx context.Context, data []byte) (string, error) {
	const op = "extractPDF"

	req := &visionpb.BatchAnnotateFilesRequest{
		Requests: []*visionpb.AnnotateFileRequest{
			{
				InputConfig: &visionpb.InputConfig{
					Content:  data,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateFiles(ctx, req)
	if err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if len(resp.Responses) == 0 {
		return "", WrapExtractError(op, ErrOCRFailed, "no response from Vision API")
	}

	fileResp := resp.Responses[0]
	if fileResp.Error != nil {
		return "", WrapExtractError(op, ErrOCRFailed, fmt.Sprintf("Vision API error: %s", fileResp.Error.Message))
	}

	var allText strings.Builder
	for pageIdx, page := range fileResp.Responses {
		if page.Error != nil {
			return "", WrapExtractError(op, ErrOCRFailed, fmt.Sprintf("error processing page %d: %s", pageIdx+1, page.Error.Message))
		}
		if page.FullTextAnnotation != nil {
			allText.WriteString(page.FullTextAnnotation.Text)
			allText.WriteString("\n")
		}
	}

	text := allText.String()
	if strings.TrimSpace(text) == "" {
		return "", WrapExtractError(op, ErrNoText, "OCR produced no text")
	}
	return text, nil
}

// extractImage runs document text detection on a single image.
func (v *VisionExtractor) extractImage(ctx context.Context, data []byte) (string, error) {
	const op = "extractImage"

	annotation, err := v.client.DetectDocumentText(ctx, &visionpb.Image{Content: data}, nil)
	if err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, fmt.Sprintf("Vision API call failed: %v", err))
	}
	if annotation == nil || strings.TrimSpace(annotation.Text) == "" {
		return "", WrapExtractError(op, ErrNoText, "OCR produced no text")
	}
	return annotation.Text, nil
}

// Close closes the underlying Vision client.
func (v *VisionExtractor) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}
