package textextract

import (
	"context"
	"fmt"
	"os"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"google.golang.org/api/option"
)

// DocumentAIConfig holds configuration for the Document AI OCR backend.
type DocumentAIConfig struct {
	// ProjectID is the Google Cloud project ID where Document AI is enabled.
	ProjectID string

	// Location is the processing location (e.g., "us", "eu").
	Location string

	// ProcessorID is the Document AI OCR processor ID.
	ProcessorID string

	// ProcessorVersion specifies a particular processor version.
	// If empty, uses the default version.
	ProcessorVersion string
}

// DocumentAIExtractor performs OCR through a Document AI OCR processor.
// Only the raw document text is taken from the response; the structured
// entities a specialized processor might return are deliberately ignored.
type DocumentAIExtractor struct {
	client *documentai.DocumentProcessorClient
	config DocumentAIConfig
}

// NewDocumentAIExtractor creates a Document AI extractor with credentials
// from the environment.
func NewDocumentAIExtractor(ctx context.Context, config DocumentAIConfig) (*DocumentAIExtractor, error) {
	const op = "NewDocumentAIExtractor"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, WrapExtractError(op, ErrOCRFailed, "project ID and processor ID are required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
	opts := []option.ClientOption{option.WithEndpoint(endpoint)}

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, opts...)
	if err != nil {
		return nil, WrapExtractError(op, err, "failed to create Document AI client")
	}

	return &DocumentAIExtractor{client: client, config: config}, nil
}

// processorName builds the fully qualified processor resource name.
func (d *DocumentAIExtractor) processorName() string {
	name := fmt.Sprintf("projects/%s/locations/%s/processors/%s",
		d.config.ProjectID, d.config.Location, d.config.ProcessorID)
	if d.config.ProcessorVersion != "" {
		name = fmt.Sprintf("%s/processorVersions/%s", name, d.config.ProcessorVersion)
	}
	return name
}

// ExtractText performs OCR on the document at path.
func (d *DocumentAIExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	const op = "ExtractText"

	mime := mimeType(path)
	if mime == "" {
		return "", WrapExtractError(op, ErrUnsupportedFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapExtractError(op, err, "failed to read file")
	}
	if len(data) > MaxFileSizeBytes {
		return "", WrapExtractError(op, ErrFileTooLarge, fmt.Sprintf("file size: %d bytes", len(data)))
	}

	req := &documentaipb.ProcessRequest{
		Name: d.processorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  data,
				MimeType: mime,
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return "", WrapExtractError(op, ErrOCRFailed, fmt.Sprintf("Document AI call failed: %v", err))
	}

	text := resp.GetDocument().GetText()
	if text == "" {
		return "", WrapExtractError(op, ErrNoText, "Document AI produced no text")
	}
	return text, nil
}

// Close closes the underlying Document AI client.
func (d *DocumentAIExtractor) Close() error {
	if d.client != nil {
		return d.client.Close()
	}
	return nil
}
