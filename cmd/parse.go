package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"invoicelink/internal/config"
	"invoicelink/internal/docparse"
	"invoicelink/internal/logger"
	"invoicelink/internal/textextract"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Extract and parse a single document without recording it",
	Long: `Extract the text of one PDF or image document, classify it and print the
parsed fields. Nothing is written to the workbook, so this is the quickest
way to check why a document parses the way it does.

The same extraction chain as the process command is used: the PDF text layer
first, then the configured OCR backend for scans and images.`,
	Example: `  # Parse one invoice and print its fields
  invoicelink parse scans/invoice-0042.pdf

  # Output the parsed fields as JSON
  invoicelink parse scans/invoice-0042.pdf --json

  # Print the raw extracted text instead of parsed fields
  invoicelink parse scans/invoice-0042.pdf --text`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

// parseOutput is the JSON structure emitted with --json.
type parseOutput struct {
	File         string            `json:"file"`
	DocumentType string            `json:"document_type"`
	Fields       map[string]string `json:"fields"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().Bool("json", false, "Output parsed fields as JSON")
	parseCmd.Flags().Bool("text", false, "Print the raw extracted text instead of parsed fields")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	jsonOutput, _ := cmd.Flags().GetBool("json")
	rawText, _ := cmd.Flags().GetBool("text")

	path := args[0]
	if !textextract.IsSupported(path) {
		return fmt.Errorf("unsupported file format: %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", path)
		}
		return fmt.Errorf("error accessing file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := createContextWithTimeout(300, log)
	defer cancel()

	extractor, closeExtractor, err := createExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeExtractor()

	text, err := extractor.ExtractText(ctx, path)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("Text extraction failed")
		return fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text could be extracted from %s", path)
	}

	if rawText {
		fmt.Println(text)
		return nil
	}

	docType := docparse.Classify(text)

	var fields docparse.Fields
	switch docType {
	case docparse.DocTypeInvoice:
		fields = docparse.DeriveInvoice(docparse.ExtractInvoiceFields(text))
	case docparse.DocTypePurchaseOrder:
		fields = docparse.DerivePO(docparse.ExtractPOFields(text))
	default:
		return fmt.Errorf("could not determine document type for %s", path)
	}

	if jsonOutput {
		out := parseOutput{
			File:         filepath.Base(path),
			DocumentType: docType.String(),
			Fields:       fields,
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("File: %s\n", filepath.Base(path))
	fmt.Printf("Type: %s\n\n", docType)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-16s %s\n", k, fields[k])
	}

	return nil
}
