package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"invoicelink/internal/config"
	"invoicelink/internal/ledger"
	"invoicelink/internal/logger"
	"invoicelink/internal/pipeline"
	"invoicelink/internal/tabular"
	"invoicelink/internal/textextract"
)

var processCmd = &cobra.Command{
	Use:   "process [folder]",
	Short: "Process a folder of invoices and purchase orders into the workbook",
	Long: `Scan a folder for PDF and image documents, extract their text, classify
each one as an invoice or a purchase order, parse its fields and record it in
the configured tabular store.

Invoices are linked to their purchase orders by PO number. When an invoice
references a PO that has not been seen yet, a stub PO record is created so
the link is never dangling. Documents whose invoice number already exists in
the store are skipped, so reprocessing a folder is safe.

Per-document failures never abort the batch. Files that could not be read or
parsed are logged to the error log file and the run continues.

Configuration comes from environment variables (or a .env file):
  INVOICES_FOLDER - default input folder (default: invoices)
  WORKBOOK_FILE   - XLSX workbook path (default: invoices.xlsx)
  ERROR_LOG_FILE  - per-file failure log (default: errors.log)
  STORE_BACKEND   - "xlsx" or "sheets"
  OCR_BACKEND     - "vision", "documentai" or "none"`,
	Example: `  # Process the default invoices/ folder into invoices.xlsx
  invoicelink process

  # Process a specific folder
  invoicelink process ./scans

  # Write to a different workbook and keep the extracted text for inspection
  invoicelink process ./scans --workbook q3.xlsx --dump-text ./extracted

  # Parse everything without touching the workbook
  invoicelink process ./scans --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().String("workbook", "", "Workbook file path (overrides WORKBOOK_FILE)")
	processCmd.Flags().Bool("dry-run", false, "Parse and link documents without writing the store")
	processCmd.Flags().String("dump-text", "", "Folder to save extracted text per document")
	processCmd.Flags().Int("timeout", 600, "Batch timeout in seconds")
}

func runProcess(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("process")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	workbook, _ := cmd.Flags().GetString("workbook")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	dumpDir, _ := cmd.Flags().GetString("dump-text")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	folder := cfg.InvoicesFolder
	if len(args) > 0 {
		folder = args[0]
	}
	if workbook != "" {
		cfg.WorkbookFile = workbook
	}

	log.Info().
		Str("folder", folder).
		Str("store", cfg.StoreBackend).
		Str("ocr", cfg.OCRBackend).
		Bool("dry_run", dryRun).
		Msg("Starting batch processing")

	ctx, cancel := createContextWithTimeout(timeoutSecs, log)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg, dryRun, log)
	if err != nil {
		return err
	}
	defer closeStore()

	extractor, closeExtractor, err := createExtractor(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeExtractor()

	ldg, err := ledger.Open(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to open record ledger: %w", err)
	}

	errlog := pipeline.NewErrorLedger(cfg.ErrorLogFile)
	if dryRun {
		errlog = pipeline.NewErrorLedger("")
	}

	processor := pipeline.NewProcessor(extractor, ldg, errlog, dumpDir)

	summary, results, err := processor.ProcessDir(ctx, folder)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil || r.Outcome == pipeline.OutcomeRejectedUnparsed || r.Outcome == pipeline.OutcomeRejectedUnknownType {
			fmt.Printf("  %-40s %s\n", r.File, r.Outcome)
		}
	}

	fmt.Printf("\nProcessed %d file(s): %d inserted, %d duplicate(s), %d rejected, %d failed\n",
		summary.Processed, summary.Inserted, summary.Duplicates, summary.Rejected, summary.Failed)

	if dryRun {
		log.Info().Msg("Dry run - store not written")
		return nil
	}

	if err := store.Flush(ctx); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Info().
		Int("inserted", summary.Inserted).
		Str("workbook", cfg.WorkbookFile).
		Msg("Batch processing completed")

	return nil
}

// openStore builds the configured tabular store. Dry runs get an in-memory
// store so parsing and linking still exercise the full path.
func openStore(ctx context.Context, cfg *config.Config, dryRun bool, log zerolog.Logger) (tabular.Store, func(), error) {
	if dryRun {
		return tabular.NewMemStore(), func() {}, nil
	}

	switch cfg.StoreBackend {
	case "sheets":
		store, err := tabular.NewSheetsStore(ctx, cfg.GoogleSheetURL)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open Google Sheets store")
			return nil, nil, fmt.Errorf("failed to open Google Sheets store: %w", err)
		}
		return store, func() {}, nil
	default:
		store, err := tabular.OpenXLSX(cfg.WorkbookFile)
		if err != nil {
			log.Error().Err(err).Str("file", cfg.WorkbookFile).Msg("Failed to open workbook")
			return nil, nil, fmt.Errorf("failed to open workbook: %w", err)
		}
		closer := func() {
			if closeErr := store.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close workbook")
			}
		}
		return store, closer, nil
	}
}

// createExtractor builds the text extraction chain for the configured OCR
// backend. The text-layer read always runs first for PDFs; OCR is the
// fallback for scans and images.
func createExtractor(ctx context.Context, cfg *config.Config, log zerolog.Logger) (textextract.Extractor, func(), error) {
	switch cfg.OCRBackend {
	case "none":
		log.Warn().Msg("OCR disabled - only PDFs with a text layer can be processed")
		return textextract.NewLayeredExtractor(nil), func() {}, nil

	case "documentai":
		ocr, err := textextract.NewDocumentAIExtractor(ctx, textextract.DocumentAIConfig{
			ProjectID:        cfg.GoogleCloudProject,
			Location:         cfg.GoogleCloudLocation,
			ProcessorID:      cfg.DocumentAIProcessorID,
			ProcessorVersion: cfg.DocumentAIProcessorVersion,
		})
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Document AI extractor")
			return nil, nil, fmt.Errorf("failed to create Document AI extractor: %w", err)
		}
		closer := func() {
			if closeErr := ocr.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close Document AI client")
			}
		}
		return textextract.NewLayeredExtractor(ocr), closer, nil

	default:
		ocr, err := textextract.NewVisionExtractor(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create Vision extractor")
			return nil, nil, fmt.Errorf("failed to create Vision OCR extractor: %w", err)
		}
		closer := func() {
			if closeErr := ocr.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("Failed to close Vision client")
			}
		}
		return textextract.NewLayeredExtractor(ocr), closer, nil
	}
}

// createContextWithTimeout creates a context with timeout and signal handling
func createContextWithTimeout(timeoutSecs int, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSecs)*time.Second)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().
				Str("signal", sig.String()).
				Msg("Received interrupt signal, canceling batch")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
