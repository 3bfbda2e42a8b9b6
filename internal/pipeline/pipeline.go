// Package pipeline drives one document at a time through extraction,
// classification, parsing, derivation and insertion, and runs that state
// machine over a folder of documents.
//
// Every per-document failure is terminal for that document only: it is
// logged, recorded in the error ledger, and the batch moves on. Nothing a
// single document does can abort the run.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"invoicelink/internal/docparse"
	"invoicelink/internal/ledger"
	"invoicelink/internal/logger"
	"invoicelink/internal/textextract"
)

// Outcome is the terminal state of one processed document.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeSkippedDuplicate
	OutcomeRejectedUnparsed
	OutcomeRejectedUnknownType
	OutcomeExtractionFailed
	OutcomeSkippedUnsupported
	OutcomeFailed
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkippedDuplicate:
		return "skipped_duplicate"
	case OutcomeRejectedUnparsed:
		return "rejected_unparsed"
	case OutcomeRejectedUnknownType:
		return "rejected_unknown_type"
	case OutcomeExtractionFailed:
		return "extraction_failed"
	case OutcomeSkippedUnsupported:
		return "skipped_unsupported"
	default:
		return "failed"
	}
}

// Result describes the terminal state of one source document.
type Result struct {
	File    string
	Outcome Outcome
	DocType docparse.DocType
	Err     error
}

// Summary aggregates the results of a batch run.
type Summary struct {
	Processed  int
	Inserted   int
	Duplicates int
	Rejected   int
	Failed     int
}

// Processor runs the per-document state machine against a shared ledger.
type Processor struct {
	extractor textextract.Extractor
	ledger    *ledger.Ledger
	errlog    *ErrorLedger
	dumpDir   string // when set, extracted text is saved here per document
	log       zerolog.Logger
}

// NewProcessor wires a processor. errlog may be nil to disable the error
// ledger file; dumpDir may be empty to disable text dumps.
func NewProcessor(extractor textextract.Extractor, l *ledger.Ledger, errlog *ErrorLedger, dumpDir string) *Processor {
	if errlog == nil {
		errlog = NewErrorLedger("")
	}
	return &Processor{
		extractor: extractor,
		ledger:    l,
		errlog:    errlog,
		dumpDir:   dumpDir,
		log:       logger.WithComponent("pipeline"),
	}
}

// ProcessFile runs a single document through the full chain:
// Extracted -> Classified -> Parsed -> {Inserted | SkippedDuplicate |
// RejectedUnparsed | RejectedUnknownType}.
func (p *Processor) ProcessFile(ctx context.Context, path string) Result {
	name := filepath.Base(path)
	p.log.Info().Str("file", name).Msg("Processing file")

	if !textextract.IsSupported(path) {
		p.log.Warn().Str("file", name).Msg("Unsupported file format")
		return Result{File: name, Outcome: OutcomeSkippedUnsupported}
	}

	text, err := p.extractor.ExtractText(ctx, path)
	if err != nil || strings.TrimSpace(text) == "" {
		p.log.Warn().Err(err).Str("file", name).Msg("No text extracted")
		p.errlog.Record(name, "no text could be extracted")
		return Result{File: name, Outcome: OutcomeExtractionFailed, Err: err}
	}

	p.dumpText(name, text)

	docType := docparse.Classify(text)
	switch docType {
	case docparse.DocTypeInvoice:
		return p.processInvoice(ctx, name, text)
	case docparse.DocTypePurchaseOrder:
		return p.processPO(ctx, name, text)
	default:
		p.log.Warn().Str("file", name).Msg("Could not determine document type")
		p.errlog.Record(name, "unknown document type")
		return Result{File: name, Outcome: OutcomeRejectedUnknownType, DocType: docType}
	}
}

func (p *Processor) processInvoice(ctx context.Context, name, text string) Result {
	fields := docparse.ExtractInvoiceFields(text)
	if len(fields) == 0 {
		p.log.Warn().Str("file", name).Msg("Could not parse invoice data")
		p.errlog.Record(name, "failed to parse invoice data")
		return Result{File: name, Outcome: OutcomeRejectedUnparsed, DocType: docparse.DocTypeInvoice}
	}

	fields = docparse.DeriveInvoice(fields)

	inv, inserted, err := p.ledger.InsertInvoice(ctx, fields)
	if err != nil {
		p.log.Error().Err(err).Str("file", name).Msg("Failed to insert invoice")
		p.errlog.Record(name, err.Error())
		return Result{File: name, Outcome: OutcomeFailed, DocType: docparse.DocTypeInvoice, Err: err}
	}
	if !inserted {
		return Result{File: name, Outcome: OutcomeSkippedDuplicate, DocType: docparse.DocTypeInvoice}
	}

	p.log.Info().
		Str("file", name).
		Str("invoice_number", inv.InvoiceNumber).
		Str("po_number", inv.PONumber).
		Str("gr_id", inv.GRID).
		Msg("Invoice parsed and recorded")

	return Result{File: name, Outcome: OutcomeInserted, DocType: docparse.DocTypeInvoice}
}

func (p *Processor) processPO(ctx context.Context, name, text string) Result {
	fields := docparse.ExtractPOFields(text)
	if fields.Get(docparse.FieldPONumber, "") == "" {
		p.log.Warn().Str("file", name).Msg("Could not parse PO data")
		p.errlog.Record(name, "failed to parse PO data")
		return Result{File: name, Outcome: OutcomeRejectedUnparsed, DocType: docparse.DocTypePurchaseOrder}
	}

	fields = docparse.DerivePO(fields)

	if _, err := p.ledger.InsertPO(ctx, fields); err != nil {
		p.log.Error().Err(err).Str("file", name).Msg("Failed to insert purchase order")
		p.errlog.Record(name, err.Error())
		return Result{File: name, Outcome: OutcomeFailed, DocType: docparse.DocTypePurchaseOrder, Err: err}
	}

	return Result{File: name, Outcome: OutcomeInserted, DocType: docparse.DocTypePurchaseOrder}
}

// dumpText saves the extracted text of one document for later inspection.
func (p *Processor) dumpText(name, text string) {
	if p.dumpDir == "" {
		return
	}
	if err := os.MkdirAll(p.dumpDir, 0755); err != nil {
		p.log.Warn().Err(err).Msg("Failed to create text dump folder")
		return
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	out := filepath.Join(p.dumpDir, stem+"_extracted.txt")
	if err := os.WriteFile(out, []byte(text), 0644); err != nil {
		p.log.Warn().Err(err).Str("file", out).Msg("Failed to save extracted text")
		return
	}
	p.log.Debug().Str("file", out).Msg("Saved extracted text")
}

// ProcessDir runs every supported document in folder through ProcessFile,
// sequentially and in name order. A missing folder is created and reported
// as an empty batch.
func (p *Processor) ProcessDir(ctx context.Context, folder string) (Summary, []Result, error) {
	var summary Summary

	if _, err := os.Stat(folder); os.IsNotExist(err) {
		p.log.Error().Str("folder", folder).Msg("Input folder not found, creating it")
		if mkErr := os.MkdirAll(folder, 0755); mkErr != nil {
			return summary, nil, fmt.Errorf("failed to create input folder: %w", mkErr)
		}
		return summary, nil, nil
	}

	entries, err := os.ReadDir(folder)
	if err != nil {
		return summary, nil, fmt.Errorf("failed to read input folder: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if textextract.IsSupported(entry.Name()) {
			files = append(files, filepath.Join(folder, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		p.log.Warn().Str("folder", folder).Msg("No files found to process")
		return summary, nil, nil
	}

	p.log.Info().Int("count", len(files)).Msg("Found files to process")

	results := make([]Result, 0, len(files))
	for _, file := range files {
		result := p.ProcessFile(ctx, file)
		results = append(results, result)

		summary.Processed++
		switch result.Outcome {
		case OutcomeInserted:
			summary.Inserted++
		case OutcomeSkippedDuplicate:
			summary.Duplicates++
		case OutcomeRejectedUnparsed, OutcomeRejectedUnknownType:
			summary.Rejected++
		case OutcomeExtractionFailed, OutcomeFailed:
			summary.Failed++
		}
	}

	return summary, results, nil
}
