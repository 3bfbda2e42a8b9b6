package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicelink/internal/ledger"
	"invoicelink/internal/pipeline"
	"invoicelink/internal/tabular"
)

// fakeExtractor serves canned text keyed by base filename.
type fakeExtractor struct {
	texts map[string]string
}

func (f *fakeExtractor) ExtractText(ctx context.Context, path string) (string, error) {
	text, ok := f.texts[filepath.Base(path)]
	if !ok {
		return "", errors.New("extraction failed")
	}
	return text, nil
}

const invoiceText = "INVOICE\n" +
	"Invoice No: A1001\n" +
	"Invoice Date: 10-Jan-24\n" +
	"PO NO PO DATE GR NO GR DATE\n" +
	"1234567890 01-Jan-24 7654321 05-Jan-24\n" +
	"TOTAL: 1,000.00\n"

const poText = "PURCHASE ORDER\n" +
	"PO Number: 1234567890\n" +
	"PO Date: 01-Jan-24\n" +
	"Amount: 25,000.00\n" +
	"Department: Finance\n"

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("placeholder"), 0644))
	}
}

func newLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(context.Background(), tabular.NewMemStore())
	require.NoError(t, err)
	return l
}

func TestProcessFile_Invoice(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice.pdf")

	l := newLedger(t)
	extractor := &fakeExtractor{texts: map[string]string{"invoice.pdf": invoiceText}}
	p := pipeline.NewProcessor(extractor, l, nil, "")

	result := p.ProcessFile(context.Background(), filepath.Join(dir, "invoice.pdf"))
	assert.Equal(t, pipeline.OutcomeInserted, result.Outcome)

	invs := l.Invoices()
	require.Len(t, invs, 1)
	assert.Equal(t, "A1001", invs[0].InvoiceNumber)
	assert.Equal(t, "1234567890", invs[0].PONumber)
	assert.Equal(t, "7654321", invs[0].GRID)

	// The referenced PO was unknown, so a stub was created.
	pos := l.PurchaseOrders()
	require.Len(t, pos, 1)
	assert.Equal(t, "1234567890", pos[0].PONumber)
	assert.True(t, pos[0].POAmount.IsZero())
}

func TestProcessFile_DuplicateInvoice(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice.pdf")

	l := newLedger(t)
	extractor := &fakeExtractor{texts: map[string]string{"invoice.pdf": invoiceText}}
	p := pipeline.NewProcessor(extractor, l, nil, "")

	path := filepath.Join(dir, "invoice.pdf")
	first := p.ProcessFile(context.Background(), path)
	second := p.ProcessFile(context.Background(), path)

	assert.Equal(t, pipeline.OutcomeInserted, first.Outcome)
	assert.Equal(t, pipeline.OutcomeSkippedDuplicate, second.Outcome)
	assert.Len(t, l.Invoices(), 1)
}

func TestProcessFile_UnknownType(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "memo.pdf")

	errlogPath := filepath.Join(t.TempDir(), "errors.log")
	l := newLedger(t)
	extractor := &fakeExtractor{texts: map[string]string{"memo.pdf": "Meeting notes from Tuesday"}}
	p := pipeline.NewProcessor(extractor, l, pipeline.NewErrorLedger(errlogPath), "")

	result := p.ProcessFile(context.Background(), filepath.Join(dir, "memo.pdf"))
	assert.Equal(t, pipeline.OutcomeRejectedUnknownType, result.Outcome)

	data, err := os.ReadFile(errlogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "memo.pdf: unknown document type")
}

func TestProcessFile_ExtractionFailure(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "broken.pdf")

	errlogPath := filepath.Join(t.TempDir(), "errors.log")
	l := newLedger(t)
	extractor := &fakeExtractor{texts: map[string]string{}}
	p := pipeline.NewProcessor(extractor, l, pipeline.NewErrorLedger(errlogPath), "")

	result := p.ProcessFile(context.Background(), filepath.Join(dir, "broken.pdf"))
	assert.Equal(t, pipeline.OutcomeExtractionFailed, result.Outcome)

	data, err := os.ReadFile(errlogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "broken.pdf: no text could be extracted")
}

func TestProcessFile_UnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "notes.txt")

	p := pipeline.NewProcessor(&fakeExtractor{}, newLedger(t), nil, "")
	result := p.ProcessFile(context.Background(), filepath.Join(dir, "notes.txt"))
	assert.Equal(t, pipeline.OutcomeSkippedUnsupported, result.Outcome)
}

func TestProcessFile_DumpsExtractedText(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice.pdf")
	dumpDir := filepath.Join(t.TempDir(), "dump")

	extractor := &fakeExtractor{texts: map[string]string{"invoice.pdf": invoiceText}}
	p := pipeline.NewProcessor(extractor, newLedger(t), nil, dumpDir)

	p.ProcessFile(context.Background(), filepath.Join(dir, "invoice.pdf"))

	data, err := os.ReadFile(filepath.Join(dumpDir, "invoice_extracted.txt"))
	require.NoError(t, err)
	assert.Equal(t, invoiceText, string(data))
}

func TestProcessDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "01-po.pdf", "02-invoice.pdf", "03-invoice-dup.pdf", "04-broken.pdf", "notes.txt")

	l := newLedger(t)
	extractor := &fakeExtractor{texts: map[string]string{
		"01-po.pdf":          poText,
		"02-invoice.pdf":     invoiceText,
		"03-invoice-dup.pdf": invoiceText,
	}}
	p := pipeline.NewProcessor(extractor, l, nil, "")

	summary, results, err := p.ProcessDir(context.Background(), dir)
	require.NoError(t, err)

	// notes.txt is filtered out before processing.
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates)
	assert.Equal(t, 1, summary.Failed)
	assert.Len(t, results, 4)

	// The PO arrived before its invoice, so no stub was needed and the
	// invoice picked up the PO's department.
	pos := l.PurchaseOrders()
	require.Len(t, pos, 1)
	assert.Equal(t, "Finance", pos[0].Department)

	invs := l.Invoices()
	require.Len(t, invs, 1)
	assert.Equal(t, "Finance", invs[0].Department)
	assert.Equal(t, "01-Jan-2024", invs[0].PODate)
}

func TestProcessDir_MissingFolderIsCreated(t *testing.T) {
	folder := filepath.Join(t.TempDir(), "does-not-exist")

	p := pipeline.NewProcessor(&fakeExtractor{}, newLedger(t), nil, "")
	summary, results, err := p.ProcessDir(context.Background(), folder)
	require.NoError(t, err)

	assert.Zero(t, summary.Processed)
	assert.Empty(t, results)
	assert.DirExists(t, folder)
}
