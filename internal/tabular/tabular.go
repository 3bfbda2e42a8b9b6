// Package tabular provides the sheet-shaped persistence layer behind the
// record ledger: two named sheets, each row an ordered sequence of scalar
// values under a header row.
//
// Three backends implement the Store interface: an XLSX workbook (the
// default), a Google Sheet, and an in-memory store for tests.
package tabular

import "context"

// Sheet names used by the ledger.
const (
	SheetPO      = "PO_Details"
	SheetInvoice = "Invoice_Details"
)

// Header rows for the two sheets. Column order is part of the record format
// and must match the ledger's row codecs.
var (
	POHeaders = []string{"Serial Number", "PO Number", "PO Date", "PO Amount", "Department"}

	InvoiceHeaders = []string{
		"Serial Number", "Invoice Number", "Invoice Date", "PO Number",
		"PO Date", "Department", "GR ID", "GR Date", "Subtotal",
		"Tax 12%", "Grand Total", "Status",
	}
)

// Store is a minimal append-oriented tabular store.
type Store interface {
	// EnsureSheet creates the named sheet with the given header row if it
	// does not already exist.
	EnsureSheet(ctx context.Context, name string, headers []string) error

	// AppendRow appends one data row to the named sheet.
	AppendRow(ctx context.Context, sheet string, values []any) error

	// Rows returns all previously committed data rows of the named sheet,
	// header row excluded, cells rendered as strings.
	Rows(ctx context.Context, sheet string) ([][]string, error)

	// Flush persists any buffered writes. Backends with immediate writes
	// may make this a no-op.
	Flush(ctx context.Context) error
}
