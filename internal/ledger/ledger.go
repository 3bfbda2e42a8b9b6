// Package ledger maintains the two linked record collections - purchase
// orders and invoices - on top of a tabular store, and resolves the
// invoice-to-PO links.
//
// Records are append-only: they are created by a successful parse and insert
// of one source document and never updated or deleted afterwards. Reingesting
// a known invoice number is a silent no-op, so repeated and out-of-order
// batch runs stay idempotent.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"invoicelink/internal/docparse"
	"invoicelink/internal/logger"
	"invoicelink/internal/tabular"
)

// Ledger owns the in-memory view of both collections and mirrors every
// insert to the backing store. The mutex keeps the read-then-write pairs
// (dedup check + insert, lookup + stub creation) atomic for callers that
// process documents concurrently.
type Ledger struct {
	mu    sync.Mutex
	store tabular.Store
	pos   []PurchaseOrder
	invs  []Invoice
	log   zerolog.Logger
}

// Open ensures both sheets exist in the store and loads any previously
// committed rows, so serial assignment and deduplication carry across runs.
func Open(ctx context.Context, store tabular.Store) (*Ledger, error) {
	const op = "Open"

	l := &Ledger{
		store: store,
		log:   logger.WithComponent("ledger"),
	}

	if err := store.EnsureSheet(ctx, tabular.SheetPO, tabular.POHeaders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := store.EnsureSheet(ctx, tabular.SheetInvoice, tabular.InvoiceHeaders); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	poRows, err := store.Rows(ctx, tabular.SheetPO)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load purchase orders: %w", op, err)
	}
	for _, row := range poRows {
		l.pos = append(l.pos, decodePO(row))
	}

	invRows, err := store.Rows(ctx, tabular.SheetInvoice)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to load invoices: %w", op, err)
	}
	for _, row := range invRows {
		l.invs = append(l.invs, decodeInvoice(row))
	}

	l.log.Info().
		Int("purchase_orders", len(l.pos)).
		Int("invoices", len(l.invs)).
		Msg("Ledger loaded")

	return l, nil
}

// FindPO returns the first purchase order whose business key matches
// poNumber exactly, or nil.
func (l *Ledger) FindPO(poNumber string) *PurchaseOrder {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.findPOLocked(poNumber)
}

func (l *Ledger) findPOLocked(poNumber string) *PurchaseOrder {
	for i := range l.pos {
		if l.pos[i].PONumber == poNumber {
			return &l.pos[i]
		}
	}
	return nil
}

// InvoiceExists reports whether an invoice with this business key has
// already been ingested.
func (l *Ledger) InvoiceExists(invoiceNumber string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invoiceExistsLocked(invoiceNumber)
}

func (l *Ledger) invoiceExistsLocked(invoiceNumber string) bool {
	for i := range l.invs {
		if l.invs[i].InvoiceNumber == invoiceNumber {
			return true
		}
	}
	return false
}

// Serials are assigned max-existing+1 rather than row-count+1, so they stay
// unique even when a previously saved sheet arrives with gaps.
func (l *Ledger) nextPOSerialLocked() int {
	max := 0
	for i := range l.pos {
		if l.pos[i].Serial > max {
			max = l.pos[i].Serial
		}
	}
	return max + 1
}

func (l *Ledger) nextInvoiceSerialLocked() int {
	max := 0
	for i := range l.invs {
		if l.invs[i].Serial > max {
			max = l.invs[i].Serial
		}
	}
	return max + 1
}

// InsertPO assigns the next PO serial and appends a purchase order built
// from the extracted fields. There is no dedup on the PO business key:
// duplicates are permitted and simply coexist.
func (l *Ledger) InsertPO(ctx context.Context, f docparse.Fields) (*PurchaseOrder, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertPOLocked(ctx, f)
}

func (l *Ledger) insertPOLocked(ctx context.Context, f docparse.Fields) (*PurchaseOrder, error) {
	const op = "InsertPO"

	po := PurchaseOrder{
		Serial:     l.nextPOSerialLocked(),
		PONumber:   f.Get(docparse.FieldPONumber, ""),
		PODate:     f.Get(docparse.FieldPODate, ""),
		POAmount:   f.Amount(docparse.FieldPOAmount),
		Department: f.Get(docparse.FieldDepartment, docparse.DepartmentUnknown),
	}

	if err := l.store.AppendRow(ctx, tabular.SheetPO, encodePO(po)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	l.pos = append(l.pos, po)

	l.log.Info().
		Int("serial", po.Serial).
		Str("po_number", po.PONumber).
		Msg("Added purchase order record")

	return &l.pos[len(l.pos)-1], nil
}

// InsertInvoice appends an invoice built from the extracted fields, linking
// it to its purchase order.
//
// If the invoice number is non-empty and already present, the call is a
// silent no-op and inserted is false. If the referenced PO number is unknown,
// a stub purchase order is auto-created first (amount 0, department "N/A",
// date copied from the invoice's own extracted PO date). The stored PO date
// and department prefer the PO collection's values over the invoice's own.
func (l *Ledger) InsertInvoice(ctx context.Context, f docparse.Fields) (inv *Invoice, inserted bool, err error) {
	const op = "InsertInvoice"

	l.mu.Lock()
	defer l.mu.Unlock()

	invoiceNumber := f.Get(docparse.FieldInvoiceNumber, "")
	if invoiceNumber != "" && l.invoiceExistsLocked(invoiceNumber) {
		l.log.Info().
			Str("invoice_number", invoiceNumber).
			Msg("Invoice already exists - skipping")
		return nil, false, nil
	}

	poNumber := f.Get(docparse.FieldPONumber, "")
	var poDate, department string
	if poNumber != "" {
		po := l.findPOLocked(poNumber)
		if po == nil {
			l.log.Info().
				Str("po_number", poNumber).
				Msg("PO number not found - auto-creating stub from invoice data")
			stub := docparse.Fields{
				docparse.FieldPONumber:   poNumber,
				docparse.FieldPODate:     f.Get(docparse.FieldPODate, ""),
				docparse.FieldDepartment: docparse.DepartmentUnknown,
			}
			if _, err := l.insertPOLocked(ctx, stub); err != nil {
				return nil, false, fmt.Errorf("%s: failed to auto-create purchase order: %w", op, err)
			}
			po = l.findPOLocked(poNumber)
		}
		if po != nil {
			poDate = po.PODate
			department = po.Department
		}
	}

	// Prefer PO-collection values, fall back to the invoice's own.
	if poDate == "" {
		poDate = f.Get(docparse.FieldPODate, "")
	}
	if department == "" {
		department = docparse.DepartmentUnknown
	}

	record := Invoice{
		Serial:        l.nextInvoiceSerialLocked(),
		InvoiceNumber: invoiceNumber,
		InvoiceDate:   f.Get(docparse.FieldInvoiceDate, ""),
		PONumber:      poNumber,
		PODate:        poDate,
		Department:    department,
		GRID:          f.Get(docparse.FieldGRID, ""),
		GRDate:        f.Get(docparse.FieldGRDate, ""),
		Subtotal:      f.Amount(docparse.FieldSubtotal),
		Tax:           f.Amount(docparse.FieldTax),
		GrandTotal:    f.Amount(docparse.FieldGrandTotal),
		Status:        f.Get(docparse.FieldStatus, docparse.StatusUnpaid),
	}

	if err := l.store.AppendRow(ctx, tabular.SheetInvoice, encodeInvoice(record)); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	l.invs = append(l.invs, record)

	l.log.Info().
		Int("serial", record.Serial).
		Str("invoice_number", record.InvoiceNumber).
		Str("po_number", record.PONumber).
		Msg("Added invoice record")

	return &l.invs[len(l.invs)-1], true, nil
}

// PurchaseOrders returns a snapshot of the PO collection in insertion order.
func (l *Ledger) PurchaseOrders() []PurchaseOrder {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]PurchaseOrder, len(l.pos))
	copy(out, l.pos)
	return out
}

// Invoices returns a snapshot of the invoice collection in insertion order.
func (l *Ledger) Invoices() []Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Invoice, len(l.invs))
	copy(out, l.invs)
	return out
}

// Row codecs. Column order must match tabular.POHeaders / InvoiceHeaders.

func encodePO(po PurchaseOrder) []any {
	return []any{
		po.Serial,
		po.PONumber,
		po.PODate,
		po.POAmount.InexactFloat64(),
		po.Department,
	}
}

func decodePO(row []string) PurchaseOrder {
	return PurchaseOrder{
		Serial:     parseSerial(cell(row, 0)),
		PONumber:   cell(row, 1),
		PODate:     cell(row, 2),
		POAmount:   docparse.NormalizeAmount(cell(row, 3)),
		Department: cell(row, 4),
	}
}

func encodeInvoice(inv Invoice) []any {
	return []any{
		inv.Serial,
		inv.InvoiceNumber,
		inv.InvoiceDate,
		inv.PONumber,
		inv.PODate,
		inv.Department,
		inv.GRID,
		inv.GRDate,
		inv.Subtotal.InexactFloat64(),
		inv.Tax.InexactFloat64(),
		inv.GrandTotal.InexactFloat64(),
		inv.Status,
	}
}

func decodeInvoice(row []string) Invoice {
	return Invoice{
		Serial:        parseSerial(cell(row, 0)),
		InvoiceNumber: cell(row, 1),
		InvoiceDate:   cell(row, 2),
		PONumber:      cell(row, 3),
		PODate:        cell(row, 4),
		Department:    cell(row, 5),
		GRID:          cell(row, 6),
		GRDate:        cell(row, 7),
		Subtotal:      docparse.NormalizeAmount(cell(row, 8)),
		Tax:           docparse.NormalizeAmount(cell(row, 9)),
		GrandTotal:    docparse.NormalizeAmount(cell(row, 10)),
		Status:        cell(row, 11),
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func parseSerial(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
