package ledger

import "github.com/shopspring/decimal"

// PurchaseOrder is one row of the PO_Details sheet. Serial is the internally
// assigned key; PONumber is the business key referenced by invoices. Business
// keys are not unique: duplicate PO numbers may coexist and lookups return
// the first match.
type PurchaseOrder struct {
	Serial     int
	PONumber   string
	PODate     string
	POAmount   decimal.Decimal
	Department string
}

// Invoice is one row of the Invoice_Details sheet. PODate and Department are
// denormalized copies resolved from the linked purchase order when one
// exists. GRID and GRDate carry no relational semantics.
type Invoice struct {
	Serial        int
	InvoiceNumber string
	InvoiceDate   string
	PONumber      string
	PODate        string
	Department    string
	GRID          string
	GRDate        string
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	GrandTotal    decimal.Decimal
	Status        string
}
