// Package docparse recovers structured fields from the extracted text of
// scanned invoices and purchase orders.
//
// Input text comes from a best-effort extraction step (PDF text layer or OCR),
// so the package makes no assumptions about layout: every field is located by
// an ordered chain of patterns, including variants that tolerate OCR-garbled
// keywords. Chains are priority lists, not best-match searches - stricter
// patterns are listed first and the first hit wins.
//
// Every field is optional. Extraction never fails; it returns whatever subset
// of fields was found. Callers treat an empty result as an unparsable document.
package docparse

import (
	"github.com/shopspring/decimal"
)

// DocType is the classification outcome for a document's text.
type DocType int

const (
	DocTypeUnknown DocType = iota
	DocTypeInvoice
	DocTypePurchaseOrder
)

// String returns a human-readable document type name.
func (d DocType) String() string {
	switch d {
	case DocTypeInvoice:
		return "invoice"
	case DocTypePurchaseOrder:
		return "purchase_order"
	default:
		return "unknown"
	}
}

// Field keys used in extraction results.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldPONumber      = "po_number"
	FieldPODate        = "po_date"
	FieldPOAmount      = "po_amount"
	FieldDepartment    = "department"
	FieldGRID          = "gr_id"
	FieldGRDate        = "gr_date"
	FieldSubtotal      = "subtotal"
	FieldTax           = "tax"
	FieldGrandTotal    = "grand_total"
	FieldStatus        = "status"
)

// StatusUnpaid is the initial status of every ingested invoice. Nothing in
// this package ever advances an invoice to a paid state.
const StatusUnpaid = "UnPaid"

// DepartmentUnknown is the sentinel department for purchase orders whose
// department could not be extracted.
const DepartmentUnknown = "N/A"

// Fields maps field keys to extracted values. Absent keys mean "not found";
// the map never holds empty placeholders for missing fields.
type Fields map[string]string

// Get returns the value for key, or def when the key is absent.
func (f Fields) Get(key, def string) string {
	if v, ok := f[key]; ok {
		return v
	}
	return def
}

// Amount parses the value for key as a monetary amount, zero when absent
// or unparsable.
func (f Fields) Amount(key string) decimal.Decimal {
	return NormalizeAmount(f.Get(key, ""))
}

// Clone returns a shallow copy of the field map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
