package docparse

import "strings"

// Classify decides whether text represents an invoice, a purchase order, or
// neither, from signal phrases alone.
//
// The invoice check runs first: text carrying both an "invoice" phrase and an
// "invoice no" phrase is always an invoice, even when purchase-order phrases
// are also present. A "po no" phrase only signals a purchase order when no
// "invoice" phrase appears anywhere in the text.
func Classify(text string) DocType {
	lower := strings.ToLower(text)

	hasInvoice := strings.Contains(lower, "invoice")
	if hasInvoice && strings.Contains(lower, "invoice no") {
		return DocTypeInvoice
	}

	if strings.Contains(lower, "purchase order") || (strings.Contains(lower, "po no") && !hasInvoice) {
		return DocTypePurchaseOrder
	}

	return DocTypeUnknown
}
