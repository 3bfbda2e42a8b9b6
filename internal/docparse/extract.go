package docparse

import (
	"regexp"
	"strings"
)

// chain is an ordered list of pattern variants for a single field. Variants
// are tried in order and the first submatch wins; looser patterns sit at the
// end so they cannot shadow stricter ones.
type chain struct {
	field    string
	patterns []*regexp.Regexp
	// transform is applied to the captured value, e.g. date or amount
	// normalization. Nil means keep the raw capture.
	transform func(string) string
}

// apply runs the chain against text and records the first hit in out.
// Fields already present are never overwritten: higher-priority extractors
// (notably the tabular sub-extractor) always win.
func (c chain) apply(text string, out Fields) {
	if _, ok := out[c.field]; ok {
		return
	}
	for _, re := range c.patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v := strings.TrimSpace(m[1])
		if c.transform != nil {
			v = c.transform(v)
		}
		out[c.field] = v
		return
	}
}

func compileAll(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		res[i] = regexp.MustCompile(expr)
	}
	return res
}

func normalizeAmountString(raw string) string {
	return NormalizeAmount(raw).String()
}

// poTableRow matches documents that present PO number, PO date, GR number and
// GR date as a single delimited row under a header line. Delimiter spacing
// varies wildly between scans, and some OCR output drops the space in
// "PO DATE", so several variants are needed.
var poTableRow = compileAll(
	// Standard format, values on the line after the header
	`(?is)PO\s*NO[\s|]*PO\s*DATE[\s|]*GR\s*NO[\s|]*GR\s*DATE.*?\n\s*(\d+)\s+([\d-]+[-/]\w+[-/][\d]+)[\s|]*(\d+)\s+([\d-]+[-/]\w+[-/][\d]+)`,
	// Extra pipes between GR NO and GR DATE
	`(?is)PO\s*NO[\s|]*PO\s*DATE[\s|]*GR\s*NO[\s|]*GR\s*DATE.*?\n\s*(\d+)[\s|]+([\d-]+[-/]\w+[-/][\d]+)[\s|]+([\d]+)[\s|]+([\d-]+[-/]\w+[-/][\d]+)`,
	// Compact format with fixed-width identifiers
	`(?is)PO\s*NO[\s|]+PO\s*DATE[\s|]+GR\s*NO[\s|]+GR\s*DATE[\s\S]*?(\d{10})[\s|]+([\d-]+[-/]\w+[-/][\d]+)[\s|]+([\d]{7})[\s|]+([\d-]+[-/]\w+[-/][\d]+)`,
	// "PODATE" without a space in the header
	`(?is)PO\s*NO[\s|]*PODATE[\s|]*GR\s*NO[\s\S]*?(\d{10})\s+([\d-]+[-/]\w+[-/][\d]+)[\s|]+([\d]{7})\s+([\d-]+[-/]\w+[-/][\d]+)`,
)

// extractPOTable runs the tabular sub-extractor. On a hit it supplies
// po_number, po_date, gr_id and gr_date in one shot and the individual
// chains for those fields are skipped.
func extractPOTable(text string, out Fields) bool {
	for _, re := range poTableRow {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		out[FieldPONumber] = strings.TrimSpace(m[1])
		out[FieldPODate] = NormalizeDate(strings.TrimSpace(m[2]))
		out[FieldGRID] = strings.TrimSpace(m[3])
		out[FieldGRDate] = NormalizeDate(strings.TrimSpace(m[4]))
		return true
	}
	return false
}

var invoiceChains = []chain{
	{
		field: FieldInvoiceNumber,
		patterns: compileAll(
			`(?i)Invoice\s*No[:\s.]*[:\s]*([A-Z]?\d+)`,
			`(?i)Invoice\s*#[:\s]*([A-Z]?\d+)`,
			`(?i)Inv[\s.]*No[:\s.]*[:\s]*([A-Z]?\d+)`,
			`(?i)Invoice\s*Number[:\s]*([A-Z]?\d+)`,
			// Label on one line, number on the next
			`(?i)Invoice\s*No[:\s.]*\n[^\n]*?([A-Z]?\d{4,})`,
		),
	},
	{
		field: FieldInvoiceDate,
		patterns: compileAll(
			`(?i)Invoice\s*Date[:\s.]*[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			`(?i)Invoice\s*Date[:\s.]*[:\s]*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`,
			// Flexible spacing between "Invoice" and "Date"
			`(?i)Invoice[\s\S]{0,30}Date[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			// OCR garbles: Invoice -> Iwoie / iavoie
			`(?i)Iwoie[\s\S]{0,20}Date[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			`(?i)iavoie[\s\S]{0,20}Date[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			// A date in the vicinity of the invoice number
			`(?i)Invoice\s*No[:\s]*\d+[\s\S]{0,100}?(\d{1,2}[-/]\w+[-/]\d{2,4})`,
		),
		transform: NormalizeDate,
	},
	{
		field: FieldPONumber,
		patterns: compileAll(
			`(?i)PO\s*NO[:\s.]*[:\s]*(\d+)`,
			`(?i)PO\s*Number[:\s]*(\d+)`,
			`(?i)P\.?O\.?[:\s]*(\d+)`,
			`(?i)Purchase\s*Order[:\s]*(\d+)`,
		),
	},
	{
		field: FieldPODate,
		patterns: compileAll(
			`(?i)PO\s*DATE[:\s.]*[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			`(?i)PO\s*DATE[:\s.]*[:\s]*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`,
			`(?i)P\.?O\.?\s*Date[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
		),
		transform: NormalizeDate,
	},
	{
		field: FieldGRID,
		patterns: compileAll(
			`(?i)GR\s*NO[:\s.]*[:\s]*(\d+)`,
			`(?i)GR\s*Number[:\s]*(\d+)`,
			`(?i)G\.?R\.?[:\s]*(\d+)`,
			`(?i)Goods\s*Receipt[:\s]*(\d+)`,
		),
	},
	{
		field: FieldGRDate,
		patterns: compileAll(
			`(?i)GR\s*DATE[:\s.]*[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
			`(?i)GR\s*DATE[:\s.]*[:\s]*(\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`,
			`(?i)G\.?R\.?\s*Date[:\s]*(\d{1,2}[-/]\w+[-/]\d{2,4})`,
		),
		transform: NormalizeDate,
	},
	{
		field: FieldSubtotal,
		patterns: compileAll(
			`(?i)(?:^|\n)\s*TOTAL[:\s]+([0-9,]+\.?\d*)`,
			`(?i)Sub\s*Total[:\s]+([0-9,]+\.?\d*)`,
			`(?i)Amount[:\s]+([0-9,]+\.?\d*)`,
		),
		transform: normalizeAmountString,
	},
	{
		field: FieldTax,
		patterns: compileAll(
			`(?i)(?:KPRA|Tax)\s*\d+%[:\s]+([0-9,]+\.?\d*)`,
			`(?i)(?:KPRA|Tax)[:\s]+([0-9,]+\.?\d*)`,
			`(?i)VAT\s*\d+%[:\s]+([0-9,]+\.?\d*)`,
		),
		transform: normalizeAmountString,
	},
	{
		field: FieldGrandTotal,
		patterns: compileAll(
			`(?i)GRAND\s*TOTAL[:\s]+([0-9,]+\.?\d*)`,
			`(?i)Total\s*Amount[:\s]+([0-9,]+\.?\d*)`,
			`(?i)Net\s*Total[:\s]+([0-9,]+\.?\d*)`,
		),
		transform: normalizeAmountString,
	},
}

var poChains = []chain{
	{
		field: FieldPONumber,
		patterns: compileAll(
			`(?i)PO\s*(?:Number|NO)[:\s]+(\d+)`,
		),
	},
	{
		field: FieldPODate,
		patterns: compileAll(
			`(?i)PO\s*DATE[:\s]+(\d{1,2}[-/]\w+[-/]\d{2,4})`,
		),
		transform: NormalizeDate,
	},
	{
		field: FieldPOAmount,
		patterns: compileAll(
			`(?i)(?:Amount|Total)[:\s]+([0-9,]+\.?\d*)`,
		),
		transform: normalizeAmountString,
	},
	{
		field: FieldDepartment,
		patterns: compileAll(
			`(?i)Department[:\s]+([A-Za-z][A-Za-z ]*)`,
		),
	},
}

// ExtractInvoiceFields pulls invoice fields out of raw document text. The
// tabular sub-extractor runs first; whatever it populates is final. Returns
// an empty map when nothing at all could be extracted.
func ExtractInvoiceFields(text string) Fields {
	out := make(Fields)
	extractPOTable(text, out)
	for _, c := range invoiceChains {
		c.apply(text, out)
	}
	return out
}

// ExtractPOFields pulls purchase-order fields out of raw document text.
func ExtractPOFields(text string) Fields {
	out := make(Fields)
	for _, c := range poChains {
		c.apply(text, out)
	}
	return out
}
