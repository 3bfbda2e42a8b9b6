package docparse

import "github.com/shopspring/decimal"

// defaultTaxRate is the tax rate applied when an invoice states a subtotal
// but no explicit tax line. A domain constant, not configuration.
var defaultTaxRate = decimal.NewFromFloat(0.12)

// DeriveInvoice fills computed invoice fields that were not directly
// extracted:
//
//   - tax defaults to 12% of the subtotal, rounded to 2 decimal places
//   - grand total defaults to subtotal + tax (tax taken as 0 if still absent)
//   - status defaults to UnPaid
//
// Fields already present are left untouched. The input map is not modified.
func DeriveInvoice(f Fields) Fields {
	out := f.Clone()

	if _, ok := out[FieldSubtotal]; ok {
		subtotal := out.Amount(FieldSubtotal)
		if _, ok := out[FieldTax]; !ok {
			out[FieldTax] = subtotal.Mul(defaultTaxRate).Round(2).String()
		}
		if _, ok := out[FieldGrandTotal]; !ok {
			out[FieldGrandTotal] = subtotal.Add(out.Amount(FieldTax)).String()
		}
	}

	if _, ok := out[FieldStatus]; !ok {
		out[FieldStatus] = StatusUnpaid
	}

	return out
}

// DerivePO fills purchase-order defaults: department falls back to the
// DepartmentUnknown sentinel. No tax or total derivation applies to
// purchase orders.
func DerivePO(f Fields) Fields {
	out := f.Clone()
	if _, ok := out[FieldDepartment]; !ok {
		out[FieldDepartment] = DepartmentUnknown
	}
	return out
}
