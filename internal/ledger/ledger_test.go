package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicelink/internal/docparse"
	"invoicelink/internal/ledger"
	"invoicelink/internal/tabular"
)

func openLedger(t *testing.T) (*ledger.Ledger, *tabular.MemStore) {
	t.Helper()
	store := tabular.NewMemStore()
	l, err := ledger.Open(context.Background(), store)
	require.NoError(t, err)
	return l, store
}

func invoiceFields(invoiceNumber, poNumber string) docparse.Fields {
	return docparse.Fields{
		docparse.FieldInvoiceNumber: invoiceNumber,
		docparse.FieldInvoiceDate:   "10-Jan-2024",
		docparse.FieldPONumber:      poNumber,
		docparse.FieldPODate:        "01-Jan-2024",
		docparse.FieldSubtotal:      "1000",
		docparse.FieldTax:           "120",
		docparse.FieldGrandTotal:    "1120",
		docparse.FieldStatus:        docparse.StatusUnpaid,
	}
}

func TestInsertPO(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	po, err := l.InsertPO(ctx, docparse.Fields{
		docparse.FieldPONumber:   "9999",
		docparse.FieldPODate:     "05-Feb-2024",
		docparse.FieldPOAmount:   "25000",
		docparse.FieldDepartment: "Finance",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, po.Serial)
	assert.Equal(t, "9999", po.PONumber)
	assert.Equal(t, "05-Feb-2024", po.PODate)
	assert.True(t, po.POAmount.Equal(decimal.NewFromInt(25000)))
	assert.Equal(t, "Finance", po.Department)
}

func TestInsertPO_DuplicateKeysCoexist(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	_, err := l.InsertPO(ctx, docparse.Fields{docparse.FieldPONumber: "9999", docparse.FieldDepartment: "Finance"})
	require.NoError(t, err)
	_, err = l.InsertPO(ctx, docparse.Fields{docparse.FieldPONumber: "9999", docparse.FieldDepartment: "Procurement"})
	require.NoError(t, err)

	pos := l.PurchaseOrders()
	require.Len(t, pos, 2)

	// Lookups resolve to the earliest record.
	found := l.FindPO("9999")
	require.NotNil(t, found)
	assert.Equal(t, "Finance", found.Department)
}

func TestInsertInvoice_DuplicateIsNoOp(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	_, inserted, err := l.InsertInvoice(ctx, invoiceFields("A1001", "1234567890"))
	require.NoError(t, err)
	assert.True(t, inserted)

	_, inserted, err = l.InsertInvoice(ctx, invoiceFields("A1001", "1234567890"))
	require.NoError(t, err)
	assert.False(t, inserted)

	assert.Len(t, l.Invoices(), 1)
}

func TestInsertInvoice_AutoCreatesStubPO(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	inv, inserted, err := l.InsertInvoice(ctx, invoiceFields("A1001", "1234567890"))
	require.NoError(t, err)
	require.True(t, inserted)

	pos := l.PurchaseOrders()
	require.Len(t, pos, 1)
	stub := pos[0]

	assert.Equal(t, "1234567890", stub.PONumber)
	assert.Equal(t, "01-Jan-2024", stub.PODate, "stub PO date comes from the invoice's own extracted PO date")
	assert.True(t, stub.POAmount.IsZero())
	assert.Equal(t, docparse.DepartmentUnknown, stub.Department)

	assert.Equal(t, "01-Jan-2024", inv.PODate)
	assert.Equal(t, docparse.DepartmentUnknown, inv.Department)
}

func TestInsertInvoice_DenormalizesFromPOCollection(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	_, err := l.InsertPO(ctx, docparse.Fields{
		docparse.FieldPONumber:   "9999",
		docparse.FieldPODate:     "05-Feb-2024",
		docparse.FieldPOAmount:   "25000",
		docparse.FieldDepartment: "Finance",
	})
	require.NoError(t, err)

	// The invoice carries its own, different PO date. The PO collection's
	// values win.
	f := invoiceFields("A2002", "9999")
	f[docparse.FieldPODate] = "06-Feb-2024"
	inv, inserted, err := l.InsertInvoice(ctx, f)
	require.NoError(t, err)
	require.True(t, inserted)

	assert.Equal(t, "05-Feb-2024", inv.PODate)
	assert.Equal(t, "Finance", inv.Department)

	// No stub was created.
	assert.Len(t, l.PurchaseOrders(), 1)
}

func TestInsertInvoice_NoPONumber(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	f := invoiceFields("A3003", "")
	delete(f, docparse.FieldPODate)
	inv, inserted, err := l.InsertInvoice(ctx, f)
	require.NoError(t, err)
	require.True(t, inserted)

	assert.Empty(t, inv.PONumber)
	assert.Empty(t, inv.PODate)
	assert.Equal(t, docparse.DepartmentUnknown, inv.Department)
	assert.Empty(t, l.PurchaseOrders())
}

func TestSerialAssignment(t *testing.T) {
	l, _ := openLedger(t)
	ctx := context.Background()

	for i, n := range []string{"111", "222", "333"} {
		po, err := l.InsertPO(ctx, docparse.Fields{docparse.FieldPONumber: n})
		require.NoError(t, err)
		assert.Equal(t, i+1, po.Serial)
	}

	inv, _, err := l.InsertInvoice(ctx, invoiceFields("A1001", "111"))
	require.NoError(t, err)
	assert.Equal(t, 1, inv.Serial, "invoice serials are independent of PO serials")
}

func TestOpen_ResumesFromStore(t *testing.T) {
	store := tabular.NewMemStore()
	ctx := context.Background()

	l, err := ledger.Open(ctx, store)
	require.NoError(t, err)
	_, err = l.InsertPO(ctx, docparse.Fields{docparse.FieldPONumber: "9999", docparse.FieldDepartment: "Finance"})
	require.NoError(t, err)
	_, _, err = l.InsertInvoice(ctx, invoiceFields("A1001", "9999"))
	require.NoError(t, err)

	// Reopen over the same store, as a second batch run would.
	l2, err := ledger.Open(ctx, store)
	require.NoError(t, err)

	require.Len(t, l2.PurchaseOrders(), 1)
	require.Len(t, l2.Invoices(), 1)

	// Dedup carries across runs.
	_, inserted, err := l2.InsertInvoice(ctx, invoiceFields("A1001", "9999"))
	require.NoError(t, err)
	assert.False(t, inserted)

	// Serials continue where the previous run left off.
	po, err := l2.InsertPO(ctx, docparse.Fields{docparse.FieldPONumber: "8888"})
	require.NoError(t, err)
	assert.Equal(t, 2, po.Serial)
}

func TestRoundTripAmounts(t *testing.T) {
	store := tabular.NewMemStore()
	ctx := context.Background()

	l, err := ledger.Open(ctx, store)
	require.NoError(t, err)
	_, _, err = l.InsertInvoice(ctx, invoiceFields("A1001", ""))
	require.NoError(t, err)

	l2, err := ledger.Open(ctx, store)
	require.NoError(t, err)

	invs := l2.Invoices()
	require.Len(t, invs, 1)
	assert.True(t, invs[0].Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.True(t, invs[0].Tax.Equal(decimal.NewFromInt(120)))
	assert.True(t, invs[0].GrandTotal.Equal(decimal.NewFromInt(1120)))
	assert.Equal(t, docparse.StatusUnpaid, invs[0].Status)
}
