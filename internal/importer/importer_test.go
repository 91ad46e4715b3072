package importer

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/ingoatl/propertycentral/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "import.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func TestLoadFile(t *testing.T) {
	fx, err := LoadFile(filepath.Join("testdata", "maple-2026-06.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "rec-maple-2026-06", fx.Reconciliation.ID)
	assert.Equal(t, "2026-06", fx.Reconciliation.Period)
	assert.Len(t, fx.Expenses, 1)
	assert.Len(t, fx.LineItems, 4)
	assert.Equal(t, "cleaning_fee", fx.LineItems[2].FeeType)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "nope.yaml"))
	assert.Error(t, err)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "unknown field", doc: "reconciliation:\n  id: r1\n  colour: blue\n"},
		{name: "missing id", doc: "reconciliation:\n  service_type: cohosting\n"},
		{name: "not yaml", doc: "reconciliation: [\n"},
		{name: "unknown service type", doc: "reconciliation:\n  id: r1\n  service_type: hotel\n"},
		{name: "bad period", doc: "reconciliation:\n  id: r1\n  service_type: cohosting\n  period: June\n"},
		{
			name: "unknown item type",
			doc:  "reconciliation:\n  id: r1\n  service_type: cohosting\nline_items:\n  - id: li-1\n    type: refund\n",
		},
		{
			name: "expense without description",
			doc:  "reconciliation:\n  id: r1\n  service_type: cohosting\nexpenses:\n  - id: e1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidFixture)
		})
	}
}

func TestImport(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	fx, err := LoadFile(filepath.Join("testdata", "maple-2026-06.yaml"))
	require.NoError(t, err)

	var progress bytes.Buffer
	summary, err := Import(ctx, store, fx, &progress)
	require.NoError(t, err)

	assert.Equal(t, "rec-maple-2026-06", summary.ReconciliationID)
	assert.Equal(t, 1, summary.Expenses)
	assert.Equal(t, 4, summary.LineItems)
	assert.Contains(t, progress.String(), "Importing line items")

	rec, err := store.GetReconciliation(ctx, "rec-maple-2026-06")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDraft, rec.Status)
	assert.Equal(t, model.ServiceFullService, rec.ServiceType)

	exp, err := store.GetExpense(ctx, "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "Maple Cottage", exp.PropertyName)
	assert.Equal(t, 12, exp.IncurredOn.Day())

	items, err := store.GetLineItems(ctx, rec.ID)
	require.NoError(t, err)
	require.Len(t, items, 4)
	assert.Equal(t, "li-1", items[0].ID)
	assert.Equal(t, "li-4", items[3].ID)

	result := settlement.Calculate(items, rec.ManagementFee, rec.TotalRevenue, rec.ServiceType)
	assert.True(t, decimal.NewFromInt(2645).Equal(result.PayoutToOwner))
	assert.Equal(t, 1, result.DuplicatesDetected)
}

func TestImport_NilProgress(t *testing.T) {
	store := createTestStorage(t)

	fx, err := Parse([]byte(`
reconciliation:
  id: rec-2
  service_type: cohosting
  management_fee: 150
`))
	require.NoError(t, err)

	summary, err := Import(context.Background(), store, fx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.LineItems)
}

func TestImport_RejectsFeeTypeOnVisit(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	fx, err := Parse([]byte(`
reconciliation:
  id: r1
  service_type: cohosting
line_items:
  - id: li-1
    type: visit
    fee_type: pet_fee
    amount: 5
`))
	require.NoError(t, err)

	_, err = Import(ctx, store, fx, nil)
	require.ErrorIs(t, err, ErrInvalidFixture)
	assert.ErrorIs(t, err, model.ErrFeeTypeNotAllowed)

	_, err = store.GetReconciliation(ctx, "r1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestImport_BadExpenseDate(t *testing.T) {
	fx := &Fixture{
		Reconciliation: ReconciliationDoc{ID: "r1", ServiceType: "cohosting"},
		Expenses:       []ExpenseDoc{{ID: "e1", Description: "Filters", IncurredOn: "June 12"}},
	}

	_, err := Import(context.Background(), createTestStorage(t), fx, nil)
	assert.ErrorIs(t, err, ErrInvalidFixture)
}

func TestImport_DuplicateRollsBack(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	fx, err := Parse([]byte(`
reconciliation:
  id: rec-dup
  service_type: cohosting
expenses:
  - id: exp-a
    description: Filters
line_items:
  - id: li-a
    type: expense
    source_id: exp-a
    amount: 12
  - id: li-a
    type: expense
    source_id: exp-a
    amount: 12
`))
	require.NoError(t, err)

	_, err = Import(ctx, store, fx, nil)
	require.ErrorIs(t, err, common.ErrDuplicateEntry)

	_, err = store.GetReconciliation(ctx, "rec-dup")
	assert.ErrorIs(t, err, common.ErrNotFound)
	_, err = store.GetExpense(ctx, "exp-a")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
