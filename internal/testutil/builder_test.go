package testutil_test

import (
	"context"
	"testing"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Defaults(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := db.Seed(testutil.NewReconciliation("rec-1"))

	stored := db.MustGetReconciliation("rec-1")
	assert.Equal(t, model.StatusDraft, stored.Status)
	assert.Equal(t, model.ServiceCohosting, stored.ServiceType)
	assert.Equal(t, "200", stored.ManagementFee.String())
	assert.Equal(t, rec.ID, stored.ID)
}

func TestBuilder_FullServiceStatementSent(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := db.Seed(testutil.NewReconciliation("rec-1").
		FullService().
		Revenue("3000").
		WithExpense("exp-1", "AC repair", "30").
		WithScenarioItems().
		Verified().
		Status(model.StatusStatementSent))

	assert.Equal(t, model.StatusStatementSent, rec.Status)
	assert.Equal(t, model.StatusStatementSent, db.MustGetReconciliation("rec-1").Status)

	items, err := db.Storage.GetLineItems(context.Background(), "rec-1")
	require.NoError(t, err)
	require.Len(t, items, 4)
	for _, item := range items {
		assert.True(t, item.Verified, item.ID)
	}

	exp, err := db.Storage.GetExpense(context.Background(), "exp-1")
	require.NoError(t, err)
	assert.Equal(t, "Maple Cottage", exp.PropertyName)
}

func TestBuilder_UnreachableStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)

	_, err := testutil.NewReconciliation("rec-1").Status(model.StatusCharged).Build(context.Background(), db.Storage)
	assert.Error(t, err)
}

func TestWithTransaction_RollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	db.Seed(testutil.NewReconciliation("rec-1"))

	err := db.WithTransaction(func(tx service.Transaction) error {
		return tx.UpdateReconciliationStatus(context.Background(), "rec-1",
			[]model.ReconciliationStatus{model.StatusDraft}, model.StatusApproved)
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusDraft, db.MustGetReconciliation("rec-1").Status)
}
