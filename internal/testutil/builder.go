package testutil

import (
	"context"
	"fmt"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/shopspring/decimal"
)

// ReconciliationBuilder provides a fluent interface for constructing a
// reconciliation with its expenses and line items.
type ReconciliationBuilder struct {
	rec      model.Reconciliation
	status   model.ReconciliationStatus
	items    []model.LineItem
	expenses []model.Expense
	verify   bool
}

// NewReconciliation starts a draft co-hosting reconciliation for June 2026
// with a 200.00 management fee.
func NewReconciliation(id string) *ReconciliationBuilder {
	return &ReconciliationBuilder{
		rec: model.Reconciliation{
			ID:            id,
			PropertyName:  "Maple Cottage",
			Period:        "2026-06",
			ServiceType:   model.ServiceCohosting,
			ManagementFee: decimal.NewFromInt(200),
		},
		status: model.StatusDraft,
	}
}

// FullService switches the reconciliation to the full-service model.
func (b *ReconciliationBuilder) FullService() *ReconciliationBuilder {
	b.rec.ServiceType = model.ServiceFullService
	return b
}

// Revenue sets the total booking revenue.
func (b *ReconciliationBuilder) Revenue(amount string) *ReconciliationBuilder {
	b.rec.TotalRevenue = decimal.RequireFromString(amount)
	return b
}

// ManagementFee sets the management fee.
func (b *ReconciliationBuilder) ManagementFee(amount string) *ReconciliationBuilder {
	b.rec.ManagementFee = decimal.RequireFromString(amount)
	return b
}

// Status moves the reconciliation to status after creation. Statuses past
// draft are reached through the same transitions the application uses.
func (b *ReconciliationBuilder) Status(status model.ReconciliationStatus) *ReconciliationBuilder {
	b.status = status
	return b
}

// Approved is shorthand for Status(model.StatusApproved).
func (b *ReconciliationBuilder) Approved() *ReconciliationBuilder {
	return b.Status(model.StatusApproved)
}

// WithItems appends line items in order.
func (b *ReconciliationBuilder) WithItems(items ...model.LineItem) *ReconciliationBuilder {
	b.items = append(b.items, items...)
	return b
}

// WithExpense adds an expense source record.
func (b *ReconciliationBuilder) WithExpense(id, description, amount string) *ReconciliationBuilder {
	b.expenses = append(b.expenses, model.Expense{
		ID:          id,
		Description: description,
		Amount:      decimal.RequireFromString(amount),
	})
	return b
}

// Verified marks every line item as verified before it is stored.
func (b *ReconciliationBuilder) Verified() *ReconciliationBuilder {
	b.verify = true
	return b
}

// WithScenarioItems adds the reference item set: a 50.00 visit, a 30.00
// expense, a 75.00 cleaning fee and a duplicate of the visit.
func (b *ReconciliationBuilder) WithScenarioItems() *ReconciliationBuilder {
	return b.WithItems(ScenarioItems()...)
}

// ScenarioItems returns the reference item set, unverified.
func ScenarioItems() []model.LineItem {
	return []model.LineItem{
		model.NewVisit("li-1", "visit-1", "Property visit - Dana", decimal.NewFromInt(50)),
		model.NewExpense("li-2", "exp-1", "AC repair", decimal.NewFromInt(30)),
		model.NewPassThroughFee("li-3", "", model.FeeCleaning, "Guest cleaning", decimal.NewFromInt(75)),
		model.NewVisit("li-4", "visit-1", "Property visit - Dana", decimal.NewFromInt(50)),
	}
}

var transitionPath = map[model.ReconciliationStatus][]model.ReconciliationStatus{
	model.StatusDraft:         nil,
	model.StatusApproved:      {model.StatusApproved},
	model.StatusStatementSent: {model.StatusApproved, model.StatusStatementSent},
}

// Build creates the reconciliation, its expenses and line items in store.
func (b *ReconciliationBuilder) Build(ctx context.Context, store service.Storage) (*model.Reconciliation, error) {
	rec := b.rec
	if err := store.CreateReconciliation(ctx, &rec); err != nil {
		return nil, err
	}

	for i := range b.expenses {
		exp := b.expenses[i]
		exp.PropertyName = rec.PropertyName
		if err := store.CreateExpense(ctx, &exp); err != nil {
			return nil, err
		}
	}

	if len(b.items) > 0 {
		items := make([]model.LineItem, len(b.items))
		copy(items, b.items)
		for i := range items {
			items[i].ReconciliationID = rec.ID
			if b.verify {
				items[i].Verified = true
			}
		}
		if err := store.AddLineItems(ctx, items); err != nil {
			return nil, err
		}
	}

	path, ok := transitionPath[b.status]
	if !ok {
		return nil, fmt.Errorf("builder cannot reach status %q", b.status)
	}
	from := model.StatusDraft
	for _, to := range path {
		if err := store.UpdateReconciliationStatus(ctx, rec.ID, []model.ReconciliationStatus{from}, to); err != nil {
			return nil, err
		}
		from = to
	}
	rec.Status = from

	return &rec, nil
}
