// Package audit implements destructive reconciliation changes that must leave
// an audit trail. Every audit entry is written before anything is deleted, and
// both happen in one transaction so neither can exist without the other.
package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
)

// ErrReasonRequired is returned when a force delete has no human supplied reason.
var ErrReasonRequired = errors.New("reason is required")

// ForceDeleteRequest describes an expense removal.
type ForceDeleteRequest struct {
	ExpenseID string
	Reason    string
	Actor     string
}

// ForceDeleteResult summarizes a completed force delete.
type ForceDeleteResult struct {
	Expense           *model.Expense
	ReconciliationIDs []string
	LineItemsDeleted  int64
}

// Deleter performs audited deletions.
type Deleter struct {
	store service.Storage
}

// NewDeleter creates a Deleter backed by store.
func NewDeleter(store service.Storage) *Deleter {
	return &Deleter{store: store}
}

// ForceDeleteExpense removes an expense and every line item that references
// it, including line items on approved reconciliations. One audit entry per
// affected reconciliation is written first; any failure rolls everything back.
func (d *Deleter) ForceDeleteExpense(ctx context.Context, req ForceDeleteRequest) (*ForceDeleteResult, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, common.NewUserError("A reason is required to force-delete an expense", ErrReasonRequired)
	}
	if strings.TrimSpace(req.ExpenseID) == "" {
		return nil, fmt.Errorf("%w: expense ID", common.ErrInvalidInput)
	}

	tx, err := d.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	result, err := forceDeleteExpense(ctx, tx, req.ExpenseID, reason, req.Actor)
	if err != nil {
		common.LogError(ctx, err, "Force delete aborted", common.Fields{"expense_id": req.ExpenseID})
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		common.LogError(ctx, err, "Force delete commit failed", common.Fields{"expense_id": req.ExpenseID})
		return nil, fmt.Errorf("failed to commit force delete: %w", err)
	}

	common.LogInfo(ctx, "Force deleted expense", common.Fields{
		"expense_id":      req.ExpenseID,
		"reconciliations": result.ReconciliationIDs,
		"line_items":      result.LineItemsDeleted,
		"actor":           req.Actor,
	})
	return result, nil
}

func forceDeleteExpense(ctx context.Context, tx service.Transaction, expenseID, reason, actor string) (*ForceDeleteResult, error) {
	expense, err := tx.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}

	items, err := tx.GetLineItemsBySource(ctx, model.ItemExpense, expenseID)
	if err != nil {
		return nil, err
	}

	byReconciliation := make(map[string][]model.LineItem)
	var reconciliationIDs []string
	for _, item := range items {
		if _, seen := byReconciliation[item.ReconciliationID]; !seen {
			reconciliationIDs = append(reconciliationIDs, item.ReconciliationID)
		}
		byReconciliation[item.ReconciliationID] = append(byReconciliation[item.ReconciliationID], item)
	}

	for _, recID := range reconciliationIDs {
		rec, err := tx.GetReconciliation(ctx, recID)
		if err != nil {
			return nil, err
		}
		entry := &model.AuditEntry{
			ReconciliationID: recID,
			Action:           model.ActionForceDeleteExpense,
			Actor:            actor,
			Reason:           reason,
			PreviousValues:   snapshot(expense, rec, byReconciliation[recID]),
		}
		if err := tx.WriteAuditEntry(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to audit reconciliation %s: %w", recID, err)
		}
	}

	deleted, err := tx.DeleteLineItemsBySource(ctx, model.ItemExpense, expenseID)
	if err != nil {
		return nil, err
	}
	if err := tx.DeleteExpense(ctx, expenseID); err != nil {
		return nil, err
	}

	return &ForceDeleteResult{
		Expense:           expense,
		ReconciliationIDs: reconciliationIDs,
		LineItemsDeleted:  deleted,
	}, nil
}

func snapshot(expense *model.Expense, rec *model.Reconciliation, items []model.LineItem) map[string]any {
	lineItemIDs := make([]string, 0, len(items))
	for _, item := range items {
		lineItemIDs = append(lineItemIDs, item.ID)
	}
	return map[string]any{
		"expense_id":            expense.ID,
		"description":           items[0].Description,
		"expense_description":   expense.Description,
		"amount":                items[0].Amount.String(),
		"line_item_ids":         lineItemIDs,
		"reconciliation_status": string(rec.Status),
	}
}
