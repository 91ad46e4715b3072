// Package lifecycle moves reconciliations through review: draft to approved
// to statement_sent. The final move to charged belongs to the payout processor.
package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/validation"
)

var (
	// ErrInvalidTransition is returned when the reconciliation is not in the required status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidationErrors is returned when approval is blocked by error-severity issues.
	ErrValidationErrors = errors.New("validation errors block approval")
	// ErrReconciliationLocked is returned when line items of a non-draft reconciliation are reviewed.
	ErrReconciliationLocked = errors.New("reconciliation is locked")
)

// ApproveRequest asks for a draft reconciliation to be approved.
type ApproveRequest struct {
	ReconciliationID string
	Actor            string
	// Force approves even when validation reports errors.
	Force bool
}

// ApproveResult carries the validation outcome. Issues is populated whether
// or not the approval went through.
type ApproveResult struct {
	Issues   validation.Grouped
	Approved bool
}

// ReviewRequest applies one review decision to a set of line items.
type ReviewRequest struct {
	Review  service.LineItemReview
	ItemIDs []string
}

// Manager applies lifecycle transitions.
type Manager struct {
	store       service.Storage
	allowErrors bool
}

// NewManager creates a Manager. allowErrors disables the validation gate.
func NewManager(store service.Storage, allowErrors bool) *Manager {
	return &Manager{store: store, allowErrors: allowErrors}
}

// Approve validates the line items and moves a draft reconciliation to
// approved, recording the transition in the audit log.
func (m *Manager) Approve(ctx context.Context, req ApproveRequest) (*ApproveResult, error) {
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := tx.GetReconciliation(ctx, req.ReconciliationID)
	if err != nil {
		return nil, err
	}
	if rec.Status != model.StatusDraft {
		return nil, transitionError(rec, model.StatusDraft, model.StatusApproved)
	}

	items, err := tx.GetLineItems(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	result := &ApproveResult{Issues: validation.GroupIssuesBySeverity(validation.ValidateReconciliation(items))}

	overridden := result.Issues.HasErrors()
	if overridden && !req.Force && !m.allowErrors {
		return result, common.NewUserError(
			fmt.Sprintf("Approval blocked by %d validation error(s); resolve them or approve with --force", len(result.Issues.Errors)),
			ErrValidationErrors)
	}

	newValues := map[string]any{"status": string(model.StatusApproved)}
	if overridden {
		newValues["validation_errors_overridden"] = len(result.Issues.Errors)
	}
	if err := transition(ctx, tx, rec, model.StatusApproved, req.Actor, newValues); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit approval: %w", err)
	}

	common.LogInfo(ctx, "Reconciliation approved", common.Fields{
		"reconciliation": rec.ID,
		"errors":         len(result.Issues.Errors),
		"warnings":       len(result.Issues.Warnings),
	})
	result.Approved = true
	return result, nil
}

// MarkStatementSent records that the owner statement for an approved
// reconciliation went out.
func (m *Manager) MarkStatementSent(ctx context.Context, reconciliationID, actor string) error {
	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := tx.GetReconciliation(ctx, reconciliationID)
	if err != nil {
		return err
	}
	if rec.Status != model.StatusApproved {
		return transitionError(rec, model.StatusApproved, model.StatusStatementSent)
	}

	if err := transition(ctx, tx, rec, model.StatusStatementSent, actor,
		map[string]any{"status": string(model.StatusStatementSent)}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit status change: %w", err)
	}

	common.LogInfo(ctx, "Statement marked as sent", common.Fields{"reconciliation": rec.ID})
	return nil
}

// Review records reviewer decisions on line items. Every item must belong to
// a draft reconciliation; once approved, the items that produced the
// settlement figure are locked. Nothing is written unless all items pass.
func (m *Manager) Review(ctx context.Context, req ReviewRequest) error {
	if len(req.ItemIDs) == 0 {
		return fmt.Errorf("%w: no line items to review", common.ErrInvalidInput)
	}

	tx, err := m.store.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, id := range req.ItemIDs {
		item, err := tx.GetLineItem(ctx, id)
		if err != nil {
			return err
		}
		rec, err := tx.GetReconciliation(ctx, item.ReconciliationID)
		if err != nil {
			return err
		}
		if rec.Status != model.StatusDraft {
			return common.NewUserError(
				fmt.Sprintf("Reconciliation %s is %s; line items can only be reviewed while it is a draft", rec.ID, rec.Status),
				ErrReconciliationLocked)
		}
		if err := tx.ReviewLineItem(ctx, id, req.Review); err != nil {
			return fmt.Errorf("failed to review line item %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit review: %w", err)
	}

	common.LogInfo(ctx, "Line items reviewed", common.Fields{"count": len(req.ItemIDs)})
	return nil
}

func transition(ctx context.Context, tx service.Transaction, rec *model.Reconciliation, to model.ReconciliationStatus, actor string, newValues map[string]any) error {
	err := tx.UpdateReconciliationStatus(ctx, rec.ID, []model.ReconciliationStatus{rec.Status}, to)
	if errors.Is(err, common.ErrConflict) {
		return transitionError(rec, rec.Status, to)
	}
	if err != nil {
		return err
	}

	return tx.WriteAuditEntry(ctx, &model.AuditEntry{
		ReconciliationID: rec.ID,
		Action:           model.ActionStatusChanged,
		Actor:            actor,
		PreviousValues:   map[string]any{"status": string(rec.Status)},
		NewValues:        newValues,
	})
}

func transitionError(rec *model.Reconciliation, from, to model.ReconciliationStatus) error {
	return common.NewUserError(
		fmt.Sprintf("Reconciliation %s is %s; only %s reconciliations can move to %s", rec.ID, rec.Status, from, to),
		ErrInvalidTransition)
}
