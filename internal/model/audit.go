package model

import "time"

// AuditAction names an audited change to a reconciliation.
type AuditAction string

const (
	// ActionForceDeleteExpense records the removal of an expense from an approved reconciliation.
	ActionForceDeleteExpense AuditAction = "force_delete_expense"
	// ActionPayoutCompleted records a committed owner payout.
	ActionPayoutCompleted AuditAction = "payout_completed"
	// ActionStatusChanged records a lifecycle transition.
	ActionStatusChanged AuditAction = "status_changed"
)

// AuditEntry is an append-only record of a change made to a reconciliation.
type AuditEntry struct {
	CreatedAt        time.Time
	PreviousValues   map[string]any
	NewValues        map[string]any
	ReconciliationID string
	Action           AuditAction
	Actor            string
	Reason           string
	ID               int64
}
