// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/shopspring/decimal"
)

// LineItemReview carries reviewer decisions. Nil fields are left unchanged.
type LineItemReview struct {
	Verified *bool
	Excluded *bool
}

// Totals is the persisted snapshot of a calculation.
type Totals struct {
	VisitFees     decimal.Decimal
	TotalExpenses decimal.Decimal
	NetToOwner    decimal.Decimal
}

// PayoutCommit is the group of fields written when a payout completes.
type PayoutCommit struct {
	PaidAt    time.Time
	Amount    decimal.Decimal
	Reference string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Reconciliation operations
	CreateReconciliation(ctx context.Context, rec *model.Reconciliation) error
	GetReconciliation(ctx context.Context, id string) (*model.Reconciliation, error)
	ListReconciliations(ctx context.Context) ([]model.Reconciliation, error)
	UpdateReconciliationStatus(ctx context.Context, id string, from []model.ReconciliationStatus, to model.ReconciliationStatus) error
	SaveTotals(ctx context.Context, id string, totals Totals) error
	// CompletePayout atomically marks a full-service reconciliation paid. It
	// fails with ErrPayoutConflict unless the payout is still pending and the
	// status is approved or statement_sent at the moment of the write.
	CompletePayout(ctx context.Context, id string, commit PayoutCommit) error

	// Line item operations
	AddLineItems(ctx context.Context, items []model.LineItem) error
	GetLineItems(ctx context.Context, reconciliationID string) ([]model.LineItem, error)
	GetLineItem(ctx context.Context, id string) (*model.LineItem, error)
	// ReviewLineItem fails with ErrReconciliationLocked unless the item's
	// reconciliation is still a draft.
	ReviewLineItem(ctx context.Context, id string, review LineItemReview) error
	GetLineItemsBySource(ctx context.Context, itemType model.ItemType, sourceID string) ([]model.LineItem, error)
	DeleteLineItemsBySource(ctx context.Context, itemType model.ItemType, sourceID string) (int64, error)

	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, id string) (*model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error

	// Audit operations
	WriteAuditEntry(ctx context.Context, entry *model.AuditEntry) error
	GetAuditEntries(ctx context.Context, reconciliationID string) ([]model.AuditEntry, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}
