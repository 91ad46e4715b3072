package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ServiceType selects which party the settlement is owed to.
type ServiceType string

const (
	// ServiceCohosting means the owner keeps booking revenue and pays the company.
	ServiceCohosting ServiceType = "cohosting"
	// ServiceFullService means the company collects revenue and remits a payout.
	ServiceFullService ServiceType = "full_service"
)

// Valid reports whether s is a known service type.
func (s ServiceType) Valid() bool {
	return s == ServiceCohosting || s == ServiceFullService
}

// ParseServiceType converts user input into a ServiceType.
func ParseServiceType(s string) (ServiceType, error) {
	st := ServiceType(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: unknown service type %q", ErrInvalidReconciliation, s)
	}
	return st, nil
}

// ReconciliationStatus is the lifecycle state of a reconciliation.
type ReconciliationStatus string

const (
	// StatusDraft is the initial state while line items are reviewed.
	StatusDraft ReconciliationStatus = "draft"
	// StatusApproved means a reviewer accepted the settlement figure.
	StatusApproved ReconciliationStatus = "approved"
	// StatusStatementSent means the owner statement went out.
	StatusStatementSent ReconciliationStatus = "statement_sent"
	// StatusCharged is terminal: the settlement was paid out or charged.
	StatusCharged ReconciliationStatus = "charged"
)

// PayoutStatus tracks the full-service payout. It only ever moves from
// PayoutPending to PayoutCompleted.
type PayoutStatus string

const (
	// PayoutPending means no payout has been committed.
	PayoutPending PayoutStatus = ""
	// PayoutCompleted means the payout was committed.
	PayoutCompleted PayoutStatus = "completed"
)

// ErrInvalidReconciliation is returned for malformed reconciliations.
var ErrInvalidReconciliation = errors.New("invalid reconciliation")

// Reconciliation is the monthly settlement record for one property and period.
type Reconciliation struct {
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PayoutAt        *time.Time
	TotalRevenue    decimal.Decimal
	ManagementFee   decimal.Decimal
	VisitFees       decimal.Decimal
	TotalExpenses   decimal.Decimal
	NetToOwner      decimal.Decimal
	PayoutToOwner   decimal.NullDecimal
	ID              string
	PropertyName    string
	Period          string // YYYY-MM
	PayoutReference string
	ServiceType     ServiceType
	Status          ReconciliationStatus
	PayoutStatus    PayoutStatus
}

// Validate ensures the reconciliation can be persisted.
func (r *Reconciliation) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil reconciliation", ErrInvalidReconciliation)
	}
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidReconciliation)
	}
	if !r.ServiceType.Valid() {
		return fmt.Errorf("%w: unknown service type %q", ErrInvalidReconciliation, r.ServiceType)
	}
	if r.Period != "" {
		if _, err := time.Parse("2006-01", r.Period); err != nil {
			return fmt.Errorf("%w: period %q is not YYYY-MM", ErrInvalidReconciliation, r.Period)
		}
	}
	if r.ManagementFee.IsNegative() {
		return fmt.Errorf("%w: management fee cannot be negative", ErrInvalidReconciliation)
	}
	return nil
}

// PayoutCompleted reports whether the payout has been committed.
func (r *Reconciliation) PayoutCompleted() bool {
	return r.PayoutStatus == PayoutCompleted
}

// Expense is the source record an expense line item points at.
type Expense struct {
	CreatedAt    time.Time
	IncurredOn   time.Time
	Amount       decimal.Decimal
	ID           string
	PropertyName string
	Description  string
	Vendor       string
}

// Validate ensures the expense can be persisted.
func (e *Expense) Validate() error {
	if e == nil || strings.TrimSpace(e.ID) == "" {
		return errors.New("expense ID is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return errors.New("expense description is required")
	}
	return nil
}
