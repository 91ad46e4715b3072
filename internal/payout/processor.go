// Package payout commits owner payouts for full-service reconciliations.
package payout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/ingoatl/propertycentral/internal/settlement"
	"github.com/shopspring/decimal"
)

// Rejection reasons. Each is wrapped in a common.UserError carrying a message
// suitable for display.
var (
	ErrNotFullService    = errors.New("reconciliation is not full-service")
	ErrInvalidStatus     = errors.New("reconciliation status does not allow payout")
	ErrAlreadyPaid       = errors.New("payout already completed")
	ErrNoPayoutDue       = errors.New("no payout due")
	ErrCalculationFailed = errors.New("payout calculation failed")
)

// DefaultReferencePrefix prefixes generated payout references.
const DefaultReferencePrefix = "PO"

var payableStatuses = map[model.ReconciliationStatus]struct{}{
	model.StatusApproved:      {},
	model.StatusStatementSent: {},
}

// Request identifies the reconciliation to pay out. An empty Reference is
// replaced by a generated one.
type Request struct {
	ReconciliationID string
	Reference        string
	Actor            string
}

// Result describes a committed payout.
type Result struct {
	PaidAt           time.Time
	Amount           decimal.Decimal
	ReconciliationID string
	Reference        string
	Formula          settlement.PayoutFormula
}

// Processor pays out full-service reconciliations at most once.
type Processor struct {
	store   service.Storage
	now     func() time.Time
	formula settlement.PayoutFormula
	prefix  string
}

// Option configures a Processor.
type Option func(*Processor)

// WithFormula selects the payout formula. The default is settlement.FormulaUnified.
func WithFormula(f settlement.PayoutFormula) Option {
	return func(p *Processor) { p.formula = f }
}

// WithReferencePrefix sets the prefix used for generated references.
func WithReferencePrefix(prefix string) Option {
	return func(p *Processor) { p.prefix = prefix }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a payout processor.
func NewProcessor(store service.Storage, opts ...Option) *Processor {
	p := &Processor{
		store:   store,
		now:     time.Now,
		formula: settlement.FormulaUnified,
		prefix:  DefaultReferencePrefix,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process validates and commits the payout. The payout fields, the charged
// status and the audit entry are written in one transaction, and the commit
// itself is a compare-and-swap on payout_status, so concurrent or repeated
// calls pay out at most once.
func (p *Processor) Process(ctx context.Context, req Request) (*Result, error) {
	tx, err := p.store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := tx.GetReconciliation(ctx, req.ReconciliationID)
	if err != nil {
		return nil, err
	}
	if err := checkPayable(rec); err != nil {
		return nil, err
	}

	items, err := tx.GetLineItems(ctx, rec.ID)
	if err != nil {
		return nil, err
	}

	amount, err := p.formula.PayoutAmount(items, rec.ManagementFee, rec.TotalRevenue)
	if err != nil {
		return nil, common.NewUserError("The payout amount could not be calculated", fmt.Errorf("%w: %w", ErrCalculationFailed, err))
	}
	if !amount.IsPositive() {
		return nil, common.NewUserError(
			fmt.Sprintf("No payout due: calculated amount is %s", amount.StringFixed(2)), ErrNoPayoutDue)
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = p.newReference()
	}
	paidAt := p.now().UTC()

	err = tx.CompletePayout(ctx, rec.ID, service.PayoutCommit{Amount: amount, Reference: reference, PaidAt: paidAt})
	if errors.Is(err, common.ErrConflict) {
		return nil, common.NewUserError("This reconciliation has already been paid out", ErrAlreadyPaid)
	}
	if err != nil {
		return nil, err
	}

	entry := &model.AuditEntry{
		ReconciliationID: rec.ID,
		Action:           model.ActionPayoutCompleted,
		Actor:            req.Actor,
		PreviousValues:   map[string]any{"status": string(rec.Status)},
		NewValues: map[string]any{
			"status":           string(model.StatusCharged),
			"payout_to_owner":  amount.String(),
			"payout_reference": reference,
			"formula":          string(p.formula),
		},
	}
	if err := tx.WriteAuditEntry(ctx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		common.LogError(ctx, err, "Payout commit failed", common.Fields{"reconciliation": rec.ID})
		return nil, fmt.Errorf("failed to commit payout: %w", err)
	}

	common.LogInfo(ctx, "Payout completed", common.Fields{
		"reconciliation": rec.ID,
		"amount":         amount.String(),
		"reference":      reference,
		"formula":        string(p.formula),
	})

	return &Result{
		ReconciliationID: rec.ID,
		Amount:           amount,
		Reference:        reference,
		PaidAt:           paidAt,
		Formula:          p.formula,
	}, nil
}

func checkPayable(rec *model.Reconciliation) error {
	if rec.ServiceType != model.ServiceFullService {
		return common.NewUserError("Payouts are only available for full-service reconciliations", ErrNotFullService)
	}
	if rec.PayoutCompleted() {
		return common.NewUserError("This reconciliation has already been paid out", ErrAlreadyPaid)
	}
	if _, ok := payableStatuses[rec.Status]; !ok {
		return common.NewUserError(
			fmt.Sprintf("Reconciliation must be approved before payout (status: %s)", rec.Status), ErrInvalidStatus)
	}
	return nil
}

func (p *Processor) newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return p.prefix + "-" + id[:12]
}
