package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
	"github.com/ingoatl/propertycentral/internal/service"
	"github.com/mattn/go-sqlite3"
)

// Reconciliation update errors.
var (
	// ErrStatusConflict is returned when a status transition does not start from an allowed state.
	ErrStatusConflict = fmt.Errorf("reconciliation is not in an allowed status for this change: %w", common.ErrConflict)
	// ErrPayoutConflict is returned when the payout compare-and-swap finds the
	// reconciliation already paid or no longer payable.
	ErrPayoutConflict = fmt.Errorf("payout already completed or reconciliation not payable: %w", common.ErrConflict)
	// ErrReconciliationLocked is returned when line items of a non-draft
	// reconciliation are reviewed.
	ErrReconciliationLocked = fmt.Errorf("reconciliation is locked for review: %w", common.ErrConflict)
)

const reconciliationColumns = `id, property_name, period, service_type, status,
	total_revenue, management_fee, visit_fees, total_expenses, net_to_owner,
	payout_status, payout_to_owner, payout_reference, payout_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReconciliation(row rowScanner) (*model.Reconciliation, error) {
	var rec model.Reconciliation
	var payoutAt sql.NullTime
	if err := row.Scan(
		&rec.ID, &rec.PropertyName, &rec.Period, &rec.ServiceType, &rec.Status,
		&rec.TotalRevenue, &rec.ManagementFee, &rec.VisitFees, &rec.TotalExpenses, &rec.NetToOwner,
		&rec.PayoutStatus, &rec.PayoutToOwner, &rec.PayoutReference, &payoutAt, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if payoutAt.Valid {
		t := payoutAt.Time
		rec.PayoutAt = &t
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// CreateReconciliation inserts a new reconciliation. An empty status defaults to draft.
func (s *SQLiteStorage) CreateReconciliation(ctx context.Context, rec *model.Reconciliation) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := rec.Validate(); err != nil {
		return err
	}
	if rec.Status == "" {
		rec.Status = model.StatusDraft
	}

	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO reconciliations (
			id, property_name, period, service_type, status,
			total_revenue, management_fee, visit_fees, total_expenses, net_to_owner,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.PropertyName, rec.Period, rec.ServiceType, rec.Status,
		rec.TotalRevenue, rec.ManagementFee, rec.VisitFees, rec.TotalExpenses, rec.NetToOwner,
		now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reconciliation %s: %w", rec.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create reconciliation: %w", err)
	}

	rec.CreatedAt, rec.UpdatedAt = now, now
	return nil
}

// GetReconciliation retrieves a reconciliation by ID.
func (s *SQLiteStorage) GetReconciliation(ctx context.Context, id string) (*model.Reconciliation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.conn.QueryRowContext(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations WHERE id = ?`, id)
	rec, err := scanReconciliation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reconciliation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation: %w", err)
	}
	return rec, nil
}

// ListReconciliations returns every reconciliation, newest period first.
func (s *SQLiteStorage) ListReconciliations(ctx context.Context) ([]model.Reconciliation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations ORDER BY period DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var recs []model.Reconciliation
	for rows.Next() {
		rec, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// UpdateReconciliationStatus moves a reconciliation to status to, but only
// when its current status is one of from.
func (s *SQLiteStorage) UpdateReconciliationStatus(ctx context.Context, id string, from []model.ReconciliationStatus, to model.ReconciliationStatus) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if len(from) == 0 {
		return fmt.Errorf("%w: from statuses", ErrEmptySlice)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(from)), ",")
	args := []any{to, time.Now().UTC(), id}
	for _, st := range from {
		args = append(args, st)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE reconciliations SET status = ?, updated_at = ?
		 WHERE id = ? AND status IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to update reconciliation status: %w", err)
	}
	return s.requireOneRow(ctx, result, id, ErrStatusConflict)
}

// SaveTotals stores the calculated totals snapshot on the reconciliation.
func (s *SQLiteStorage) SaveTotals(ctx context.Context, id string, totals service.Totals) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, `
		UPDATE reconciliations
		SET visit_fees = ?, total_expenses = ?, net_to_owner = ?, updated_at = ?
		WHERE id = ?`,
		totals.VisitFees, totals.TotalExpenses, totals.NetToOwner, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to save totals: %w", err)
	}
	return s.requireOneRow(ctx, result, id, common.ErrNotFound)
}

// CompletePayout commits the payout fields and the charged status in a single
// conditional UPDATE, so two concurrent callers cannot both succeed.
func (s *SQLiteStorage) CompletePayout(ctx context.Context, id string, commit service.PayoutCommit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(commit.Reference, "reference"); err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, `
		UPDATE reconciliations
		SET payout_to_owner = ?, payout_status = ?, payout_at = ?, payout_reference = ?,
			status = ?, updated_at = ?
		WHERE id = ?
			AND service_type = ?
			AND payout_status != ?
			AND status IN (?, ?)`,
		commit.Amount, model.PayoutCompleted, commit.PaidAt.UTC(), commit.Reference,
		model.StatusCharged, time.Now().UTC(),
		id,
		model.ServiceFullService,
		model.PayoutCompleted,
		model.StatusApproved, model.StatusStatementSent,
	)
	if err != nil {
		return fmt.Errorf("failed to complete payout: %w", err)
	}
	return s.requireOneRow(ctx, result, id, ErrPayoutConflict)
}

// requireOneRow turns a zero-row update into ErrNotFound when the
// reconciliation does not exist, or conflictErr when it does.
func (s *SQLiteStorage) requireOneRow(ctx context.Context, result sql.Result, id string, conflictErr error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	var exists int
	err = s.conn.QueryRowContext(ctx, `SELECT 1 FROM reconciliations WHERE id = ?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reconciliation %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check reconciliation: %w", err)
	}
	return fmt.Errorf("reconciliation %s: %w", id, conflictErr)
}
