package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ingoatl/propertycentral/internal/common"
	"github.com/ingoatl/propertycentral/internal/model"
)

// CreateExpense inserts an expense source record.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := expense.Validate(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidInput, err)
	}

	var incurred sql.NullTime
	if !expense.IncurredOn.IsZero() {
		incurred = sql.NullTime{Time: expense.IncurredOn.UTC(), Valid: true}
	}

	now := time.Now().UTC()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO expenses (id, property_name, description, vendor, amount, incurred_on, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.PropertyName, expense.Description, expense.Vendor, expense.Amount, incurred, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("expense %s: %w", expense.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create expense: %w", err)
	}
	expense.CreatedAt = now
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStorage) GetExpense(ctx context.Context, id string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var expense model.Expense
	var incurred sql.NullTime
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, property_name, description, vendor, amount, incurred_on, created_at
		FROM expenses WHERE id = ?`, id,
	).Scan(&expense.ID, &expense.PropertyName, &expense.Description, &expense.Vendor,
		&expense.Amount, &incurred, &expense.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query expense: %w", err)
	}
	if incurred.Valid {
		expense.IncurredOn = incurred.Time
	}
	return &expense, nil
}

// DeleteExpense removes an expense source record.
func (s *SQLiteStorage) DeleteExpense(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, common.ErrNotFound)
	}
	return nil
}
